package markdown

import "strings"

// collapseWhitespace replaces runs of whitespace with a single space.
// A leading or trailing run is kept as one space so inline elements
// stay separated from their neighbours.
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

// writeText appends inline text, dropping a leading space when the
// output already ends in whitespace.
func writeText(b *strings.Builder, s string) {
	if strings.HasPrefix(s, " ") {
		out := b.String()
		if out != "" && isSpace(out[len(out)-1]) {
			s = s[1:]
		}
	}
	b.WriteString(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tidy trims trailing whitespace and collapses blank line runs outside
// fenced code blocks.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	blank := true
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			out = append(out, strings.TrimSpace(line))
			blank = false
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// prefixLines prefixes every line, using emptyPrefix for blank lines.
func prefixLines(s, prefix, emptyPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = emptyPrefix
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// prefixContinuation indents every line but the first.
func prefixContinuation(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
