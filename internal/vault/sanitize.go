package vault

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// maxNameBytes leaves room for prefixes and suffixes such as
	// "NN - " and " - Index.md" within the common 255 byte name limit.
	maxNameBytes    = 150
	fallbackName    = "Untitled"
	zeroWidthJoiner = '\u200d'
)

// removedRunes are invalid in file names on common filesystems or break
// Obsidian wikilinks.
const removedRunes = `<>:"|?*#^[]`

// trailingTrim is removed from the end of a truncated name.
const trailingTrim = " .-_,;"

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeName maps an arbitrary string to a non-empty, filesystem-safe
// and wikilink-safe name.
func SanitizeName(s string) string {
	if name := sanitize(s); name != "" {
		return name
	}
	return fallbackName
}

// sanitize is SanitizeName without the fallback; it returns "" when
// nothing usable remains.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('-')
		case strings.ContainsRune(removedRunes, r):
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r), r == utf8.RuneError:
		case unicode.Is(unicode.Cf, r) && r != zeroWidthJoiner:
		default:
			b.WriteRune(r)
		}
	}

	name := strings.Join(strings.Fields(norm.NFC.String(b.String())), " ")
	name = strings.Trim(truncate(name, maxNameBytes), " .")

	if stem, _, _ := strings.Cut(name, "."); reservedNames[strings.ToUpper(stem)] {
		name = strings.Trim(truncate(name, maxNameBytes-1), " .")
		stem, rest, _ := strings.Cut(name, ".")
		if rest != "" {
			rest = "." + rest
		}
		name = stem + "_" + rest
	}
	return name
}

// truncate shortens name to at most limit bytes without splitting a rune,
// backing up to a word boundary when one lies in the second half.
func truncate(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	head := name[:cut]
	if name[cut] != ' ' {
		if i := strings.LastIndexByte(head, ' '); i > limit/2 {
			head = head[:i]
		}
	}
	return strings.TrimRight(head, trailingTrim)
}

// bookTag derives the nested Obsidian tag identifying a book's notes.
func bookTag(bookName string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(bookName) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if b.Len() > 0 && !dash {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	return "book/" + slug
}
