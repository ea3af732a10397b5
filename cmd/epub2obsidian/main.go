package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yuanying/epub2obsidian/internal/converter"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	infoChapterLimit = 10
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	noticeColor  = color.New(color.FgYellow)
	detailColor  = color.New(color.Faint)
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epub2obsidian <file.epub | directory>",
		Short: "Convert EPUB books to Obsidian vault folders",
		Long: `epub2obsidian converts EPUB e-books into a folder of linked Markdown
notes for Obsidian: an Index note, an Info note with the book metadata,
one note per chapter and the book's images.

Given a directory, every .epub file directly inside it is converted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			fi, err := os.Stat(args[0])
			if err == nil && fi.IsDir() {
				return runBatch(cmd.OutOrStdout(), args[0], opts)
			}
			return runSingle(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output directory (default: the input's directory)")
	flags.Bool("no-images", false, "Skip extracting images")
	flags.Bool("overwrite", false, "Rewrite the files of an existing book folder")
	flags.Int("max-image-width", 0, "Downscale images wider than this many pixels (0 keeps originals)")
	flags.BoolP("verbose", "v", false, "Show detailed progress (same as --log-level debug)")
	flags.String("log-level", defaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", defaultLogFormat, "Log format: text, json")

	cmd.AddCommand(newInfoCmd())
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "info <file.epub>",
		Short:        "Show book metadata and chapters without converting",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(cmd.ErrOrStderr(), "warn", defaultLogFormat)
			info, err := converter.Inspect(args[0], logger)
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), info)
		},
	}
}

// readCLIOptions reads and validates the flags into conversion options.
func readCLIOptions(cmd *cobra.Command, args []string) (converter.ConvertOptions, error) {
	flags := cmd.Flags()
	outputDir, _ := flags.GetString("output")
	noImages, _ := flags.GetBool("no-images")
	overwrite, _ := flags.GetBool("overwrite")
	maxWidth, _ := flags.GetInt("max-image-width")
	verbose, _ := flags.GetBool("verbose")
	logLevel, _ := flags.GetString("log-level")
	logFormat, _ := flags.GetString("log-format")

	if maxWidth < 0 {
		return converter.ConvertOptions{}, fmt.Errorf("--max-image-width must be 0 or greater, got %d", maxWidth)
	}
	logLevel = strings.ToLower(logLevel)
	if _, ok := parseLogLevel(logLevel); !ok {
		return converter.ConvertOptions{}, fmt.Errorf("--log-level must be one of debug, info, warn, error, got %q", logLevel)
	}
	logFormat = strings.ToLower(logFormat)
	if logFormat != "text" && logFormat != "json" {
		return converter.ConvertOptions{}, fmt.Errorf("--log-format must be text or json, got %q", logFormat)
	}
	if verbose {
		logLevel = "debug"
	}

	return converter.ConvertOptions{
		InputPath:     args[0],
		OutputDir:     outputDir,
		NoImages:      noImages,
		Overwrite:     overwrite,
		MaxImageWidth: maxWidth,
		Logger:        buildLogger(cmd.ErrOrStderr(), logLevel, logFormat),
	}, nil
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, _ := parseLogLevel(level)
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func runSingle(out io.Writer, opts converter.ConvertOptions) error {
	res, err := converter.NewPipeline(opts).Convert()
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func runBatch(out io.Writer, dir string, opts converter.ConvertOptions) error {
	inputs, err := converter.FindEPUBs(dir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		noticeColor.Fprintf(out, "No EPUB files found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(out, "Found %d EPUB files to convert\n", len(inputs))

	report := converter.RunBatch(inputs, opts, func(it converter.BatchItem) {
		if it.Err != nil {
			failureColor.Fprint(out, "✗ ")
			fmt.Fprintf(out, "%s\n", describeError(it.Err))
			return
		}
		successColor.Fprint(out, "✓ ")
		fmt.Fprintf(out, "%s -> %s\n", it.Input, it.Result.Folder)
	})

	fmt.Fprintf(out, "\nConverted %d/%d\n", report.Succeeded(), len(report.Items))
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d conversions failed", n, len(report.Items))
	}
	return nil
}

func printResult(out io.Writer, res *converter.Result) {
	successColor.Fprintln(out, "✓ Successfully converted!")
	detailColor.Fprint(out, "Book saved to: ")
	fmt.Fprintln(out, res.Folder)
	detailColor.Fprintf(out, "Created %d markdown files\n", res.Chapters+2)
	if res.Images > 0 {
		detailColor.Fprintf(out, "Extracted %d images\n", res.Images)
	}
	if len(res.Warnings) > 0 {
		noticeColor.Fprintf(out, "%d warnings, see the log for details\n", len(res.Warnings))
	}
}

func printInfo(out io.Writer, info *converter.BookInfo) error {
	m := info.Metadata
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"Title", m.Title},
		{"Authors", strings.Join(m.Authors, ", ")},
		{"Publisher", m.Publisher},
		{"Language", m.Language},
		{"ISBN", m.ISBN},
		{"Identifier", m.Identifier},
		{"Date", m.Date},
		{"Subjects", strings.Join(m.Subjects, ", ")},
		{"Chapters", fmt.Sprint(len(info.Chapters))},
		{"Images", fmt.Sprint(info.Images)},
		{"Output folder", info.Folder},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", r.label, r.value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(info.Chapters) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nChapters:")
	for _, c := range info.Chapters[:min(len(info.Chapters), infoChapterLimit)] {
		fmt.Fprintf(out, "  %s\n", c.FileName())
	}
	if extra := len(info.Chapters) - infoChapterLimit; extra > 0 {
		fmt.Fprintf(out, "  ... and %d more\n", extra)
	}
	return nil
}

// describeError formats a conversion failure for the terminal.
func describeError(err error) string {
	var ce *converter.ConversionError
	if errors.As(err, &ce) {
		return fmt.Sprintf("%s (%s failed): %v", ce.Input, ce.Stage, ce.Err)
	}
	return err.Error()
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		failureColor.Fprint(cmd.ErrOrStderr(), "Error: ")
		fmt.Fprintln(cmd.ErrOrStderr(), describeError(err))
		os.Exit(1)
	}
}
