// Package ui renders pgtc's CLI output: plain status lines plus
// query/file-scoped diagnostics for generate/check. Color is auto-detected
// from the destination file descriptor (pkg/logger.IsTTY) rather than a
// manual --no-color flag, since pgtc has no other use for manual color
// overrides.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/riftdata/pgtc/internal/pgerr"
	"github.com/riftdata/pgtc/pkg/logger"
)

// Output handles formatted CLI output to a single writer.
type Output struct {
	writer  io.Writer
	noColor bool
	quiet   bool
}

// NewOutput creates an Output writing to w, auto-detecting color support
// when w is an *os.File.
func NewOutput(w io.Writer, quiet bool) *Output {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !logger.IsTTY(f)
	}
	return &Output{writer: w, noColor: noColor, quiet: quiet}
}

// Print prints a plain message.
func (o *Output) Print(msg string) {
	if o.quiet {
		return
	}
	fmt.Fprintln(o.writer, msg)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	if o.quiet {
		return
	}
	fmt.Fprintf(o.writer, format+"\n", args...)
}

// Error prints a top-level error message, ignoring quiet (errors are
// never suppressed).
func (o *Output) Error(msg string) {
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %s\n", IconError, msg)
		return
	}
	fmt.Fprintln(o.writer, Error.Render(IconError)+" "+Error.Render(msg))
}

// Success prints a success message.
func (o *Output) Success(msg string) {
	if o.quiet {
		return
	}
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %s\n", IconSuccess, msg)
		return
	}
	fmt.Fprintln(o.writer, Success.Render(IconSuccess)+" "+msg)
}

// Warning prints a warning message — used for the array-element-OID
// fallback-to-text notice (one per distinct OID per run).
func (o *Output) Warning(msg string) {
	if o.quiet {
		return
	}
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %s\n", IconWarning, msg)
		return
	}
	fmt.Fprintln(o.writer, Warning.Render(IconWarning)+" "+Warning.Render(msg))
}

// Info prints an informational message.
func (o *Output) Info(msg string) {
	if o.quiet {
		return
	}
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %s\n", IconInfo, msg)
		return
	}
	fmt.Fprintln(o.writer, Info.Render(IconInfo)+" "+msg)
}

// Title prints a section title.
func (o *Output) Title(msg string) {
	if o.quiet {
		return
	}
	if o.noColor {
		fmt.Fprintf(o.writer, "\n%s\n%s\n", msg, strings.Repeat("=", len(msg)))
		return
	}
	fmt.Fprintln(o.writer, Title.Render(msg))
}

// QueryError prints a single query's Parse/Describe failure, scoped to its
// source file and query name.
func (o *Output) QueryError(err *pgerr.QueryError) {
	loc := fmt.Sprintf("%s:%s", err.File, err.Name)
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %s\n", IconError, loc)
	} else {
		fmt.Fprintln(o.writer, Error.Render(IconError)+" "+FilePath.Render(err.File)+":"+QueryName.Render(err.Name))
	}
	if err.Code != "" {
		o.keyValue("code", err.Code)
	}
	o.keyValue("message", err.Message)
	if err.Detail != "" {
		o.keyValue("detail", err.Detail)
	}
	if err.Hint != "" {
		o.keyValue("hint", err.Hint)
	}
	if err.Position > 0 {
		o.keyValue("position", fmt.Sprintf("%d", err.Position))
	}
}

func (o *Output) keyValue(key, value string) {
	if o.noColor {
		fmt.Fprintf(o.writer, "    %s: %s\n", key, value)
		return
	}
	fmt.Fprintf(o.writer, "    %s: %s\n", Muted.Render(key), value)
}

// Summary prints a one-line run summary for generate/check.
func (o *Output) Summary(filesScanned, queriesGenerated, errorCount int) {
	if errorCount == 0 {
		o.Success(fmt.Sprintf("%d queries from %d files", queriesGenerated, filesScanned))
		return
	}
	if o.noColor {
		fmt.Fprintf(o.writer, "%s %d queries from %d files, %d error(s)\n", IconError, queriesGenerated, filesScanned, errorCount)
		return
	}
	fmt.Fprintln(o.writer, Error.Render(IconError)+" "+Error.Render(fmt.Sprintf("%d queries from %d files, %d error(s)", queriesGenerated, filesScanned, errorCount)))
}

// Box prints content inside a bordered box.
func (o *Output) Box(content string) {
	if o.quiet {
		return
	}
	if o.noColor {
		lines := strings.Split(content, "\n")
		maxLen := 0
		for _, line := range lines {
			if len(line) > maxLen {
				maxLen = len(line)
			}
		}
		border := strings.Repeat("─", maxLen+2)
		fmt.Fprintf(o.writer, "┌%s┐\n", border)
		for _, line := range lines {
			fmt.Fprintf(o.writer, "│ %s │\n", padRight(line, maxLen))
		}
		fmt.Fprintf(o.writer, "└%s┘\n", border)
		return
	}
	fmt.Fprintln(o.writer, BoxStyle.Render(content))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
