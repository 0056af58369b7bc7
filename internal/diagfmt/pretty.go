// Package diagfmt renders collected diagnostics for the terminal.
//
// Each diagnostic prints as
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the offending source line with a caret run under the
// span, then any notes in the same shape. Callers should bag.Sort()
// first.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"paw/internal/diag"
	"paw/internal/source"
)

// Options controls rendering.
type Options struct {
	Color   bool
	Context bool // print the source line and caret run
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	caretColor   = color.New(color.FgGreen, color.Bold)
	pathColor    = color.New(color.Bold)
)

// Pretty writes every diagnostic in bag to w.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts Options) {
	for _, d := range bag.Items() {
		writeDiagnostic(w, fs, d, opts)
	}
}

func writeDiagnostic(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts Options) {
	writeHeader(w, fs, d.Severity, d.Code.String(), d.Primary, d.Message, opts)
	if opts.Context {
		writeContext(w, fs, d.Primary, opts)
	}
	for _, note := range d.Notes {
		writeHeader(w, fs, diag.SevInfo, "note", note.Span, note.Msg, opts)
		if opts.Context {
			writeContext(w, fs, note.Span, opts)
		}
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, sev diag.Severity, code string, sp source.Span, msg string, opts Options) {
	location := formatLocation(fs, sp)
	sevText := sev.String()
	if opts.Color {
		location = pathColor.Sprint(location)
		sevText = severityColor(sev).Sprint(sevText)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", location, sevText, code, msg)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func formatLocation(fs *source.FileSet, sp source.Span) string {
	file, ok := fs.Get(sp.File)
	if !ok {
		return "<unknown>"
	}
	pos, ok := fs.Position(sp.File, sp.Start)
	if !ok {
		return file.Path
	}
	return fmt.Sprintf("%s:%d:%d", file.Path, pos.Line, pos.Col)
}

// writeContext prints the source line and a caret run aligned under the
// span. Alignment goes through display widths so tabs and wide runes
// do not skew the carets.
func writeContext(w io.Writer, fs *source.FileSet, sp source.Span, opts Options) {
	pos, ok := fs.Position(sp.File, sp.Start)
	if !ok {
		return
	}
	line := fs.Line(sp.File, pos.Line)
	if line == "" {
		return
	}
	text := strings.TrimRight(line, "\r\n")
	fmt.Fprintf(w, "  %s\n", text)

	prefix := text
	if int(pos.Col)-1 <= len(text) {
		prefix = text[:pos.Col-1]
	}
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))

	spanLen := int(sp.Len())
	if spanLen <= 0 {
		spanLen = 1
	}
	marked := text[len(prefix):]
	if spanLen < len(marked) {
		marked = marked[:spanLen]
	}
	caretWidth := runewidth.StringWidth(marked)
	if caretWidth < 1 {
		caretWidth = 1
	}
	carets := "^" + strings.Repeat("~", caretWidth-1)
	if opts.Color {
		carets = caretColor.Sprint(carets)
	}
	fmt.Fprintf(w, "  %s%s\n", pad, carets)
}
