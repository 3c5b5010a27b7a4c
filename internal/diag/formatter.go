package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // Cache of source files by filename

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	noteStyle    lipgloss.Style
	gutterStyle  lipgloss.Style
	caretStyle   lipgloss.Style
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithColor toggles terminal styling.
func WithColor(enabled bool) FormatterOption {
	return func(f *Formatter) {
		if enabled {
			return
		}
		f.errorStyle = lipgloss.NewStyle()
		f.warningStyle = lipgloss.NewStyle()
		f.noteStyle = lipgloss.NewStyle()
		f.gutterStyle = lipgloss.NewStyle()
		f.caretStyle = lipgloss.NewStyle()
	}
}

// NewFormatter creates a new diagnostic formatter writing to out.
// A nil writer means stderr.
func NewFormatter(out io.Writer, opts ...FormatterOption) *Formatter {
	if out == nil {
		out = os.Stderr
	}
	f := &Formatter{
		out:          out,
		sourceCache:  make(map[string]string),
		errorStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warningStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		noteStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		gutterStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		caretStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddSource registers in-memory source text for a filename.
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format writes a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	src, err := f.LoadSource(d.Span.Filename)
	if err != nil || src == "" {
		f.formatSimple(d)
		return
	}

	spans := f.collectSpans(d, src)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	f.printHeader(d)
	f.printFileSpans(d.Span.Filename, src, spans)
	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic, src string) []LabeledSpan {
	spans := d.LabeledSpans
	if len(spans) == 0 {
		spans = []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	resolved := make([]LabeledSpan, 0, len(spans))
	for _, span := range spans {
		span.Span = span.Span.Resolve(src)
		if span.Span.IsValid() {
			resolved = append(resolved, span)
		}
	}
	return resolved
}

func (f *Formatter) severityStyle(s Severity) lipgloss.Style {
	switch s {
	case SeverityWarning:
		return f.warningStyle
	case SeverityNote:
		return f.noteStyle
	default:
		return f.errorStyle
	}
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}
	if d.Code != "" {
		severity = fmt.Sprintf("%s[%s]", severity, d.Code)
	}
	fmt.Fprintf(f.out, "%s: %s\n", f.severityStyle(d.Severity).Render(severity), d.Message)
}

// printFileSpans prints source code with underlines for spans in a file.
func (f *Formatter) printFileSpans(filename string, src string, spans []LabeledSpan) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	lines := strings.Split(src, "\n")
	spansByLine := make(map[int][]LabeledSpan)
	for _, span := range spans {
		if span.Span.Line <= len(lines) {
			spansByLine[span.Span.Line] = append(spansByLine[span.Span.Line], span)
		}
	}
	if len(spansByLine) == 0 {
		return
	}

	startLine := spans[0].Span.Line
	endLine := spans[len(spans)-1].Span.Line

	// One line of context on each side.
	contextStart := max(1, startLine-1)
	contextEnd := min(len(lines), endLine+1)

	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))
	gutter := f.gutterStyle.Render(strings.Repeat(" ", lineNumWidth+1) + "|")

	fmt.Fprintf(f.out, "  %s %s:%d:%d\n", f.gutterStyle.Render("-->"), filename, startLine, spans[0].Span.Column)
	fmt.Fprintf(f.out, "  %s\n", gutter)

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := lines[lineNum-1]
		num := f.gutterStyle.Render(fmt.Sprintf("%*d |", lineNumWidth, lineNum))
		fmt.Fprintf(f.out, " %s %s\n", num, lineContent)

		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			f.printUnderlines(gutter, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(f.out, "  %s\n", gutter)
}

// printUnderlines prints ^ under primary spans and ~ under secondary ones.
func (f *Formatter) printUnderlines(gutter string, lineContent string, spans []LabeledSpan) {
	underline := []byte(strings.Repeat(" ", len(lineContent)+1))

	mark := func(span LabeledSpan, ch byte) {
		start := max(0, span.Span.Column-1)
		end := min(len(underline), start+max(1, span.Span.End-span.Span.Start))
		for i := start; i < end; i++ {
			if underline[i] == ' ' {
				underline[i] = ch
			}
		}
	}
	for _, span := range spans {
		if span.Style == "primary" {
			mark(span, '^')
		}
	}
	for _, span := range spans {
		if span.Style != "primary" {
			mark(span, '~')
		}
	}

	var labels []string
	for _, span := range spans {
		if span.Label != "" {
			labels = append(labels, span.Label)
		}
	}

	text := strings.TrimRight(string(underline), " ")
	if len(labels) > 0 {
		text += " " + strings.Join(labels, "; ")
	}
	fmt.Fprintf(f.out, "  %s %s\n", gutter, f.caretStyle.Render(text))
}

// printHelp prints notes and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  = %s %s\n", f.noteStyle.Render("note:"), note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "%s %s\n", f.noteStyle.Render("help:"), d.Help)
	}
}

// formatSimple formats a diagnostic without source code (fallback).
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	fmt.Fprintf(f.out, "  %s %s\n", f.gutterStyle.Render("-->"), d.Span.String())
	f.printHelp(d)
}
