package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"clarity/internal/span"
)

// Level is the severity of a rendered diagnostic.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
	LevelHelp    Level = "help"
)

// Diagnostic is a structured, renderable error with optional suggestions.
type Diagnostic struct {
	Level       Level
	Code        string
	Message     string
	Position    span.Position
	Length      int
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Suggestion is one proposed fix attached to a Diagnostic.
type Suggestion struct {
	Message     string
	Replacement string
}

// Reporter renders Diagnostics against a known source file, Rust-compiler
// style: a caret under the offending span plus context lines.
type Reporter struct {
	filename string
	lines    []string
}

func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		fmt.Fprintf(&out, "%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message)
	} else {
		fmt.Fprintf(&out, "%s: %s\n", levelColor(string(d.Level)), d.Message)
	}

	width := r.lineNumberWidth(d.Position.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&out, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Position.Line, d.Position.Column)
	fmt.Fprintf(&out, "%s %s\n", indent, dim("│"))

	if d.Position.Line > 1 && d.Position.Line-1 <= len(r.lines) {
		fmt.Fprintf(&out, "%s %s %s\n", dim(fmt.Sprintf("%*d", width, d.Position.Line-1)), dim("│"), r.lines[d.Position.Line-2])
	}

	if d.Position.Line >= 1 && d.Position.Line <= len(r.lines) {
		fmt.Fprintf(&out, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, d.Position.Line)), dim("│"), r.lines[d.Position.Line-1])
		fmt.Fprintf(&out, "%s %s %s\n", indent, dim("│"), r.marker(d.Position.Column, d.Length, d.Level))
	}

	if d.Position.Line < len(r.lines) {
		fmt.Fprintf(&out, "%s %s %s\n", dim(fmt.Sprintf("%*d", width, d.Position.Line+1)), dim("│"), r.lines[d.Position.Line])
	}

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&out, "%s %s\n", indent, dim("│"))
		cyan := color.New(color.FgCyan).SprintFunc()
		for i, s := range d.Suggestions {
			if i == 0 {
				fmt.Fprintf(&out, "%s %s %s: %s\n", indent, cyan("help"), cyan("try"), s.Message)
			} else {
				fmt.Fprintf(&out, "%s %s %s\n", indent, cyan("    "), s.Message)
			}
		}
	}

	for _, note := range d.Notes {
		blue := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", indent, dim("│"), blue("note:"), note)
	}

	if d.HelpText != "" {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", indent, dim("│"), green("help:"), d.HelpText)
	}

	out.WriteString("\n")
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case LevelWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case LevelNote:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case LevelHelp:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max0(column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == LevelWarning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max0(a int) int {
	if a > 0 {
		return a
	}
	return 0
}

// FromParseError renders a ParseError as a Diagnostic.
func FromParseError(e *ParseError) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Code:     "P" + fmt.Sprintf("%04d", int(e.Kind)),
		Message:  e.Error(),
		Position: e.Span.Start,
		Length:   e.Span.End.Column - e.Span.Start.Column + 1,
	}
}

// FromCheckError renders a CheckError as a Diagnostic.
func FromCheckError(e *CheckError) Diagnostic {
	return Diagnostic{
		Level:    LevelError,
		Code:     "C" + fmt.Sprintf("%04d", int(e.Kind)),
		Message:  e.Error(),
		Position: e.Span.Start,
		Length:   e.Span.End.Column - e.Span.Start.Column + 1,
	}
}
