package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// detailWidth is the column at which Detail is wrapped.
const detailWidth = 70

// Styles used for terminal output.
const (
	styleReset  = "\033[0m"
	styleRed    = "\033[31m"
	styleYellow = "\033[33m"
	styleBlue   = "\033[34m"
	styleCyan   = "\033[36m"
	styleGray   = "\033[90m"
	styleBold   = "\033[1m"
)

var noColor atomic.Bool

// DisableColors turns off ANSI styling in Format and PrintError.
func DisableColors() {
	noColor.Store(true)
}

// EnableColors turns ANSI styling back on.
func EnableColors() {
	noColor.Store(false)
}

func paint(style, text string) string {
	if noColor.Load() || text == "" {
		return text
	}
	return style + text + styleReset
}

// Format renders the error for a terminal: a header, the offending source
// with a caret, the detail, the cause, a hint and the doc link.
func (e *UrlkitError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeader(&b)
	e.writeSource(&b)
	e.writeBody(&b)
	return b.String()
}

func (e *UrlkitError) writeHeader(b *strings.Builder) {
	label := "ERROR: "
	if e.Code != "" {
		label = "ERROR " + e.Code + ": "
	}
	b.WriteString(paint(styleRed+styleBold, label))
	b.WriteString(e.Message)
	b.WriteString("\n\n")
}

// writeSource prints Location and the Context lines around it. Context is
// centered on Location.Line.
func (e *UrlkitError) writeSource(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	fmt.Fprintf(b, "  %s\n\n", paint(styleCyan, e.Location.String()))
	if len(e.Context) == 0 {
		return
	}

	first := e.Location.Line - len(e.Context)/2
	if first < 1 {
		first = 1
	}
	gutter := paint(styleGray, " │ ")
	for i, text := range e.Context {
		n := first + i
		marker := "  "
		if n == e.Location.Line {
			marker = paint(styleRed, "→ ")
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", marker, n, gutter, sanitizeInput(text))
		if n == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "  %s    %s%s%s\n", "  ", gutter, strings.Repeat(" ", e.Location.Column-1), paint(styleRed, "^"))
		}
	}
	b.WriteString("\n")
}

func (e *UrlkitError) writeBody(b *strings.Builder) {
	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(b, "  %s\n", sanitizeInput(line))
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(b, "  %s%s\n\n", paint(styleYellow, "Caused by: "), sanitizeInput(e.Wrapped.Error()))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(b, "  %s%s\n\n", paint(styleCyan, "Hint: "), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(b, "  %s%s\n", paint(styleGray, "Learn more: "), paint(styleBlue, e.DocURL))
	}
}

// FormatCompact returns "location: code: message" on a single line.
func (e *UrlkitError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Cause      string        `json:"cause,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	DocURL     string        `json:"docUrl,omitempty"`
}

// FormatJSON returns the error as a single JSON object.
func (e *UrlkitError) FormatJSON() string {
	v := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		v.Cause = e.Wrapped.Error()
	}
	if l := e.Location; l != nil {
		v.Location = &jsonLocation{File: l.File, Line: l.Line, Column: l.Column}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText splits text into lines of at most width bytes on word
// boundaries. Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Fprint writes err to w: the full Format for a *UrlkitError anywhere in
// the chain, a one-line message otherwise.
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	for e := err; e != nil; {
		if ue, ok := e.(*UrlkitError); ok {
			fmt.Fprint(w, ue.Format())
			return
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	fmt.Fprintf(w, "\n%s%s\n\n", paint(styleRed+styleBold, "ERROR: "), sanitizeInput(err.Error()))
}

// PrintError writes err to stderr with Fprint.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
