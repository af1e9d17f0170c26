package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage     Category = "usage"
	CategoryConfig    Category = "config"
	CategoryTransport Category = "transport"
	CategoryStorage   Category = "storage"
	CategoryCLI       Category = "cli"
)

// InputSource is the Location.File value used for errors raised against an
// in-memory input rather than a file.
const InputSource = "<input>"

// Location points at a line and column inside a file or an input string.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// UrlkitError is a structured error with an optional location and hint.
type UrlkitError struct {
	// Code is a unique error identifier (e.g., "U001").
	Code string

	// Category is the error type (usage, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred, if known.
	Location *Location

	// Context holds the lines surrounding Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *UrlkitError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *UrlkitError) Unwrap() error {
	return e.Wrapped
}

// WithLocation points the error at a line of a file and loads the lines around it.
func (e *UrlkitError) WithLocation(file string, line, column int) *UrlkitError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithInput points the error at a 1-based column of a single-line input.
func (e *UrlkitError) WithInput(input string, column int) *UrlkitError {
	e.Location = &Location{File: InputSource, Line: 1, Column: column}
	e.Context = []string{input}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *UrlkitError) WithSuggestion(s string) *UrlkitError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *UrlkitError) WithDetail(d string) *UrlkitError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *UrlkitError) Wrap(err error) *UrlkitError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an error from a registered code.
func New(code string) *UrlkitError {
	template, ok := registry[code]
	if !ok {
		return &UrlkitError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &UrlkitError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *UrlkitError {
	return &UrlkitError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under code. Errors that already are
// *UrlkitError are returned unchanged.
func FromError(err error, code string) *UrlkitError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UrlkitError); ok {
		return ue
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first *UrlkitError in err's chain, or "".
func CodeOf(err error) string {
	for err != nil {
		if ue, ok := err.(*UrlkitError); ok {
			return ue.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsCategory reports whether err's chain holds a *UrlkitError of category c.
func IsCategory(err error, c Category) bool {
	for err != nil {
		if ue, ok := err.(*UrlkitError); ok && ue.Category == c {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// sanitizeInput keeps context lines printable when they come from user input.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '?'
		}
		return r
	}, s)
}
