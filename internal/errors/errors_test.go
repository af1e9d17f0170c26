package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "usage error",
			code:    "U001",
			wantMsg: "Unsupported input type",
			wantCat: CategoryUsage,
		},
		{
			name:    "config error",
			code:    "U021",
			wantMsg: "Config file is malformed",
			wantCat: CategoryConfig,
		},
		{
			name:    "storage error",
			code:    "U060",
			wantMsg: "Object not found",
			wantCat: CategoryStorage,
		},
		{
			name:    "unknown error code",
			code:    "U999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "--url")
	if err.Message != `flag "--url" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestUrlkitError_Error(t *testing.T) {
	err := New("U001")
	if got, want := err.Error(), "U001: Unsupported input type"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("U001").Wrap(fmt.Errorf("got int"))
	if got, want := wrapped.Error(), "U001: Unsupported input type: got int"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &UrlkitError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestUrlkitError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "urlkit.json")
	content := "{\n  \"codec\": {\n    \"delimiter\": \"\"\n  }\n}\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("U022").WithLocation(tmpFile, 3, 5)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 3 || err.Location.Column != 5 {
		t.Errorf("Location = %v, want line 3 column 5", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestUrlkitError_WithInput(t *testing.T) {
	err := New("U001").WithInput("42", 1)
	if err.Location.File != InputSource {
		t.Errorf("File = %q, want %q", err.Location.File, InputSource)
	}
	if len(err.Context) != 1 || err.Context[0] != "42" {
		t.Errorf("Context = %v", err.Context)
	}
}

func TestUrlkitError_Wrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := New("U001").Wrap(sentinel)

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped sentinel")
	}
	if err.Unwrap() != sentinel {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "U001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ue := New("U001")
	if FromError(ue, "U002") != ue {
		t.Error("FromError should return UrlkitError as-is")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "U061")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Category != CategoryStorage {
		t.Errorf("Category = %q, want %q", result.Category, CategoryStorage)
	}
}

func TestCodeOfAndIsCategory(t *testing.T) {
	err := fmt.Errorf("handler: %w", New("U041"))

	if got := CodeOf(err); got != "U041" {
		t.Errorf("CodeOf = %q, want U041", got)
	}
	if !IsCategory(err, CategoryTransport) {
		t.Error("IsCategory(transport) = false")
	}
	if IsCategory(err, CategoryUsage) {
		t.Error("IsCategory(usage) = true")
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("CodeOf(plain) should be empty")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{
			name: "nil location",
			loc:  nil,
			want: "",
		},
		{
			name: "with column",
			loc:  &Location{File: "urlkit.json", Line: 10, Column: 5},
			want: "urlkit.json:10:5",
		},
		{
			name: "without column",
			loc:  &Location{File: "urlkit.json", Line: 10},
			want: "urlkit.json:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("U001").
		WithInput("true", 1).
		WithSuggestion("Pass a query string").
		Wrap(stderrors.New("got bool"))

	formatted := err.Format()

	for _, want := range []string{
		"U001",
		"Unsupported input type",
		"<input>:1:1",
		"Hint: Pass a query string",
		"Caused by: got bool",
		"Learn more:",
		"^",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatSanitizesControlCharacters(t *testing.T) {
	DisableColors()
	defer EnableColors()

	formatted := New("U001").WithInput("a\x1b[31mb", 1).Format()
	if strings.Contains(formatted, "\x1b") {
		t.Error("Format() should not echo raw escape characters from input")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("U003").WithInput("/a\\b", 3)
	if got, want := err.FormatCompact(), "<input>:1:3: U003: Invalid path"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	got := New("U001").Wrap(stderrors.New("got int")).FormatJSON()
	for _, want := range []string{`"code":"U001"`, `"category":"usage"`, `"cause":"got int"`} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatJSON() = %s, missing %s", got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) not found", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" || tmpl.DocURL == "" {
			t.Errorf("template %s is incomplete: %+v", code, tmpl)
		}
	}

	Register("U998", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	if New("U998").Message != "custom" {
		t.Error("Register should add the template")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("loading: %w", New("U020")))
	if !strings.Contains(buf.String(), "ERROR U020: Config file not found") {
		t.Errorf("Fprint() = %q, want the coded header", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if got, want := buf.String(), "\nERROR: plain\n\n"; got != want {
		t.Errorf("Fprint() = %q, want %q", got, want)
	}

	buf.Reset()
	Fprint(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("Fprint(nil) wrote %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"averyveryverylongword x", 5, []string{"averyveryverylongword", "x"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
