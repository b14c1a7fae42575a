package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
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
			name:    "structural error",
			code:    "R001",
			wantMsg: "Invalid view node type",
			wantCat: CategoryStructural,
		},
		{
			name:    "render error",
			code:    "R020",
			wantMsg: "Component render failed",
			wantCat: CategoryRender,
		},
		{
			name:    "validation error",
			code:    "R041",
			wantMsg: "Invalid style declaration",
			wantCat: CategoryValidation,
		},
		{
			name:    "unknown error code",
			code:    "R999",
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

func TestError_Error(t *testing.T) {
	err := New("R003")
	if got, want := err.Error(), "R003: Element is not a component host"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = New("R003").WithDetail("<section>")
	if got, want := err.Error(), "R003: Element is not a component host: <section>"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "reconcile.json")
	if err.Message != `file "reconcile.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New("R020").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q, should mention the cause", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R020") != nil {
		t.Error("FromError(nil) should be nil")
	}

	original := New("R004")
	if got := FromError(fmt.Errorf("ctx: %w", original), "R020"); got != original {
		t.Error("FromError should return an existing *Error from the chain")
	}

	plain := stderrors.New("plain")
	got := FromError(plain, "R060")
	if got.Code != "R060" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestIs(t *testing.T) {
	inner := New("R021")
	outer := New("R020").Wrap(inner)

	if !Is(outer, "R020") {
		t.Error("Is(outer, R020) = false")
	}
	if !Is(outer, "R021") {
		t.Error("Is(outer, R021) = false, want true through the chain")
	}
	if Is(outer, "R001") {
		t.Error("Is(outer, R001) = true")
	}
	if Is(stderrors.New("x"), "R001") {
		t.Error("Is(plain) = true")
	}
}

func TestCategoryOf(t *testing.T) {
	if got := CategoryOf(fmt.Errorf("wrap: %w", New("R040"))); got != CategoryValidation {
		t.Errorf("CategoryOf = %q, want validation", got)
	}
	if got := CategoryOf(stderrors.New("x")); got != "" {
		t.Errorf("CategoryOf(plain) = %q", got)
	}
}

func TestFieldsAndLogArgs(t *testing.T) {
	err := New("R020").With("component", "Card").With("host", "3")
	if err.Field("component") != "Card" {
		t.Errorf("Field(component) = %v", err.Field("component"))
	}
	if err.Field("missing") != nil {
		t.Error("Field(missing) should be nil")
	}
	args := err.LogArgs()
	want := []any{"code", "R020", "component", "Card", "host", "3"}
	if len(args) != len(want) {
		t.Fatalf("LogArgs() = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("LogArgs()[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R003").
		With("tag", "section").
		WithSuggestion("Render the element from a component node")
	out := err.Format()

	for _, want := range []string{
		"ERROR R003: Element is not a component host",
		"q:host marker attribute",
		"tag: section",
		"Hint: Render the element from a component node",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("R041").With("property", "colr")
	if got, want := err.FormatCompact(), "R041: Invalid style declaration property=colr"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New("R006"))
	if !strings.Contains(buf.String(), "R006") {
		t.Errorf("Print() = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("Print(plain) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q longer than width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestRegistryCodesHaveCategories(t *testing.T) {
	for _, code := range Codes() {
		tmpl, ok := Lookup(code)
		if !ok {
			t.Fatalf("Lookup(%s) failed", code)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("code %s has empty category or message", code)
		}
	}
}
