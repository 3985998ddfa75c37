package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"chatexport/internal/model"
)

// testConversation builds the two-message conversation used across tests.
func testConversation() *model.Conversation {
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	return &model.Conversation{
		ID:        "conv_test",
		Title:     "Greeting",
		Model:     "test-model",
		CreatedAt: base,
		UpdatedAt: base.Add(5 * time.Second),
		Messages: []*model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "Hi", Timestamp: base},
			{ID: "m2", Role: model.RoleAssistant, Content: "Hello!\nHow can I help?", Timestamp: base.Add(5 * time.Second)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"txt", FormatTXT, true},
		{"text", FormatTXT, true},
		{"json", FormatJSON, true},
		{"csv", FormatCSV, true},
		{"md", FormatMarkdown, true},
		{"markdown", FormatMarkdown, true},
		{"html", FormatHTML, true},
		{"pdf", "", false},
		{"", "", false},
		{"TXT", "", false},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok {
			if err != nil {
				t.Errorf("ParseFormat(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		} else {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			}
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
			}
		}
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := ExportAs(testConversation(), "pdf")
	if err == nil {
		t.Fatal("expected error for pdf format")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExportNilConversation(t *testing.T) {
	_, err := Export(nil, FormatJSON)
	if !errors.Is(err, ErrNilConversation) {
		t.Errorf("expected ErrNilConversation, got %v", err)
	}
}

func TestExportInvalidRoleReportsIndex(t *testing.T) {
	conv := testConversation()
	conv.Messages[1].Role = "tool"

	_, err := Export(conv, FormatTXT)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.RecordIndex != 1 {
		t.Errorf("RecordIndex = %d, want 1", verr.RecordIndex)
	}
}

func TestExportEmptyConversation(t *testing.T) {
	conv := &model.Conversation{ID: "empty", Title: "Empty"}

	for _, format := range Formats() {
		result, err := Export(conv, format)
		if err != nil {
			t.Errorf("Export(empty, %s) failed: %v", format, err)
			continue
		}
		if len(result.Content) == 0 {
			t.Errorf("Export(empty, %s) produced no content", format)
		}
	}
}

func TestExportFilename(t *testing.T) {
	exportedAt := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	result, err := ExportAt(testConversation(), FormatCSV, exportedAt)
	if err != nil {
		t.Fatal(err)
	}

	want := "Greeting_csv_20240115_143000.csv"
	if result.Filename != want {
		t.Errorf("Filename = %q, want %q", result.Filename, want)
	}
	if result.MimeType != "text/csv" {
		t.Errorf("MimeType = %q, want text/csv", result.MimeType)
	}
}

func TestExportIdempotent(t *testing.T) {
	exportedAt := time.Now()
	conv := testConversation()

	for _, format := range Formats() {
		a, err := ExportAt(conv, format, exportedAt)
		if err != nil {
			t.Fatalf("first export (%s): %v", format, err)
		}
		b, err := ExportAt(conv, format, exportedAt)
		if err != nil {
			t.Fatalf("second export (%s): %v", format, err)
		}
		if !bytes.Equal(a.Content, b.Content) {
			t.Errorf("%s export not byte-identical across calls", format)
		}
	}
}

func TestMimeTypes(t *testing.T) {
	tests := map[Format]string{
		FormatTXT:      "text/plain",
		FormatJSON:     "application/json",
		FormatCSV:      "text/csv",
		FormatMarkdown: "text/markdown",
		FormatHTML:     "text/html",
	}
	for format, want := range tests {
		if got := format.MimeType(); got != want {
			t.Errorf("%s.MimeType() = %q, want %q", format, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		mustNot  []string
		mustHave []string
	}{
		{
			input:    "Test/Path\\Name:With*Special?Chars",
			mustNot:  []string{"/", "\\", ":", "*", "?"},
			mustHave: []string{"-"},
		},
		{
			input:    "Test With Spaces\tAnd\nNewlines\r",
			mustNot:  []string{" ", "\t", "\n", "\r"},
			mustHave: []string{"_"},
		},
		{
			input:    "Test\x00\x01\x1fControl\x7fChars",
			mustNot:  []string{"\x00", "\x01", "\x1f", "\x7f"},
			mustHave: []string{"-"},
		},
	}

	for _, tt := range tests {
		result := sanitizeFilename(tt.input)
		for _, s := range tt.mustNot {
			if strings.Contains(result, s) {
				t.Errorf("sanitizeFilename(%q) contains forbidden %q: %q", tt.input, s, result)
			}
		}
		for _, s := range tt.mustHave {
			if !strings.Contains(result, s) {
				t.Errorf("sanitizeFilename(%q) should contain %q: %q", tt.input, s, result)
			}
		}
	}

	if got := sanitizeFilename(""); got != "conversation" {
		t.Errorf("sanitizeFilename(\"\") = %q, want conversation", got)
	}
}
