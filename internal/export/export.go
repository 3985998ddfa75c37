// Package export renders conversations into serialized blobs in multiple
// formats. Rendering is a pure function of the record sequence: no I/O, no
// shared state, safe for concurrent use.
package export

import (
	"fmt"
	"time"

	"chatexport/internal/model"
)

// FormatVersion is the format version string embedded in machine-readable
// exports.
const FormatVersion = "1.0"

// =============================================================================
// FORMAT TYPE
// =============================================================================

// Format identifies an export format.
type Format string

const (
	FormatTXT      Format = "txt"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat maps a format identifier to a Format. Common aliases are
// accepted; anything else is a validation error.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "txt", "text":
		return FormatTXT, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", newValidationError(fmt.Errorf("%w: %q", ErrUnsupportedFormat, s))
	}
}

// Valid reports whether the format is a supported export format.
func (f Format) Valid() bool {
	switch f {
	case FormatTXT, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// String returns the format identifier.
func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension for the format (with leading dot).
func (f Format) Extension() string {
	return "." + string(f)
}

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatTXT:
		return "text/plain"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	case FormatHTML:
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatTXT, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}
}

// =============================================================================
// RENDERER INTERFACE
// =============================================================================

// Renderer converts a conversation plus its aggregated statistics into a
// serialized blob for one specific format. Renderers are stateless and
// perform no I/O.
type Renderer interface {
	Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error)
}

// rendererFor returns the renderer for a supported format.
func rendererFor(format Format) Renderer {
	switch format {
	case FormatTXT:
		return &TXTRenderer{}
	case FormatJSON:
		return &JSONRenderer{}
	case FormatCSV:
		return &CSVRenderer{}
	case FormatMarkdown:
		return &MarkdownRenderer{}
	case FormatHTML:
		return &HTMLRenderer{}
	default:
		return nil
	}
}

// =============================================================================
// EXPORT RESULT
// =============================================================================

// Result is the outcome of a successful export.
type Result struct {
	// Content is the serialized blob.
	Content []byte

	// Filename is a deterministic, filesystem-safe suggested filename.
	Filename string

	// MimeType is the MIME type matching the format.
	MimeType string

	// Format is the format that produced the content.
	Format Format
}

// =============================================================================
// EXPORT FACADE
// =============================================================================

// Export renders the conversation in the requested format and returns the
// blob together with a suggested filename and MIME type. It never writes to
// disk; the caller owns persistence.
//
// An empty conversation is valid input and produces an export with zero
// messages and zero-valued statistics.
func Export(conv *model.Conversation, format Format) (*Result, error) {
	return ExportAt(conv, format, time.Now())
}

// ExportAs is a convenience wrapper accepting a string format identifier.
func ExportAs(conv *model.Conversation, format string) (*Result, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return Export(conv, f)
}

// ExportAt renders with an explicit export timestamp. Two calls with
// identical input and the same timestamp yield byte-identical output.
func ExportAt(conv *model.Conversation, format Format, exportedAt time.Time) (*Result, error) {
	if !format.Valid() {
		return nil, newValidationError(fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}
	if conv == nil {
		return nil, newValidationError(ErrNilConversation)
	}
	if idx, err := conv.Validate(); err != nil {
		return nil, &ValidationError{RecordIndex: idx, Err: err}
	}

	stats := model.Aggregate(conv.Messages)

	content, err := rendererFor(format).Render(conv, stats, exportedAt)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s_%s%s",
		sanitizeFilename(conv.GetTitle()),
		format,
		exportedAt.Format("20060102_150405"),
		format.Extension(),
	)

	return &Result{
		Content:  content,
		Filename: filename,
		MimeType: format.MimeType(),
		Format:   format,
	}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in
// filenames on Windows and Unix.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}

	return string(result)
}

// formatTimestamp formats a timestamp for human-readable display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// formatDurationSeconds formats whole seconds as a human-readable duration.
func formatDurationSeconds(secs int64) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	minutes := secs / 60
	remaining := secs % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, remaining)
	}
	hours := minutes / 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, remaining)
}
