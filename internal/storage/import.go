package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// JSON IMPORT
// =============================================================================

// importedMessage is the record shape accepted on import.
type importedMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// importedDocument matches the engine's own JSON export shape.
type importedDocument struct {
	ExportMetadata struct {
		Title     string            `json:"title"`
		CreatedAt string            `json:"created_at"`
		Model     string            `json:"model"`
		Mode      string            `json:"mode"`
		Extras    map[string]string `json:"extras"`
	} `json:"export_metadata"`
	Conversation []importedMessage `json:"conversation"`
}

// timestampLayouts are the accepted timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ImportJSON reads a conversation from JSON. Two shapes are accepted: the
// engine's own export document (export_metadata + conversation) and a bare
// array of {role, content, timestamp} records. The returned conversation is
// not yet saved.
func ImportJSON(r io.Reader) (*model.Conversation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	conv := model.NewConversation()

	var records []importedMessage
	if err := json.Unmarshal(data, &records); err != nil {
		// Not a bare array; try the full export document.
		var doc importedDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		if doc.Conversation == nil {
			return nil, fmt.Errorf("parse JSON: no conversation records found")
		}
		records = doc.Conversation
		conv.Title = doc.ExportMetadata.Title
		conv.Model = doc.ExportMetadata.Model
		conv.Mode = doc.ExportMetadata.Mode
		conv.Extras = doc.ExportMetadata.Extras
		if doc.ExportMetadata.CreatedAt != "" {
			if t, err := parseTimestamp(doc.ExportMetadata.CreatedAt); err == nil {
				conv.CreatedAt = t
			}
		}
	}

	for i, rec := range records {
		role := model.Role(rec.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("record %d: %w: %q", i, model.ErrInvalidRole, rec.Role)
		}
		ts, err := parseTimestamp(rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		msg := model.NewMessage(role, rec.Content)
		msg.Timestamp = ts
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, nil
}

// parseTimestamp tries each accepted layout in order.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
