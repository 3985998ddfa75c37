package export

import (
	"encoding/json"
	"fmt"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// JSON RENDERER
// =============================================================================

// JSONRenderer renders a conversation as a machine-readable JSON document
// with exactly three top-level keys: export_metadata, conversation, and
// statistics. Output is pretty-printed with stable key ordering so repeated
// exports diff cleanly.
type JSONRenderer struct{}

// jsonDocument is the top-level export shape.
type jsonDocument struct {
	ExportMetadata jsonMetadata     `json:"export_metadata"`
	Conversation   []jsonMessage    `json:"conversation"`
	Statistics     model.Statistics `json:"statistics"`
}

// jsonMetadata carries the export timestamp, the format version, and all
// supplied conversation metadata.
type jsonMetadata struct {
	ExportedAt    string            `json:"exported_at"`
	FormatVersion string            `json:"format_version"`
	Title         string            `json:"title"`
	CreatedAt     string            `json:"created_at,omitempty"`
	Model         string            `json:"model,omitempty"`
	Mode          string            `json:"mode,omitempty"`
	Extras        map[string]string `json:"extras,omitempty"`
}

// jsonMessage is one exported record. MessageID is a 1-based sequential
// integer assigned at export time, not a stored field.
type jsonMessage struct {
	MessageID      int    `json:"message_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
	CharacterCount int    `json:"character_count"`
	WordCount      int    `json:"word_count"`
}

// Render converts a conversation to JSON.
func (r *JSONRenderer) Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error) {
	doc := jsonDocument{
		ExportMetadata: jsonMetadata{
			ExportedAt:    exportedAt.Format(time.RFC3339),
			FormatVersion: FormatVersion,
			Title:         conv.GetTitle(),
			Model:         conv.Model,
			Mode:          conv.Mode,
			Extras:        conv.Extras,
		},
		Conversation: make([]jsonMessage, 0, len(conv.Messages)),
		Statistics:   stats,
	}
	if !conv.CreatedAt.IsZero() {
		doc.ExportMetadata.CreatedAt = conv.CreatedAt.Format(time.RFC3339)
	}

	for i, msg := range conv.Messages {
		if !msg.Role.Valid() {
			return nil, &RenderError{Format: FormatJSON, RecordIndex: i, Err: fmt.Errorf("%w: %q", model.ErrInvalidRole, msg.Role)}
		}
		doc.Conversation = append(doc.Conversation, jsonMessage{
			MessageID:      i + 1,
			Role:           msg.Role.String(),
			Content:        msg.Content,
			Timestamp:      msg.Timestamp.Format(time.RFC3339),
			CharacterCount: msg.CharacterCount(),
			WordCount:      msg.WordCount(),
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &RenderError{Format: FormatJSON, RecordIndex: -1, Err: err}
	}
	return out, nil
}
