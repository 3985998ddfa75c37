package export

import (
	"fmt"
	"strings"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// TXT RENDERER
// =============================================================================

// TXTRenderer renders a conversation as a human-readable plain-text
// transcript: a metadata header, a separator, then one paragraph per
// record in original order. Internal newlines in message content are
// preserved verbatim.
type TXTRenderer struct{}

// Render converts a conversation to plain text.
func (r *TXTRenderer) Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error) {
	var sb strings.Builder

	// Header block
	sb.WriteString("=== Conversation Export ===\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", conv.GetTitle()))
	sb.WriteString(fmt.Sprintf("Exported: %s\n", formatTimestamp(exportedAt)))
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created: %s\n", formatTimestamp(conv.CreatedAt)))
	}
	if conv.Model != "" {
		sb.WriteString(fmt.Sprintf("Model: %s\n", conv.Model))
	}
	if conv.Mode != "" {
		sb.WriteString(fmt.Sprintf("Mode: %s\n", conv.Mode))
	}

	// One line per statistic
	sb.WriteString(fmt.Sprintf("Total messages: %d\n", stats.TotalMessages))
	sb.WriteString(fmt.Sprintf("User messages: %d\n", stats.UserMessages))
	sb.WriteString(fmt.Sprintf("Assistant messages: %d\n", stats.AssistantMessages))
	if stats.SystemMessages > 0 {
		sb.WriteString(fmt.Sprintf("System messages: %d\n", stats.SystemMessages))
	}
	sb.WriteString(fmt.Sprintf("Total characters: %d\n", stats.TotalCharacters))
	sb.WriteString(fmt.Sprintf("Average message length: %d\n", stats.AverageMessageLength))
	sb.WriteString(fmt.Sprintf("Session duration: %s\n", formatDurationSeconds(stats.SessionDurationSeconds)))

	// Separator line
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	// One paragraph per record, blank line between records
	for i, msg := range conv.Messages {
		if !msg.Role.Valid() {
			return nil, &RenderError{Format: FormatTXT, RecordIndex: i, Err: fmt.Errorf("%w: %q", model.ErrInvalidRole, msg.Role)}
		}
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n",
			formatShortTimestamp(msg.Timestamp),
			msg.Role.DisplayName(),
			msg.Content))
		if i < len(conv.Messages)-1 {
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String()), nil
}
