package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders a conversation as a Markdown report with YAML
// frontmatter, a session information section, and one heading per record.
type MarkdownRenderer struct{}

// Render converts a conversation to Markdown.
func (r *MarkdownRenderer) Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error) {
	var sb strings.Builder

	// YAML frontmatter with metadata
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.GetTitle())))
	if conv.Model != "" {
		sb.WriteString(fmt.Sprintf("model: %s\n", escapeYAML(conv.Model)))
	}
	if conv.Mode != "" {
		sb.WriteString(fmt.Sprintf("mode: %s\n", escapeYAML(conv.Mode)))
	}
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("messages: %d\n", stats.TotalMessages))
	sb.WriteString(fmt.Sprintf("exported: %s\n", exportedAt.Format(time.RFC3339)))
	sb.WriteString("---\n\n")

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.GetTitle())))

	// Session information
	sb.WriteString("## Session Information\n\n")
	if conv.Model != "" {
		sb.WriteString(fmt.Sprintf("- **Model**: %s\n", conv.Model))
	}
	if conv.Mode != "" {
		sb.WriteString(fmt.Sprintf("- **Mode**: %s\n", conv.Mode))
	}
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.CreatedAt)))
	}
	sb.WriteString(fmt.Sprintf("- **Messages**: %d (%d user, %d assistant)\n",
		stats.TotalMessages, stats.UserMessages, stats.AssistantMessages))
	sb.WriteString(fmt.Sprintf("- **Total Characters**: %d\n", stats.TotalCharacters))
	sb.WriteString(fmt.Sprintf("- **Session Duration**: %s\n", formatDurationSeconds(stats.SessionDurationSeconds)))
	for _, kv := range sortedExtras(conv.Extras) {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", kv[0], kv[1]))
	}
	sb.WriteString("\n---\n\n")

	// Conversation messages
	sb.WriteString("## Conversation\n\n")

	for i, msg := range conv.Messages {
		if !msg.Role.Valid() {
			return nil, &RenderError{Format: FormatMarkdown, RecordIndex: i, Err: fmt.Errorf("%w: %q", model.ErrInvalidRole, msg.Role)}
		}

		sb.WriteString(fmt.Sprintf("### [%s] <sub>%s</sub>\n\n",
			msg.Role.DisplayName(),
			formatShortTimestamp(msg.Timestamp)))

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported on %s*\n",
		exportedAt.Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// sortedExtras returns extras as key/value pairs in stable key order.
func sortedExtras(extras map[string]string) [][2]string {
	if len(extras) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, extras[k]})
	}
	return pairs
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
// Only characters that would break formatting in titles/headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
