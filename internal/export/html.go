package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// HTMLRenderer renders a conversation as a standalone HTML document with
// embedded CSS. All message content is HTML-escaped before insertion.
type HTMLRenderer struct{}

// codeBlockRegex matches fenced code blocks with an optional language tag.
var codeBlockRegex = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")

// Render converts a conversation to HTML.
func (r *HTMLRenderer) Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.GetTitle())))
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	}
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"container\">\n")

	// Header with metadata and statistics
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString("            <div class=\"metadata\">\n")
	if conv.Model != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(conv.Model)))
	}
	if conv.Mode != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Mode:</strong> %s</span>\n", html.EscapeString(conv.Mode)))
	}
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", stats.TotalMessages))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Characters:</strong> %d</span>\n", stats.TotalCharacters))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Duration:</strong> %s</span>\n", formatDurationSeconds(stats.SessionDurationSeconds)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	// Conversation messages
	sb.WriteString("        <main class=\"conversation\">\n")
	for i, msg := range conv.Messages {
		if !msg.Role.Valid() {
			return nil, &RenderError{Format: FormatHTML, RecordIndex: i, Err: fmt.Errorf("%w: %q", model.ErrInvalidRole, msg.Role)}
		}
		sb.WriteString(renderHTMLMessage(msg))
	}
	sb.WriteString("        </main>\n")

	// Footer
	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported on %s</p>\n",
		exportedAt.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// renderHTMLMessage renders a single message block.
func renderHTMLMessage(msg *model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role.String())
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Role.DisplayName())))
	sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatHTMLContent(msg.Content))
	sb.WriteString("\n                </div>\n")

	sb.WriteString("            </div>\n")

	return sb.String()
}

// formatHTMLContent escapes message content and converts fenced code blocks
// into <pre><code> elements. Plain text keeps its line structure inside a
// whitespace-preserving block.
func formatHTMLContent(content string) string {
	content = html.EscapeString(content)

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		lang := parts[1]
		code := parts[2]

		langLabel := ""
		if lang != "" {
			langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", lang)
		}

		return fmt.Sprintf("<div class=\"code-block\">%s<pre><code>%s</code></pre></div>",
			langLabel, strings.TrimRight(code, "\n"))
	})

	return "<div class=\"text\">" + content + "</div>"
}

// htmlCSS is the embedded stylesheet for exported documents.
const htmlCSS = `    <style>
        :root {
            --bg: #1a1b26;
            --surface: #24283b;
            --text: #c0caf5;
            --muted: #565f89;
            --accent: #7aa2f7;
            --user: #9ece6a;
            --assistant: #7aa2f7;
            --system: #e0af68;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            background: var(--bg);
            color: var(--text);
            font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
        }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 1px solid var(--muted); padding-bottom: 1rem; margin-bottom: 1.5rem; }
        .header h1 { color: var(--accent); font-size: 1.5rem; margin-bottom: 0.5rem; }
        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: 0.85rem; color: var(--muted); }
        .message { background: var(--surface); border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 0.5rem; }
        .role-label { font-weight: 600; }
        .user-message .role-label { color: var(--user); }
        .assistant-message .role-label { color: var(--assistant); }
        .system-message .role-label { color: var(--system); }
        .timestamp { color: var(--muted); font-size: 0.8rem; }
        .message-content .text { white-space: pre-wrap; word-wrap: break-word; }
        .code-block { background: var(--bg); border-radius: 6px; margin: 0.5rem 0; overflow-x: auto; }
        .code-lang { color: var(--muted); font-size: 0.75rem; padding: 0.25rem 0.75rem; border-bottom: 1px solid var(--surface); }
        .code-block pre { padding: 0.75rem; }
        .code-block code { font-family: "SF Mono", Consolas, monospace; font-size: 0.85rem; }
        .footer { border-top: 1px solid var(--muted); margin-top: 2rem; padding-top: 1rem; color: var(--muted); font-size: 0.8rem; text-align: center; }
    </style>
`
