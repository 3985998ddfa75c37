package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"chatexport/internal/model"
)

// =============================================================================
// CSV RENDERER
// =============================================================================

// csvHeader is the exact header row of the tabular export.
var csvHeader = []string{"Message_ID", "Timestamp", "Role", "Content", "Character_Count", "Word_Count"}

// CSVRenderer renders a conversation as an RFC 4180 CSV table. It goes
// through encoding/csv rather than joining fields by hand, so content
// containing commas, quotes, or newlines is quoted and escaped correctly.
type CSVRenderer struct{}

// Render converts a conversation to CSV.
func (r *CSVRenderer) Render(conv *model.Conversation, stats model.Statistics, exportedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, &RenderError{Format: FormatCSV, RecordIndex: -1, Err: err}
	}

	for i, msg := range conv.Messages {
		if !msg.Role.Valid() {
			return nil, &RenderError{Format: FormatCSV, RecordIndex: i, Err: fmt.Errorf("%w: %q", model.ErrInvalidRole, msg.Role)}
		}
		row := []string{
			strconv.Itoa(i + 1),
			msg.Timestamp.Format(time.RFC3339),
			msg.Role.String(),
			msg.Content,
			strconv.Itoa(msg.CharacterCount()),
			strconv.Itoa(msg.WordCount()),
		}
		if err := w.Write(row); err != nil {
			return nil, &RenderError{Format: FormatCSV, RecordIndex: i, Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &RenderError{Format: FormatCSV, RecordIndex: -1, Err: err}
	}

	return buf.Bytes(), nil
}
