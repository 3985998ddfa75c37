package model

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds aggregate numbers for a message sequence.
type Statistics struct {
	TotalMessages          int   `json:"total_messages"`
	UserMessages           int   `json:"user_messages"`
	AssistantMessages      int   `json:"assistant_messages"`
	SystemMessages         int   `json:"system_messages"`
	TotalCharacters        int   `json:"total_characters"`
	TotalWords             int   `json:"total_words"`
	AverageMessageLength   int   `json:"average_message_length"`
	SessionDurationSeconds int64 `json:"session_duration_seconds"`
}

// Aggregate computes statistics over an ordered message sequence.
// An empty sequence is valid input and yields all-zero statistics.
func Aggregate(messages []*Message) Statistics {
	var stats Statistics

	stats.TotalMessages = len(messages)
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		case RoleSystem:
			stats.SystemMessages++
		}
		stats.TotalCharacters += msg.CharacterCount()
		stats.TotalWords += msg.WordCount()
	}

	if stats.TotalMessages > 0 {
		stats.AverageMessageLength = stats.TotalCharacters / stats.TotalMessages
	}

	if len(messages) >= 2 {
		first := messages[0].Timestamp
		last := messages[len(messages)-1].Timestamp
		stats.SessionDurationSeconds = int64(last.Sub(first).Seconds())
	}

	return stats
}
