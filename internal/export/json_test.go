package export

import (
	"encoding/json"
	"testing"

	"chatexport/internal/model"
)

func TestJSONShape(t *testing.T) {
	result, err := Export(testConversation(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	for _, key := range []string{"export_metadata", "conversation", "statistics"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	if len(doc) != 3 {
		t.Errorf("expected exactly 3 top-level keys, got %d", len(doc))
	}
}

func TestJSONStatistics(t *testing.T) {
	result, err := Export(testConversation(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Statistics model.Statistics `json:"statistics"`
	}
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatal(err)
	}

	stats := doc.Statistics
	if stats.TotalMessages != 2 {
		t.Errorf("total_messages = %d, want 2", stats.TotalMessages)
	}
	if stats.UserMessages != 1 {
		t.Errorf("user_messages = %d, want 1", stats.UserMessages)
	}
	if stats.AssistantMessages != 1 {
		t.Errorf("assistant_messages = %d, want 1", stats.AssistantMessages)
	}
	if stats.TotalCharacters != 24 {
		t.Errorf("total_characters = %d, want 24", stats.TotalCharacters)
	}
}

func TestJSONMessages(t *testing.T) {
	result, err := Export(testConversation(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Conversation []struct {
			MessageID      int    `json:"message_id"`
			Role           string `json:"role"`
			Content        string `json:"content"`
			Timestamp      string `json:"timestamp"`
			CharacterCount int    `json:"character_count"`
			WordCount      int    `json:"word_count"`
		} `json:"conversation"`
	}
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Conversation) != 2 {
		t.Fatalf("conversation length = %d, want 2", len(doc.Conversation))
	}

	for i, msg := range doc.Conversation {
		if msg.MessageID != i+1 {
			t.Errorf("message_id[%d] = %d, want %d (1-based sequential)", i, msg.MessageID, i+1)
		}
	}

	first := doc.Conversation[0]
	if first.Role != "user" || first.Content != "Hi" {
		t.Errorf("first record = %s/%q", first.Role, first.Content)
	}
	if first.Timestamp != "2024-01-15T14:30:00Z" {
		t.Errorf("timestamp = %q, want RFC 3339", first.Timestamp)
	}
	if first.CharacterCount != 2 || first.WordCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", first.CharacterCount, first.WordCount)
	}

	second := doc.Conversation[1]
	if second.Content != "Hello!\nHow can I help?" {
		t.Errorf("content not preserved byte-for-byte: %q", second.Content)
	}
}

func TestJSONMetadata(t *testing.T) {
	conv := testConversation()
	conv.Mode = "friendly"
	conv.Extras = map[string]string{"language": "en"}

	result, err := Export(conv, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		ExportMetadata struct {
			FormatVersion string            `json:"format_version"`
			Title         string            `json:"title"`
			Model         string            `json:"model"`
			Mode          string            `json:"mode"`
			Extras        map[string]string `json:"extras"`
		} `json:"export_metadata"`
	}
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatal(err)
	}

	meta := doc.ExportMetadata
	if meta.FormatVersion != FormatVersion {
		t.Errorf("format_version = %q, want %q", meta.FormatVersion, FormatVersion)
	}
	if meta.Title != "Greeting" || meta.Model != "test-model" || meta.Mode != "friendly" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Extras["language"] != "en" {
		t.Errorf("extras not surfaced: %v", meta.Extras)
	}
}

func TestJSONEmptyConversation(t *testing.T) {
	conv := &model.Conversation{ID: "empty"}

	result, err := Export(conv, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Conversation []any            `json:"conversation"`
		Statistics   model.Statistics `json:"statistics"`
	}
	if err := json.Unmarshal(result.Content, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Conversation == nil {
		t.Error("conversation should be an empty array, not null")
	}
	if doc.Statistics.TotalMessages != 0 || doc.Statistics.AverageMessageLength != 0 {
		t.Errorf("empty statistics = %+v", doc.Statistics)
	}
}
