package model

import (
	"errors"
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	valid := []Role{RoleUser, RoleAssistant, RoleSystem}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("Role %q should be valid", r)
		}
	}

	invalid := []Role{"tool", "bot", "", "User"}
	for _, r := range invalid {
		if r.Valid() {
			t.Errorf("Role %q should be invalid", r)
		}
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q, want You", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q, want Assistant", got)
	}
}

func TestMessageCounts(t *testing.T) {
	msg := NewAssistantMessage("Hello!\nHow can I help?")
	if got := msg.CharacterCount(); got != 22 {
		t.Errorf("CharacterCount() = %d, want 22", got)
	}
	if got := msg.WordCount(); got != 5 {
		t.Errorf("WordCount() = %d, want 5", got)
	}

	unicode := NewUserMessage("héllo wörld")
	if got := unicode.CharacterCount(); got != 11 {
		t.Errorf("CharacterCount() = %d, want 11 (runes, not bytes)", got)
	}
}

func TestMessagePreviewTinyMaxLen(t *testing.T) {
	msg := NewUserMessage("hello world")

	tests := []struct {
		maxLen int
		want   string
	}{
		{0, ""},
		{-1, ""},
		{1, "h"},
		{2, "he"},
		{3, "hel"},
		{4, "h..."},
		{11, "hello world"},
	}
	for _, tt := range tests {
		if got := msg.Preview(tt.maxLen); got != tt.want {
			t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
		}
	}
}

func TestMessageValidate(t *testing.T) {
	msg := NewUserMessage("hi")
	if err := msg.Validate(); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}

	msg.Role = "alien"
	if err := msg.Validate(); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	msg.Role = RoleUser
	msg.Timestamp = time.Time{}
	if err := msg.Validate(); !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("expected ErrMissingTimestamp, got %v", err)
	}
}

func TestConversationOrderPreserved(t *testing.T) {
	conv := NewConversation()
	contents := []string{"first", "second", "third", "fourth"}
	for i, c := range contents {
		if i%2 == 0 {
			conv.AddUserMessage(c)
		} else {
			conv.AddAssistantMessage(c)
		}
	}

	for i, msg := range conv.Messages {
		if msg.Content != contents[i] {
			t.Errorf("message %d = %q, want %q", i, msg.Content, contents[i])
		}
	}

	clone := conv.Clone()
	for i, msg := range clone.Messages {
		if msg.Content != contents[i] {
			t.Errorf("cloned message %d = %q, want %q", i, msg.Content, contents[i])
		}
	}
}

func TestConversationValidateReportsIndex(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("ok")
	bad := NewUserMessage("bad")
	bad.Role = "ghost"
	conv.AddMessage(bad)

	idx, err := conv.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if idx != 1 {
		t.Errorf("failing index = %d, want 1", idx)
	}
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestConversationAutoTitle(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("system prompt")
	conv.AddUserMessage("What is the weather like today?")

	if conv.Title != "What is the weather like today?" {
		t.Errorf("auto title = %q", conv.Title)
	}

	empty := NewConversation()
	if got := empty.GetTitle(); got != "Untitled Conversation" {
		t.Errorf("GetTitle() on empty = %q", got)
	}
}

func TestConversationLocalized(t *testing.T) {
	conv := NewConversation()
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	conv.CreatedAt = base
	conv.AddUserMessage("Hi").Timestamp = base

	local := conv.Localized()

	if !local.Messages[0].Timestamp.Equal(base) {
		t.Error("Localized changed the instant, not just the zone")
	}
	if got := local.Messages[0].Timestamp.Location(); got != time.Local {
		t.Errorf("localized message zone = %v, want Local", got)
	}
	if got := local.CreatedAt.Location(); got != time.Local {
		t.Errorf("localized CreatedAt zone = %v, want Local", got)
	}
	if conv.Messages[0].Timestamp.Location() != time.UTC {
		t.Error("receiver was mutated")
	}
}

func TestAggregate(t *testing.T) {
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	msgs := []*Message{
		{ID: "1", Role: RoleUser, Content: "Hi", Timestamp: base},
		{ID: "2", Role: RoleAssistant, Content: "Hello!\nHow can I help?", Timestamp: base.Add(5 * time.Second)},
	}

	stats := Aggregate(msgs)
	if stats.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", stats.TotalMessages)
	}
	if stats.UserMessages != 1 || stats.AssistantMessages != 1 {
		t.Errorf("role counts = %d/%d, want 1/1", stats.UserMessages, stats.AssistantMessages)
	}
	if stats.TotalCharacters != 24 {
		t.Errorf("TotalCharacters = %d, want 24", stats.TotalCharacters)
	}
	if stats.AverageMessageLength != 12 {
		t.Errorf("AverageMessageLength = %d, want 12", stats.AverageMessageLength)
	}
	if stats.SessionDurationSeconds != 5 {
		t.Errorf("SessionDurationSeconds = %d, want 5", stats.SessionDurationSeconds)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	if stats.TotalMessages != 0 || stats.TotalCharacters != 0 ||
		stats.AverageMessageLength != 0 || stats.SessionDurationSeconds != 0 {
		t.Errorf("empty aggregate not all-zero: %+v", stats)
	}
}

func TestAggregateSingleMessage(t *testing.T) {
	msgs := []*Message{
		{ID: "1", Role: RoleUser, Content: "solo", Timestamp: time.Now()},
	}
	stats := Aggregate(msgs)
	if stats.SessionDurationSeconds != 0 {
		t.Errorf("single-message duration = %d, want 0", stats.SessionDurationSeconds)
	}
	if stats.AverageMessageLength != 4 {
		t.Errorf("AverageMessageLength = %d, want 4", stats.AverageMessageLength)
	}
}

func TestRoleCountsSumToTotal(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("a")
	conv.AddAssistantMessage("b")
	conv.AddSystemMessage("c")
	conv.AddUserMessage("d")

	stats := Aggregate(conv.Messages)
	sum := stats.UserMessages + stats.AssistantMessages + stats.SystemMessages
	if sum != stats.TotalMessages {
		t.Errorf("role counts sum %d != total %d", sum, stats.TotalMessages)
	}
}
