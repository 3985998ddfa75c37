// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing role-tagged, timestamped conversation records.
//
// # Key Types
//
//   - Conversation: Ordered message sequence with metadata
//   - Message: Single record with role, content, and timestamp
//   - Role: Message role enumeration (user, assistant, system)
//   - Statistics: Aggregate numbers computed over a message sequence
//
// # Usage
//
// Build a conversation and aggregate statistics:
//
//	conv := model.NewConversationWithTitle("Support chat")
//	conv.AddUserMessage("Hi")
//	conv.AddAssistantMessage("Hello! How can I help?")
//	stats := model.Aggregate(conv.Messages)
//
// Derived metrics (character and word counts) are recomputed per call and
// never cached, since content may change between exports.
package model
