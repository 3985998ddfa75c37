// Package storage provides the SQLite-backed conversation archive.
//
// Conversations live in a single database file with one row per
// conversation and one row per message, keyed by insertion sequence so
// record order survives round trips exactly.
//
// # Key Types
//
//   - Store: archive handle with save/load/list/search/delete operations
//
// # Usage
//
// Open the archive and save a conversation:
//
//	store, err := storage.Open(cfg.StorePath)
//	id, err := store.Save(conversation)
//
// List and load:
//
//	metas, err := store.List()
//	conv, err := store.Load(metas[0].ID)
//
// ImportJSON reads either the engine's own JSON export shape or a bare
// array of {role, content, timestamp} records.
package storage
