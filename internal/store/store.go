// Package store provides persistence for users, documents, and history, plus
// session token storage.
package store

import "docquery/pkg/domain"

// Store defines persistence operations for users, documents, and history.
type Store interface {
	// users
	CreateUser(u domain.User) (domain.User, error)
	HasUsername(username string) (bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)

	// documents
	UpsertDocument(filename, content string) error
	LatestDocument() (domain.Document, bool, error)

	// history
	AppendHistory(e domain.HistoryEntry) (domain.HistoryEntry, error)
	ListHistoryByUser(username string) ([]domain.HistoryEntry, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(username string) (string, error)
	GetUsernameByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
