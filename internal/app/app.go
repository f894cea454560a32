// Package app is the core application service: registration and login,
// document ingestion, question answering against the latest document, and
// the per-user history log.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"docquery/internal/parser"
	"docquery/internal/search"
	"docquery/internal/store"
	"docquery/pkg/auth"
	"docquery/pkg/domain"
)

// NoMatchResponse is returned when the query engine finds nothing.
const NoMatchResponse = "No relevant information found in the documents."

// Config holds runtime configuration for the core application.
type Config struct {
	Database      store.Config
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
	SessionTTL    time.Duration

	// Pre-built stores override the config-driven construction; used by tests.
	Store    store.Store
	Sessions store.SessionStore
}

// App wires the persistent store and session store together with the
// parser and search rules.
type App struct {
	store    store.Store
	sessions store.SessionStore
}

// New constructs the application. Sessions are stateless JWTs when a secret
// is configured, otherwise Redis-backed tokens.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		var err error
		dataStore, err = store.NewGormStore(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
	}, nil
}

// Register creates a new account with a salted one-way password hash.
// The stored hash of an existing user is never altered.
func (a *App) Register(username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, errors.New("username and password required")
	}
	exists, err := a.store.HasUsername(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return domain.User{}, ErrDuplicateUser
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.CreateUser(domain.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token. Unknown users and
// wrong passwords produce the same error.
func (a *App) Login(username, password string) (domain.User, string, error) {
	user, ok, err := a.store.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.Username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	username, ok, err := a.sessions.GetUsernameByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByUsername(username)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UploadResult reports the outcome of ingesting one file. A file can be
// skipped (unsupported or unreadable) without failing the rest of the batch.
type UploadResult struct {
	Filename string `json:"filename"`
	Stored   bool   `json:"stored"`
	Warning  string `json:"warning,omitempty"`
}

// UploadDocument parses one file and stores its extracted text under the
// base filename. A plain-text file that is not valid UTF-8 still lands in
// the store with empty content and the decode failure is surfaced as a
// warning. Only store failures are returned as errors.
func (a *App) UploadDocument(filename, declaredType string, data []byte) (UploadResult, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return UploadResult{}, errors.New("filename required")
	}

	typ := parser.TypeFromMIME(declaredType)
	text, err := parser.Parse(data, typ)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrUnsupportedType):
			return UploadResult{Filename: filename, Warning: "unsupported file type"}, nil
		case errors.Is(err, parser.ErrDecode):
			slog.Warn("storing empty content for undecodable file", "filename", filename)
			if uerr := a.store.UpsertDocument(filename, ""); uerr != nil {
				return UploadResult{}, fmt.Errorf("save document: %w", uerr)
			}
			return UploadResult{
				Filename: filename,
				Stored:   true,
				Warning:  "file is not valid UTF-8; stored empty text",
			}, nil
		default:
			slog.Warn("text extraction failed", "filename", filename, "type", typ.String(), "err", err)
			return UploadResult{Filename: filename, Warning: "could not extract text"}, nil
		}
	}

	if err := a.store.UpsertDocument(filename, text); err != nil {
		return UploadResult{}, fmt.Errorf("save document: %w", err)
	}
	return UploadResult{Filename: filename, Stored: true}, nil
}

// LatestDocument returns the active document, if any.
func (a *App) LatestDocument() (domain.Document, bool, error) {
	return a.store.LatestDocument()
}

// Ask answers a question against the latest document and records the
// question/response pair in the user's history. With no document stored, the
// canned no-match response is returned (and still recorded).
func (a *App) Ask(user domain.User, question string) (domain.Answer, error) {
	doc, ok, err := a.store.LatestDocument()
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load latest document: %w", err)
	}
	var results []string
	if ok {
		results = search.Answer(doc.Filename, doc.Content, question)
	}
	response := NoMatchResponse
	if len(results) > 0 {
		response = strings.Join(results, "\n")
	}
	if _, err := a.store.AppendHistory(domain.HistoryEntry{
		Username: user.Username,
		Query:    question,
		Response: response,
	}); err != nil {
		return domain.Answer{}, fmt.Errorf("record history: %w", err)
	}
	return domain.Answer{Question: question, Response: response}, nil
}

// History returns the user's recorded entries in insertion order.
func (a *App) History(user domain.User) ([]domain.HistoryEntry, error) {
	return a.store.ListHistoryByUser(user.Username)
}

// Transcript renders the user's full history as downloadable plain text.
func (a *App) Transcript(user domain.User) (string, error) {
	entries, err := a.store.ListHistoryByUser(user.Username)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	return RenderTranscript(user.Username, entries), nil
}

// RenderTranscript formats history entries as a plain-text chat log.
func RenderTranscript(username string, entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "No chat history found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Chat History for %s:\n\n", username)
	for _, e := range entries {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", e.Query, e.Response)
	}
	return b.String()
}
