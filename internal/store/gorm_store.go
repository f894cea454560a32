package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docquery/pkg/domain"
)

// Config selects the database driver for the GORM store.
type Config struct {
	Driver string // "sqlite" (default) or "postgres"
	Path   string // sqlite file path
	DSN    string // postgres DSN
}

// GormStore implements Store using GORM over sqlite or postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and runs auto-migrations.
func NewGormStore(cfg Config) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		if cfg.Path == "" {
			return nil, errors.New("sqlite database path required")
		}
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		if cfg.DSN == "" {
			return nil, errors.New("postgres DSN required")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &DocumentModel{}, &HistoryModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateUser inserts a new user row and returns it with the assigned id.
func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := userToModel(u)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// HasUsername checks if a username is taken.
func (s *GormStore) HasUsername(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByUsername looks up a user by username.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// UpsertDocument replaces any row with the same filename. Delete-and-insert
// inside one transaction gives the replacement row the greatest id, so an
// updated document always becomes the latest document.
func (s *GormStore) UpsertDocument(filename, content string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&DocumentModel{}, "filename = ?", filename).Error; err != nil {
			return err
		}
		return tx.Create(&DocumentModel{Filename: filename, Content: content}).Error
	})
}

// LatestDocument returns the most recently written document, if any.
func (s *GormStore) LatestDocument() (domain.Document, bool, error) {
	var model DocumentModel
	if err := s.db.Order("id DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Document{}, false, nil
		}
		return domain.Document{}, false, err
	}
	return documentFromModel(model), true, nil
}

// AppendHistory records one question/response pair.
func (s *GormStore) AppendHistory(e domain.HistoryEntry) (domain.HistoryEntry, error) {
	model := historyToModel(e)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.HistoryEntry{}, err
	}
	return historyFromModel(model), nil
}

// ListHistoryByUser returns the user's entries in insertion order.
func (s *GormStore) ListHistoryByUser(username string) ([]domain.HistoryEntry, error) {
	var models []HistoryModel
	if err := s.db.Where("username = ?", username).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.HistoryEntry, 0, len(models))
	for _, m := range models {
		res = append(res, historyFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
	}
}

func documentFromModel(m DocumentModel) domain.Document {
	return domain.Document{
		ID:       m.ID,
		Filename: m.Filename,
		Content:  m.Content,
	}
}

func historyToModel(e domain.HistoryEntry) HistoryModel {
	return HistoryModel{
		ID:       e.ID,
		Username: e.Username,
		Query:    e.Query,
		Response: e.Response,
	}
}

func historyFromModel(m HistoryModel) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:       m.ID,
		Username: m.Username,
		Query:    m.Query,
		Response: m.Response,
	}
}
