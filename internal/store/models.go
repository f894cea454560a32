package store

// GORM models used for persistence. There is exactly one schema; the
// latest document is always the row with the greatest id.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type DocumentModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Filename string `gorm:"uniqueIndex;not null"`
	Content  string
}

func (DocumentModel) TableName() string { return "documents" }

type HistoryModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"index;not null"`
	Query    string
	Response string
}

func (HistoryModel) TableName() string { return "history_entries" }
