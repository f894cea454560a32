package domain

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Document holds the extracted plain text of one uploaded file. Binary
// formats are converted before storage; no entity holds raw bytes.
type Document struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// HistoryEntry is one recorded question/response pair. Entries are
// append-only and never mutated.
type HistoryEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Query    string `json:"query"`
	Response string `json:"response"`
}

// Answer is the response to one submitted question.
type Answer struct {
	Question string `json:"question"`
	Response string `json:"response"`
}
