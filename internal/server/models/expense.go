// Package models holds server-side persistence models.
package models

import (
	"database/sql"
	"time"
)

// Expense is a stored expense record. FileKey is the object-store key of the
// attached receipt, if any; it is internal to the server and is resolved into
// a short-lived signed download URL at response-construction time.
type Expense struct {
	ID        int64
	Title     string
	Amount    int64
	FileKey   sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpensePatch is a partial update. Nil fields are left unchanged; a non-nil
// but invalid FileKey clears the stored key.
type ExpensePatch struct {
	Title   *string
	Amount  *int64
	FileKey *sql.NullString
}

// Empty reports whether the patch would change nothing.
func (p ExpensePatch) Empty() bool {
	return p.Title == nil && p.Amount == nil && p.FileKey == nil
}
