package store

import "time"

// PolicyDocument is a policy text that has been split into clauses.
type PolicyDocument struct {
	DocID       string `gorm:"primaryKey;size:64"`
	Source      string `gorm:"size:256"`
	ClauseCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PolicyClause is one non-blank line of a policy document, kept in document order.
type PolicyClause struct {
	ID        uint   `gorm:"primaryKey"`
	DocID     string `gorm:"size:64;index"`
	Position  int
	Text      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
