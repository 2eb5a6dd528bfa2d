package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date              time.Time
	ID                string
	Description       string // Raw transaction description
	Category          string // Empty until categorized
	UserID            string
	AccountID         string
	Hash              string
	Amount            float64
	TransactionTypeID int
}

// UserTransaction is the slim view of a user's previously categorized
// transaction used for history matching.
type UserTransaction struct {
	Description string
	Category    string
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
