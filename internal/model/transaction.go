// Package model defines domain entities for the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// IsValid checks if the transaction type is one of the known values.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single financial entry owned by one user.
type Transaction struct {
	ID             string          `json:"id"`
	Type           TransactionType `json:"type"`
	Category       string          `json:"category"`
	Value          decimal.Decimal `json:"value"`
	DateTransition *time.Time      `json:"dateTransition,omitempty"` // Effective date, optional
	Date           time.Time       `json:"date"`                     // Recorded date, used for reports
	Description    string          `json:"description,omitempty"`
	UserID         string          `json:"user"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// TransactionPatch holds the optional fields of a partial update.
// Nil fields are left untouched.
type TransactionPatch struct {
	Type           *TransactionType
	Category       *string
	Value          *decimal.Decimal
	DateTransition *time.Time
	Date           *time.Time
	Description    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Category == nil && p.Value == nil &&
		p.DateTransition == nil && p.Date == nil && p.Description == nil
}

// Apply copies the set fields of the patch onto t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Value != nil {
		t.Value = *p.Value
	}
	if p.DateTransition != nil {
		dt := *p.DateTransition
		t.DateTransition = &dt
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}
