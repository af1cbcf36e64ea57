package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/model"
)

// CreateTransactionRequest represents the request body for recording a transaction.
type CreateTransactionRequest struct {
	Type           string           `json:"type"`
	Category       string           `json:"category"`
	Value          *decimal.Decimal `json:"value"`
	DateTransition *Time            `json:"dateTransition,omitempty"`
	Date           *Time            `json:"date,omitempty"`
	Description    string           `json:"description,omitempty"`
}

// UpdateTransactionRequest represents a partial update. Absent fields are kept.
type UpdateTransactionRequest struct {
	Type           *string          `json:"type,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Value          *decimal.Decimal `json:"value,omitempty"`
	DateTransition *Time            `json:"dateTransition,omitempty"`
	Date           *Time            `json:"date,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// ToPatch converts the request into a model patch.
func (r UpdateTransactionRequest) ToPatch() model.TransactionPatch {
	patch := model.TransactionPatch{
		Category:       r.Category,
		Value:          r.Value,
		DateTransition: r.DateTransition.Ptr(),
		Date:           r.Date.Ptr(),
		Description:    r.Description,
	}
	if r.Type != nil {
		t := model.TransactionType(*r.Type)
		patch.Type = &t
	}
	return patch
}
