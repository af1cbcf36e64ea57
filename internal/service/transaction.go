package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

// TransactionStore persists transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) error
}

// TransactionService handles transaction business logic.
// Every operation is scoped to the calling user.
type TransactionService struct {
	store   TransactionStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store TransactionStore, recorder metrics.Recorder) *TransactionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// CreateTransactionInput defines input for recording a transaction.
type CreateTransactionInput struct {
	UserID         string
	Type           string
	Category       string
	Value          *decimal.Decimal
	DateTransition *time.Time
	Date           *time.Time // Defaults to now
	Description    string
}

// Create validates input and records a transaction owned by input.UserID.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput) (*model.Transaction, error) {
	if input.UserID == "" {
		return nil, missingField("user")
	}

	txType := model.TransactionType(strings.TrimSpace(input.Type))
	if txType == "" {
		return nil, missingField("type")
	}
	if !txType.IsValid() {
		return nil, ErrInvalidType
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, missingField("category")
	}
	if input.Value == nil {
		return nil, missingField("value")
	}
	if err := validateValue(*input.Value); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	tx := &model.Transaction{
		ID:          ulid.Make().String(),
		Type:        txType,
		Category:    category,
		Value:       *input.Value,
		Date:        date,
		Description: input.Description,
		UserID:      input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.DateTransition != nil {
		dt := input.DateTransition.UTC()
		tx.DateTransition = &dt
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.IncTransactionCreated()

	return tx, nil
}

// List returns the caller's transactions ordered by recorded date.
func (s *TransactionService) List(ctx context.Context, userID string) ([]*model.Transaction, error) {
	txs, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// UpdateTransactionInput defines input for a partial update.
type UpdateTransactionInput struct {
	ID     string
	UserID string
	Patch  model.TransactionPatch
}

// Update applies a partial update to a transaction owned by input.UserID.
// Transactions owned by someone else are reported as ErrTransactionNotFound.
func (s *TransactionService) Update(ctx context.Context, input UpdateTransactionInput) (*model.Transaction, error) {
	if err := validatePatch(&input.Patch); err != nil {
		return nil, err
	}

	tx, err := s.getOwned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Patch.IsEmpty() {
		return tx, nil
	}

	input.Patch.Apply(tx)
	tx.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.metrics.IncTransactionUpdated()

	return tx, nil
}

// Delete removes a transaction owned by userID.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.metrics.IncTransactionDeleted()

	return nil
}

func (s *TransactionService) getOwned(ctx context.Context, id, userID string) (*model.Transaction, error) {
	tx, err := s.store.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// validatePatch rejects values that would break transaction invariants
// and normalizes the ones it keeps.
func validatePatch(p *model.TransactionPatch) error {
	if p.Type != nil {
		t := model.TransactionType(strings.TrimSpace(string(*p.Type)))
		if !t.IsValid() {
			return ErrInvalidType
		}
		p.Type = &t
	}
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		if c == "" {
			return invalidField("category", "must not be empty")
		}
		p.Category = &c
	}
	if p.Value != nil {
		if err := validateValue(*p.Value); err != nil {
			return err
		}
	}
	if p.Date != nil {
		d := p.Date.UTC()
		p.Date = &d
	}
	if p.DateTransition != nil {
		d := p.DateTransition.UTC()
		p.DateTransition = &d
	}
	return nil
}

// Values are stored as NUMERIC(18,2).
const valueScale = 2

var maxAbsValue = decimal.New(1, 18-valueScale)

// validateValue rejects values the store would round or overflow.
func validateValue(v decimal.Decimal) error {
	if !v.Round(valueScale).Equal(v) {
		return invalidField("value", "must have at most 2 decimal places")
	}
	if v.Abs().GreaterThanOrEqual(maxAbsValue) {
		return invalidField("value", "is out of range")
	}
	return nil
}
