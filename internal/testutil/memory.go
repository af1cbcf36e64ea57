package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

// MemoryStore is an in-memory stand-in for repository.Repository.
// It returns the same sentinel errors as the Postgres stores.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[string]model.User
	transactions map[string]model.Transaction
	order        []string

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]model.User),
		transactions: make(map[string]model.Transaction),
	}
}

// Ping implements the health checker interface.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.Err
}

// CreateUser stores a user, enforcing email and national ID uniqueness.
func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
		if u.NationalID == user.NationalID {
			return repository.ErrNationalIDExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetUserByID returns a copy of the user with the given id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.ID == id })
}

// GetUserByEmail returns a copy of the user with the given email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Email == email })
}

// GetUserByNationalID returns a copy of the user with the given national ID.
func (s *MemoryStore) GetUserByNationalID(ctx context.Context, nationalID string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.NationalID == nationalID })
}

// CountUsers returns the number of stored users.
func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.users)), nil
}

func (s *MemoryStore) findUser(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	for _, u := range s.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// CreateTransaction stores a transaction.
func (s *MemoryStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	s.transactions[tx.ID] = *tx
	s.order = append(s.order, tx.ID)
	return nil
}

// GetTransactionByID returns a copy of the transaction with the given id.
func (s *MemoryStore) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	tx, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrTransactionNotFound
	}
	return &tx, nil
}

// ListTransactionsByUser returns the user's transactions ordered by date then id.
func (s *MemoryStore) ListTransactionsByUser(ctx context.Context, userID string) ([]*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	txs := make([]*model.Transaction, 0)
	for _, id := range s.order {
		tx, ok := s.transactions[id]
		if ok && tx.UserID == userID {
			cp := tx
			txs = append(txs, &cp)
		}
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].ID < txs[j].ID
	})
	return txs, nil
}

// UpdateTransaction replaces a transaction owned by tx.UserID.
func (s *MemoryStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	existing, ok := s.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return repository.ErrTransactionNotFound
	}
	s.transactions[tx.ID] = *tx
	return nil
}

// DeleteTransaction removes a transaction owned by userID.
func (s *MemoryStore) DeleteTransaction(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	existing, ok := s.transactions[id]
	if !ok || existing.UserID != userID {
		return repository.ErrTransactionNotFound
	}
	delete(s.transactions, id)
	return nil
}

// CountTransactions returns the number of stored transactions.
func (s *MemoryStore) CountTransactions(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.transactions)), nil
}

// SumTotals sums values per type.
func (s *MemoryStore) SumTotals(ctx context.Context, filter model.AggregateFilter) (model.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.Totals{}, s.Err
	}

	totals := model.Totals{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, tx := range s.transactions {
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		switch tx.Type {
		case model.TypeIncome:
			totals.TotalIncome = totals.TotalIncome.Add(tx.Value)
		case model.TypeExpense:
			totals.TotalExpense = totals.TotalExpense.Add(tx.Value)
		}
	}
	return totals, nil
}

// SumByMonth sums values per type and UTC (year, month).
func (s *MemoryStore) SumByMonth(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error) {
	return s.sumByPeriod(filter, true)
}

// SumByYear sums values per type and UTC year.
func (s *MemoryStore) SumByYear(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error) {
	return s.sumByPeriod(filter, false)
}

func (s *MemoryStore) sumByPeriod(filter model.AggregateFilter, monthly bool) ([]model.PeriodSum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	type key struct {
		typ   model.TransactionType
		year  int
		month int
	}
	sums := make(map[key]decimal.Decimal)
	for _, tx := range s.transactions {
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		d := tx.Date.UTC()
		k := key{typ: tx.Type, year: d.Year()}
		if monthly {
			k.month = int(d.Month())
		}
		sums[k] = sums[k].Add(tx.Value)
	}

	out := make([]model.PeriodSum, 0, len(sums))
	for k, total := range sums {
		out = append(out, model.PeriodSum{Type: k.typ, Year: k.year, Month: k.month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}
