package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/model"
)

// AggregateStore computes per-type sums over transactions.
type AggregateStore interface {
	SumTotals(ctx context.Context, filter model.AggregateFilter) (model.Totals, error)
	SumByMonth(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error)
	SumByYear(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error)
}

// CountStore reports table sizes for the admin dashboard.
type CountStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountTransactions(ctx context.Context) (int64, error)
}

// ReportStore is everything ReportService reads.
type ReportStore interface {
	AggregateStore
	CountStore
}

// ReportService computes totals, balance and time-bucketed reports.
type ReportService struct {
	store   ReportStore
	metrics metrics.Recorder
}

// NewReportService creates a new ReportService.
func NewReportService(store ReportStore, recorder metrics.Recorder) *ReportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ReportService{
		store:   store,
		metrics: recorder,
	}
}

// Balance is income minus expense.
type Balance struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// Dashboard summarizes the whole store for administrators.
type Dashboard struct {
	Users        int64           `json:"users"`
	Transactions int64           `json:"transactions"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// Totals sums all income and all expense values.
func (s *ReportService) Totals(ctx context.Context, filter model.AggregateFilter) (model.Totals, error) {
	defer s.observe("totals", time.Now())

	totals, err := s.store.SumTotals(ctx, filter)
	if err != nil {
		return model.Totals{}, fmt.Errorf("failed to compute totals: %w", err)
	}
	return totals, nil
}

// Balance returns total income minus total expense.
func (s *ReportService) Balance(ctx context.Context, filter model.AggregateFilter) (Balance, error) {
	totals, err := s.Totals(ctx, filter)
	if err != nil {
		return Balance{}, err
	}
	return Balance{TotalBalance: totals.Balance()}, nil
}

// Monthly returns one bucket per (year, month) that has any transaction.
func (s *ReportService) Monthly(ctx context.Context, filter model.AggregateFilter) ([]model.MonthlyBucket, error) {
	defer s.observe("monthly", time.Now())

	sums, err := s.store.SumByMonth(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly report: %w", err)
	}
	return MergeMonthly(sums), nil
}

// Annual returns one bucket per year that has any transaction.
func (s *ReportService) Annual(ctx context.Context, filter model.AggregateFilter) ([]model.AnnualBucket, error) {
	defer s.observe("annual", time.Now())

	sums, err := s.store.SumByYear(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute annual report: %w", err)
	}
	return MergeAnnual(sums), nil
}

// Dashboard returns counts and global totals.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	txs, err := s.store.CountTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	totals, err := s.Totals(ctx, model.AggregateFilter{})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Users:        users,
		Transactions: txs,
		TotalIncome:  totals.TotalIncome,
		TotalExpense: totals.TotalExpense,
		TotalBalance: totals.Balance(),
	}, nil
}

func (s *ReportService) observe(report string, start time.Time) {
	s.metrics.ObserveReportDuration(report, time.Since(start))
}

type periodKey struct {
	year  int
	month int
}

type periodTotals struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

// mergePeriods folds per-type sums into one entry per period.
// A period present for either type appears; the missing side is zero.
func mergePeriods(sums []model.PeriodSum) ([]periodKey, map[periodKey]*periodTotals) {
	merged := make(map[periodKey]*periodTotals)
	for _, sum := range sums {
		key := periodKey{year: sum.Year, month: sum.Month}
		pt, ok := merged[key]
		if !ok {
			pt = &periodTotals{income: decimal.Zero, expense: decimal.Zero}
			merged[key] = pt
		}
		switch sum.Type {
		case model.TypeIncome:
			pt.income = pt.income.Add(sum.Total)
		case model.TypeExpense:
			pt.expense = pt.expense.Add(sum.Total)
		}
	}

	keys := make([]periodKey, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	return keys, merged
}

// MergeMonthly builds the monthly report from per-type monthly sums.
// Buckets are sorted ascending by (year, month) with no duplicates.
func MergeMonthly(sums []model.PeriodSum) []model.MonthlyBucket {
	keys, merged := mergePeriods(sums)

	buckets := make([]model.MonthlyBucket, 0, len(keys))
	for _, key := range keys {
		pt := merged[key]
		buckets = append(buckets, model.MonthlyBucket{
			Year:    key.year,
			Month:   key.month,
			Income:  pt.income,
			Expense: pt.expense,
			Balance: pt.income.Sub(pt.expense),
		})
	}
	return buckets
}

// MergeAnnual builds the annual report from per-type yearly sums.
func MergeAnnual(sums []model.PeriodSum) []model.AnnualBucket {
	keys, merged := mergePeriods(sums)

	buckets := make([]model.AnnualBucket, 0, len(keys))
	for _, key := range keys {
		pt := merged[key]
		buckets = append(buckets, model.AnnualBucket{
			Year:    key.year,
			Income:  pt.income,
			Expense: pt.expense,
			Balance: pt.income.Sub(pt.expense),
		})
	}
	return buckets
}
