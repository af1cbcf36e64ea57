package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/model"
)

// SumTotals returns the income and expense sums.
// Types with no rows sum to zero.
func (r *Repository) SumTotals(ctx context.Context, filter model.AggregateFilter) (model.Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(value) FILTER (WHERE type = 'income'), 0)::text,
			COALESCE(SUM(value) FILTER (WHERE type = 'expense'), 0)::text
		FROM transactions
		WHERE ($1::text = '' OR user_id = $1::text)
	`

	var income, expense string
	if err := r.pool.QueryRow(ctx, query, filter.UserID).Scan(&income, &expense); err != nil {
		return model.Totals{}, fmt.Errorf("failed to sum totals: %w", err)
	}

	var totals model.Totals
	var err error
	if totals.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return model.Totals{}, fmt.Errorf("parse income total: %w", err)
	}
	if totals.TotalExpense, err = decimal.NewFromString(expense); err != nil {
		return model.Totals{}, fmt.Errorf("parse expense total: %w", err)
	}

	return totals, nil
}

// SumByMonth returns per-type sums grouped by the UTC (year, month) of the recorded date.
func (r *Repository) SumByMonth(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error) {
	query := `
		SELECT
			type,
			EXTRACT(YEAR FROM date AT TIME ZONE 'UTC')::int AS year,
			EXTRACT(MONTH FROM date AT TIME ZONE 'UTC')::int AS month,
			SUM(value)::text
		FROM transactions
		WHERE ($1::text = '' OR user_id = $1::text)
		GROUP BY type, year, month
		ORDER BY year, month, type
	`

	return r.sumByPeriod(ctx, query, filter)
}

// SumByYear returns per-type sums grouped by the UTC year of the recorded date.
func (r *Repository) SumByYear(ctx context.Context, filter model.AggregateFilter) ([]model.PeriodSum, error) {
	query := `
		SELECT
			type,
			EXTRACT(YEAR FROM date AT TIME ZONE 'UTC')::int AS year,
			0 AS month,
			SUM(value)::text
		FROM transactions
		WHERE ($1::text = '' OR user_id = $1::text)
		GROUP BY type, year
		ORDER BY year, type
	`

	return r.sumByPeriod(ctx, query, filter)
}

func (r *Repository) sumByPeriod(ctx context.Context, query string, filter model.AggregateFilter) ([]model.PeriodSum, error) {
	rows, err := r.pool.Query(ctx, query, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer rows.Close()

	var sums []model.PeriodSum
	for rows.Next() {
		var (
			sum    model.PeriodSum
			txType string
			total  string
		)
		if err := rows.Scan(&txType, &sum.Year, &sum.Month, &total); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		sum.Type = model.TransactionType(txType)
		if sum.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse aggregate total: %w", err)
		}
		sums = append(sums, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregates: %w", err)
	}

	return sums, nil
}
