package repository

import (
	"context"
	"database/sql"
)

// StatsRepo answers the aggregate questions behind the manager
// reporting endpoints with plain GROUP BY queries.
type StatsRepo struct {
	DB *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// MonthRevenue is one month of confirmed and completed booking value.
type MonthRevenue struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	Bookings     int64 `json:"bookings"`
	RevenueCents int64 `json:"revenue_cents"`
}

// RevenueByMonth sums booking totals per check-in month over the last
// twelve months.  Only CONFIRMED and COMPLETED bookings count.
func (r *StatsRepo) RevenueByMonth(ctx context.Context) ([]MonthRevenue, error) {
	const q = `SELECT YEAR(check_in), MONTH(check_in), COUNT(*), COALESCE(SUM(total_price_cents),0)
	           FROM bookings
	           WHERE status IN ('CONFIRMED','COMPLETED')
	             AND check_in >= DATE_SUB(CURDATE(), INTERVAL 12 MONTH)
	           GROUP BY YEAR(check_in), MONTH(check_in)
	           ORDER BY YEAR(check_in), MONTH(check_in)`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MonthRevenue, 0)
	for rows.Next() {
		var m MonthRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.Bookings, &m.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountByStatus returns how many bookings sit in each status.
func (r *StatsRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM bookings GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
