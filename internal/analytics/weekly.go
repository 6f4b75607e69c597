package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// WeeklySeries buckets a dataset's transactions into Monday-start weeks and
// sums income and expense magnitude per bucket. Weeks with no transactions
// are absent from the output; transactions with a type other than
// INCOME/EXPENSE contribute to neither sum. The result is sorted ascending
// by week start, with all monetary fields rounded to 2 decimals.
func WeeklySeries(txs []domain.Transaction) []domain.WeeklyPoint {
	type bucket struct {
		income  float64
		expense float64
	}
	byWeek := make(map[time.Time]*bucket)

	for _, tx := range txs {
		ws := weekStart(tx.Date)
		b := byWeek[ws]
		if b == nil {
			b = &bucket{}
			byWeek[ws] = b
		}
		switch tx.Type {
		case domain.TxTypeIncome:
			b.income += tx.Amount
		case domain.TxTypeExpense:
			b.expense += math.Abs(tx.Amount)
		}
	}

	weeks := make([]time.Time, 0, len(byWeek))
	for ws := range byWeek {
		weeks = append(weeks, ws)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	points := make([]domain.WeeklyPoint, 0, len(weeks))
	for _, ws := range weeks {
		b := byWeek[ws]
		points = append(points, domain.WeeklyPoint{
			WeekStart: ws,
			Income:    round2(b.income),
			Expense:   round2(b.expense),
			Net:       round2(b.income - b.expense),
		})
	}
	return points
}
