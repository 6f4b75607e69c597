package analytics

import (
	"math"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// ComputeSummary totals income, expense magnitude and net cashflow over a
// dataset's transactions, plus arithmetic weekly averages over the given
// weekly series. An empty dataset yields an all-zero summary; this never
// fails.
func ComputeSummary(datasetID string, txs []domain.Transaction, weekly []domain.WeeklyPoint) domain.Summary {
	var totalIncome, totalExpense float64
	for _, tx := range txs {
		switch tx.Type {
		case domain.TxTypeIncome:
			totalIncome += tx.Amount
		case domain.TxTypeExpense:
			totalExpense += math.Abs(tx.Amount)
		}
	}

	var avgNet, avgExpense float64
	if len(weekly) > 0 {
		var sumNet, sumExpense float64
		for _, p := range weekly {
			sumNet += p.Net
			sumExpense += p.Expense
		}
		avgNet = sumNet / float64(len(weekly))
		avgExpense = sumExpense / float64(len(weekly))
	}

	return domain.Summary{
		DatasetID:        datasetID,
		TotalIncome:      round2(totalIncome),
		TotalExpense:     round2(totalExpense),
		NetCashflow:      round2(totalIncome - totalExpense),
		AvgWeeklyNet:     round2(avgNet),
		AvgWeeklyExpense: round2(avgExpense),
	}
}
