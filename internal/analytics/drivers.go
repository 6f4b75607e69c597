package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// UncategorizedLabel groups expense transactions with a blank category.
const UncategorizedLabel = "uncategorized"

// TopExpenseDrivers sums absolute expense amounts per category and returns
// the top limit categories by total, descending. Equal totals are ordered
// ascending by category name so the ranking is stable across runs.
func TopExpenseDrivers(txs []domain.Transaction, limit int) []domain.DriverPoint {
	if limit <= 0 {
		return []domain.DriverPoint{}
	}

	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != domain.TxTypeExpense {
			continue
		}
		cat := strings.TrimSpace(tx.Category)
		if cat == "" {
			cat = UncategorizedLabel
		}
		totals[cat] += math.Abs(tx.Amount)
	}

	drivers := make([]domain.DriverPoint, 0, len(totals))
	for cat, total := range totals {
		drivers = append(drivers, domain.DriverPoint{Category: cat, Total: round2(total)})
	}

	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].Total != drivers[j].Total {
			return drivers[i].Total > drivers[j].Total
		}
		return drivers[i].Category < drivers[j].Category
	})

	if len(drivers) > limit {
		drivers = drivers[:limit]
	}
	return drivers
}
