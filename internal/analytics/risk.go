package analytics

import (
	"math"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// Risk reason strings, appended in priority order.
const (
	ReasonNoData        = "No data"
	ReasonNegativeWeeks = "High fraction of weeks with negative net cashflow"
	ReasonVolatility    = "High volatility in weekly net cashflow"
	ReasonStable        = "Stable cashflow pattern"
)

// ComputeRisk derives the composite 0-100 risk score for a dataset from its
// weekly net series. The score combines the fraction of negative weeks
// (up to 60 points) with volatility relative to the mean net (up to 40
// points) and is clamped to [0,100]. An empty series yields score 0 with a
// single "No data" reason. The top-5 expense drivers are always attached as
// supporting context.
func ComputeRisk(datasetID string, txs []domain.Transaction, weekly []domain.WeeklyPoint) domain.RiskResult {
	if len(weekly) == 0 {
		return domain.RiskResult{
			DatasetID:         datasetID,
			Reasons:           []string{ReasonNoData},
			TopExpenseDrivers: []domain.DriverPoint{},
		}
	}

	var negative int
	var sum float64
	for _, p := range weekly {
		if p.Net < 0 {
			negative++
		}
		sum += p.Net
	}
	n := float64(len(weekly))
	negativeRatio := float64(negative) / n
	mean := sum / n

	var sqSum float64
	for _, p := range weekly {
		d := p.Net - mean
		sqSum += d * d
	}
	volatility := math.Sqrt(sqSum / n) // population standard deviation

	score := int(math.Round(negativeRatio * 60))
	score += int(math.Min(40, math.Round(volatility/(math.Abs(mean)+1)*40)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var reasons []string
	if negativeRatio > 0.4 {
		reasons = append(reasons, ReasonNegativeWeeks)
	}
	if volatility > math.Abs(mean)*1.2 {
		reasons = append(reasons, ReasonVolatility)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonStable)
	}

	return domain.RiskResult{
		DatasetID:           datasetID,
		RiskScore:           score,
		NegativeWeeksRatio:  round2(negativeRatio),
		WeeklyNetVolatility: round2(volatility),
		Reasons:             reasons,
		TopExpenseDrivers:   TopExpenseDrivers(txs, 5),
	}
}
