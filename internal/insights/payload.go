package insights

import (
	"github.com/sannskruti/cashflow-ai-dashboard/internal/analytics"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// GroundingPayload is the complete set of pre-computed facts sent to the
// reasoning service. It is the ONLY input the reasoning client may forward
// downstream: it carries aggregates exclusively, never transaction rows,
// transaction-level dates or free-text descriptions. The struct field order
// fixes the JSON field order, so serialization is deterministic and the
// payload can be hashed or logged reproducibly.
type GroundingPayload struct {
	DatasetID         string                 `json:"datasetId"`
	Summary           domain.Summary         `json:"summary"`
	Risk              domain.RiskResult      `json:"risk"`
	TopExpenseDrivers []domain.DriverPoint   `json:"topExpenseDrivers"`
	ForecastWeeklyNet []domain.ForecastPoint `json:"forecastWeeklyNet"`
}

// BuildGroundingPayload runs the full analytics pipeline over a transaction
// snapshot and assembles the fact object for one (dataset, horizon) pair.
func BuildGroundingPayload(datasetID string, txs []domain.Transaction, horizon int) GroundingPayload {
	weekly := analytics.WeeklySeries(txs)
	return GroundingPayload{
		DatasetID:         datasetID,
		Summary:           analytics.ComputeSummary(datasetID, txs, weekly),
		Risk:              analytics.ComputeRisk(datasetID, txs, weekly),
		TopExpenseDrivers: analytics.TopExpenseDrivers(txs, 5),
		ForecastWeeklyNet: analytics.ForecastWeeklyNet(weekly, horizon),
	}
}
