package domain

import (
	"encoding/json"
	"time"
)

// DateFormat is the wire format for week-start and transaction dates.
const DateFormat = "2006-01-02"

// WeeklyPoint is one Monday-start weekly bucket of a dataset's cashflow.
// Expense is a magnitude (always >= 0); Net = Income - Expense. All monetary
// fields are rounded to 2 decimals. Derived, never persisted.
type WeeklyPoint struct {
	WeekStart time.Time `json:"-"`
	Income    float64   `json:"income"`
	Expense   float64   `json:"expense"`
	Net       float64   `json:"net"`
}

// MarshalJSON emits weekStart as a plain YYYY-MM-DD string.
func (p WeeklyPoint) MarshalJSON() ([]byte, error) {
	type alias WeeklyPoint
	return json.Marshal(struct {
		WeekStart string `json:"weekStart"`
		alias
	}{p.WeekStart.Format(DateFormat), alias(p)})
}

// Summary holds dataset-level totals and weekly averages.
type Summary struct {
	DatasetID        string  `json:"datasetId"`
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpense     float64 `json:"totalExpense"`
	NetCashflow      float64 `json:"netCashflow"`
	AvgWeeklyNet     float64 `json:"avgWeeklyNet"`
	AvgWeeklyExpense float64 `json:"avgWeeklyExpense"`
}

// DriverPoint is one category's total expense magnitude.
type DriverPoint struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// RiskResult is the composite 0-100 risk indicator for a dataset, with the
// signals it was derived from and the top expense drivers as context.
type RiskResult struct {
	DatasetID           string        `json:"datasetId"`
	RiskScore           int           `json:"riskScore"`
	NegativeWeeksRatio  float64       `json:"negativeWeeksRatio"`
	WeeklyNetVolatility float64       `json:"weeklyNetVolatility"`
	Reasons             []string      `json:"reasons"`
	TopExpenseDrivers   []DriverPoint `json:"topExpenseDrivers"`
}

// ForecastPoint is one projected future week of net cashflow.
type ForecastPoint struct {
	WeekStart time.Time `json:"-"`
	Net       float64   `json:"net"`
}

// MarshalJSON emits weekStart as a plain YYYY-MM-DD string.
func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	type alias ForecastPoint
	return json.Marshal(struct {
		WeekStart string `json:"weekStart"`
		alias
	}{p.WeekStart.Format(DateFormat), alias(p)})
}
