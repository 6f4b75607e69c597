package domain

// Recommendation is one concrete action suggested by the reasoning service.
type Recommendation struct {
	Action    string `json:"action"`
	Impact    string `json:"impact"`
	Effort    string `json:"effort"`
	Timeframe string `json:"timeframe"`
}

// AiInsights is the validated narrative produced by the reasoning service
// from the grounding payload. Confidence is in [0,1]; Recommendations holds
// 3 to 5 entries.
type AiInsights struct {
	ExecutiveSummary string           `json:"executiveSummary"`
	KeyDrivers       []string         `json:"keyDrivers"`
	Recommendations  []Recommendation `json:"recommendations"`
	Confidence       float64          `json:"confidence"`
	Notes            []string         `json:"notes"`
}
