package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/insights"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store/inmemory"
)

const sampleCSV = `date,description,amount,type,category
2025-03-03,Paycheck,1500.00,INCOME,salary
2025-03-04,Rent,900.00,EXPENSE,rent
2025-03-05,Groceries,120.50,EXPENSE,food
2025-03-11,Dining,80.00,EXPENSE,food
`

const stubInsights = `{
  "executiveSummary": "Net positive with concentrated rent exposure.",
  "keyDrivers": ["rent", "food"],
  "recommendations": [
    {"action": "Review rent", "impact": "high", "effort": "high", "timeframe": "3 months"},
    {"action": "Trim dining", "impact": "low", "effort": "low", "timeframe": "2 weeks"},
    {"action": "Set a weekly budget", "impact": "medium", "effort": "low", "timeframe": "1 month"}
  ],
  "confidence": 0.7,
  "notes": []
}`

type stubGenerator struct {
	calls    int
	response string
	err      error
}

func (g *stubGenerator) Generate(ctx context.Context, groundedJSON string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type fixture struct {
	repo     store.Repository
	datasets *DatasetsHandler
	analytic *AnalyticsHandler
	insight  *InsightsHandler
	gen      *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := inmemory.New()
	log := zerolog.Nop()

	cache, err := insights.NewCache(insights.DefaultCacheSize, insights.DefaultCacheTTL)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	t.Cleanup(cache.Close)

	gen := &stubGenerator{response: stubInsights}
	svc := insights.NewService(repo, gen, cache, insights.NewCallSpacer(0), log)

	return &fixture{
		repo:     repo,
		datasets: NewDatasetsHandler(repo, log),
		analytic: NewAnalyticsHandler(repo, log),
		insight:  NewInsightsHandler(svc, log),
		gen:      gen,
	}
}

func (f *fixture) upload(t *testing.T, csv string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("writing CSV part failed: %v", err)
	}
	if err := mw.WriteField("name", "test-dataset"); err != nil {
		t.Fatalf("writing name field failed: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	f.datasets.Upload(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding upload response failed: %v", err)
	}
	if resp["datasetId"] == "" {
		t.Fatal("upload response missing datasetId")
	}
	return resp["datasetId"]
}

func TestUploadAndSummary(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/summary", nil)
	rec := httptest.NewRecorder()
	f.analytic.Summary(rec, req, id)

	if rec.Code != http.StatusOK {
		t.Fatalf("summary returned %d: %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		DatasetID    string  `json:"datasetId"`
		TotalIncome  float64 `json:"totalIncome"`
		TotalExpense float64 `json:"totalExpense"`
		NetCashflow  float64 `json:"netCashflow"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decoding summary failed: %v", err)
	}
	if summary.DatasetID != id {
		t.Errorf("DatasetID = %q, want %q", summary.DatasetID, id)
	}
	if summary.TotalIncome != 1500.00 {
		t.Errorf("TotalIncome = %v, want 1500.00", summary.TotalIncome)
	}
	if summary.TotalExpense != 1100.50 {
		t.Errorf("TotalExpense = %v, want 1100.50", summary.TotalExpense)
	}
	if summary.NetCashflow != 399.50 {
		t.Errorf("NetCashflow = %v, want 399.50", summary.NetCashflow)
	}
}

func TestWeeklyEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/weekly", nil)
	rec := httptest.NewRecorder()
	f.analytic.Weekly(rec, req, id)

	if rec.Code != http.StatusOK {
		t.Fatalf("weekly returned %d", rec.Code)
	}

	var weekly []struct {
		WeekStart string  `json:"weekStart"`
		Income    float64 `json:"income"`
		Expense   float64 `json:"expense"`
		Net       float64 `json:"net"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&weekly); err != nil {
		t.Fatalf("decoding weekly failed: %v", err)
	}
	if len(weekly) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weekly))
	}
	if weekly[0].WeekStart != "2025-03-03" || weekly[1].WeekStart != "2025-03-10" {
		t.Errorf("week starts = %q, %q", weekly[0].WeekStart, weekly[1].WeekStart)
	}
	if weekly[0].Net != 479.50 {
		t.Errorf("week 0 net = %v, want 479.50", weekly[0].Net)
	}
}

func TestDriversEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/drivers?limit=1", nil)
	rec := httptest.NewRecorder()
	f.analytic.Drivers(rec, req, id)

	var drivers []struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&drivers); err != nil {
		t.Fatalf("decoding drivers failed: %v", err)
	}
	if len(drivers) != 1 {
		t.Fatalf("got %d drivers, want 1", len(drivers))
	}
	if drivers[0].Category != "rent" || drivers[0].Total != 900.00 {
		t.Errorf("top driver = %+v", drivers[0])
	}
}

func TestDriversEndpoint_InvalidLimit(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/drivers?limit=zero", nil)
	rec := httptest.NewRecorder()
	f.analytic.Drivers(rec, req, id)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestRiskEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/risk", nil)
	rec := httptest.NewRecorder()
	f.analytic.Risk(rec, req, id)

	var risk struct {
		RiskScore int      `json:"riskScore"`
		Reasons   []string `json:"reasons"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&risk); err != nil {
		t.Fatalf("decoding risk failed: %v", err)
	}
	if risk.RiskScore < 0 || risk.RiskScore > 100 {
		t.Errorf("RiskScore = %d, want 0..100", risk.RiskScore)
	}
	if len(risk.Reasons) == 0 {
		t.Error("expected at least one reason")
	}
}

func TestForecastEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/forecast?horizon=4", nil)
	rec := httptest.NewRecorder()
	f.analytic.Forecast(rec, req, id)

	var forecast []struct {
		WeekStart string  `json:"weekStart"`
		Net       float64 `json:"net"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&forecast); err != nil {
		t.Fatalf("decoding forecast failed: %v", err)
	}
	if len(forecast) != 4 {
		t.Fatalf("got %d points, want 4", len(forecast))
	}
	if forecast[0].WeekStart != "2025-03-17" {
		t.Errorf("first forecast week = %q, want 2025-03-17", forecast[0].WeekStart)
	}
}

func TestForecastEndpoint_InvalidHorizon(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	for _, horizon := range []string{"0", "-3", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/forecast?horizon="+horizon, nil)
		rec := httptest.NewRecorder()
		f.analytic.Forecast(rec, req, id)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("horizon %q: got %d, want 400", horizon, rec.Code)
		}
	}
}

func TestExplainEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/explain", nil)
	rec := httptest.NewRecorder()
	f.insight.Explain(rec, req, id)

	if rec.Code != http.StatusOK {
		t.Fatalf("explain returned %d: %s", rec.Code, rec.Body.String())
	}

	var ins domain.AiInsights
	if err := json.NewDecoder(rec.Body).Decode(&ins); err != nil {
		t.Fatalf("decoding insights failed: %v", err)
	}
	if !strings.Contains(ins.ExecutiveSummary, "rent exposure") {
		t.Errorf("ExecutiveSummary = %q", ins.ExecutiveSummary)
	}

	// Same dataset and horizon again: served from the cache.
	rec = httptest.NewRecorder()
	f.insight.Explain(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/explain", nil), id)
	if rec.Code != http.StatusOK {
		t.Fatalf("cached explain returned %d", rec.Code)
	}
	if f.gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", f.gen.calls)
	}
}

func TestExplainEndpoint_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rate limited", insights.ErrUpstreamRateLimited, http.StatusTooManyRequests, "upstream_rate_limited"},
		{"unauthorized", insights.ErrUpstreamUnauthorized, http.StatusBadGateway, "upstream_unauthorized"},
		{"bad request", insights.ErrUpstreamBadRequest, http.StatusBadGateway, "upstream_bad_request"},
		{"server error", insights.ErrUpstreamServer, http.StatusServiceUnavailable, "upstream_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := f.upload(t, sampleCSV)
			f.gen.err = tt.err

			req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/explain", nil)
			rec := httptest.NewRecorder()
			f.insight.Explain(rec, req, id)

			if rec.Code != tt.wantStatus {
				t.Errorf("got %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding error body failed: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestExplainEndpoint_MalformedResponse(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)
	f.gen.response = "not valid json"

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/explain", nil)
	rec := httptest.NewRecorder()
	f.insight.Explain(rec, req, id)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502", rec.Code)
	}
}

func TestUnknownDatasetReturns404(t *testing.T) {
	f := newFixture(t)

	endpoints := []func(http.ResponseWriter, *http.Request, string){
		f.analytic.Summary,
		f.analytic.Weekly,
		f.analytic.Drivers,
		f.analytic.Risk,
		f.analytic.Forecast,
		f.datasets.Count,
		f.datasets.Delete,
		f.insight.Explain,
	}
	for i, handler := range endpoints {
		req := httptest.NewRequest(http.MethodGet, "/api/datasets/missing/x", nil)
		rec := httptest.NewRecorder()
		handler(rec, req, "missing")
		if rec.Code != http.StatusNotFound {
			t.Errorf("endpoint %d: got %d, want 404", i, rec.Code)
		}
	}
}

func TestUploadRejectsMalformedRow(t *testing.T) {
	f := newFixture(t)

	badCSV := `date,description,amount,type,category
2025-03-03,Paycheck,oops,INCOME,salary
`
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "bad.csv")
	part.Write([]byte(badCSV))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.datasets.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body failed: %v", err)
	}
	if resp.Code != "invalid_upload_row" {
		t.Errorf("code = %q, want invalid_upload_row", resp.Code)
	}
}

func TestUploadRequiresFilePart(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "no-file")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.datasets.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestDeleteDataset(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil)
	rec := httptest.NewRecorder()
	f.datasets.Delete(rec, req, id)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	// Analytics for the deleted dataset are gone.
	rec = httptest.NewRecorder()
	f.analytic.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/summary", nil), id)
	if rec.Code != http.StatusNotFound {
		t.Errorf("summary after delete returned %d, want 404", rec.Code)
	}
}

func TestCountEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.upload(t, sampleCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/count", nil)
	rec := httptest.NewRecorder()
	f.datasets.Count(rec, req, id)

	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding count failed: %v", err)
	}
	if resp["count"] != 4 {
		t.Errorf("count = %d, want 4", resp["count"])
	}
}
