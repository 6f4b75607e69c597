package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/analytics"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/api/middleware"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/ingest"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/insights"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
)

// DefaultHorizon is the forecast horizon used when the client omits one.
const DefaultHorizon = 12

// maxUploadBytes bounds the in-memory portion of a multipart CSV upload.
const maxUploadBytes = 32 << 20

// DatasetsHandler handles dataset lifecycle endpoints.
type DatasetsHandler struct {
	repo store.Repository
	log  zerolog.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(repo store.Repository, log zerolog.Logger) *DatasetsHandler {
	return &DatasetsHandler{repo: repo, log: log}
}

// Upload handles POST /api/datasets/upload. The multipart form carries the
// CSV under "file" and an optional display name under "name".
func (h *DatasetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_upload", "Invalid multipart request")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_upload", "A \"file\" part is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = "uploaded-dataset"
	}

	datasetID := uuid.NewString()

	txs, err := ingest.ParseCSV(file, datasetID)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	ds := &domain.Dataset{
		ID:         datasetID,
		Name:       name,
		UploadedAt: time.Now().UTC(),
	}
	if err := h.repo.CreateDataset(ctx, ds); err != nil {
		h.log.Error().Err(err).Msg("Failed to create dataset")
		middleware.WriteDomainError(w, err)
		return
	}
	if err := h.repo.InsertTransactions(ctx, datasetID, txs); err != nil {
		h.log.Error().Err(err).Str("dataset_id", datasetID).Msg("Failed to insert transactions")
		middleware.WriteDomainError(w, err)
		return
	}

	h.log.Info().
		Str("dataset_id", datasetID).
		Int("transactions", len(txs)).
		Msg("Dataset uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"datasetId": datasetID})
}

// List handles GET /api/datasets.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.repo.ListDatasets(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list datasets")
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// Count handles GET /api/datasets/{id}/count.
func (h *DatasetsHandler) Count(w http.ResponseWriter, r *http.Request, datasetID string) {
	txs, err := h.repo.ListTransactions(r.Context(), datasetID)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"count": len(txs)})
}

// Delete handles DELETE /api/datasets/{id}; the dataset's transactions go
// with it.
func (h *DatasetsHandler) Delete(w http.ResponseWriter, r *http.Request, datasetID string) {
	if err := h.repo.DeleteDataset(r.Context(), datasetID); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	h.log.Info().Str("dataset_id", datasetID).Msg("Dataset deleted")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"datasetId": datasetID, "status": "deleted"})
}

// AnalyticsHandler serves the derived analytics for a dataset.
type AnalyticsHandler struct {
	repo store.Repository
	log  zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(repo store.Repository, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, log: log}
}

func (h *AnalyticsHandler) load(w http.ResponseWriter, r *http.Request, datasetID string) ([]domain.Transaction, bool) {
	txs, err := h.repo.ListTransactions(r.Context(), datasetID)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return nil, false
	}
	return txs, true
}

// Summary handles GET /api/datasets/{id}/summary.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request, datasetID string) {
	txs, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	weekly := analytics.WeeklySeries(txs)
	middleware.WriteJSON(w, http.StatusOK, analytics.ComputeSummary(datasetID, txs, weekly))
}

// Weekly handles GET /api/datasets/{id}/weekly.
func (h *AnalyticsHandler) Weekly(w http.ResponseWriter, r *http.Request, datasetID string) {
	txs, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.WeeklySeries(txs))
}

// Drivers handles GET /api/datasets/{id}/drivers?limit=N.
func (h *AnalyticsHandler) Drivers(w http.ResponseWriter, r *http.Request, datasetID string) {
	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid_parameter", "limit must be a positive integer")
			return
		}
		limit = n
	}

	txs, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.TopExpenseDrivers(txs, limit))
}

// Risk handles GET /api/datasets/{id}/risk.
func (h *AnalyticsHandler) Risk(w http.ResponseWriter, r *http.Request, datasetID string) {
	txs, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	weekly := analytics.WeeklySeries(txs)
	middleware.WriteJSON(w, http.StatusOK, analytics.ComputeRisk(datasetID, txs, weekly))
}

// Forecast handles GET /api/datasets/{id}/forecast?horizon=H.
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request, datasetID string) {
	horizon, ok := horizonParam(w, r)
	if !ok {
		return
	}

	txs, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	weekly := analytics.WeeklySeries(txs)
	middleware.WriteJSON(w, http.StatusOK, analytics.ForecastWeeklyNet(weekly, horizon))
}

// InsightsHandler serves AI narrative insights.
type InsightsHandler struct {
	svc *insights.Service
	log zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc *insights.Service, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, log: log}
}

// Explain handles POST /api/datasets/{id}/explain?horizon=H.
func (h *InsightsHandler) Explain(w http.ResponseWriter, r *http.Request, datasetID string) {
	horizon, ok := horizonParam(w, r)
	if !ok {
		return
	}

	ins, err := h.svc.Explain(r.Context(), datasetID, horizon)
	if err != nil {
		h.log.Error().Err(err).Str("dataset_id", datasetID).Int("horizon", horizon).Msg("Explain failed")
		middleware.WriteDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ins)
}

func horizonParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	horizon := DefaultHorizon
	if s := r.URL.Query().Get("horizon"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid_parameter", "horizon must be a positive integer")
			return 0, false
		}
		horizon = n
	}
	return horizon, true
}
