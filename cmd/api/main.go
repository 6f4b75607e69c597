package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/api/handlers"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/api/middleware"
	infraBQ "github.com/sannskruti/cashflow-ai-dashboard/internal/infra/bigquery"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/insights"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/logger"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store/inmemory"
)

func main() {
	var (
		port        = flag.String("port", "8080", "HTTP server port")
		bqProject   = flag.String("bq-project", os.Getenv("BQ_PROJECT"), "BigQuery project ID; empty selects the in-memory store")
		bqDataset   = flag.String("bq-dataset", envOr("BQ_DATASET", "cashflow"), "BigQuery dataset holding the cashflow tables")
		model       = flag.String("model", envOr("GENAI_MODEL", insights.DefaultModelName), "Gemini model for narrative insights")
		minInterval = flag.Duration("min-call-interval", insights.DefaultMinInterval, "Minimum spacing between outbound reasoning calls")
		cacheTTL    = flag.Duration("insight-ttl", insights.DefaultCacheTTL, "Insight cache time-to-live")
		cacheSize   = flag.Int64("insight-cache-size", insights.DefaultCacheSize, "Insight cache capacity in entries")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Storage: BigQuery when configured, in-memory otherwise.
	var repo store.Repository
	if *bqProject != "" {
		bqRepo, err := infraBQ.NewRepository(ctx, *bqProject, *bqDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer bqRepo.Close()
		repo = bqRepo
		log.Info().Str("project", *bqProject).Str("dataset", *bqDataset).Msg("Using BigQuery storage")
	} else {
		repo = inmemory.New()
		log.Warn().Msg("No BigQuery project configured - using in-memory storage")
	}

	cache, err := insights.NewCache(*cacheSize, *cacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create insight cache")
	}
	defer cache.Close()

	insightSvc := insights.NewService(
		repo,
		insights.NewGeminiGenerator(*model),
		cache,
		insights.NewCallSpacer(*minInterval),
		log,
	)

	datasetsHandler := handlers.NewDatasetsHandler(repo, log)
	analyticsHandler := handlers.NewAnalyticsHandler(repo, log)
	insightsHandler := handlers.NewInsightsHandler(insightSvc, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/datasets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			datasetsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/datasets/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			datasetsHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		}
	})

	mux.HandleFunc("/api/datasets/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/datasets/")
		parts := strings.SplitN(rest, "/", 2)
		datasetID := parts[0]
		if datasetID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "invalid_parameter", "Dataset ID is required")
			return
		}

		if len(parts) == 1 {
			if r.Method == http.MethodDelete {
				datasetsHandler.Delete(w, r, datasetID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
			}
			return
		}

		op := parts[1]
		if op == "explain" {
			if r.Method == http.MethodPost {
				insightsHandler.Explain(w, r, datasetID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
			}
			return
		}

		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
			return
		}
		switch op {
		case "summary":
			analyticsHandler.Summary(w, r, datasetID)
		case "weekly":
			analyticsHandler.Weekly(w, r, datasetID)
		case "drivers":
			analyticsHandler.Drivers(w, r, datasetID)
		case "risk":
			analyticsHandler.Risk(w, r, datasetID)
		case "forecast":
			analyticsHandler.Forecast(w, r, datasetID)
		case "count":
			datasetsHandler.Count(w, r, datasetID)
		default:
			middleware.WriteError(w, http.StatusNotFound, "unknown_operation", "Unknown operation: "+op)
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // explain requests wait on the reasoning call
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
