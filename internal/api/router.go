package api

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "insurance-data-pipeline/internal/api/docs"
	"insurance-data-pipeline/internal/api/handler"
	"insurance-data-pipeline/pkg/router"
)

// NewRouter registers every API route on a fresh router.
func NewRouter(h *handler.Handler, logger *slog.Logger) *router.Router {
	r := router.New(logger)
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.POST("/api/v1/records/validate", h.ValidateRecord)
	r.POST("/api/v1/batches", h.ProcessBatch)
	r.POST("/api/v1/jobs", h.CreateJob)
	r.GET("/api/v1/jobs", h.ListJobs)
	// More specific routes first
	r.GET("/api/v1/jobs/*/errors", h.GetJobErrors)
	// Generic job route last
	r.GET("/api/v1/jobs/*", h.GetJob)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
