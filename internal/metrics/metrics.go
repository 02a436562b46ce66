package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal counts processed records by outcome (valid, invalid)
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_records_total",
			Help: "Total number of records processed",
		},
		[]string{"outcome"},
	)

	// RejectionsTotal counts rejected records by class (missing_fields, validation_errors)
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rejections_total",
			Help: "Total number of rejected records by reason class",
		},
		[]string{"class"},
	)

	// FilesTotal counts input objects by status (succeeded, failed)
	FilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_files_total",
			Help: "Total number of input files processed",
		},
		[]string{"status"},
	)

	// FileDuration tracks end-to-end processing time per input object
	FileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_file_duration_seconds",
			Help:    "Time spent processing one input file",
			Buckets: prometheus.DefBuckets,
		},
	)
)
