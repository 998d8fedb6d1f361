package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog"

// CatalogMetrics records pricing and variant generation activity.
type CatalogMetrics struct {
	tierResolutions *prometheus.CounterVec
	generated       *prometheus.CounterVec
	generationSize  prometheus.Histogram
	bulkReplace     *prometheus.CounterVec
	batchItems      *prometheus.CounterVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	tierResolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_resolutions_total",
		Help:      "Price tier resolutions by outcome and scope.",
	}, []string{"outcome", "scope"})
	generated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "variant_combinations_generated_total",
		Help:      "Variant combinations produced by bulk generation.",
	}, []string{"status"})
	generationSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "variant_generation_size",
		Help:      "Cartesian size of bulk generation requests.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	bulkReplace := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_bulk_replace_total",
		Help:      "Bulk tier replace calls by outcome.",
	}, []string{"outcome"})
	batchItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_items_total",
		Help:      "Per-item outcomes of batch operations.",
	}, []string{"operation", "status"})
	reg.MustRegister(tierResolutions, generated, generationSize, bulkReplace, batchItems)
	return &CatalogMetrics{
		tierResolutions: tierResolutions,
		generated:       generated,
		generationSize:  generationSize,
		bulkReplace:     bulkReplace,
		batchItems:      batchItems,
	}
}

// ObserveTierResolution counts a resolve call. matched=false means the caller
// fell back to the base price.
func (m *CatalogMetrics) ObserveTierResolution(matched, variantScoped bool) {
	if m == nil || m.tierResolutions == nil {
		return
	}
	outcome := "fallback"
	if matched {
		outcome = "matched"
	}
	scope := "product"
	if variantScoped {
		scope = "variant"
	}
	m.tierResolutions.WithLabelValues(outcome, scope).Inc()
}

// ObserveGenerationSize records the computed Cartesian size of a request.
func (m *CatalogMetrics) ObserveGenerationSize(size int) {
	if m == nil || m.generationSize == nil {
		return
	}
	m.generationSize.Observe(float64(size))
}

// AddGenerated counts generated combinations by status.
func (m *CatalogMetrics) AddGenerated(created, failed int) {
	if m == nil || m.generated == nil {
		return
	}
	m.generated.WithLabelValues("created").Add(float64(created))
	m.generated.WithLabelValues("failed").Add(float64(failed))
}

// IncBulkReplace counts bulk tier replace calls by outcome.
func (m *CatalogMetrics) IncBulkReplace(outcome string) {
	if m == nil || m.bulkReplace == nil {
		return
	}
	m.bulkReplace.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddBatchItems counts per-item outcomes for a batch operation.
func (m *CatalogMetrics) AddBatchItems(operation string, created, failed int) {
	if m == nil || m.batchItems == nil {
		return
	}
	op := normalizeLabel(operation)
	m.batchItems.WithLabelValues(op, "created").Add(float64(created))
	m.batchItems.WithLabelValues(op, "failed").Add(float64(failed))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
