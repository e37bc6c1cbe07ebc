// Package observability wires process logging and metrics.
package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// metricsNamespace prefixes every exported metric name.
const metricsNamespace = "kcurve"

// Metrics holds the Prometheus counters and histograms for catalog loading
// and coefficient resolution. Instruments register on a private registry,
// so each Metrics is independent; the batch binaries render it with
// WriteTextfile for a node-exporter textfile collector rather than serving
// a scrape endpoint.
type Metrics struct {
	registry *prometheus.Registry

	CatalogLoads      prometheus.Counter
	CatalogLoadErrors prometheus.Counter

	// Resolution metrics.
	CropLookups        *prometheus.CounterVec // labels: outcome={found,unknown}
	StageResolutions   *prometheus.CounterVec // labels: stage={initial,development,mid,late,complete}
	ClimateAdjustments prometheus.Counter
	CurvePoints        prometheus.Counter
	GenerateDuration   prometheus.Histogram
}

// NewMetrics creates all instruments on a fresh private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CatalogLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog documents loaded successfully.",
		}),
		CatalogLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "catalog_load_errors_total",
			Help:      "Catalog documents rejected as unreadable or malformed.",
		}),
		CropLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "crop_lookups_total",
			Help:      "Crop record lookups by outcome.",
		}, []string{"outcome"}),
		StageResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_resolutions_total",
			Help:      "Coefficient resolutions by growth stage.",
		}, []string{"stage"}),
		ClimateAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "climate_adjustments_total",
			Help:      "Resolutions whose coefficient was climate-adjusted.",
		}),
		CurvePoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "curve_points_total",
			Help:      "Season-table points generated.",
		}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generate_duration_seconds",
			Help:      "Duration of a complete season-table generation run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}

	m.registry.MustRegister(
		m.CatalogLoads,
		m.CatalogLoadErrors,
		m.CropLookups,
		m.StageResolutions,
		m.ClimateAdjustments,
		m.CurvePoints,
		m.GenerateDuration,
	)

	return m
}

// ObserveResolution records the stage counter and, when the value was
// climate-adjusted, the adjustment counter for one resolved point.
func (m *Metrics) ObserveResolution(stage string, adjusted bool) {
	m.StageResolutions.WithLabelValues(stage).Inc()
	if adjusted {
		m.ClimateAdjustments.Inc()
	}
}

// WriteTextfile renders every instrument in Prometheus text exposition
// format.
func (m *Metrics) WriteTextfile(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// DumpTextfile writes the exposition to path through a same-directory temp
// file and rename, so a collector never reads a half-written file.
func (m *Metrics) DumpTextfile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create metrics temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := m.WriteTextfile(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish metrics file: %w", err)
	}
	return nil
}
