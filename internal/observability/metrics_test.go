package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.CatalogLoads.Inc()
	m.CropLookups.WithLabelValues("found").Add(2)
	m.CropLookups.WithLabelValues("unknown").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogLoads))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CropLookups.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CropLookups.WithLabelValues("unknown")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CatalogLoadErrors))
}

func TestMetricsAreIndependent(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.CurvePoints.Add(5)

	assert.Equal(t, 5.0, testutil.ToFloat64(first.CurvePoints))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.CurvePoints))
}

func TestObserveResolution(t *testing.T) {
	m := NewMetrics()

	m.ObserveResolution("mid", true)
	m.ObserveResolution("mid", false)
	m.ObserveResolution("initial", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StageResolutions.WithLabelValues("mid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageResolutions.WithLabelValues("initial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClimateAdjustments))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.CatalogLoads.Inc()
	m.StageResolutions.WithLabelValues("initial").Inc()

	var buf bytes.Buffer
	require.NoError(t, m.WriteTextfile(&buf))

	out := buf.String()
	assert.Contains(t, out, "# HELP kcurve_catalog_loads_total")
	assert.Contains(t, out, "kcurve_catalog_loads_total 1")
	assert.Contains(t, out, `kcurve_stage_resolutions_total{stage="initial"} 1`)
}

func TestDumpTextfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kcurve.prom")

	m := NewMetrics()
	m.CurvePoints.Add(3)
	require.NoError(t, m.DumpTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "kcurve_curve_points_total 3")

	// The temp file used for the atomic rename must not linger.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
