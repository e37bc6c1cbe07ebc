package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamspade/kcurve/internal/catalog"
	"github.com/loamspade/kcurve/internal/kc"
)

const testCropWheat = "winter_wheat"

const testCatalogDoc = `
[climate]
u2 = 2.0
rh_min = 45.0

[crops.quinoa]
name = "quinoa"
k_ini = 0.30
k_mid = 1.00
k_end = 0.40
height_m = 1.5
growth_stages_days = [20, 30, 40, 20]
`

const testSemiaridDoc = `
[climate]
u2 = 3.5
rh_min = 30.0
`

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_GeneratesAllTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")

	require.NoError(t, run(params{csvDir: dir, step: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 14)

	records := readTable(t, filepath.Join(dir, testCropWheat+".csv"))
	require.Len(t, records, 112) // header + days 0..110
	assert.Equal(t, []string{"day", "date", "stage", "kc"}, records[0])
	assert.Equal(t, []string{"0", "2023-09-01", "initial", "0.1500"}, records[1])
	assert.Equal(t, []string{"110", "2023-12-20", "complete", "0.3500"}, records[111])
}

func TestRun_CropSubset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")

	require.NoError(t, run(params{csvDir: dir, crops: "winter_wheat, corn", step: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.FileExists(t, filepath.Join(dir, "winter_wheat.csv"))
	assert.FileExists(t, filepath.Join(dir, "corn.csv"))
}

func TestRun_Step(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")

	require.NoError(t, run(params{csvDir: dir, crops: testCropWheat, step: 25}))

	records := readTable(t, filepath.Join(dir, testCropWheat+".csv"))
	require.Len(t, records, 7) // header + days 0,25,50,75,100 + season end
	assert.Equal(t, "100", records[5][0])
	assert.Equal(t, []string{"110", "2023-12-20", "complete", "0.3500"}, records[6])
}

func TestRun_InvalidStep(t *testing.T) {
	err := run(params{csvDir: t.TempDir()})

	require.EqualError(t, err, "step must be at least 1, got 0")
}

func TestRun_UnknownCropFails(t *testing.T) {
	err := run(params{csvDir: filepath.Join(t.TempDir(), "tables"), crops: "rice", step: 1})

	require.ErrorIs(t, err, catalog.ErrUnknownCrop)
}

func TestRun_AdjustedColumn(t *testing.T) {
	tmp := t.TempDir()
	climatePath := filepath.Join(tmp, "semiarid.toml")
	require.NoError(t, os.WriteFile(climatePath, []byte(testSemiaridDoc), 0o600))
	dir := filepath.Join(tmp, "tables")

	require.NoError(t, run(params{
		csvDir:      dir,
		crops:       testCropWheat,
		step:        1,
		adjust:      true,
		climatePath: climatePath,
	}))

	records := readTable(t, filepath.Join(dir, testCropWheat+".csv"))
	assert.Equal(t, []string{"day", "date", "stage", "kc", "kc_adjusted"}, records[0])

	// Day 70 sits on the mid plateau, the only span adjusted upward in a
	// windier, drier climate.
	mid := records[71]
	assert.Equal(t, "70", mid[0])
	assert.Equal(t, "1.1500", mid[3])
	assert.Equal(t, "1.1975", mid[4])

	// Initial-stage values never adjust.
	initial := records[1]
	assert.Equal(t, initial[3], initial[4])
}

func TestRun_CombinedJSON(t *testing.T) {
	tmp := t.TempDir()
	jsonPath := filepath.Join(tmp, "out", "curves.json")

	require.NoError(t, run(params{
		csvDir:  filepath.Join(tmp, "tables"),
		crops:   testCropWheat,
		step:    1,
		jsonOut: jsonPath,
	}))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var curves map[string][]kc.Resolution
	require.NoError(t, json.Unmarshal(data, &curves))

	wheat, ok := curves[testCropWheat]
	require.True(t, ok)
	require.Len(t, wheat, 111)
	assert.Equal(t, kc.StageMid, wheat[70].Stage)
	assert.InDelta(t, 1.15, wheat[70].Kc, 1e-9)
	assert.Equal(t, kc.StageComplete, wheat[110].Stage)
}

func TestRun_CustomCatalogWithoutPlantingDates(t *testing.T) {
	tmp := t.TempDir()
	dataPath := filepath.Join(tmp, "crops.toml")
	require.NoError(t, os.WriteFile(dataPath, []byte(testCatalogDoc), 0o600))
	dir := filepath.Join(tmp, "tables")

	require.NoError(t, run(params{csvDir: dir, dataPath: dataPath, step: 1}))

	records := readTable(t, filepath.Join(dir, "quinoa.csv"))
	require.Len(t, records, 112)
	assert.Equal(t, "", records[1][1]) // no planting_date, so no dates
	assert.Equal(t, []string{"110", "", "complete", "0.4000"}, records[111])
}

func TestRun_MetricsTextfile(t *testing.T) {
	tmp := t.TempDir()
	metricsPath := filepath.Join(tmp, "kcgen.prom")

	require.NoError(t, run(params{
		csvDir:      filepath.Join(tmp, "tables"),
		crops:       testCropWheat,
		step:        1,
		metricsPath: metricsPath,
	}))

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kcurve_catalog_loads_total 1")
	assert.Contains(t, string(data), "kcurve_curve_points_total 111")
	assert.Contains(t, string(data), "kcurve_generate_duration_seconds_count 1")
}
