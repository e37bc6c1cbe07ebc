// Command kcgen writes day-by-day crop-coefficient tables for every crop in
// a catalog: one CSV per crop, plus an optional combined JSON document.
//
// Usage:
//
//	kcgen -csv-dir out/tables
//	kcgen -crops winter_wheat,corn -adjust -json-out out/curves.json
//	kcgen -data crops.toml -csv-dir out/tables -metrics out/kcgen.prom
//
// Each table covers day zero through the end of the season, with one extra
// row showing the completed-season value. The date column is filled when the
// catalog carries a planting_date for the crop and left empty otherwise.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/loamspade/kcurve/internal/catalog"
	"github.com/loamspade/kcurve/internal/kc"
	"github.com/loamspade/kcurve/internal/observability"
)

const dateLayout = "2006-01-02"

type params struct {
	dataPath    string
	crops       string
	csvDir      string
	jsonOut     string
	step        int
	adjust      bool
	climatePath string
	metricsPath string
}

func main() {
	var p params
	flag.StringVar(&p.dataPath, "data", "", "crop catalog document; empty uses the embedded seasonal catalog")
	flag.StringVar(&p.crops, "crops", "", "comma-separated crop subset (empty generates every crop)")
	flag.StringVar(&p.csvDir, "csv-dir", "kc_tables", "directory for per-crop CSV tables")
	flag.StringVar(&p.jsonOut, "json-out", "", "write all curves to a single JSON document at this path")
	flag.IntVar(&p.step, "step", 1, "day increment between rows (the season-end row is always written)")
	flag.BoolVar(&p.adjust, "adjust", false, "add a climate-adjusted column using the catalog climate")
	flag.StringVar(&p.climatePath, "climate", "", "climate document overriding the catalog climate for -adjust")
	flag.StringVar(&p.metricsPath, "metrics", "", "write Prometheus textfile exposition to this path")
	flag.Parse()

	if err := run(p); err != nil {
		log.Fatal(err)
	}
}

func run(p params) error {
	if p.step < 1 {
		return fmt.Errorf("step must be at least 1, got %d", p.step)
	}

	start := time.Now()
	metrics := observability.NewMetrics()

	cat, err := loadCatalog(p)
	if err != nil {
		metrics.CatalogLoadErrors.Inc()
		return fmt.Errorf("load catalog: %w", err)
	}
	metrics.CatalogLoads.Inc()
	log.Printf("loaded catalog %s with %d crops", cat.Source(), cat.Len())

	names, err := selectCrops(p, cat)
	if err != nil {
		return err
	}

	var climate catalog.Climate
	if p.adjust {
		if climate, err = resolveClimate(p, cat); err != nil {
			return fmt.Errorf("load climate: %w", err)
		}
	}

	curves := make(map[string][]kc.Resolution, len(names))
	stats := runStats{stageRows: make(map[kc.Stage]int)}
	for _, name := range names {
		rec, err := cat.Get(name)
		if err != nil {
			return err
		}
		rows, err := generateCrop(p, rec, climate)
		if err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
		curves[name] = rows
		stats.observe(rows)
		metrics.CurvePoints.Add(float64(len(rows)))
		log.Printf("%s: %d rows -> %s", name, len(rows), csvPath(p.csvDir, name))
	}

	if p.jsonOut != "" {
		if err := writeJSON(p.jsonOut, curves); err != nil {
			return fmt.Errorf("write %s: %w", p.jsonOut, err)
		}
		log.Printf("combined JSON -> %s", p.jsonOut)
	}

	elapsed := time.Since(start)
	metrics.GenerateDuration.Observe(elapsed.Seconds())
	if p.metricsPath != "" {
		if err := metrics.DumpTextfile(p.metricsPath); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	printStats(stats, p.csvDir, elapsed)
	return nil
}

type runStats struct {
	crops     int
	rows      int
	stageRows map[kc.Stage]int
	maxKc     float64
	maxKcCrop string
}

func (s *runStats) observe(rows []kc.Resolution) {
	s.crops++
	s.rows += len(rows)
	for _, res := range rows {
		s.stageRows[res.Stage]++
		if res.Kc > s.maxKc {
			s.maxKc = res.Kc
			s.maxKcCrop = res.Crop
		}
	}
}

func loadCatalog(p params) (*catalog.Catalog, error) {
	if p.dataPath != "" {
		return catalog.Load(p.dataPath)
	}
	return catalog.Seasonal()
}

func selectCrops(p params, cat *catalog.Catalog) ([]string, error) {
	if p.crops == "" {
		return cat.Names(), nil
	}
	names := strings.Split(p.crops, ",")
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
		// Fail before generating anything rather than partway through.
		if _, err := cat.Get(names[i]); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func resolveClimate(p params, cat *catalog.Catalog) (catalog.Climate, error) {
	if p.climatePath != "" {
		return catalog.LoadClimate(p.climatePath)
	}
	return cat.Climate(), nil
}

// generateCrop writes one crop's CSV table and returns the resolutions that
// fed it. The table runs a row past the season end so the completed-season
// value is visible.
func generateCrop(p params, rec catalog.CropRecord, climate catalog.Climate) ([]kc.Resolution, error) {
	curve := kc.CurveFor(rec)

	header := []string{"day", "date", "stage", "kc"}
	if p.adjust {
		header = append(header, "kc_adjusted")
	}
	records := [][]string{header}

	days := make([]int, 0, curve.Total()/p.step+2)
	for day := 0; day < curve.Total(); day += p.step {
		days = append(days, day)
	}
	// The completed-season row closes every table regardless of step.
	days = append(days, curve.Total())

	rows := make([]kc.Resolution, 0, len(days))
	for _, day := range days {
		res, err := curve.At(day)
		if err != nil {
			return nil, err
		}

		record := []string{
			strconv.Itoa(day),
			dateFor(rec, day),
			string(res.Stage),
			strconv.FormatFloat(res.Kc, 'f', 4, 64),
		}
		if p.adjust {
			adj, err := curve.At(day, kc.WithClimate(climate))
			if err != nil {
				return nil, err
			}
			record = append(record, strconv.FormatFloat(adj.Kc, 'f', 4, 64))
			res = adj
		}
		records = append(records, record)
		rows = append(rows, res)
	}

	if err := writeCSV(csvPath(p.csvDir, rec.Name), records); err != nil {
		return nil, err
	}
	return rows, nil
}

func dateFor(rec catalog.CropRecord, day int) string {
	if rec.PlantingDate == nil {
		return ""
	}
	return rec.PlantingDate.AddDate(0, 0, day).Format(dateLayout)
}

func csvPath(dir, crop string) string {
	return filepath.Join(dir, crop+".csv")
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(stats runStats, csvDir string, elapsed time.Duration) {
	fmt.Println("generation complete:")
	fmt.Printf("  crops:   %d\n", stats.crops)
	fmt.Printf("  rows:    %d\n", stats.rows)
	for _, stage := range []kc.Stage{kc.StageInitial, kc.StageDevelopment, kc.StageMid, kc.StageLate, kc.StageComplete} {
		if n := stats.stageRows[stage]; n > 0 {
			fmt.Printf("    %-12s %d\n", stage, n)
		}
	}
	fmt.Printf("  max kc:  %.4f (%s)\n", stats.maxKc, stats.maxKcCrop)
	fmt.Printf("  csv dir: %s\n", csvDir)
	fmt.Printf("  elapsed: %s\n", elapsed.Round(time.Millisecond))
}
