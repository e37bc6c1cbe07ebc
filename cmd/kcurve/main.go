// Command kcurve resolves FAO-56 crop coefficients from the command line:
// by calendar date, by day since planting, or by cumulative growing degree
// days.
//
// Usage:
//
//	kcurve -list
//	kcurve -crop winter_wheat -planted 2023-09-01 -date 2023-11-10
//	kcurve -crop winter_wheat -day 70 -adjust -semiarid
//	kcurve -crop corn -gdd-bounds 200,500,800,1000 -gdd 600 -adjust
//
// Results print to stdout and logs go to stderr, so output stays pipeable.
// The exit code is 1 for load or resolution failures and 2 for usage
// mistakes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/loamspade/kcurve/internal/catalog"
	"github.com/loamspade/kcurve/internal/config"
	"github.com/loamspade/kcurve/internal/kc"
	"github.com/loamspade/kcurve/internal/observability"
)

const dateLayout = "2006-01-02"

// clock supplies the default query date; tests pin it to a fixed day.
var clock clockwork.Clock = clockwork.NewRealClock()

type params struct {
	dataPath    string
	seasonal    bool
	climatePath string
	semiarid    bool

	list bool
	crop string

	day     int
	date    string
	planted string

	adjust bool
	height float64

	gddBounds string
	gdd       float64
	gddToday  string

	jsonOut     bool
	metricsPath string
}

func main() {
	var p params
	flag.StringVar(&p.dataPath, "data", "", "crop catalog document (.toml/.yaml); empty uses the embedded FAO-56 catalog")
	flag.BoolVar(&p.seasonal, "seasonal", false, "use the embedded seasonal catalog (includes planting dates) when -data is empty")
	flag.StringVar(&p.climatePath, "climate", "", "climate document overriding the catalog climate for -adjust")
	flag.BoolVar(&p.semiarid, "semiarid", false, "use the embedded semi-arid climate profile for -adjust")
	flag.BoolVar(&p.list, "list", false, "print the catalog's crop names and exit")
	flag.StringVar(&p.crop, "crop", "", "crop identifier to resolve")
	flag.IntVar(&p.day, "day", -1, "resolve by day since planting instead of by date")
	flag.StringVar(&p.date, "date", "", "query date (YYYY-MM-DD); defaults to today")
	flag.StringVar(&p.planted, "planted", "", "planting date (YYYY-MM-DD); defaults to the catalog's planting_date")
	flag.BoolVar(&p.adjust, "adjust", false, "apply the climate adjustment to mid and late stage values")
	flag.Float64Var(&p.height, "height", 0, "crop height override in meters for -adjust")
	flag.StringVar(&p.gddBounds, "gdd-bounds", "", "four cumulative-GDD stage boundaries b1,b2,b3,b4; switches to degree-day resolution")
	flag.Float64Var(&p.gdd, "gdd", 0, "cumulative growing degree days (with -gdd-bounds)")
	flag.StringVar(&p.gddToday, "gdd-today", "", "tmax,tmin,tbase adding one day of accumulation to -gdd")
	flag.BoolVar(&p.jsonOut, "json", false, "print results as JSON")
	flag.StringVar(&p.metricsPath, "metrics", "", "write Prometheus textfile exposition to this path on exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg)
	metrics := observability.NewMetrics()

	os.Exit(run(p, cfg, os.Stdout, logger, metrics))
}

func run(p params, cfg *config.Config, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) int {
	finish := func(code int) int {
		if p.metricsPath == "" {
			return code
		}
		if err := metrics.DumpTextfile(p.metricsPath); err != nil {
			logger.Error("failed to write metrics file", "path", p.metricsPath, "error", err)
			if code == 0 {
				code = 1
			}
		}
		return code
	}

	cat, err := loadCatalog(p, cfg)
	if err != nil {
		metrics.CatalogLoadErrors.Inc()
		logger.Error("failed to load catalog", "error", err)
		return finish(1)
	}
	metrics.CatalogLoads.Inc()
	logger.Debug("catalog loaded", "source", cat.Source(), "crops", cat.Len())

	if p.list {
		if err := printNames(out, cat.Names(), p.jsonOut); err != nil {
			logger.Error("failed to print crop names", "error", err)
			return finish(1)
		}
		return finish(0)
	}

	if p.crop == "" {
		logger.Error("missing -crop (or -list)")
		return finish(2)
	}

	rec, err := cat.Get(p.crop)
	if err != nil {
		outcome := "unknown"
		if !errors.Is(err, catalog.ErrUnknownCrop) {
			outcome = "error"
		}
		metrics.CropLookups.WithLabelValues(outcome).Inc()
		logger.Error("crop lookup failed", "crop", p.crop, "error", err)
		return finish(1)
	}
	metrics.CropLookups.WithLabelValues("found").Inc()

	opts, code, err := resolveOptions(p, cfg, cat)
	if err != nil {
		logger.Error("failed to build adjustment options", "error", err)
		return finish(code)
	}

	if p.gddBounds != "" {
		return finish(runGDD(p, rec, opts, out, logger, metrics))
	}
	if p.gddToday != "" {
		logger.Error("-gdd-today requires -gdd-bounds")
		return finish(2)
	}
	return finish(runDay(p, rec, opts, out, logger, metrics))
}

// loadCatalog picks the crop data source: an explicit -data path, the
// configured path, or one of the embedded datasets.
func loadCatalog(p params, cfg *config.Config) (*catalog.Catalog, error) {
	path := p.dataPath
	if path == "" {
		path = cfg.CatalogPath
	}
	switch {
	case path != "":
		return catalog.Load(path)
	case p.seasonal:
		return catalog.Seasonal()
	default:
		return catalog.Default()
	}
}

// resolveOptions builds the resolution options for -adjust: the climate
// comes from -semiarid, a climate document, or the catalog itself, in that
// order of preference.
func resolveOptions(p params, cfg *config.Config, cat *catalog.Catalog) ([]kc.Option, int, error) {
	var opts []kc.Option
	if p.height > 0 {
		opts = append(opts, kc.WithHeight(p.height))
	}
	if !p.adjust {
		return opts, 0, nil
	}

	climatePath := p.climatePath
	if climatePath == "" {
		climatePath = cfg.ClimatePath
	}
	if p.semiarid && climatePath != "" {
		return nil, 2, errors.New("-semiarid conflicts with -climate")
	}

	var (
		climate catalog.Climate
		err     error
	)
	switch {
	case p.semiarid:
		climate, err = catalog.SemiaridClimate()
	case climatePath != "":
		climate, err = catalog.LoadClimate(climatePath)
	default:
		climate = cat.Climate()
	}
	if err != nil {
		return nil, 1, err
	}
	return append(opts, kc.WithClimate(climate)), 0, nil
}

func runDay(p params, rec catalog.CropRecord, opts []kc.Option, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) int {
	curve := kc.CurveFor(rec)

	var (
		res kc.Resolution
		err error
	)
	if p.day >= 0 {
		res, err = curve.At(p.day, opts...)
	} else {
		var planted, query time.Time
		if planted, query, err = queryDates(p, rec); err != nil {
			logger.Error("cannot resolve dates", "crop", rec.Name, "error", err)
			return 2
		}
		res, err = curve.ForDate(planted, query, opts...)
	}
	if err != nil {
		logger.Error("resolution failed", "crop", rec.Name, "error", err)
		return 1
	}

	metrics.ObserveResolution(string(res.Stage), res.Adjusted)

	if p.jsonOut {
		return printJSON(out, res, logger)
	}
	fmt.Fprintf(out, "crop:  %s\n", res.Crop)
	fmt.Fprintf(out, "day:   %d\n", res.Day)
	fmt.Fprintf(out, "stage: %s\n", res.Stage)
	fmt.Fprintf(out, "kc:    %.4f%s\n", res.Kc, adjustedSuffix(res.Adjusted))
	return 0
}

func runGDD(p params, rec catalog.CropRecord, opts []kc.Option, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) int {
	bounds, err := parseFloats(p.gddBounds, 4)
	if err != nil {
		logger.Error("invalid -gdd-bounds", "error", err)
		return 2
	}

	// Stage-end coefficients mirror the day model: development ends at the
	// mid plateau value, late at the end-of-season value.
	curve, err := kc.NewGDDCurve(rec.Name,
		kc.GDDStage{EndGDD: bounds[0], EndKc: rec.KcIni},
		kc.GDDStage{EndGDD: bounds[1], EndKc: rec.KcMid},
		kc.GDDStage{EndGDD: bounds[2], EndKc: rec.KcMid},
		kc.GDDStage{EndGDD: bounds[3], EndKc: rec.KcEnd},
	)
	if err != nil {
		logger.Error("cannot build degree-day curve", "crop", rec.Name, "error", err)
		return 1
	}

	cumulative := p.gdd
	if p.gddToday != "" {
		temps, err := parseFloats(p.gddToday, 3)
		if err != nil {
			logger.Error("invalid -gdd-today", "error", err)
			return 2
		}
		cumulative += kc.DailyGDD(temps[0], temps[1], temps[2])
	}

	res := curve.At(cumulative, opts...)
	metrics.ObserveResolution(string(res.Stage), res.Adjusted)

	if p.jsonOut {
		return printJSON(out, res, logger)
	}
	fmt.Fprintf(out, "crop:  %s\n", res.Crop)
	fmt.Fprintf(out, "gdd:   %.1f\n", res.CumulativeGDD)
	fmt.Fprintf(out, "stage: %s\n", res.Stage)
	fmt.Fprintf(out, "kc:    %.4f%s\n", res.Kc, adjustedSuffix(res.Adjusted))
	return 0
}

// queryDates resolves the planting and query dates for date-based
// resolution. The planting date comes from -planted or the record; the
// query date from -date or the current day.
func queryDates(p params, rec catalog.CropRecord) (planted, query time.Time, err error) {
	switch {
	case p.planted != "":
		planted, err = time.Parse(dateLayout, p.planted)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -planted: %w", err)
		}
	case rec.PlantingDate != nil:
		planted = *rec.PlantingDate
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("crop %q has no planting_date; pass -planted or -day", rec.Name)
	}

	if p.date == "" {
		return planted, clock.Now(), nil
	}
	query, err = time.Parse(dateLayout, p.date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -date: %w", err)
	}
	return planted, query, nil
}

func printNames(out io.Writer, names []string, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func printJSON(out io.Writer, v any, logger *slog.Logger) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return 1
	}
	fmt.Fprintln(out, string(data))
	return 0
}

func adjustedSuffix(adjusted bool) string {
	if adjusted {
		return " (climate adjusted)"
	}
	return ""
}

// parseFloats splits a comma-separated list and requires exactly n values.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}
