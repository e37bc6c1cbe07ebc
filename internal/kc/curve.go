package kc

import (
	"fmt"
	"time"

	"github.com/loamspade/kcurve/internal/catalog"
)

const dateLayout = "2006-01-02"

// Curve resolves a crop's coefficient by days since planting. The zero
// value is not usable; build one with CurveFor.
type Curve struct {
	crop   string
	height float64
	kcIni  float64
	kcMid  float64
	kcEnd  float64

	// Cumulative day offsets where each stage begins.
	devStart  int
	midStart  int
	lateStart int
	total     int
}

// CurveFor builds the day-based coefficient curve for one catalog record.
func CurveFor(rec catalog.CropRecord) Curve {
	days := rec.StageDays
	return Curve{
		crop:      rec.Name,
		height:    rec.HeightM,
		kcIni:     rec.KcIni,
		kcMid:     rec.KcMid,
		kcEnd:     rec.KcEnd,
		devStart:  days.Initial(),
		midStart:  days.Initial() + days.Development(),
		lateStart: days.Initial() + days.Development() + days.Mid(),
		total:     days.Total(),
	}
}

// Crop returns the identifier the curve was built for.
func (c Curve) Crop() string { return c.crop }

// Total returns the season length in days.
func (c Curve) Total() int { return c.total }

// Resolution is one resolved point on a coefficient curve.
type Resolution struct {
	Crop     string  `json:"crop"`
	Day      int     `json:"day"`
	Stage    Stage   `json:"stage"`
	Kc       float64 `json:"kc"`
	Adjusted bool    `json:"adjusted"`
}

// At resolves the coefficient on a given day since planting, day 0 being
// the planting day. Days fall into stages in half-open spans, so the first
// development day already moves off the initial value and the last day of
// a ramp lands exactly on the next tabulated coefficient. Days past the
// season total resolve to StageComplete at the end value; negative days
// fail with ErrBeforePlanting.
func (c Curve) At(day int, opts ...Option) (Resolution, error) {
	if day < 0 {
		return Resolution{}, fmt.Errorf("%w: day %d", ErrBeforePlanting, day)
	}

	res := Resolution{Crop: c.crop, Day: day}
	switch {
	case day < c.devStart:
		res.Stage = StageInitial
		res.Kc = c.kcIni
	case day < c.midStart:
		res.Stage = StageDevelopment
		res.Kc = interpolate(c.kcIni, c.kcMid, day+1-c.devStart, c.midStart-c.devStart)
	case day < c.lateStart:
		res.Stage = StageMid
		res.Kc = c.kcMid
	case day < c.total:
		res.Stage = StageLate
		res.Kc = interpolate(c.kcMid, c.kcEnd, day+1-c.lateStart, c.total-c.lateStart)
	default:
		res.Stage = StageComplete
		res.Kc = c.kcEnd
	}

	s := newSettings(opts)
	if s.climate != nil && stageAdjusts(res.Stage, res.Kc) {
		res.Kc = adjustKc(res.Kc, s.climate.U2, s.climate.RHMin, s.heightOr(c.height))
		res.Adjusted = true
	}
	return res, nil
}

// ForDate resolves the coefficient for a calendar date. Dates normalize to
// whole days, so time of day and zone offsets within a day do not shift
// the result. Querying before the planting date fails with
// ErrBeforePlanting.
func (c Curve) ForDate(planted, query time.Time, opts ...Option) (Resolution, error) {
	day := elapsedDays(planted, query)
	if day < 0 {
		return Resolution{}, fmt.Errorf("%w: %s is before %s",
			ErrBeforePlanting, query.Format(dateLayout), planted.Format(dateLayout))
	}
	return c.At(day, opts...)
}

// Resolve is the one-shot form: build the record's curve and resolve a
// calendar date against it.
func Resolve(rec catalog.CropRecord, planted, query time.Time, opts ...Option) (Resolution, error) {
	return CurveFor(rec).ForDate(planted, query, opts...)
}

// interpolate walks from one coefficient to another across length steps,
// sitting exactly on the target at step == length.
func interpolate(from, to float64, step, length int) float64 {
	return from + (to-from)*float64(step)/float64(length)
}

// elapsedDays counts whole calendar days from planted to query, ignoring
// time of day.
func elapsedDays(planted, query time.Time) int {
	p := time.Date(planted.Year(), planted.Month(), planted.Day(), 0, 0, 0, 0, time.UTC)
	q := time.Date(query.Year(), query.Month(), query.Day(), 0, 0, 0, 0, time.UTC)
	return int(q.Sub(p) / (24 * time.Hour))
}
