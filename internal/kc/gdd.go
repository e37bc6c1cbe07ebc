package kc

import (
	"fmt"
	"math"
)

// Clamp band for daily temperature extremes, degrees Celsius. Crop
// development stalls outside it, so hotter or colder readings contribute
// as if they sat on the edge.
const (
	gddMaxTempFloor = 0.0
	gddMinTempFloor = -5.0
	gddTempCeil     = 30.0
)

// DailyGDD computes one day's growing degree days from the day's
// temperature extremes and a crop base temperature, all in degrees
// Celsius. The maximum clamps to [0, 30], the minimum to [-5, 30], and the
// maximum never sits below the minimum. A negative base temperature is
// treated as zero. Days whose clamped mean does not clear the base
// contribute nothing.
func DailyGDD(maxTemp, minTemp, baseTemp float64) float64 {
	maxTemp = math.Min(math.Max(maxTemp, gddMaxTempFloor), gddTempCeil)
	minTemp = math.Min(math.Max(minTemp, gddMinTempFloor), gddTempCeil)
	baseTemp = math.Max(baseTemp, 0)
	maxTemp = math.Max(maxTemp, minTemp)

	avg := (maxTemp + minTemp) / 2
	if avg <= baseTemp {
		return 0
	}
	return avg - baseTemp
}

// GDDStage pairs a stage's cumulative-GDD upper boundary with the
// coefficient reached at the end of the stage.
type GDDStage struct {
	EndGDD float64 `json:"end_gdd"`
	EndKc  float64 `json:"end_kc"`
}

// GDDCurve resolves a crop's coefficient by cumulative growing degree days
// instead of calendar days. Accumulate the total with DailyGDD between
// resolutions.
type GDDCurve struct {
	crop        string
	initial     GDDStage
	development GDDStage
	mid         GDDStage
	late        GDDStage
}

// NewGDDCurve builds a degree-day curve from the four stage boundaries in
// season order. Boundaries must be positive and strictly increasing, and
// every coefficient must sit within [0, 2]; anything else fails with
// ErrInvalidCurve.
func NewGDDCurve(crop string, initial, development, mid, late GDDStage) (*GDDCurve, error) {
	names := []Stage{StageInitial, StageDevelopment, StageMid, StageLate}
	prev := 0.0
	for i, b := range []GDDStage{initial, development, mid, late} {
		if b.EndGDD <= prev {
			return nil, fmt.Errorf("%w: crop %q: %s stage boundary %g must exceed %g",
				ErrInvalidCurve, crop, names[i], b.EndGDD, prev)
		}
		if b.EndKc < 0 || b.EndKc > 2 {
			return nil, fmt.Errorf("%w: crop %q: %s stage end Kc %g outside [0, 2]",
				ErrInvalidCurve, crop, names[i], b.EndKc)
		}
		prev = b.EndGDD
	}
	return &GDDCurve{crop: crop, initial: initial, development: development, mid: mid, late: late}, nil
}

// Crop returns the identifier the curve was built for.
func (c *GDDCurve) Crop() string { return c.crop }

// GDDResolution is one resolved point on a degree-day curve.
type GDDResolution struct {
	Crop          string  `json:"crop"`
	CumulativeGDD float64 `json:"cumulative_gdd"`
	Stage         Stage   `json:"stage"`
	Kc            float64 `json:"kc"`
	Adjusted      bool    `json:"adjusted"`
}

// At resolves the coefficient at a cumulative GDD total. Stage boundaries
// are inclusive: a total sitting exactly on a stage's end resolves inside
// that stage, already at its end coefficient, so consecutive stages meet
// without a jump. Totals at or below the initial boundary, negative
// accumulations included, resolve to the initial coefficient; totals past
// the late boundary resolve to StageComplete holding the late-stage end
// coefficient.
func (c *GDDCurve) At(cumulative float64, opts ...Option) GDDResolution {
	res := GDDResolution{Crop: c.crop, CumulativeGDD: cumulative}
	switch {
	case cumulative <= c.initial.EndGDD:
		res.Stage = StageInitial
		res.Kc = c.initial.EndKc
	case cumulative <= c.development.EndGDD:
		res.Stage = StageDevelopment
		res.Kc = interpolateGDD(c.initial, c.development, cumulative)
	case cumulative <= c.mid.EndGDD:
		res.Stage = StageMid
		res.Kc = interpolateGDD(c.development, c.mid, cumulative)
	case cumulative <= c.late.EndGDD:
		res.Stage = StageLate
		res.Kc = interpolateGDD(c.mid, c.late, cumulative)
	default:
		res.Stage = StageComplete
		res.Kc = c.late.EndKc
	}

	s := newSettings(opts)
	if s.climate != nil && stageAdjusts(res.Stage, res.Kc) {
		res.Kc = adjustKc(res.Kc, s.climate.U2, s.climate.RHMin, s.heightOr(0))
		res.Adjusted = true
	}
	return res
}

func interpolateGDD(from, to GDDStage, cumulative float64) float64 {
	frac := (cumulative - from.EndGDD) / (to.EndGDD - from.EndGDD)
	return from.EndKc + (to.EndKc-from.EndKc)*frac
}
