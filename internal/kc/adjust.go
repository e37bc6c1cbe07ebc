package kc

import (
	"math"

	"github.com/loamspade/kcurve/internal/catalog"
)

// defaultAdjustHeight stands in when neither the crop record nor an option
// supplies a height, matching a mid-height row crop.
const defaultAdjustHeight = 1.391

// lateAdjustFloor is the coefficient at or below which the late-stage
// climate correction is skipped; a sparse senescing canopy no longer
// responds to wind and humidity the way a full one does.
const lateAdjustFloor = 0.45

type settings struct {
	climate *catalog.Climate
	height  *float64
}

// Option tunes a single resolution without mutating the curve.
type Option func(*settings)

// WithClimate applies the wind and humidity correction to mid-season and
// late-stage coefficients. An RHMin below 1 is read as a fraction and
// scaled to percent.
func WithClimate(c catalog.Climate) Option {
	return func(s *settings) { s.climate = &c }
}

// WithHeight overrides the crop height, in meters, used by the climate
// correction.
func WithHeight(h float64) Option {
	return func(s *settings) { s.height = &h }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) heightOr(fallback float64) float64 {
	if s.height != nil {
		return *s.height
	}
	if fallback > 0 {
		return fallback
	}
	return defaultAdjustHeight
}

// adjustKc corrects a tabulated coefficient for local climate: a wind term
// against the 2 m/s reference minus a humidity term against the 45%
// reference, scaled by crop height relative to 3 m.
func adjustKc(kc, u2, rhMin, height float64) float64 {
	if rhMin < 1 {
		rhMin *= 100
	}
	adjustment := (0.04*(u2-2.0) - 0.0004*(rhMin-45.0)) * math.Pow(height/3.0, 0.3)
	return kc + adjustment
}

// stageAdjusts reports whether the climate correction applies to a stage's
// coefficient. Initial and development values always come straight from
// the table, and late values adjust only above the floor.
func stageAdjusts(stage Stage, kc float64) bool {
	switch stage {
	case StageMid:
		return true
	case StageLate:
		return kc > lateAdjustFloor
	}
	return false
}
