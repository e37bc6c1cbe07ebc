package catalog

import (
	"fmt"
	"sort"
	"time"
)

// StageDays holds the four growth-stage durations in days, in season order:
// initial, development, mid-season, late.
type StageDays [4]int

func (s StageDays) Initial() int     { return s[0] }
func (s StageDays) Development() int { return s[1] }
func (s StageDays) Mid() int         { return s[2] }
func (s StageDays) Late() int        { return s[3] }

// Total is the full season length in days.
func (s StageDays) Total() int { return s[0] + s[1] + s[2] + s[3] }

// CropRecord is one crop's agronomic reference data.
type CropRecord struct {
	Name      string
	KcIni     float64
	KcMid     float64
	KcEnd     float64
	HeightM   float64 // typical height at maturity, meters
	StageDays StageDays

	// PlantingDate marks stage day zero. Nil when the source document omits
	// it; callers then supply a planting date at query time.
	PlantingDate *time.Time
}

// Climate is the document-wide record used for coefficient adjustment:
// mean wind run at 2 m height and mean daily minimum relative humidity.
type Climate struct {
	U2    float64 // m/s
	RHMin float64 // percent, 0-100
}

// Catalog is an immutable crop-record lookup built once from a document.
// It is safe for concurrent readers without locking.
type Catalog struct {
	crops    map[string]CropRecord
	climate  Climate
	source   string
	loadedAt time.Time
}

// Get returns the record for name, failing with ErrUnknownCrop when the
// identifier is not in the catalog.
func (c *Catalog) Get(name string) (CropRecord, error) {
	rec, ok := c.crops[name]
	if !ok {
		return CropRecord{}, fmt.Errorf("%w: %q", ErrUnknownCrop, name)
	}
	// Copy the pointer so callers cannot alias the stored record.
	if rec.PlantingDate != nil {
		d := *rec.PlantingDate
		rec.PlantingDate = &d
	}
	return rec, nil
}

// Names returns all crop identifiers in sorted order. The slice is a fresh
// copy on every call.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.crops))
	for name := range c.crops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Climate returns the document-wide climate record.
func (c *Catalog) Climate() Climate { return c.climate }

// Len reports the number of crops in the catalog.
func (c *Catalog) Len() int { return len(c.crops) }

// Source identifies where the catalog came from: a file path, "inline" for
// Parse, or an embedded dataset label.
func (c *Catalog) Source() string { return c.source }

// LoadedAt is the construction timestamp.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }
