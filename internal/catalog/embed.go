package catalog

import (
	_ "embed"
	"sync"
)

//go:embed data/fao56.toml
var fao56TOML []byte

//go:embed data/fao56_seasonal.toml
var fao56SeasonalTOML []byte

//go:embed data/climate_semiarid.toml
var climateSemiaridTOML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error

	seasonalOnce    sync.Once
	seasonalCatalog *Catalog
	seasonalErr     error

	semiaridOnce    sync.Once
	semiaridClimate Climate
	semiaridErr     error
)

// Default returns the embedded FAO-56 catalog. The instance is shared:
// it is parsed once and safe for concurrent use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = parse(fao56TOML, FormatTOML, "embedded:fao56.toml")
	})
	return defaultCatalog, defaultErr
}

// Seasonal returns the embedded catalog variant that carries planting dates
// for a northern-hemisphere temperate season.
func Seasonal() (*Catalog, error) {
	seasonalOnce.Do(func() {
		seasonalCatalog, seasonalErr = parse(fao56SeasonalTOML, FormatTOML, "embedded:fao56_seasonal.toml")
	})
	return seasonalCatalog, seasonalErr
}

// SemiaridClimate returns the embedded semi-arid climate profile, useful as
// a ready-made contrast to the standard condition baked into Default.
func SemiaridClimate() (Climate, error) {
	semiaridOnce.Do(func() {
		semiaridClimate, semiaridErr = ParseClimate(climateSemiaridTOML, FormatTOML)
	})
	return semiaridClimate, semiaridErr
}
