package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Supported document formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// plantingDateLayout is the calendar-date form of planting_date fields.
const plantingDateLayout = "2006-01-02"

// rawDocument mirrors the document schema before validation. Pointer fields
// distinguish absent keys from zero values.
type rawDocument struct {
	Crops   map[string]rawCrop `koanf:"crops"`
	Climate *rawClimate        `koanf:"climate"`
}

type rawCrop struct {
	Name         *string  `koanf:"name"`
	KcIni        *float64 `koanf:"k_ini"`
	KcMid        *float64 `koanf:"k_mid"`
	KcEnd        *float64 `koanf:"k_end"`
	HeightM      *float64 `koanf:"height_m"`
	StageDays    []int    `koanf:"growth_stages_days"`
	PlantingDate *string  `koanf:"planting_date"`
}

type rawClimate struct {
	U2    *float64 `koanf:"u2"`
	RHMin *float64 `koanf:"rh_min"`
}

// Parse decodes and validates a catalog document given as raw bytes.
// format is FormatTOML or FormatYAML.
func Parse(doc []byte, format string) (*Catalog, error) {
	return parse(doc, format, "inline")
}

// Load reads and validates a catalog document from disk. The format follows
// the file extension: .toml, .yaml, or .yml.
func Load(path string) (*Catalog, error) {
	doc, format, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return parse(doc, format, path)
}

// ParseClimate reads only the climate section of a document. It accepts both
// full catalog documents and climate-only variants.
func ParseClimate(doc []byte, format string) (Climate, error) {
	raw, err := decode(doc, format)
	if err != nil {
		return Climate{}, err
	}
	return validateClimate(raw.Climate)
}

// LoadClimate is ParseClimate for a document on disk.
func LoadClimate(path string) (Climate, error) {
	doc, format, err := readDocument(path)
	if err != nil {
		return Climate{}, err
	}
	raw, err := decode(doc, format)
	if err != nil {
		return Climate{}, err
	}
	return validateClimate(raw.Climate)
}

func readDocument(path string) ([]byte, string, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, "", err
	}
	doc, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, "", fmt.Errorf("read catalog document %s: %w", path, err)
	}
	return doc, format, nil
}

func formatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported document extension %q", ErrMalformedData, filepath.Ext(path))
	}
}

func parse(doc []byte, format, source string) (*Catalog, error) {
	raw, err := decode(doc, format)
	if err != nil {
		return nil, err
	}
	return newCatalog(raw, source)
}

// decode parses the document and unmarshals it into the raw schema structs.
// Parser and type errors both surface as ErrMalformedData.
func decode(doc []byte, format string) (*rawDocument, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(doc), parser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	var raw rawDocument
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return &raw, nil
}

func parserFor(format string) (koanf.Parser, error) {
	switch format {
	case FormatTOML:
		return toml.Parser(), nil
	case FormatYAML:
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported document format %q", ErrMalformedData, format)
	}
}

func newCatalog(raw *rawDocument, source string) (*Catalog, error) {
	if len(raw.Crops) == 0 {
		return nil, fmt.Errorf("%w: document has no crops", ErrMalformedData)
	}
	climate, err := validateClimate(raw.Climate)
	if err != nil {
		return nil, err
	}

	crops := make(map[string]CropRecord, len(raw.Crops))
	for key, rc := range raw.Crops {
		rec, err := validateCrop(key, rc)
		if err != nil {
			return nil, err
		}
		crops[rec.Name] = rec
	}

	return &Catalog{
		crops:    crops,
		climate:  climate,
		source:   source,
		loadedAt: clock.Now(),
	}, nil
}

// malformedCrop builds the schema-violation error for one crop table.
func malformedCrop(key, format string, args ...any) error {
	return fmt.Errorf("%w: crop %q: %s", ErrMalformedData, key, fmt.Sprintf(format, args...))
}

func validateCrop(key string, rc rawCrop) (CropRecord, error) {
	switch {
	case rc.Name == nil || *rc.Name == "":
		return CropRecord{}, malformedCrop(key, "missing required field %q", "name")
	case rc.KcIni == nil:
		return CropRecord{}, malformedCrop(key, "missing required field %q", "k_ini")
	case rc.KcMid == nil:
		return CropRecord{}, malformedCrop(key, "missing required field %q", "k_mid")
	case rc.KcEnd == nil:
		return CropRecord{}, malformedCrop(key, "missing required field %q", "k_end")
	case rc.HeightM == nil:
		return CropRecord{}, malformedCrop(key, "missing required field %q", "height_m")
	case rc.StageDays == nil:
		return CropRecord{}, malformedCrop(key, "missing required field %q", "growth_stages_days")
	}

	if *rc.Name != key {
		return CropRecord{}, malformedCrop(key, "name %q does not match its table key", *rc.Name)
	}
	if *rc.KcIni < 0 || *rc.KcMid < 0 || *rc.KcEnd < 0 {
		return CropRecord{}, malformedCrop(key, "coefficients must be non-negative")
	}
	if *rc.HeightM <= 0 {
		return CropRecord{}, malformedCrop(key, "height_m must be positive, got %g", *rc.HeightM)
	}
	if len(rc.StageDays) != len(StageDays{}) {
		return CropRecord{}, malformedCrop(key, "growth_stages_days has %d entries, want %d", len(rc.StageDays), len(StageDays{}))
	}

	var days StageDays
	for i, d := range rc.StageDays {
		if d < 1 {
			return CropRecord{}, malformedCrop(key, "growth_stages_days[%d] = %d, want a positive day count", i, d)
		}
		days[i] = d
	}

	rec := CropRecord{
		Name:      *rc.Name,
		KcIni:     *rc.KcIni,
		KcMid:     *rc.KcMid,
		KcEnd:     *rc.KcEnd,
		HeightM:   *rc.HeightM,
		StageDays: days,
	}

	if rc.PlantingDate != nil {
		t, err := time.Parse(plantingDateLayout, *rc.PlantingDate)
		if err != nil {
			return CropRecord{}, malformedCrop(key, "planting_date %q is not a %s date", *rc.PlantingDate, plantingDateLayout)
		}
		rec.PlantingDate = &t
	}

	return rec, nil
}

func validateClimate(rc *rawClimate) (Climate, error) {
	switch {
	case rc == nil:
		return Climate{}, fmt.Errorf("%w: missing climate section", ErrMalformedData)
	case rc.U2 == nil:
		return Climate{}, fmt.Errorf("%w: climate: missing required field %q", ErrMalformedData, "u2")
	case rc.RHMin == nil:
		return Climate{}, fmt.Errorf("%w: climate: missing required field %q", ErrMalformedData, "rh_min")
	case *rc.U2 < 0:
		return Climate{}, fmt.Errorf("%w: climate: u2 must be non-negative, got %g", ErrMalformedData, *rc.U2)
	case *rc.RHMin < 0 || *rc.RHMin > 100:
		return Climate{}, fmt.Errorf("%w: climate: rh_min must be within [0, 100], got %g", ErrMalformedData, *rc.RHMin)
	}
	return Climate{U2: *rc.U2, RHMin: *rc.RHMin}, nil
}
