// Package catalog loads and serves FAO-56 crop-coefficient reference data.
//
// # Data Source
//
// Coefficients, stage lengths, and crop heights follow FAO Irrigation and
// Drainage Paper No. 56 (Allen, Pereira, Raes, Smith, 1998), tables 11 and 12:
// https://www.fao.org/3/x0490e/x0490e00.htm. Tabulated Kc values assume the
// standard climatic condition (RHmin = 45%, u2 = 2 m/s); the kc package
// adjusts them for other climates.
//
// # Document Format
//
// A catalog document is TOML or YAML with two top-level sections:
//
//	[climate]            document-wide record: u2 (m/s), rh_min (%)
//	[crops.<key>]        one table per crop:
//	  name               string, must equal <key>
//	  k_ini, k_mid, k_end   stage coefficients, non-negative
//	  height_m           typical height at maturity, positive
//	  growth_stages_days exactly 4 positive day counts:
//	                     [initial, development, mid, late]
//	  planting_date      optional "2006-01-02" calendar date (stage day 0)
//
// # Validation
//
// Any schema violation aborts the load with ErrMalformedData wrapping the
// offending crop key and field; no partial catalog is ever returned. The
// FAO-56 plausibility bound Kc <= 2.0 is a modeling assumption of the source
// tables, not a load-time rule.
//
// # Shipped Datasets
//
// Three documents are embedded and parsed once on first use:
//
//	fao56.toml           reference table, 12 crops, no planting dates
//	fao56_seasonal.toml  the same crops with planting dates, plus grass
//	                     and alfalfa
//	climate_semiarid.toml  climate-only variant (u2 = 3.5, rh_min = 30)
//
// Catalogs are immutable once constructed and safe for concurrent readers.
package catalog
