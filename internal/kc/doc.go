// Package kc resolves FAO-56 crop coefficients (Kc) from growth-stage
// curves.
//
// # Growth Stages
//
// A season splits into four stages of fixed length: initial, development,
// mid-season, and late. Kc holds at the tabulated initial value through the
// initial stage, climbs linearly to the mid-season value across
// development, plateaus through mid-season, and declines linearly to the
// end-of-season value across the late stage. Past the last stage the season
// is complete and Kc holds at the end value.
//
// # Two Clocks
//
// Curve advances by calendar days since planting. GDDCurve advances by
// cumulative growing degree days, which tracks crop phenology across
// climates and seasons better than the calendar does; DailyGDD accumulates
// the total from daily temperature extremes.
//
// # Climate Adjustment
//
// Tabulated mid and end coefficients describe a sub-humid reference climate
// with RHmin near 45% and wind near 2 m/s. WithClimate applies the FAO-56
// wind and humidity correction for other climates, scaled by crop height.
// Only mid-season and late-stage values adjust; a late value at or below
// 0.45 is left alone.
package kc
