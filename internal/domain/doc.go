// Package domain models GloFAS ensemble river-discharge forecasts and the
// trigger decisions derived from them.
//
// # Data Source
//
// Forecasts originate from the Copernicus Global Flood Awareness System
// (GloFAS), which runs a 51-member ECMWF ensemble once per forecast cycle.
// Each member is one stochastic realization of the hydrological model; the
// spread across members approximates the forecast probability distribution.
// Depending on the country deployment, raw data arrives either as per-station
// whitespace-delimited text reports or as per-member discharge grids that are
// reduced to one value per administrative area (zonal maximum).
//
// # Conventions
//
// Lead time:
//
//	Days ahead of the run date, 1 through 7. Output artifacts are keyed by a
//	"<n>-day" label.
//
// Ensemble members:
//
//	Numbered 0 through 50 (51 nominal members). The station-report feed may
//	carry fewer members for a station; aggregation then divides by the number
//	of members actually present rather than the nominal 51.
//
// Exceedance probability:
//
//	exceedCount / ensembleSize with integer truncation, so partial exceedance
//	collapses to 0 until every member exceeds the threshold. 25 of 51 members
//	exceeding yields probability 0, not 0.49. Downstream consumers depend on
//	this encoding; do not "fix" it to a rounded ratio.
//
// Exceedance operator:
//
//	The grid and mock feeds count discharge >= threshold, the station-report
//	feed counts discharge > threshold. The asymmetry is inherited from the
//	upstream data contracts and both behaviors are kept.
//
// Return periods:
//
//	Each station carries four historical discharge thresholds (2, 5, 10 and
//	20-year recurrence, ascending). The resolved return period is the largest
//	period whose threshold the mean forecast discharge reaches.
//
// Alert classes:
//
//	Ordinal scale no < min < med < max. Countries with a banded policy (ZMB)
//	map probability against three cut points; everyone else is binary
//	(max at or above the max cut point, otherwise no). The trigger flag is a
//	separate policy: probability strictly greater than a configured minimum.
//
// Sentinel station:
//
//	Every station output array ends with a synthetic "no_station" row with
//	zero discharge and class "no", so downstream consumers always find at
//	least one record.
package domain
