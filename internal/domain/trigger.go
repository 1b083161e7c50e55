package domain

// ExceedOp is the comparison used when counting ensemble members above the
// trigger threshold. The grid and mock feeds use >=, the station-report feed
// uses >; both inherited behaviors are kept (see package doc).
type ExceedOp int

const (
	ExceedGreaterEqual ExceedOp = iota
	ExceedGreater
)

// EnsembleSizing selects the divisor for probability and mean: the nominal 51
// members (grid, mock) or the number of records actually present
// (station-report, which may carry partial ensembles).
type EnsembleSizing int

const (
	SizeNominal EnsembleSizing = iota
	SizeObserved
)

// EnsembleStats is the raw aggregate over one (site, leadTime) record group.
type EnsembleStats struct {
	ExceedCount   int
	EnsembleSize  int
	MeanDischarge float64
	Probability   float64
}

// Aggregate reduces one (site, leadTime) group of ensemble records against a
// trigger threshold. Probability is exceedCount/ensembleSize with integer
// truncation, so it is 1 only when every counted member exceeds.
func Aggregate(records []ForecastRecord, threshold float64, op ExceedOp, sizing EnsembleSizing) EnsembleStats {
	size := NominalEnsembleSize
	if sizing == SizeObserved {
		size = len(records)
	}
	if size == 0 {
		return EnsembleStats{}
	}

	count := 0
	sum := 0.0
	for _, rec := range records {
		sum += rec.Discharge
		switch op {
		case ExceedGreater:
			if rec.Discharge > threshold {
				count++
			}
		default:
			if rec.Discharge >= threshold {
				count++
			}
		}
	}

	return EnsembleStats{
		ExceedCount:   count,
		EnsembleSize:  size,
		MeanDischarge: sum / float64(size),
		Probability:   float64(count / size),
	}
}

// AlertBands holds the probability cut points for the banded alert policy.
type AlertBands struct {
	No  float64 `yaml:"no"`
	Min float64 `yaml:"min"`
	Med float64 `yaml:"med"`
	Max float64 `yaml:"max"`
}

// ClassifierPolicy selects between the ZMB four-band ladder and the binary
// rule used by every other country.
type ClassifierPolicy int

const (
	ClassifierBinary ClassifierPolicy = iota
	ClassifierBanded
)

// ClassifyAlert maps an exceedance probability to an alert class.
//
// Banded: <=no -> no, <min -> min, <med -> med, >=max -> max; probabilities in
// [med, max) classify as med. Binary: >=max -> max, else no.
func ClassifyAlert(prob float64, policy ClassifierPolicy, bands AlertBands) AlertClass {
	if policy == ClassifierBanded {
		switch {
		case prob <= bands.No:
			return AlertNone
		case prob < bands.Min:
			return AlertMinimum
		case prob < bands.Med:
			return AlertMedium
		case prob >= bands.Max:
			return AlertMaximum
		default:
			return AlertMedium
		}
	}
	if prob >= bands.Max {
		return AlertMaximum
	}
	return AlertNone
}

// Triggered reports whether a probability passes the configured minimum.
// Strictly greater than: the minimum itself does not trigger. This is a
// separate policy from the alert-class bands.
func Triggered(prob, minimum float64) bool {
	return prob > minimum
}

// ResolveReturnPeriod maps the mean forecast discharge onto the station's
// return-period ladder: the largest period whose threshold is reached wins.
// Nil when the discharge is below the 2-year threshold.
func ResolveReturnPeriod(meanDischarge float64, station Station) *int {
	switch {
	case meanDischarge >= station.Threshold20Year:
		return intPtr(20)
	case meanDischarge >= station.Threshold10Year:
		return intPtr(10)
	case meanDischarge >= station.Threshold5Year:
		return intPtr(5)
	case meanDischarge >= station.Threshold2Year:
		return intPtr(2)
	default:
		return nil
	}
}

// FloodExtentPolicy selects which flood-extent map a triggered station
// activates downstream.
type FloodExtentPolicy int

const (
	// FloodExtentFixed25 always activates the 25-year extent map.
	FloodExtentFixed25 FloodExtentPolicy = iota
	// FloodExtentThresholded picks 20 or 10 depending on the 20-year
	// threshold (ZMB, MWI).
	FloodExtentThresholded
)

// ResolveFloodExtent returns the flood-extent return period for a triggered
// station, or nil when the station did not trigger.
func ResolveFloodExtent(triggered bool, meanDischarge float64, station Station, policy FloodExtentPolicy) *int {
	if !triggered {
		return nil
	}
	if policy == FloodExtentThresholded {
		if meanDischarge >= station.Threshold20Year {
			return intPtr(20)
		}
		return intPtr(10)
	}
	return intPtr(25)
}

func intPtr(v int) *int { return &v }
