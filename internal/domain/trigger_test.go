package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGroup(t *testing.T, discharges ...float64) []ForecastRecord {
	t.Helper()
	records := make([]ForecastRecord, len(discharges))
	for i, dis := range discharges {
		records[i] = ForecastRecord{SiteCode: "G1067", LeadTime: 5, Member: i, Discharge: dis}
	}
	return records
}

func fullEnsemble(t *testing.T, discharge float64) []ForecastRecord {
	t.Helper()
	values := make([]float64, NominalEnsembleSize)
	for i := range values {
		values[i] = discharge
	}
	return makeGroup(t, values...)
}

func TestAggregate(t *testing.T) {
	t.Run("all members exceeding yields probability 1", func(t *testing.T) {
		stats := Aggregate(fullEnsemble(t, 5000), 4000, ExceedGreaterEqual, SizeNominal)

		assert.Equal(t, 51, stats.ExceedCount)
		assert.Equal(t, 51, stats.EnsembleSize)
		assert.Equal(t, 1.0, stats.Probability)
		assert.Equal(t, 5000.0, stats.MeanDischarge)
	})

	t.Run("partial exceedance truncates to zero", func(t *testing.T) {
		// 25 of 51 members exceed: integer division gives 0, not 0.49.
		values := make([]float64, NominalEnsembleSize)
		for i := range values {
			if i < 25 {
				values[i] = 6000
			} else {
				values[i] = 100
			}
		}
		stats := Aggregate(makeGroup(t, values...), 4000, ExceedGreaterEqual, SizeNominal)

		assert.Equal(t, 25, stats.ExceedCount)
		assert.Equal(t, 0.0, stats.Probability)
	})

	t.Run("boundary operator greater-equal counts exact threshold", func(t *testing.T) {
		stats := Aggregate(makeGroup(t, 4000), 4000, ExceedGreaterEqual, SizeObserved)
		assert.Equal(t, 1, stats.ExceedCount)
	})

	t.Run("boundary operator greater excludes exact threshold", func(t *testing.T) {
		stats := Aggregate(makeGroup(t, 4000), 4000, ExceedGreater, SizeObserved)
		assert.Equal(t, 0, stats.ExceedCount)
	})

	t.Run("observed sizing divides by records present", func(t *testing.T) {
		// Station-report feed with only 10 of 51 members in the file.
		stats := Aggregate(makeGroup(t, 500, 500, 500, 500, 500, 500, 500, 500, 500, 500), 400, ExceedGreater, SizeObserved)

		assert.Equal(t, 10, stats.EnsembleSize)
		assert.Equal(t, 1.0, stats.Probability)
		assert.Equal(t, 500.0, stats.MeanDischarge)
	})

	t.Run("nominal sizing divides by 51 even with fewer records", func(t *testing.T) {
		stats := Aggregate(makeGroup(t, 5100), 4000, ExceedGreaterEqual, SizeNominal)

		assert.Equal(t, 51, stats.EnsembleSize)
		assert.Equal(t, 0.0, stats.Probability)
		assert.InDelta(t, 100.0, stats.MeanDischarge, 1e-9)
	})

	t.Run("empty observed group yields zero stats", func(t *testing.T) {
		stats := Aggregate(nil, 4000, ExceedGreater, SizeObserved)
		assert.Equal(t, EnsembleStats{}, stats)
	})
}

func TestClassifyAlert(t *testing.T) {
	bands := AlertBands{No: 0.2, Min: 0.4, Med: 0.6, Max: 0.8}

	t.Run("banded ladder", func(t *testing.T) {
		tests := []struct {
			name string
			prob float64
			want AlertClass
		}{
			{"zero", 0, AlertNone},
			{"at no cutpoint", 0.2, AlertNone},
			{"between no and min", 0.3, AlertMinimum},
			{"at min cutpoint", 0.4, AlertMedium},
			{"below med cutpoint", 0.59, AlertMedium},
			{"at med cutpoint stays med", 0.6, AlertMedium},
			{"between med and max stays med", 0.7, AlertMedium},
			{"at max cutpoint", 0.8, AlertMaximum},
			{"full ensemble", 1.0, AlertMaximum},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, ClassifyAlert(tt.prob, ClassifierBanded, bands))
			})
		}
	})

	t.Run("binary policy has no intermediate classes", func(t *testing.T) {
		for _, prob := range []float64{0, 0.2, 0.5, 0.79} {
			assert.Equal(t, AlertNone, ClassifyAlert(prob, ClassifierBinary, bands), "prob %v", prob)
		}
		for _, prob := range []float64{0.8, 0.9, 1.0} {
			assert.Equal(t, AlertMaximum, ClassifyAlert(prob, ClassifierBinary, bands), "prob %v", prob)
		}
	})
}

func TestTriggered(t *testing.T) {
	assert.False(t, Triggered(0, 0.6))
	assert.False(t, Triggered(0.6, 0.6), "minimum itself must not trigger")
	assert.True(t, Triggered(0.61, 0.6))
	assert.True(t, Triggered(1, 0))
	assert.False(t, Triggered(0, 0), "zero probability never triggers at zero minimum")
}

func TestResolveReturnPeriod(t *testing.T) {
	station := Station{
		Code:            "G1361",
		Threshold2Year:  1000,
		Threshold5Year:  2000,
		Threshold10Year: 3000,
		Threshold20Year: 4000,
	}

	tests := []struct {
		name string
		mean float64
		want *int
	}{
		{"below all thresholds", 999, nil},
		{"at 2-year threshold", 1000, intPtr(2)},
		{"between 5 and 10", 2500, intPtr(5)},
		{"at 10-year threshold", 3000, intPtr(10)},
		{"at 20-year threshold", 4000, intPtr(20)},
		{"far above ladder", 90000, intPtr(20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveReturnPeriod(tt.mean, station)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}

	t.Run("monotone in mean discharge", func(t *testing.T) {
		prev := -1
		for mean := 0.0; mean <= 5000; mean += 100 {
			rp := ResolveReturnPeriod(mean, station)
			cur := 0
			if rp != nil {
				cur = *rp
			}
			require.GreaterOrEqual(t, cur, prev, "mean %v", mean)
			prev = cur
		}
	})
}

func TestResolveFloodExtent(t *testing.T) {
	station := Station{Threshold20Year: 4000}

	t.Run("nil when not triggered", func(t *testing.T) {
		assert.Nil(t, ResolveFloodExtent(false, 9000, station, FloodExtentThresholded))
		assert.Nil(t, ResolveFloodExtent(false, 9000, station, FloodExtentFixed25))
	})

	t.Run("thresholded picks 20 at the 20-year threshold", func(t *testing.T) {
		got := ResolveFloodExtent(true, 4000, station, FloodExtentThresholded)
		require.NotNil(t, got)
		assert.Equal(t, 20, *got)
	})

	t.Run("thresholded falls back to 10", func(t *testing.T) {
		got := ResolveFloodExtent(true, 3999, station, FloodExtentThresholded)
		require.NotNil(t, got)
		assert.Equal(t, 10, *got)
	})

	t.Run("fixed policy ignores magnitude", func(t *testing.T) {
		for _, mean := range []float64{0, 4000, 90000} {
			got := ResolveFloodExtent(true, mean, station, FloodExtentFixed25)
			require.NotNil(t, got)
			assert.Equal(t, 25, *got)
		}
	})
}

func TestTriggerThreshold(t *testing.T) {
	station := Station{
		Threshold2Year:  10,
		Threshold5Year:  20,
		Threshold10Year: 30,
		Threshold20Year: 40,
	}

	for level, want := range map[TriggerLevel]float64{
		TriggerLevel2Year:  10,
		TriggerLevel5Year:  20,
		TriggerLevel10Year: 30,
		TriggerLevel20Year: 40,
	} {
		got, err := station.TriggerThreshold(level)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := station.TriggerThreshold(TriggerLevel("threshold100Year"))
	assert.Error(t, err)
}

func TestTriggerPerDay(t *testing.T) {
	m := NewTriggerPerDay()

	assert.Len(t, m, 7)
	for step := 1; step <= 7; step++ {
		v, ok := m[LeadTimeLabel(step)]
		require.True(t, ok, "missing key for step %d", step)
		assert.False(t, v)
	}
	assert.Equal(t, "5-day", LeadTimeLabel(5))
}

func TestSentinelStationForecast(t *testing.T) {
	s := SentinelStationForecast()

	assert.Equal(t, NoStationCode, s.Code)
	assert.Equal(t, 0.0, s.Forecast)
	assert.Equal(t, 0.0, s.Probability)
	assert.Equal(t, 0, s.Trigger)
	assert.Equal(t, AlertNone, s.AlertClass)
}
