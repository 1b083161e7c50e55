package extract

import (
	"context"
	"log/slog"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// dummyDischarge is the static lookup table driving the mock feed: discharge
// per known demo flood station. Stations not listed stay dry.
var dummyDischarge = map[string]float64{
	"G5220":   600,   // UGA
	"G1067":   5000,  // ETH
	"G1904":   5500,  // ETH
	"G5305":   3000,  // KEN
	"G5195":   500,   // KEN
	"G1361":   8000,  // ZMB
	"G1328":   9000,  // ZMB
	"G1319":   1400,  // ZMB
	"G5369":   7000,  // PHL
	"G4630":   19000, // PHL
	"G196700": 11400, // PHL
	"G5100":   41400, // SSD
	"G1724":   10000, // MWI
	"G2001":   11000, // MWI
	"G5670":   5000,  // MWI
	"G5694":   46000, // MWI
}

// MockExtractor synthesizes a deterministic ensemble for every configured
// station without touching the network: zero discharge at lead times 1 and 2,
// the dummy-flood value at lead times 3 and above when the mock-trigger flag
// is set, zero everywhere otherwise. Exercises the full classifier path.
type MockExtractor struct {
	settings *config.CountrySettings
	logger   *slog.Logger
}

// NewMockExtractor builds a MockExtractor for the country's station list.
func NewMockExtractor(settings *config.CountrySettings, logger *slog.Logger) *MockExtractor {
	return &MockExtractor{settings: settings, logger: logger}
}

// Extract yields one record per (mapped station, lead time, member).
func (e *MockExtractor) Extract(ctx context.Context) ([]domain.ForecastRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapped := e.settings.MappedStations()
	var records []domain.ForecastRecord
	for _, station := range e.settings.Stations {
		if station.Code == domain.NoStationCode || !mapped[station.Code] {
			continue
		}
		for step := 1; step <= domain.LeadTimeSteps; step++ {
			discharge := 0.0
			// Dummy floods start at the 3-day lead time.
			if e.settings.IfMockTrigger && step >= 3 {
				discharge = dummyDischarge[station.Code]
			}
			for member := 0; member < domain.NominalEnsembleSize; member++ {
				records = append(records, domain.ForecastRecord{
					SiteCode:  station.Code,
					LeadTime:  step,
					Member:    member,
					Discharge: discharge,
				})
			}
		}
	}

	e.logger.Info("extracted mock forecast", "records", len(records), "mock_trigger", e.settings.IfMockTrigger)
	return records, nil
}
