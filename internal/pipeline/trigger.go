package pipeline

import (
	"sort"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// runResult holds the three output artifacts of one run.
type runResult struct {
	stations      []domain.StationForecast
	triggerPerDay domain.TriggerPerDay
	reports       []domain.StationTriggerReport
}

type groupKey struct {
	site string
	step int
}

// resolveTriggers turns the extracted record stream into per-station trigger
// decisions: group by (site, leadTime) in one pass, aggregate each group
// against the station's trigger threshold, classify, and resolve return
// periods for the run's selected lead time.
func (r *Runner) resolveTriggers(records []domain.ForecastRecord) (runResult, error) {
	groups := make(map[groupKey][]domain.ForecastRecord)
	var sites []string
	seen := make(map[string]bool)
	for _, rec := range records {
		key := groupKey{site: rec.SiteCode, step: rec.LeadTime}
		groups[key] = append(groups[key], rec)
		if !seen[rec.SiteCode] {
			seen[rec.SiteCode] = true
			sites = append(sites, rec.SiteCode)
		}
	}
	sort.Strings(sites)

	result := runResult{triggerPerDay: domain.NewTriggerPerDay()}

	for _, site := range sites {
		station, ok := r.stationForSite(site)
		if !ok {
			r.logger.Warn("site has no station configuration, skipping", "site", site)
			r.metrics.StationsSkipped.Inc()
			continue
		}
		threshold, err := station.TriggerThreshold(r.settings.TriggerLevel)
		if err != nil {
			return runResult{}, err
		}

		for step := 1; step <= domain.LeadTimeSteps; step++ {
			group, ok := groups[groupKey{site: site, step: step}]
			if !ok {
				// The station-report feed may not carry every lead time for
				// every station; absent groups yield no decision.
				continue
			}

			summary := r.summarize(station, group, threshold, step)
			if summary.Triggered {
				result.triggerPerDay[domain.LeadTimeLabel(step)] = true
			}

			if step == r.cfg.LeadTime {
				if summary.Triggered {
					r.metrics.StationsTriggered.Inc()
				}
				result.stations = append(result.stations, stationForecast(station, summary))
				result.reports = append(result.reports, r.stationReport(station, summary))
			}
		}
	}

	// The sentinel row guarantees downstream consumers always find at least
	// one record.
	result.stations = append(result.stations, domain.SentinelStationForecast())
	result.reports = append(result.reports, sentinelReport())

	return result, nil
}

// summarize aggregates one (site, leadTime) group into a trigger decision.
func (r *Runner) summarize(station domain.Station, group []domain.ForecastRecord, threshold float64, step int) domain.SiteForecastSummary {
	stats := domain.Aggregate(group, threshold, r.policy.ExceedOp, r.policy.Sizing)
	triggered := domain.Triggered(stats.Probability, r.settings.TriggerProbabilityMinimum)

	var class domain.AlertClass
	if r.policy.Extraction == config.ExtractionMock {
		// The mock feed bypasses the classifier: class tracks the flag.
		class = domain.AlertNone
		if triggered {
			class = domain.AlertMaximum
		}
	} else {
		class = domain.ClassifyAlert(stats.Probability, r.policy.Classifier, r.settings.EAPAlertClass)
	}

	return domain.SiteForecastSummary{
		SiteCode:      station.Code,
		LeadTime:      step,
		MeanDischarge: stats.MeanDischarge,
		Probability:   stats.Probability,
		Triggered:     triggered,
		AlertClass:    class,
	}
}

// stationForSite resolves a record's site code to its station: admin
// placecodes go through the district mapping (grid feed), station codes
// resolve directly.
func (r *Runner) stationForSite(site string) (domain.Station, bool) {
	code := site
	if r.policy.Extraction == config.ExtractionGrid {
		mappedCode, ok := r.settings.StationForPcode(site)
		if !ok {
			return domain.Station{}, false
		}
		code = mappedCode
	}
	return r.settings.StationByCode(code)
}

func stationForecast(station domain.Station, s domain.SiteForecastSummary) domain.StationForecast {
	return domain.StationForecast{
		Code:        station.Code,
		Forecast:    s.MeanDischarge,
		Probability: s.Probability,
		Trigger:     boolToFlag(s.Triggered),
		AlertClass:  s.AlertClass,
	}
}

func (r *Runner) stationReport(station domain.Station, s domain.SiteForecastSummary) domain.StationTriggerReport {
	return domain.StationTriggerReport{
		Code:                    station.Code,
		Name:                    station.Name,
		Threshold2Year:          station.Threshold2Year,
		Threshold5Year:          station.Threshold5Year,
		Threshold10Year:         station.Threshold10Year,
		Threshold20Year:         station.Threshold20Year,
		Forecast:                s.MeanDischarge,
		Probability:             s.Probability,
		Trigger:                 boolToFlag(s.Triggered),
		AlertClass:              s.AlertClass,
		FloodExtentReturnPeriod: domain.ResolveFloodExtent(s.Triggered, s.MeanDischarge, station, r.policy.FloodExtent),
		ReturnPeriod:            domain.ResolveReturnPeriod(s.MeanDischarge, station),
	}
}

func sentinelReport() domain.StationTriggerReport {
	return domain.StationTriggerReport{
		Code:       domain.NoStationCode,
		AlertClass: domain.AlertNone,
	}
}

func boolToFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
