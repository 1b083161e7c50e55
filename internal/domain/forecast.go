package domain

import "fmt"

// NominalEnsembleSize is the member count of a full GloFAS ensemble run.
const NominalEnsembleSize = 51

// LeadTimeSteps is the number of daily forecast steps in one cycle.
const LeadTimeSteps = 7

// NoStationCode is the sentinel station appended to every station output so
// downstream consumers always find at least one record.
const NoStationCode = "no_station"

// AlertClass is the ordinal early-action alert level for a station.
type AlertClass string

const (
	AlertNone    AlertClass = "no"
	AlertMinimum AlertClass = "min"
	AlertMedium  AlertClass = "med"
	AlertMaximum AlertClass = "max"
)

// Station is one GloFAS monitoring station with its historical return-period
// discharge thresholds. Thresholds ascend with the return period.
type Station struct {
	Code            string  `yaml:"stationCode" json:"stationCode"`
	Name            string  `yaml:"stationName,omitempty" json:"stationName,omitempty"`
	Lat             float64 `yaml:"lat,omitempty" json:"-"`
	Lon             float64 `yaml:"lon,omitempty" json:"-"`
	Threshold2Year  float64 `yaml:"threshold2Year" json:"threshold2Year"`
	Threshold5Year  float64 `yaml:"threshold5Year" json:"threshold5Year"`
	Threshold10Year float64 `yaml:"threshold10Year" json:"threshold10Year"`
	Threshold20Year float64 `yaml:"threshold20Year" json:"threshold20Year"`
}

// TriggerLevel selects which return-period threshold acts as the trigger
// threshold for a deployment.
type TriggerLevel string

const (
	TriggerLevel2Year  TriggerLevel = "threshold2Year"
	TriggerLevel5Year  TriggerLevel = "threshold5Year"
	TriggerLevel10Year TriggerLevel = "threshold10Year"
	TriggerLevel20Year TriggerLevel = "threshold20Year"
)

// TriggerThreshold returns the station threshold selected by level.
func (s Station) TriggerThreshold(level TriggerLevel) (float64, error) {
	switch level {
	case TriggerLevel2Year:
		return s.Threshold2Year, nil
	case TriggerLevel5Year:
		return s.Threshold5Year, nil
	case TriggerLevel10Year:
		return s.Threshold10Year, nil
	case TriggerLevel20Year:
		return s.Threshold20Year, nil
	default:
		return 0, fmt.Errorf("unknown trigger level %q", level)
	}
}

// ForecastRecord is one ensemble member's forecast discharge for one site and
// lead time. SiteCode is a station code for the station-report and mock feeds
// and an admin placecode for the grid feed.
type ForecastRecord struct {
	SiteCode  string
	LeadTime  int // days ahead, 1..7
	Member    int // ensemble member, 0..50
	Discharge float64
}

// SiteForecastSummary is the aggregated trigger decision for one (site, lead
// time) pair. Immutable once computed.
type SiteForecastSummary struct {
	SiteCode      string
	LeadTime      int
	MeanDischarge float64
	Probability   float64 // integer-truncated exceedCount/ensembleSize
	Triggered     bool
	AlertClass    AlertClass
}

// StationForecast is one row of the glofas_forecast output artifact.
type StationForecast struct {
	Code        string     `json:"code"`
	Forecast    float64    `json:"fc"`
	Probability float64    `json:"fc_prob"`
	Trigger     int        `json:"fc_trigger"`
	AlertClass  AlertClass `json:"eapAlertClass"`
}

// SentinelStationForecast builds the no_station row with neutral values.
func SentinelStationForecast() StationForecast {
	return StationForecast{
		Code:       NoStationCode,
		AlertClass: AlertNone,
	}
}

// TriggerPerDay maps the "<n>-day" lead-time label to whether any station
// triggered at that lead time.
type TriggerPerDay map[string]bool

// NewTriggerPerDay builds the map with all seven lead-time keys set to false.
func NewTriggerPerDay() TriggerPerDay {
	m := make(TriggerPerDay, LeadTimeSteps)
	for step := 1; step <= LeadTimeSteps; step++ {
		m[LeadTimeLabel(step)] = false
	}
	return m
}

// LeadTimeLabel formats a lead-time step as its artifact label, e.g. "5-day".
func LeadTimeLabel(step int) string {
	return fmt.Sprintf("%d-day", step)
}

// StationTriggerReport merges a station's static thresholds with its forecast
// summary and resolved return periods. One row of the triggers_rp artifact.
// Return periods are nil when no threshold is reached or the station did not
// trigger.
type StationTriggerReport struct {
	Code                    string     `json:"stationCode"`
	Name                    string     `json:"stationName,omitempty"`
	Threshold2Year          float64    `json:"threshold2Year"`
	Threshold5Year          float64    `json:"threshold5Year"`
	Threshold10Year         float64    `json:"threshold10Year"`
	Threshold20Year         float64    `json:"threshold20Year"`
	Forecast                float64    `json:"fc"`
	Probability             float64    `json:"fc_prob"`
	Trigger                 int        `json:"fc_trigger"`
	AlertClass              AlertClass `json:"eapAlertClass"`
	FloodExtentReturnPeriod *int       `json:"fc_rp_flood_extent"`
	ReturnPeriod            *int       `json:"fc_rp"`
}
