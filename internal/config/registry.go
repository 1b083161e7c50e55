package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// ExtractionStrategy names how raw forecast data is turned into records.
type ExtractionStrategy string

const (
	ExtractionReport ExtractionStrategy = "report"
	ExtractionGrid   ExtractionStrategy = "grid"
	ExtractionMock   ExtractionStrategy = "mock"
)

// Registry is the per-country configuration file: stations with thresholds,
// district mappings, trigger policies and file naming rules.
type Registry struct {
	Countries map[string]*CountrySettings `yaml:"countries"`
}

// DistrictMapping links one GloFAS station to one administrative area.
type DistrictMapping struct {
	GlofasStation string `yaml:"glofasStation"`
	PlaceCode     string `yaml:"placeCode"`
}

// AdminArea is one administrative-area polygon used by the grid strategy.
// Ring holds [lon, lat] vertices.
type AdminArea struct {
	PlaceCode string       `yaml:"placeCode"`
	Ring      [][2]float64 `yaml:"ring"`
}

// CountrySettings holds one country's deployment configuration.
type CountrySettings struct {
	GlofasFilename     string `yaml:"glofasFilename"`
	GlofasGridFilename string `yaml:"glofasGridFilename"`
	// ReportName is the provider name embedded in text-report filenames,
	// e.g. "ZambiaRedcross" in glofas_discharge_ZambiaRedcross_<date>00.txt.
	ReportName string `yaml:"reportName"`
	FTPPath    string `yaml:"ftpPath"`

	Extraction    ExtractionStrategy `yaml:"extraction"`
	Mock          bool               `yaml:"mock"`
	IfMockTrigger bool               `yaml:"ifMockTrigger"`

	TriggerLevel              domain.TriggerLevel `yaml:"triggerLevel"`
	TriggerProbabilityMinimum float64             `yaml:"triggerProbabilityMinimum"`
	EAPAlertClass             domain.AlertBands   `yaml:"eapAlertClass"`

	SelectedPcodes  []string `yaml:"selectedPcodes"`
	PlacecodePrefix string   `yaml:"placecodePrefix"`
	PlacecodeLength int      `yaml:"placecodeLength"`

	Stations        []domain.Station  `yaml:"stations"`
	DistrictMapping []DistrictMapping `yaml:"districtMapping"`
	AdminAreas      []AdminArea       `yaml:"adminAreas"`
}

// LoadRegistry reads and validates the country registry YAML.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if len(reg.Countries) == 0 {
		return nil, fmt.Errorf("registry %s defines no countries", path)
	}
	for code, cs := range reg.Countries {
		if err := cs.Validate(); err != nil {
			return nil, fmt.Errorf("registry country %s: %w", code, err)
		}
	}
	return &reg, nil
}

// Country returns the settings for one ISO3 country code.
func (r *Registry) Country(code string) (*CountrySettings, error) {
	cs, ok := r.Countries[code]
	if !ok {
		codes := make([]string, 0, len(r.Countries))
		for c := range r.Countries {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		return nil, fmt.Errorf("country %s not in registry (have %s)", code, strings.Join(codes, ", "))
	}
	return cs, nil
}

// Validate checks the structural invariants the pipeline relies on.
func (cs *CountrySettings) Validate() error {
	switch cs.Extraction {
	case ExtractionReport, ExtractionGrid, ExtractionMock:
	case "":
		return fmt.Errorf("extraction strategy is required")
	default:
		return fmt.Errorf("unknown extraction strategy %q", cs.Extraction)
	}

	switch cs.TriggerLevel {
	case domain.TriggerLevel2Year, domain.TriggerLevel5Year, domain.TriggerLevel10Year, domain.TriggerLevel20Year:
	default:
		return fmt.Errorf("unknown trigger level %q", cs.TriggerLevel)
	}

	if len(cs.Stations) == 0 {
		return fmt.Errorf("no stations configured")
	}
	for _, st := range cs.Stations {
		if st.Code == "" {
			return fmt.Errorf("station with empty code")
		}
		// Thresholds ascend with the return period by definition.
		if st.Threshold2Year > st.Threshold5Year ||
			st.Threshold5Year > st.Threshold10Year ||
			st.Threshold10Year > st.Threshold20Year {
			return fmt.Errorf("station %s: thresholds not ascending", st.Code)
		}
	}

	b := cs.EAPAlertClass
	if !(b.No <= b.Min && b.Min <= b.Med && b.Med <= b.Max) {
		return fmt.Errorf("eapAlertClass cut points not ordered")
	}

	stationSet := make(map[string]bool, len(cs.Stations))
	for _, st := range cs.Stations {
		stationSet[st.Code] = true
	}
	for _, m := range cs.DistrictMapping {
		if m.GlofasStation == "" || m.PlaceCode == "" {
			return fmt.Errorf("district mapping with empty field")
		}
		if !stationSet[m.GlofasStation] {
			return fmt.Errorf("district mapping references unknown station %s", m.GlofasStation)
		}
	}

	if cs.Extraction == ExtractionGrid {
		if cs.PlacecodePrefix == "" || cs.PlacecodeLength <= 0 {
			return fmt.Errorf("grid extraction requires placecodePrefix and placecodeLength")
		}
		if len(cs.SelectedPcodes) == 0 {
			return fmt.Errorf("grid extraction requires selectedPcodes")
		}
	}

	return nil
}

// StationByCode returns the configured station with the given code.
func (cs *CountrySettings) StationByCode(code string) (domain.Station, bool) {
	for _, st := range cs.Stations {
		if st.Code == code {
			return st, true
		}
	}
	return domain.Station{}, false
}

// MappedStations returns the set of station codes present in the district
// mapping. Stations outside this set have no trigger meaning downstream and
// are skipped during extraction.
func (cs *CountrySettings) MappedStations() map[string]bool {
	set := make(map[string]bool, len(cs.DistrictMapping))
	for _, m := range cs.DistrictMapping {
		set[m.GlofasStation] = true
	}
	return set
}

// StationForPcode resolves an admin placecode to its GloFAS station.
func (cs *CountrySettings) StationForPcode(pcode string) (string, bool) {
	for _, m := range cs.DistrictMapping {
		if m.PlaceCode == pcode {
			return m.GlofasStation, true
		}
	}
	return "", false
}

// FormatPlacecode reconstructs an admin placecode from a raw numeric zone id:
// country-specific prefix plus a zero-padded fixed-width digit string.
func (cs *CountrySettings) FormatPlacecode(raw int) string {
	return fmt.Sprintf("%s%0*d", cs.PlacecodePrefix, cs.PlacecodeLength, raw)
}

// NumericPcode strips the country prefix from a placecode, yielding the raw
// zone id burned into the rasterized grid.
func (cs *CountrySettings) NumericPcode(pcode string) (int, error) {
	trimmed := strings.TrimPrefix(pcode, cs.PlacecodePrefix)
	var id int
	if _, err := fmt.Sscanf(trimmed, "%d", &id); err != nil {
		return 0, fmt.Errorf("placecode %q: %w", pcode, err)
	}
	return id, nil
}

// Policy is the per-country strategy table, resolved once at run start
// instead of branching on the country code throughout the pipeline.
type Policy struct {
	Extraction  ExtractionStrategy
	Classifier  domain.ClassifierPolicy
	FloodExtent domain.FloodExtentPolicy
	ExceedOp    domain.ExceedOp
	Sizing      domain.EnsembleSizing
}

// Policy resolves the strategy table for a country. The mock flag overrides
// the configured extraction strategy.
func (cs *CountrySettings) Policy(countryCode string) Policy {
	p := Policy{
		Extraction:  cs.Extraction,
		Classifier:  domain.ClassifierBinary,
		FloodExtent: domain.FloodExtentFixed25,
		ExceedOp:    domain.ExceedGreaterEqual,
		Sizing:      domain.SizeNominal,
	}
	if cs.Mock {
		p.Extraction = ExtractionMock
	}
	if countryCode == "ZMB" {
		p.Classifier = domain.ClassifierBanded
	}
	if countryCode == "ZMB" || countryCode == "MWI" {
		p.FloodExtent = domain.FloodExtentThresholded
	}
	// The station-report feed counts strict exceedance and divides by the
	// members actually present; grid and mock use >= over the nominal 51.
	if p.Extraction == ExtractionReport {
		p.ExceedOp = domain.ExceedGreater
		p.Sizing = domain.SizeObserved
	}
	return p
}
