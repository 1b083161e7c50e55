// Command checkconfig lints the country registry beyond the structural
// validation the pipeline performs at startup: unmapped stations, mappings
// outside the selected placecodes, thresholds equal to zero, and per-country
// policy summaries. It exits non-zero when any check fails so it can gate CI.
//
// Usage:
//
//	go run ./cmd/checkconfig -registry config/countries.yaml
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/floodwatch/glofas-trigger/internal/config"
)

// check tracks pass/fail for one lint pass over one country.
type check struct {
	errors []string
}

func (c *check) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *check) passed() bool { return len(c.errors) == 0 }

func main() {
	registryPath := flag.String("registry", "config/countries.yaml", "path to country registry YAML")
	flag.Parse()

	registry, err := config.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	codes := make([]string, 0, len(registry.Countries))
	for code := range registry.Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Printf("=== Registry check: %s ===\n\n", *registryPath)

	allPassed := true
	for _, code := range codes {
		settings := registry.Countries[code]
		printSummary(code, settings)

		c := lintCountry(settings)
		if c.passed() {
			fmt.Println("  OK")
		} else {
			allPassed = false
			for _, e := range c.errors {
				fmt.Printf("  ERROR: %s\n", e)
			}
		}
		fmt.Println()
	}

	if !allPassed {
		fmt.Println("Registry check FAILED.")
		os.Exit(1)
	}
	fmt.Println("All countries passed.")
}

func printSummary(code string, settings *config.CountrySettings) {
	policy := settings.Policy(code)
	fmt.Printf("%s: strategy=%s stations=%d mappings=%d triggerLevel=%s probMin=%g\n",
		code, policy.Extraction, len(settings.Stations), len(settings.DistrictMapping),
		settings.TriggerLevel, settings.TriggerProbabilityMinimum)
}

func lintCountry(settings *config.CountrySettings) *check {
	c := &check{}

	mapped := settings.MappedStations()
	for _, station := range settings.Stations {
		if !mapped[station.Code] {
			c.errorf("station %s is not in the district mapping and will never produce output", station.Code)
		}
		if station.Threshold20Year == 0 {
			c.errorf("station %s has a zero 20-year threshold", station.Code)
		}
	}

	if settings.Extraction == config.ExtractionGrid {
		lintGrid(c, settings)
	}

	if settings.TriggerProbabilityMinimum < 0 || settings.TriggerProbabilityMinimum >= 1 {
		c.errorf("triggerProbabilityMinimum %g outside [0, 1)", settings.TriggerProbabilityMinimum)
	}

	return c
}

func lintGrid(c *check, settings *config.CountrySettings) {
	selected := make(map[string]bool, len(settings.SelectedPcodes))
	for _, pcode := range settings.SelectedPcodes {
		selected[pcode] = true
		if _, ok := settings.StationForPcode(pcode); !ok {
			c.errorf("selected placecode %s has no district mapping", pcode)
		}
		if _, err := settings.NumericPcode(pcode); err != nil {
			c.errorf("selected placecode %s does not match prefix %q", pcode, settings.PlacecodePrefix)
		}
	}
	for _, m := range settings.DistrictMapping {
		if !selected[m.PlaceCode] {
			c.errorf("mapping for %s targets unselected placecode %s", m.GlofasStation, m.PlaceCode)
		}
	}

	areas := make(map[string]bool, len(settings.AdminAreas))
	for _, area := range settings.AdminAreas {
		if len(area.Ring) < 3 {
			c.errorf("admin area %s has fewer than 3 vertices", area.PlaceCode)
		}
		areas[area.PlaceCode] = true
	}
	for _, pcode := range settings.SelectedPcodes {
		if !areas[pcode] {
			c.errorf("selected placecode %s has no admin-area polygon", pcode)
		}
	}
}
