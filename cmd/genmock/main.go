// Command genmock generates station text-report fixtures for a country from
// the registry. It writes the discharge and return-level reports in the
// upstream feed's whitespace-delimited layout, named for today's cycle, so a
// report-strategy run can execute end to end without FTP access.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -registry config/countries.yaml \
//	  -country ZMB \
//	  -out data/input/glofas \
//	  -flood
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	registryPath := flag.String("registry", "config/countries.yaml", "path to country registry YAML")
	country := flag.String("country", "", "ISO3 country code")
	outDir := flag.String("out", "data/input/glofas", "output directory for report fixtures")
	flood := flag.Bool("flood", false, "forecast discharge above every station's 20-year threshold from the 3-day lead time on")
	flag.Parse()

	if *country == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -country")
	}

	registry, err := config.LoadRegistry(*registryPath)
	if err != nil {
		return err
	}
	settings, err := registry.Country(*country)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	date := domain.RunDate().Format("20060102")
	dischargePath := filepath.Join(*outDir,
		fmt.Sprintf("glofas_discharge_%s_%s00.txt", settings.ReportName, date))
	returnLevelsPath := filepath.Join(*outDir,
		fmt.Sprintf("glofas_returnlevels_ldd_ups_%s_%s00.txt", settings.ReportName, date))

	if err := writeDischargeReport(dischargePath, settings, *flood); err != nil {
		return fmt.Errorf("writing discharge report: %w", err)
	}
	log.Printf("wrote discharge report: %s", dischargePath)

	if err := writeReturnLevelReport(returnLevelsPath, settings); err != nil {
		return fmt.Errorf("writing return-level report: %w", err)
	}
	log.Printf("wrote return-level report: %s", returnLevelsPath)

	log.Printf("%d stations, flood=%v", len(settings.Stations), *flood)
	return nil
}

func writeDischargeReport(path string, settings *config.CountrySettings, flood bool) error {
	var b strings.Builder
	b.WriteString("name time dis member\n")

	now := domain.Now()
	for _, station := range settings.Stations {
		for step := 1; step <= domain.LeadTimeSteps; step++ {
			discharge := 0.0
			// Floods arrive at the 3-day lead time, comfortably above the
			// largest threshold so every member exceeds.
			if flood && step >= 3 {
				discharge = station.Threshold20Year * 1.2
			}
			ts := now.Add(time.Duration(step) * 24 * time.Hour).Format("2006-01-02T15:04:05")
			for member := 0; member < domain.NominalEnsembleSize; member++ {
				fmt.Fprintf(&b, "%s %s %.1f %d\n", reportName(station), ts, discharge, member)
			}
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeReturnLevelReport(path string, settings *config.CountrySettings) error {
	var b strings.Builder
	b.WriteString("Name lat lon 2y 5y 20y\n")
	for _, station := range settings.Stations {
		fmt.Fprintf(&b, "%s %.4f %.4f %.1f %.1f %.1f\n",
			reportName(station), station.Lat, station.Lon,
			station.Threshold2Year, station.Threshold5Year, station.Threshold20Year)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// reportName rebuilds the feed's "<code>_<name>" column value. The reports
// are whitespace-delimited, so spaces inside station names are replaced.
func reportName(station domain.Station) string {
	name := strings.ReplaceAll(station.Name, " ", "-")
	if name == "" {
		name = "station"
	}
	return station.Code + "_" + name
}
