// Package extract parses raw GloFAS forecast artifacts into uniform
// ForecastRecord streams. Three interchangeable strategies exist: the
// station text-report feed, the pre-clipped grid feed, and a mock feed for
// demos and tests. All three produce the same record shape; the pipeline
// does not care which one ran.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// ReportExtractor parses the two whitespace-delimited station text reports:
// the discharge report (columns name, time, dis, member) and the
// return-level report (columns Name, lat, lon, 2y, 5y, 20y). Rows are joined
// on the station code embedded in the name column ("<code>_<StationName>").
type ReportExtractor struct {
	settings *config.CountrySettings
	inputDir string
	logger   *slog.Logger
}

// NewReportExtractor builds a ReportExtractor reading from inputDir.
func NewReportExtractor(settings *config.CountrySettings, inputDir string, logger *slog.Logger) *ReportExtractor {
	return &ReportExtractor{
		settings: settings,
		inputDir: inputDir,
		logger:   logger,
	}
}

// ReturnLevels is the per-station metadata row of the return-level report.
type ReturnLevels struct {
	Lat, Lon float64
	Y2       float64
	Y5       float64
	Y20      float64
}

// Extract parses the current cycle's reports into forecast records. Stations
// absent from the district mapping are skipped; lead times outside 1..7 are
// dropped. Lead time is the whole-day difference between the forecast
// timestamp and the current time.
func (e *ReportExtractor) Extract(ctx context.Context) ([]domain.ForecastRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date := domain.RunDate().Format("20060102")
	dischargePath := filepath.Join(e.inputDir,
		fmt.Sprintf("glofas_discharge_%s_%s00.txt", e.settings.ReportName, date))
	returnLevelsPath := filepath.Join(e.inputDir,
		fmt.Sprintf("glofas_returnlevels_ldd_ups_%s_%s00.txt", e.settings.ReportName, date))

	rows, err := readDelimited(dischargePath)
	if err != nil {
		return nil, err
	}
	levels, err := e.readReturnLevels(returnLevelsPath)
	if err != nil {
		return nil, err
	}

	mapped := e.settings.MappedStations()
	now := domain.Now()

	var records []domain.ForecastRecord
	for _, row := range rows {
		code := stationCode(row["name"])
		if code == "" || code == domain.NoStationCode || !mapped[code] {
			continue
		}
		if _, ok := levels[code]; !ok {
			// Left join: the record survives without return-level metadata.
			e.logger.Debug("station missing from return-level report", "station", code)
		}

		ts, err := parseForecastTime(row["time"])
		if err != nil {
			e.logger.Warn("skipping row with bad timestamp", "station", code, "time", row["time"])
			continue
		}
		leadTime := wholeDays(ts.Sub(now))
		if leadTime < 1 || leadTime > domain.LeadTimeSteps {
			continue
		}

		dis, errDis := strconv.ParseFloat(row["dis"], 64)
		member, errMem := strconv.Atoi(row["member"])
		if errDis != nil || errMem != nil {
			e.logger.Warn("skipping malformed discharge row", "station", code)
			continue
		}

		records = append(records, domain.ForecastRecord{
			SiteCode:  code,
			LeadTime:  leadTime,
			Member:    member,
			Discharge: dis,
		})
	}

	e.logger.Info("extracted station report", "records", len(records))
	return records, nil
}

// readReturnLevels parses the return-level report into a per-station map.
func (e *ReportExtractor) readReturnLevels(path string) (map[string]ReturnLevels, error) {
	rows, err := readDelimited(path)
	if err != nil {
		return nil, err
	}
	levels := make(map[string]ReturnLevels, len(rows))
	for _, row := range rows {
		code := stationCode(row["Name"])
		if code == "" {
			continue
		}
		levels[code] = ReturnLevels{
			Lat: floatOrZero(row["lat"]),
			Lon: floatOrZero(row["lon"]),
			Y2:  floatOrZero(row["2y"]),
			Y5:  floatOrZero(row["5y"]),
			Y20: floatOrZero(row["20y"]),
		}
	}
	return levels, nil
}

// readDelimited reads a whitespace-delimited text report with a header row
// into one map per data row. Short rows are an error: the feed pads every
// column.
func readDelimited(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	var rows []map[string]string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if header == nil {
			header = fields
			continue
		}
		if len(fields) < len(header) {
			return nil, fmt.Errorf("report %s: row has %d fields, header has %d", filepath.Base(path), len(fields), len(header))
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: %w", filepath.Base(path), err)
	}
	if header == nil {
		return nil, fmt.Errorf("report %s is empty", filepath.Base(path))
	}
	return rows, nil
}

// stationCode extracts the leading station code from a "<code>_<name>" value.
func stationCode(name string) string {
	code, _, _ := strings.Cut(name, "_")
	return code
}

// parseForecastTime accepts the timestamp layouts the feed has been seen to
// produce.
func parseForecastTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized forecast time %q", s)
}

// wholeDays truncates a duration to whole days.
func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
