package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

// GridExtractor reads the 51 per-member zonal CSVs emitted by the grid
// retrieval step (glofas_<member>.csv: pcode,ensemble,leadTime,dis) and
// yields one record per (admin placecode, lead time, member) for the
// selected admin areas.
type GridExtractor struct {
	settings *config.CountrySettings
	gridDir  string
	logger   *slog.Logger
}

// NewGridExtractor builds a GridExtractor reading from gridDir.
func NewGridExtractor(settings *config.CountrySettings, gridDir string, logger *slog.Logger) *GridExtractor {
	return &GridExtractor{
		settings: settings,
		gridDir:  gridDir,
		logger:   logger,
	}
}

// Extract parses every member file. A missing member file is a structural
// failure: the retrieval step guarantees all 51.
func (e *GridExtractor) Extract(ctx context.Context) ([]domain.ForecastRecord, error) {
	selected := make(map[string]bool, len(e.settings.SelectedPcodes))
	for _, pcode := range e.settings.SelectedPcodes {
		selected[pcode] = true
	}

	var records []domain.ForecastRecord
	for member := 0; member < domain.NominalEnsembleSize; member++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(e.gridDir, fmt.Sprintf("glofas_%d.csv", member))
		memberRecords, err := e.readMemberFile(path, selected)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", member, err)
		}
		records = append(records, memberRecords...)
	}

	e.logger.Info("extracted grid forecast", "records", len(records))
	return records, nil
}

func (e *GridExtractor) readMemberFile(path string, selected map[string]bool) ([]domain.ForecastRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zonal file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read zonal header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"pcode", "ensemble", "leadTime", "dis"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("zonal file missing column %q", name)
		}
	}

	var records []domain.ForecastRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zonal row: %w", err)
		}

		pcode := e.normalizePcode(rec[col["pcode"]])
		if !selected[pcode] {
			continue
		}
		step, err := parseLeadTimeLabel(rec[col["leadTime"]])
		if err != nil {
			return nil, err
		}
		member, err := strconv.Atoi(rec[col["ensemble"]])
		if err != nil {
			return nil, fmt.Errorf("zonal row ensemble: %w", err)
		}
		dis, err := strconv.ParseFloat(rec[col["dis"]], 64)
		if err != nil {
			return nil, fmt.Errorf("zonal row dis: %w", err)
		}

		records = append(records, domain.ForecastRecord{
			SiteCode:  pcode,
			LeadTime:  step,
			Member:    member,
			Discharge: dis,
		})
	}
	return records, nil
}

// normalizePcode applies the country placecode format to raw numeric zone
// ids; already-formatted codes pass through.
func (e *GridExtractor) normalizePcode(pcode string) string {
	if raw, err := strconv.Atoi(pcode); err == nil {
		return e.settings.FormatPlacecode(raw)
	}
	return pcode
}

// parseLeadTimeLabel parses the zonal files' "<n>_day" lead-time labels.
func parseLeadTimeLabel(label string) (int, error) {
	numeric, _, found := strings.Cut(label, "_")
	if !found {
		return 0, fmt.Errorf("bad lead time label %q", label)
	}
	step, err := strconv.Atoi(numeric)
	if err != nil || step < 1 || step > domain.LeadTimeSteps {
		return 0, fmt.Errorf("bad lead time label %q", label)
	}
	return step, nil
}
