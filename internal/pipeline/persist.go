package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/floodwatch/glofas-trigger/internal/domain"
)

const (
	extractionDir = "glofas_extraction"
	triggersDir   = "triggers_rp_per_station"
)

// persist writes the run's three JSON artifacts. Paths embed the lead-time
// label and country code, so runs for other cycles are never overwritten.
func (r *Runner) persist(result runResult) error {
	label := r.cfg.LeadTimeLabel()
	country := r.cfg.CountryCode

	forecastPath := filepath.Join(r.cfg.OutputDir, extractionDir,
		fmt.Sprintf("glofas_forecast_%s_%s.json", label, country))
	if err := writeJSON(forecastPath, result.stations); err != nil {
		return err
	}
	r.logger.Info("station forecast saved", "path", forecastPath)

	triggerPerDayPath := filepath.Join(r.cfg.OutputDir, triggersDir,
		fmt.Sprintf("trigger_per_day_%s.json", country))
	// Single-element array, as downstream consumers expect.
	if err := writeJSON(triggerPerDayPath, []domain.TriggerPerDay{result.triggerPerDay}); err != nil {
		return err
	}
	r.logger.Info("trigger per day saved", "path", triggerPerDayPath)

	reportsPath := filepath.Join(r.cfg.OutputDir, triggersDir,
		fmt.Sprintf("triggers_rp_%s_%s.json", label, country))
	if err := writeJSON(reportsPath, result.reports); err != nil {
		return err
	}
	r.logger.Info("station trigger reports saved", "path", reportsPath)

	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
