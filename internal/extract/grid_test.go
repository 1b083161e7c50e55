package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
)

func gridSettings() *config.CountrySettings {
	return &config.CountrySettings{
		PlacecodePrefix: "SSD",
		PlacecodeLength: 6,
		SelectedPcodes:  []string{"SSD000104"},
	}
}

func writeMemberFiles(t *testing.T, dir string, members int, rows func(member int) string) {
	t.Helper()
	for m := 0; m < members; m++ {
		content := "pcode,ensemble,leadTime,dis\n" + rows(m)
		path := filepath.Join(dir, fmt.Sprintf("glofas_%d.csv", m))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestGridExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	// One selected zone (raw numeric pcode, normalized on read), one
	// unselected zone per member and step.
	writeMemberFiles(t, dir, domain.NominalEnsembleSize, func(m int) string {
		var s string
		for step := 1; step <= 7; step++ {
			s += fmt.Sprintf("104,%d,%d_day,%d\n", m, step, 100*step)
			s += fmt.Sprintf("SSD000999,%d,%d_day,88888\n", m, step)
		}
		return s
	})

	e := NewGridExtractor(gridSettings(), dir, slog.Default())
	records, err := e.Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, records, domain.NominalEnsembleSize*7)
	for _, rec := range records {
		assert.Equal(t, "SSD000104", rec.SiteCode)
		assert.Equal(t, float64(100*rec.LeadTime), rec.Discharge)
	}
}

func TestGridExtractor_Extract_MissingMemberFile(t *testing.T) {
	dir := t.TempDir()
	writeMemberFiles(t, dir, 50, func(m int) string { // member 50 absent
		return "SSD000104,0,1_day,10\n"
	})

	e := NewGridExtractor(gridSettings(), dir, slog.Default())
	_, err := e.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member 50")
}

func TestGridExtractor_Extract_BadLeadTimeLabel(t *testing.T) {
	dir := t.TempDir()
	writeMemberFiles(t, dir, domain.NominalEnsembleSize, func(m int) string {
		return "SSD000104,0,9_day,10\n"
	})

	e := NewGridExtractor(gridSettings(), dir, slog.Default())
	_, err := e.Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead time label")
}

func TestMockExtractor_Extract(t *testing.T) {
	settings := &config.CountrySettings{
		IfMockTrigger: true,
		Stations: []domain.Station{
			{Code: "G1067", Threshold2Year: 1000, Threshold5Year: 2000, Threshold10Year: 3000, Threshold20Year: 4000},
			{Code: "G0001"}, // mapped but not a dummy-flood station
			{Code: "G9999"}, // unmapped, skipped
			{Code: domain.NoStationCode},
		},
		DistrictMapping: []config.DistrictMapping{
			{GlofasStation: "G1067", PlaceCode: "ETH0001"},
			{GlofasStation: "G0001", PlaceCode: "ETH0002"},
		},
	}

	records, err := NewMockExtractor(settings, slog.Default()).Extract(context.Background())
	require.NoError(t, err)

	// Two mapped stations, 7 steps, 51 members each.
	require.Len(t, records, 2*7*domain.NominalEnsembleSize)

	for _, rec := range records {
		switch {
		case rec.SiteCode == "G1067" && rec.LeadTime >= 3:
			assert.Equal(t, 5000.0, rec.Discharge)
		default:
			assert.Equal(t, 0.0, rec.Discharge, "station %s step %d", rec.SiteCode, rec.LeadTime)
		}
	}
}

func TestMockExtractor_Extract_NoTriggerFlag(t *testing.T) {
	settings := &config.CountrySettings{
		IfMockTrigger: false,
		Stations:      []domain.Station{{Code: "G1067"}},
		DistrictMapping: []config.DistrictMapping{
			{GlofasStation: "G1067", PlaceCode: "ETH0001"},
		},
	}

	records, err := NewMockExtractor(settings, slog.Default()).Extract(context.Background())
	require.NoError(t, err)

	for _, rec := range records {
		assert.Equal(t, 0.0, rec.Discharge)
	}
}
