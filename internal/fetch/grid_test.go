package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodwatch/glofas-trigger/internal/config"
)

func gridSettings() *config.CountrySettings {
	return &config.CountrySettings{
		FTPPath:         "/glofas",
		PlacecodePrefix: "SSD",
		PlacecodeLength: 6,
		AdminAreas: []config.AdminArea{
			{
				PlaceCode: "SSD000104",
				Ring:      [][2]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}},
			},
		},
	}
}

// memberGridCSV holds one cell inside the admin area (0.5, 0.5) and one
// outside it (5.5, 5.5) for each of the 7 steps.
func memberGridCSV(insideDis float64) []byte {
	var b strings.Builder
	b.WriteString("lat,lon,step,dis\n")
	for step := 1; step <= 7; step++ {
		fmt.Fprintf(&b, "0.5,0.5,%d,%g\n", step, insideDis)
		fmt.Fprintf(&b, "5.5,5.5,%d,99999\n", step)
	}
	return []byte(b.String())
}

func TestGridSource_Fetch(t *testing.T) {
	freezeRunDate(t)
	gridDir := t.TempDir()

	payloads := map[string][]byte{}
	for member := 0; member < 51; member++ {
		remote := fmt.Sprintf("/glofas/fc_netcdf/20260829/dis_%02d_2026082900.csv", member)
		payloads[remote] = memberGridCSV(700)
	}
	dl := &fakeDownloader{payloads: payloads}
	src := NewGridSource(dl, gridSettings(), gridDir, slog.Default())

	require.NoError(t, src.Fetch(context.Background()))
	assert.Len(t, dl.requests, 51)

	for _, member := range []int{0, 25, 50} {
		f, err := os.Open(filepath.Join(gridDir, fmt.Sprintf("glofas_%d.csv", member)))
		require.NoError(t, err)
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err)

		require.Equal(t, []string{"pcode", "ensemble", "leadTime", "dis"}, rows[0])
		// One zone, seven steps. The out-of-area cell is clipped away.
		require.Len(t, rows, 8)
		for _, row := range rows[1:] {
			assert.Equal(t, "SSD000104", row[0])
			assert.Equal(t, fmt.Sprintf("%d", member), row[1])
			assert.Equal(t, "700", row[3])
		}
	}
}

func TestGridSource_Fetch_MissingStep(t *testing.T) {
	freezeRunDate(t)

	truncated := []byte("lat,lon,step,dis\n0.5,0.5,1,700\n")
	payloads := map[string][]byte{
		"/glofas/fc_netcdf/20260829/dis_00_2026082900.csv": truncated,
	}
	src := NewGridSource(&fakeDownloader{payloads: payloads}, gridSettings(), t.TempDir(), slog.Default())

	err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing step")
}

func TestGridSource_Fetch_NoAdminAreas(t *testing.T) {
	settings := gridSettings()
	settings.AdminAreas = nil
	src := NewGridSource(&fakeDownloader{}, settings, t.TempDir(), slog.Default())

	err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no admin areas")
}
