package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/floodwatch/glofas-trigger/internal/config"
	"github.com/floodwatch/glofas-trigger/internal/domain"
	"github.com/floodwatch/glofas-trigger/internal/geo"
)

// GridSource streams the 51 per-ensemble-member discharge grids, clips each
// to the country's admin-area bounding box, reduces it to a per-admin-area
// zonal maximum for every lead-time step, and emits one zonal CSV per member
// (glofas_<member>.csv) into the grid input directory. Used by the
// grid-strategy countries.
type GridSource struct {
	client   Downloader
	settings *config.CountrySettings
	gridDir  string
	logger   *slog.Logger
}

// NewGridSource builds a GridSource writing into gridDir.
func NewGridSource(client Downloader, settings *config.CountrySettings, gridDir string, logger *slog.Logger) *GridSource {
	return &GridSource{
		client:   client,
		settings: settings,
		gridDir:  gridDir,
		logger:   logger,
	}
}

// Fetch downloads and pre-clips every ensemble member for the current cycle.
func (s *GridSource) Fetch(ctx context.Context) error {
	polys, err := s.adminPolygons()
	if err != nil {
		return err
	}
	bbox := geo.BoundsOf(polys)
	date := domain.RunDate().Format("20060102")
	scratch := filepath.Join(s.gridDir, "glofas_member.csv")

	for member := 0; member < domain.NominalEnsembleSize; member++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		remote := fmt.Sprintf("%s/fc_netcdf/%s/dis_%02d_%s00.csv",
			strings.TrimRight(s.settings.FTPPath, "/"), date, member, date)

		s.logger.Info("downloading ensemble member", "member", member)
		if err := s.client.Download(ctx, remote, scratch); err != nil {
			return err
		}
		if err := s.clipMember(scratch, member, polys, bbox); err != nil {
			return fmt.Errorf("member %d: %w", member, err)
		}
	}

	s.logger.Info("finished downloading ensemble grids", "members", domain.NominalEnsembleSize)
	return nil
}

// adminPolygons converts the configured admin areas into zone-tagged
// polygons, the zone being the numeric placecode.
func (s *GridSource) adminPolygons() ([]geo.Polygon, error) {
	if len(s.settings.AdminAreas) == 0 {
		return nil, fmt.Errorf("no admin areas configured for grid extraction")
	}
	polys := make([]geo.Polygon, 0, len(s.settings.AdminAreas))
	for _, area := range s.settings.AdminAreas {
		zone, err := s.settings.NumericPcode(area.PlaceCode)
		if err != nil {
			return nil, err
		}
		ring := make([]geo.Point, len(area.Ring))
		for i, v := range area.Ring {
			ring[i] = geo.Point{Lon: v[0], Lat: v[1]}
		}
		polys = append(polys, geo.Polygon{Zone: zone, Ring: ring})
	}
	return polys, nil
}

// clipMember reduces one member's grid to zonal maxima and writes the
// member's zonal CSV.
func (s *GridSource) clipMember(gridPath string, member int, polys []geo.Polygon, bbox geo.BBox) error {
	f, err := os.Open(gridPath)
	if err != nil {
		return err
	}
	rasters, err := geo.ReadMemberGrid(f)
	f.Close()
	if err != nil {
		return err
	}

	out, err := os.Create(filepath.Join(s.gridDir, fmt.Sprintf("glofas_%d.csv", member)))
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"pcode", "ensemble", "leadTime", "dis"}); err != nil {
		return err
	}

	var zones [][]int
	for step := 1; step <= domain.LeadTimeSteps; step++ {
		raster, ok := rasters[step]
		if !ok {
			return fmt.Errorf("grid missing step %d", step)
		}
		clipped := raster.Clip(bbox)
		// Member grids share axes across steps, so the zone burn-in from the
		// first step is reused.
		if zones == nil {
			zones = geo.RasterizeZones(polys, clipped)
		}
		for zone, dis := range geo.ZonalMax(clipped, zones) {
			err := w.Write([]string{
				s.settings.FormatPlacecode(zone),
				strconv.Itoa(member),
				fmt.Sprintf("%d_day", step),
				strconv.FormatFloat(dis, 'f', -1, 64),
			})
			if err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
