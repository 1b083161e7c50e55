package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// gridPoint is one decoded row of a member grid file.
type gridPoint struct {
	lat, lon float64
	step     int
	dis      float64
}

// ReadMemberGrid decodes one ensemble member's discharge grid from its CSV
// form (columns lat,lon,step,dis; header row required) into one raster per
// forecast step. Cells absent from the file stay NaN.
func ReadMemberGrid(r io.Reader) (map[int]*Raster, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read grid header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"lat", "lon", "step", "dis"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("grid file missing column %q", name)
		}
	}

	var points []gridPoint
	latSet := map[float64]bool{}
	lonSet := map[float64]bool{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read grid row: %w", err)
		}
		p, err := parseGridRow(rec, col)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
		latSet[p.lat] = true
		lonSet[p.lon] = true
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("grid file has no data rows")
	}

	lats := sortedKeys(latSet)
	lons := sortedKeys(lonSet)
	latIdx := indexOf(lats)
	lonIdx := indexOf(lons)

	rasters := make(map[int]*Raster)
	for _, p := range points {
		ras, ok := rasters[p.step]
		if !ok {
			ras = emptyRaster(lats, lons)
			rasters[p.step] = ras
		}
		ras.Values[latIdx[p.lat]][lonIdx[p.lon]] = p.dis
	}
	return rasters, nil
}

func parseGridRow(rec []string, col map[string]int) (gridPoint, error) {
	var p gridPoint
	var err error
	if p.lat, err = strconv.ParseFloat(rec[col["lat"]], 64); err != nil {
		return p, fmt.Errorf("grid row lat: %w", err)
	}
	if p.lon, err = strconv.ParseFloat(rec[col["lon"]], 64); err != nil {
		return p, fmt.Errorf("grid row lon: %w", err)
	}
	if p.step, err = strconv.Atoi(rec[col["step"]]); err != nil {
		return p, fmt.Errorf("grid row step: %w", err)
	}
	if p.dis, err = strconv.ParseFloat(rec[col["dis"]], 64); err != nil {
		return p, fmt.Errorf("grid row dis: %w", err)
	}
	return p, nil
}

func sortedKeys(set map[float64]bool) []float64 {
	keys := make([]float64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

func indexOf(vals []float64) map[float64]int {
	idx := make(map[float64]int, len(vals))
	for i, v := range vals {
		idx[v] = i
	}
	return idx
}

func emptyRaster(lats, lons []float64) *Raster {
	values := make([][]float64, len(lats))
	for i := range values {
		row := make([]float64, len(lons))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	return &Raster{Lons: lons, Lats: lats, Values: values}
}
