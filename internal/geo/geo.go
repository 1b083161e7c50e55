// Package geo implements the minimal spatial operations the grid extraction
// strategy needs: polygon containment, bounding boxes, raster clipping,
// polygon rasterization and zonal maxima. Grids are regular lat/lon rasters
// in WGS-84.
package geo

import (
	"math"
)

// Point is a WGS-84 coordinate.
type Point struct {
	Lon float64
	Lat float64
}

// Polygon is one administrative-area outer ring tagged with its numeric zone
// id (the raw placecode digits).
type Polygon struct {
	Zone int
	Ring []Point
}

// Contains reports whether the point lies inside the polygon, using even-odd
// ray casting. Points exactly on an edge may land on either side; admin
// boundaries are far coarser than the grid spacing so this does not matter in
// practice.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	n := len(p.Ring)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := p.Ring[i], p.Ring[j]
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) {
			x := (b.Lon-a.Lon)*(pt.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if pt.Lon < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// BBox is an axis-aligned bounding box in lon/lat.
type BBox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// BoundsOf returns the union bounding box of the polygons.
func BoundsOf(polys []Polygon) BBox {
	b := BBox{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	for _, p := range polys {
		for _, pt := range p.Ring {
			b.MinLon = math.Min(b.MinLon, pt.Lon)
			b.MaxLon = math.Max(b.MaxLon, pt.Lon)
			b.MinLat = math.Min(b.MinLat, pt.Lat)
			b.MaxLat = math.Max(b.MaxLat, pt.Lat)
		}
	}
	return b
}

// Contains reports whether the point lies within the box, borders included.
func (b BBox) Contains(pt Point) bool {
	return pt.Lon >= b.MinLon && pt.Lon <= b.MaxLon &&
		pt.Lat >= b.MinLat && pt.Lat <= b.MaxLat
}

// Raster is a regular lat/lon grid of discharge values. Axes are ascending;
// Values is indexed [latIdx][lonIdx]. Missing cells hold NaN.
type Raster struct {
	Lons   []float64
	Lats   []float64
	Values [][]float64
}

// At returns the cell value at the given lat/lon indices.
func (r *Raster) At(latIdx, lonIdx int) float64 {
	return r.Values[latIdx][lonIdx]
}

// Clip returns a sub-raster covering only the cells whose centers fall within
// the bounding box. The result shares no storage with the input.
func (r *Raster) Clip(b BBox) *Raster {
	var lats []float64
	var latIdx []int
	for i, lat := range r.Lats {
		if lat >= b.MinLat && lat <= b.MaxLat {
			lats = append(lats, lat)
			latIdx = append(latIdx, i)
		}
	}
	var lons []float64
	var lonIdx []int
	for j, lon := range r.Lons {
		if lon >= b.MinLon && lon <= b.MaxLon {
			lons = append(lons, lon)
			lonIdx = append(lonIdx, j)
		}
	}

	values := make([][]float64, len(lats))
	for i, li := range latIdx {
		row := make([]float64, len(lons))
		for j, lj := range lonIdx {
			row[j] = r.Values[li][lj]
		}
		values[i] = row
	}
	return &Raster{Lons: lons, Lats: lats, Values: values}
}

// RasterizeZones burns the polygons onto the raster's grid: one zone id per
// cell, -1 where no polygon covers the cell center. Later polygons win on
// overlap, matching burn-in rasterization order.
func RasterizeZones(polys []Polygon, like *Raster) [][]int {
	zones := make([][]int, len(like.Lats))
	for i, lat := range like.Lats {
		row := make([]int, len(like.Lons))
		for j, lon := range like.Lons {
			row[j] = -1
			pt := Point{Lon: lon, Lat: lat}
			for _, p := range polys {
				if p.Contains(pt) {
					row[j] = p.Zone
				}
			}
		}
		zones[i] = row
	}
	return zones
}

// ZonalMax computes the per-zone maximum cell value. NaN cells are ignored;
// a zone whose cells are all NaN is omitted.
func ZonalMax(r *Raster, zones [][]int) map[int]float64 {
	out := make(map[int]float64)
	for i := range r.Lats {
		for j := range r.Lons {
			zone := zones[i][j]
			if zone < 0 {
				continue
			}
			v := r.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			if cur, ok := out[zone]; !ok || v > cur {
				out[zone] = v
			}
		}
	}
	return out
}
