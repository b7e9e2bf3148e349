// Package coalescefii is the FFI boundary onto the native tile/coalesce
// engine described as an external collaborator in spec.md §6: projection
// helpers (projectToTileXY, insideTile, bboxIntersection), the 3-bit log
// scale score decoder, and the coalesce primitive itself.
package coalescefii

import "math"

// LonLat is a [lon, lat] point in the proximity/bbox option shape.
type LonLat struct {
	Lon float64
	Lat float64
}

// BBox is [west, south, east, north].
type BBox [4]float64

// TileZXY is one [z, x, y] tile coordinate.
type TileZXY struct {
	Z, X, Y int
}

// TileRange is a rectangular range of tiles at a single zoom level:
// [z, minx, miny, maxx, maxy].
type TileRange struct {
	Z                      int
	MinX, MinY, MaxX, MaxY int
}

// ProjectToTileXY projects a [lon, lat] point to the tile containing it at
// the given zoom, using standard Web Mercator slippy-map tile math.
func ProjectToTileXY(p LonLat, zoom int) TileZXY {
	n := math.Pow(2, float64(zoom))
	x := int(math.Floor((p.Lon + 180.0) / 360.0 * n))
	latRad := p.Lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))
	return TileZXY{Z: zoom, X: clampTile(x, zoom), Y: clampTile(y, zoom)}
}

func clampTile(v, zoom int) int {
	n := 1 << uint(zoom)
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// InsideTile returns the tile range(s) covering bbox at zoom. It returns
// two ranges when the bbox crosses the antimeridian (west > east).
func InsideTile(bbox BBox, zoom int) []TileRange {
	west, south, east, north := bbox[0], bbox[1], bbox[2], bbox[3]

	if west <= east {
		return []TileRange{tileRangeFor(west, south, east, north, zoom)}
	}
	// Antimeridian wrap: split into [west,180] and [-180,east].
	return []TileRange{
		tileRangeFor(west, south, 180, north, zoom),
		tileRangeFor(-180, south, east, north, zoom),
	}
}

func tileRangeFor(west, south, east, north float64, zoom int) TileRange {
	nw := ProjectToTileXY(LonLat{Lon: west, Lat: north}, zoom)
	se := ProjectToTileXY(LonLat{Lon: east, Lat: south}, zoom)
	return TileRange{Z: zoom, MinX: nw.X, MinY: nw.Y, MaxX: se.X, MaxY: se.Y}
}

// BboxIntersection returns the intersection of a and b, and false if they
// do not overlap.
func BboxIntersection(a, b BBox) (BBox, bool) {
	west := math.Max(a[0], b[0])
	south := math.Max(a[1], b[1])
	east := math.Min(a[2], b[2])
	north := math.Min(a[3], b[3])
	if west > east || south > north {
		return BBox{}, false
	}
	return BBox{west, south, east, north}, true
}

// milesToDegreesLat converts a distance in miles to degrees of latitude,
// a flat, ellipsoid-agnostic approximation adequate for the partial
// number proximity buffer in §4.F.
func milesToDegreesLat(miles float64) float64 {
	const milesPerDegreeLat = 69.0
	return miles / milesPerDegreeLat
}

// milesToDegreesLon converts a distance in miles to degrees of longitude
// at the given latitude, using the same flat approximation.
func milesToDegreesLon(miles, atLat float64) float64 {
	const milesPerDegreeLonAtEquator = 69.172
	cos := math.Cos(atLat * math.Pi / 180.0)
	if cos < 0.01 {
		cos = 0.01
	}
	return miles / (milesPerDegreeLonAtEquator * cos)
}

// BufferMiles returns a bbox formed by buffering point by radiusMiles in
// every direction, flat-approximated at point.Lat (§4.F: "10-mile buffer,
// ellipsoid-agnostic flat approximation at proximity.lat").
func BufferMiles(point LonLat, radiusMiles float64) BBox {
	dLat := milesToDegreesLat(radiusMiles)
	dLon := milesToDegreesLon(radiusMiles, point.Lat)
	return BBox{point.Lon - dLon, point.Lat - dLat, point.Lon + dLon, point.Lat + dLat}
}
