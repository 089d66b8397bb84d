// Package geo holds the geospatial math the platform is built on: great-circle
// distances, bounding-box prefilters, request clustering, and map viewport
// helpers. Everything here is pure computation; persistence and HTTP live in
// the feature packages.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// kmPerDegreeLat is the flat-earth shortcut used for bounding boxes.
// One degree of latitude is ~111km everywhere; longitude shrinks by cos(lat).
const kmPerDegreeLat = 111.0

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Box is an axis-aligned lat/lng rectangle.
type Box struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point falls inside the box (inclusive).
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// IndiaBounds is the default map region when there is nothing to frame.
var IndiaBounds = Box{MinLat: 6.4, MaxLat: 37.6, MinLng: 68.1, MaxLng: 97.4}

// Distance returns the great-circle distance in kilometers between two points
// using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)
	dLat := degToRad(lat2 - lat1)
	dLng := degToRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ValidCoordinates reports whether lat/lng are inside the WGS84 ranges.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// WithinRadius reports whether (lat, lng) lies within radiusKm of the center,
// boundary inclusive.
func WithinRadius(centerLat, centerLng, lat, lng, radiusKm float64) bool {
	return Distance(centerLat, centerLng, lat, lng) <= radiusKm
}

// BoundingBox returns a box guaranteed to contain the circle of radiusKm
// around the center. It over-approximates, so callers must re-check candidates
// with Distance before trusting them. Near the poles cos(lat) collapses, so
// the longitude span is clamped to the full globe instead of dividing by zero.
func BoundingBox(lat, lng, radiusKm float64) Box {
	latDelta := radiusKm / kmPerDegreeLat

	lngDelta := 180.0
	if cosLat := math.Cos(degToRad(lat)); cosLat > 1e-10 {
		lngDelta = radiusKm / (kmPerDegreeLat * cosLat)
		if lngDelta > 180 {
			lngDelta = 180
		}
	}

	return Box{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

// Bearing returns the initial great-circle bearing from point 1 to point 2,
// in degrees clockwise from north, normalized to [0, 360).
func Bearing(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)
	dLng := degToRad(lng2 - lng1)

	x := math.Sin(dLng) * math.Cos(lat2Rad)
	y := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLng)

	bearing := radToDeg(math.Atan2(x, y))
	return math.Mod(bearing+360, 360)
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassDirection maps a bearing to one of the 8 compass points.
func CompassDirection(bearing float64) string {
	idx := int(math.Round(bearing/45)) % 8
	return compassPoints[idx]
}

// FormatDistance renders a distance for humans: meters under 1km, otherwise
// kilometers with one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(km*1000))
	}
	return fmt.Sprintf("%.1f km", km)
}

// InIndia reports whether the point falls inside the platform's default
// deployment region.
func InIndia(lat, lng float64) bool {
	return IndiaBounds.Contains(lat, lng)
}

// MapBounds frames a set of points for map display: the min/max box padded by
// 10% of each span on every side. An empty set returns IndiaBounds so the map
// always has something sensible to show.
func MapBounds(points []Coordinate) Box {
	if len(points) == 0 {
		return IndiaBounds
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}

	latPad := (maxLat - minLat) * 0.1
	lngPad := (maxLng - minLng) * 0.1

	return Box{
		MinLat: minLat - latPad,
		MaxLat: maxLat + latPad,
		MinLng: minLng - lngPad,
		MaxLng: maxLng + lngPad,
	}
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
