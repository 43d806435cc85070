// Package geo holds the pure distance helpers used by discovery.
// Everything here is side-effect free and safe for concurrent use.
package geo

import "math"

// EarthRadiusMeters is the mean radius used for great-circle distances
const EarthRadiusMeters = 6371000.0

// metersPerDegree is the length of one degree of latitude
const metersPerDegree = 111320.0

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// Valid reports whether the point is finite and inside the lat/lon ranges
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push a a hair above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Distance is HaversineMeters over two points
func Distance(a, b Point) float64 {
	return HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ApproxDistanceSq is an equirectangular squared distance in degrees. It
// preserves the nearest-first order of Distance over short ranges and is the
// same expression the candidate query sorts by.
func ApproxDistanceSq(a, b Point) float64 {
	dLat := b.Lat - a.Lat
	dLon := (b.Lon - a.Lon) * math.Cos(toRadians(a.Lat))
	return dLat*dLat + dLon*dLon
}

// Box is a lat/lon rectangle
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether p falls inside the box
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBox returns a rectangle that encloses every point within radius
// meters of center. It over-approximates, so callers still filter by the
// exact distance. Used as a cheap SQL prefilter.
func BoundingBox(center Point, radius float64) Box {
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}

	dLat := radius / metersPerDegree
	cosLat := math.Cos(toRadians(center.Lat))
	if cosLat < 1e-6 {
		return Box{
			MinLat: math.Max(-90, center.Lat-dLat),
			MaxLat: math.Min(90, center.Lat+dLat),
			MinLon: -180,
			MaxLon: 180,
		}
	}
	dLon := radius / (metersPerDegree * cosLat)

	return Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLon: math.Max(-180, center.Lon-dLon),
		MaxLon: math.Min(180, center.Lon+dLon),
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
