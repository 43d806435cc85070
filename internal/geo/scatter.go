package geo

import (
	"hash/fnv"
	"math"
)

const (
	scatterMinRadius  = 300.0
	scatterRadiusSpan = 200.0
)

// Seed identifies something to scatter. ID wins when non-zero; Key is
// hashed otherwise.
type Seed struct {
	ID  int64
	Key string
}

func (s Seed) value() float64 {
	if s.ID != 0 {
		return float64(s.ID)
	}
	h := fnv.New32a()
	h.Write([]byte(s.Key))
	return float64(h.Sum32())
}

// ScatterAround places every seed at a reproducible spot 300-500 m from
// center. The offsets come from a seeded sin hash and only stand in for real
// GPS fixes on demo accounts; they carry no location information.
func ScatterAround(seeds []Seed, center Point) []Point {
	out := make([]Point, len(seeds))
	for i, s := range seeds {
		out[i] = Offset(s, center)
	}
	return out
}

// Offset returns the scattered position of a single seed
func Offset(s Seed, center Point) Point {
	v := s.value()
	bearing := seededRandom(v, 1) * 2 * math.Pi
	radius := scatterMinRadius + seededRandom(v, 2)*scatterRadiusSpan

	dLat := radius * math.Cos(bearing) / metersPerDegree
	cosLat := math.Max(math.Cos(toRadians(center.Lat)), 1e-6)
	dLon := radius * math.Sin(bearing) / (metersPerDegree * cosLat)

	return Point{Lat: center.Lat + dLat, Lon: center.Lon + dLon}
}

// seededRandom maps (seed, salt) to [0, 1)
func seededRandom(seed, salt float64) float64 {
	x := math.Sin(seed*12.9898+salt*78.233) * 43758.5453
	r := x - math.Floor(x)
	if r < 0 || r >= 1 || math.IsNaN(r) {
		return 0
	}
	return r
}
