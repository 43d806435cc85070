package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScatterAroundDeterministic(t *testing.T) {
	center := Point{Lat: 6.5244, Lon: 3.3792}
	seeds := []Seed{{ID: 1}, {ID: 42}, {ID: 9001}, {Key: "demo-user"}}

	first := ScatterAround(seeds, center)
	second := ScatterAround(seeds, center)

	assert.Equal(t, first, second)
	assert.Len(t, first, len(seeds))
}

func TestScatterAroundRadius(t *testing.T) {
	center := Point{Lat: 51.5074, Lon: -0.1278}

	for id := int64(1); id <= 200; id++ {
		p := Offset(Seed{ID: id}, center)
		d := Distance(center, p)

		// the flat-earth offset is within a meter of the great-circle distance here
		assert.GreaterOrEqual(t, d, 299.0, "id %d", id)
		assert.Less(t, d, 501.0, "id %d", id)
	}
}

func TestScatterSeedFallback(t *testing.T) {
	center := Point{Lat: 0, Lon: 0}

	a := Offset(Seed{Key: "alice"}, center)
	b := Offset(Seed{Key: "alice"}, center)
	c := Offset(Seed{Key: "bob"}, center)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// id wins over key
	assert.Equal(t, Offset(Seed{ID: 7}, center), Offset(Seed{ID: 7, Key: "ignored"}, center))
}

func TestSeededRandomRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		r := seededRandom(float64(i), 1)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
	}
}
