package discovery

import (
	"math"
	"sort"
	"strings"
)

// tagSet is a normalized interest set
type tagSet map[string]struct{}

func newTagSet(tags []string) tagSet {
	set := make(tagSet, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// NormalizeTags trims, lowercases and deduplicates tags, dropping empties.
// The result is sorted.
func NormalizeTags(tags []string) []string {
	set := newTagSet(tags)
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |A∩B| / |A∪B| over the normalized sets, and 0 when both are empty
func Jaccard(a, b []string) float64 {
	return jaccard(newTagSet(a), newTagSet(b))
}

func jaccard(a, b tagSet) float64 {
	shared := len(intersect(a, b))
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// intersect returns the sorted common tags
func intersect(a, b tagSet) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := []string{}
	for t := range a {
		if _, ok := b[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// DistanceComponent is the half-life decay 2^(-d/halfLife). Negative or
// non-finite distances and a non-positive or non-finite half-life yield 0.
func DistanceComponent(distanceMeters, halfLifeMeters float64) float64 {
	if !finite(distanceMeters) || distanceMeters < 0 {
		return 0
	}
	if !finite(halfLifeMeters) || halfLifeMeters <= 0 {
		return 0
	}
	return math.Pow(2, -distanceMeters/halfLifeMeters)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
