// internal/discovery/ranking.go
// Deterministic ranking of nearby candidates by shared interests and distance.

package discovery

import (
	"math"
	"sort"

	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

// DefaultHalfLifeMeters is the distance at which the distance component halves
const DefaultHalfLifeMeters = 1200.0

// Weights blends tag similarity and distance. They need not sum to 1; the
// final score is clamped to [0, 1].
type Weights struct {
	TagSim   float64 `json:"tag_sim"`
	Distance float64 `json:"distance"`
}

var (
	// DefaultWeights is the blended discovery feed
	DefaultWeights = Weights{TagSim: 0.7, Distance: 0.3}
	// MatchmakingWeights ignores distance entirely
	MatchmakingWeights = Weights{TagSim: 1.0, Distance: 0.0}
)

// WeightsForProfile resolves a named weighting profile
func WeightsForProfile(name string) (Weights, bool) {
	switch name {
	case "", ProfileDefault:
		return DefaultWeights, true
	case ProfileMatchmaking:
		return MatchmakingWeights, true
	}
	return Weights{}, false
}

const (
	ProfileDefault     = "default"
	ProfileMatchmaking = "matchmaking"
)

// Options tune a single Rank call. Nil pointers mean "use the default".
type Options struct {
	Weights        *Weights
	HalfLifeMeters *float64
	MaxMeters      *float64
	ExcludeIDs     []int64

	// Offset and Limit page over the full order; Limit <= 0 returns everything
	Offset int
	Limit  int
}

// Breakdown explains a score
type Breakdown struct {
	TagSimilarity     float64 `json:"tag_similarity"`
	DistanceComponent float64 `json:"distance_component"`
}

// RankedCandidate is one entry in a discovery feed
type RankedCandidate struct {
	User *users.UserProfile `json:"-"`

	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	InterestTags   []string  `json:"interest_tags"`
	TrustScore     int       `json:"trust_score"`
	DistanceMeters float64   `json:"distance_meters"`
	Distance       string    `json:"distance"`
	Score          float64   `json:"score"`
	Breakdown      Breakdown `json:"breakdown"`
	SharedTags     []string  `json:"shared_tags"`
}

// Rank scores candidates against the requester and returns them best first.
// It never fails: hidden candidates, candidates without valid coordinates,
// the requester itself and excluded ids are dropped, and a requester without
// valid coordinates gets an empty list.
func Rank(requester *users.UserProfile, candidates []*users.UserProfile, opts Options) []RankedCandidate {
	ranked := rankAll(requester, candidates, opts)
	return Page(ranked, opts.Offset, opts.Limit)
}

func rankAll(requester *users.UserProfile, candidates []*users.UserProfile, opts Options) []RankedCandidate {
	if requester == nil {
		return []RankedCandidate{}
	}
	origin, ok := requester.Coords()
	if !ok {
		return []RankedCandidate{}
	}

	weights := DefaultWeights
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	halfLife := DefaultHalfLifeMeters
	if opts.HalfLifeMeters != nil {
		halfLife = *opts.HalfLifeMeters
	}
	maxMeters := math.Inf(1)
	if opts.MaxMeters != nil && finite(*opts.MaxMeters) && *opts.MaxMeters >= 0 {
		maxMeters = *opts.MaxMeters
	}

	excluded := make(map[int64]struct{}, len(opts.ExcludeIDs)+1)
	excluded[requester.ID] = struct{}{}
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	mine := newTagSet(requester.InterestTags)
	seen := make(map[int64]struct{}, len(candidates))
	out := make([]RankedCandidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}
		// the first occurrence of a duplicated id is the one judged
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		if _, skip := excluded[c.ID]; skip || !c.Visible {
			continue
		}
		pos, ok := c.Coords()
		if !ok {
			continue
		}

		d := geo.Distance(origin, pos)
		if d > maxMeters {
			continue
		}

		theirs := newTagSet(c.InterestTags)
		tagSim := jaccard(mine, theirs)
		distComp := DistanceComponent(d, halfLife)

		out = append(out, RankedCandidate{
			User:           c,
			UserID:         c.ID,
			Username:       c.Username,
			InterestTags:   NormalizeTags(c.InterestTags),
			TrustScore:     c.TrustScore,
			DistanceMeters: d,
			Distance:       geo.FormatDistance(d),
			Score:          score(weights, tagSim, distComp),
			Breakdown: Breakdown{
				TagSimilarity:     tagSim,
				DistanceComponent: distComp,
			},
			SharedTags: intersect(mine, theirs),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

// less orders by score desc, shared tags desc, distance asc, id asc
func less(a, b *RankedCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.SharedTags) != len(b.SharedTags) {
		return len(a.SharedTags) > len(b.SharedTags)
	}
	if a.DistanceMeters != b.DistanceMeters {
		return a.DistanceMeters < b.DistanceMeters
	}
	return a.UserID < b.UserID
}

func score(w Weights, tagSim, distComp float64) float64 {
	tw, dw := w.TagSim, w.Distance
	if !finite(tw) {
		tw = 0
	}
	if !finite(dw) {
		dw = 0
	}
	s := tw*tagSim + dw*distComp
	if !finite(s) || s < 0 {
		return 0
	}
	return math.Min(1, s)
}

// Page slices an ordered list. Offsets past the end give an empty list.
func Page(ranked []RankedCandidate, offset, limit int) []RankedCandidate {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ranked) {
		return []RankedCandidate{}
	}
	end := len(ranked)
	// compared as a remainder so a huge limit cannot overflow offset+limit
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return ranked[offset:end]
}
