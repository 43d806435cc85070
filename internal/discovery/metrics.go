package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_rank_duration_seconds",
			Help:    "Time spent ranking a candidate list",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"source"},
	)

	candidatesConsidered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_candidates_considered",
			Help:    "Candidates passed into a ranking call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_match_scores",
			Help:    "Distribution of returned match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func observeRanking(source string, seconds float64, considered int, ranked []RankedCandidate) {
	rankDuration.WithLabelValues(source).Observe(seconds)
	candidatesConsidered.Observe(float64(considered))
	for i := range ranked {
		matchScores.Observe(ranked[i].Score)
	}
}
