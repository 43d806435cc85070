package discovery

import (
	"fmt"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

// ProfileDTO is a caller-supplied snapshot of a user for the stateless rank endpoint
type ProfileDTO struct {
	ID           int64    `json:"id" validate:"gt=0"`
	Username     string   `json:"username"`
	InterestTags []string `json:"interest_tags" validate:"max=200"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Visible      *bool    `json:"visible"`
	TrustScore   *int     `json:"trust_score"`
}

func (p *ProfileDTO) toProfile() *users.UserProfile {
	u := &users.UserProfile{
		ID:           p.ID,
		Username:     p.Username,
		InterestTags: p.InterestTags,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Visible:      true,
		TrustScore:   100,
	}
	if p.Visible != nil {
		u.Visible = *p.Visible
	}
	if p.TrustScore != nil {
		u.TrustScore = *p.TrustScore
	}
	return u
}

// OptionsDTO mirrors Options on the wire. Profile and Weights are exclusive.
type OptionsDTO struct {
	Profile        string   `json:"profile" validate:"omitempty,oneof=default matchmaking"`
	Weights        *Weights `json:"weights"`
	HalfLifeMeters *float64 `json:"half_life_meters"`
	MaxMeters      *float64 `json:"max_meters"`
	ExcludeIDs     []int64  `json:"exclude_ids"`
	Offset         int      `json:"offset" validate:"gte=0"`
	Limit          int      `json:"limit" validate:"gte=0,lte=1000"`
}

func (o *OptionsDTO) toOptions(fallback Weights) (Options, error) {
	opts := Options{
		HalfLifeMeters: o.HalfLifeMeters,
		MaxMeters:      o.MaxMeters,
		ExcludeIDs:     o.ExcludeIDs,
		Offset:         o.Offset,
		Limit:          o.Limit,
	}

	switch {
	case o.Weights != nil && o.Profile != "":
		return Options{}, fmt.Errorf("%w: set either profile or weights, not both", apperr.ErrValidation)
	case o.Weights != nil:
		w := *o.Weights
		opts.Weights = &w
	case o.Profile != "":
		w, ok := WeightsForProfile(o.Profile)
		if !ok {
			return Options{}, fmt.Errorf("%w: unknown profile %q", apperr.ErrValidation, o.Profile)
		}
		opts.Weights = &w
	default:
		w := fallback
		opts.Weights = &w
	}

	return opts, nil
}

// RankRequest is the body of POST /discovery/rank
type RankRequest struct {
	Requester  ProfileDTO   `json:"requester" validate:"required"`
	Candidates []ProfileDTO `json:"candidates" validate:"max=5000,dive"`
	Options    OptionsDTO   `json:"options"`
}

// ScatterRequest is the body of POST /discovery/scatter
type ScatterRequest struct {
	Center struct {
		Lat float64 `json:"lat" validate:"latitude"`
		Lon float64 `json:"lon" validate:"longitude"`
	} `json:"center"`
	Users []ScatterUser `json:"users" validate:"max=5000,dive"`
}

// ScatterUser identifies a user to place; username seeds the offset when id is 0
type ScatterUser struct {
	ID       int64  `json:"id" validate:"gte=0"`
	Username string `json:"username"`
}

func (r *ScatterRequest) center() geo.Point {
	return geo.Point{Lat: r.Center.Lat, Lon: r.Center.Lon}
}

// RankResponse is a page of ranked candidates
type RankResponse struct {
	Results []RankedCandidate `json:"results"`
	Total   int               `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
}
