package discovery

import (
	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

// PositionedUser is a user pinned to a demo map position
type PositionedUser struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Position geo.Point `json:"position"`
}

// ScatterUsers places users around center for demo maps. The offsets are
// derived from the user id (username when the id is unset), so a user always
// lands on the same spot for the same center.
func ScatterUsers(list []*users.UserProfile, center geo.Point) []PositionedUser {
	seeds := make([]geo.Seed, 0, len(list))
	kept := make([]*users.UserProfile, 0, len(list))
	for _, u := range list {
		if u == nil {
			continue
		}
		seeds = append(seeds, geo.Seed{ID: u.ID, Key: u.Username})
		kept = append(kept, u)
	}

	points := geo.ScatterAround(seeds, center)
	out := make([]PositionedUser, len(kept))
	for i, u := range kept {
		out[i] = PositionedUser{UserID: u.ID, Username: u.Username, Position: points[i]}
	}
	return out
}
