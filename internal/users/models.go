// internal/users/models.go

package users

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrCannotBlockSelf = fmt.Errorf("%w: cannot block yourself", apperr.ErrSelfAction)
	ErrVersionMismatch = fmt.Errorf("user changed concurrently: %w", apperr.ErrConflict)
)

// UserProfile is the discovery and moderation view of a user row
type UserProfile struct {
	ID           int64          `json:"id" db:"id"`
	Username     string         `json:"username" db:"username"`
	InterestTags pq.StringArray `json:"interest_tags" db:"interest_tags"`
	Latitude     *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64       `json:"longitude,omitempty" db:"longitude"`
	TrustScore   int            `json:"trust_score" db:"trust_score"`
	Visible      bool           `json:"visible" db:"visible"`
	IsAdmin      bool           `json:"-" db:"is_admin"`
	Banned       bool           `json:"banned" db:"banned"`
	BannedAt     *time.Time     `json:"banned_at,omitempty" db:"banned_at"`
	BanReason    *string        `json:"ban_reason,omitempty" db:"ban_reason"`
	Version      int64          `json:"-" db:"version"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Coords returns the user's location, or false when either half is missing
func (u *UserProfile) Coords() (geo.Point, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: *u.Latitude, Lon: *u.Longitude}
	return p, p.Valid()
}

// SetCoords stores p on the profile
func (u *UserProfile) SetCoords(p geo.Point) {
	lat, lon := p.Lat, p.Lon
	u.Latitude = &lat
	u.Longitude = &lon
}

// BanState is the ban portion of a profile returned by ban/unban
type BanState struct {
	UserID    int64      `json:"user_id"`
	Banned    bool       `json:"banned"`
	BannedAt  *time.Time `json:"banned_at"`
	BanReason *string    `json:"ban_reason"`
}

// BanState snapshots the ban fields
func (u *UserProfile) BanState() BanState {
	return BanState{
		UserID:    u.ID,
		Banned:    u.Banned,
		BannedAt:  u.BannedAt,
		BanReason: u.BanReason,
	}
}

// CandidateFilter narrows the candidate query for the nearby feed
type CandidateFilter struct {
	ExcludeID int64
	Box       *geo.Box
	// Origin orders candidates nearest first before Limit cuts them;
	// without it the order is by id
	Origin *geo.Point
	Limit  int
}
