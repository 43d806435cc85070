// internal/users/repository.go

package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*UserProfile, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]*UserProfile, error)

	// UpdateTrustScore and UpdateBan are compare-and-swap writes: they only
	// apply when the stored version equals u.Version, and bump it on success.
	UpdateTrustScore(ctx context.Context, u *UserProfile) error
	UpdateBan(ctx context.Context, u *UserProfile) error

	// Blocking
	BlockUser(ctx context.Context, userID, blockedID int64) error
	UnblockUser(ctx context.Context, userID, blockedID int64) error
	// BlockedIDs returns users the given user blocked or was blocked by
	BlockedIDs(ctx context.Context, userID int64) ([]int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `
    id, username, interest_tags, latitude, longitude, trust_score, visible,
    is_admin, banned, banned_at, ban_reason, version, created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*UserProfile, error) {
	var u UserProfile
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &u, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) ListCandidates(ctx context.Context, filter CandidateFilter) ([]*UserProfile, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	query := `SELECT` + userColumns + `
        FROM users
        WHERE id <> $1
          AND visible = TRUE
          AND banned = FALSE
          AND latitude IS NOT NULL
          AND longitude IS NOT NULL`
	args := []interface{}{filter.ExcludeID}

	if filter.Box != nil {
		query += ` AND latitude BETWEEN $2 AND $3 AND longitude BETWEEN $4 AND $5`
		args = append(args, filter.Box.MinLat, filter.Box.MaxLat, filter.Box.MinLon, filter.Box.MaxLon)
	}

	if filter.Origin != nil {
		// equirectangular approximation, same as geo.ApproxDistanceSq
		args = append(args, filter.Origin.Lat, filter.Origin.Lon)
		lat, lon := len(args)-1, len(args)
		query += fmt.Sprintf(`
        ORDER BY POWER(latitude - $%d, 2) + POWER((longitude - $%d) * COS(RADIANS($%d)), 2), id`, lat, lon, lat)
	} else {
		query += " ORDER BY id"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	var candidates []*UserProfile
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return candidates, nil
}

func (r *postgresRepository) UpdateTrustScore(ctx context.Context, u *UserProfile) error {
	query := `
        UPDATE users
        SET trust_score = $2, version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $3
        RETURNING version, updated_at
    `

	err := r.db.QueryRowxContext(ctx, query, u.ID, u.TrustScore, u.Version).Scan(&u.Version, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("update trust score for user %d: %w", u.ID, err)
	}

	return nil
}

func (r *postgresRepository) UpdateBan(ctx context.Context, u *UserProfile) error {
	query := `
        UPDATE users
        SET banned = $2, banned_at = $3, ban_reason = $4,
            version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $5
        RETURNING version, updated_at
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		u.ID, u.Banned, u.BannedAt, u.BanReason, u.Version,
	).Scan(&u.Version, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("update ban for user %d: %w", u.ID, err)
	}

	return nil
}

// BlockUser creates a block record; blocking twice is a no-op
func (r *postgresRepository) BlockUser(ctx context.Context, userID, blockedID int64) error {
	query := `
        INSERT INTO user_blocks (blocker_id, blocked_id)
        VALUES ($1, $2)
        ON CONFLICT (blocker_id, blocked_id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, userID, blockedID)
	return err
}

func (r *postgresRepository) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	query := `DELETE FROM user_blocks WHERE blocker_id = $1 AND blocked_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, blockedID)
	return err
}

func (r *postgresRepository) BlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
        SELECT blocked_id FROM user_blocks WHERE blocker_id = $1
        UNION
        SELECT blocker_id FROM user_blocks WHERE blocked_id = $1
    `

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list blocks for user %d: %w", userID, err)
	}

	return ids, nil
}
