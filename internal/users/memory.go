package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
)

// MemoryRepository keeps users in process. It backs tests and the
// STORE=memory development mode, and honors the same version CAS as Postgres.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*UserProfile
	blocks map[[2]int64]struct{}
}

func NewMemoryRepository(seed ...*UserProfile) *MemoryRepository {
	r := &MemoryRepository{
		users:  make(map[int64]*UserProfile),
		blocks: make(map[[2]int64]struct{}),
	}
	for _, u := range seed {
		r.Put(u)
	}
	return r
}

// Put inserts or replaces a user as-is
func (r *MemoryRepository) Put(u *UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) ListCandidates(ctx context.Context, filter CandidateFilter) ([]*UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	var out []*UserProfile
	for _, u := range r.users {
		if u.ID == filter.ExcludeID || !u.Visible || u.Banned {
			continue
		}
		p, ok := u.Coords()
		if !ok {
			continue
		}
		if filter.Box != nil && !filter.Box.Contains(p) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}

	if filter.Origin != nil {
		origin := *filter.Origin
		sort.Slice(out, func(i, j int) bool {
			pi, _ := out[i].Coords()
			pj, _ := out[j].Coords()
			di, dj := geo.ApproxDistanceSq(origin, pi), geo.ApproxDistanceSq(origin, pj)
			if di != dj {
				return di < dj
			}
			return out[i].ID < out[j].ID
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) UpdateTrustScore(ctx context.Context, u *UserProfile) error {
	return r.compareAndSwap(u, func(stored *UserProfile) {
		stored.TrustScore = u.TrustScore
	})
}

func (r *MemoryRepository) UpdateBan(ctx context.Context, u *UserProfile) error {
	return r.compareAndSwap(u, func(stored *UserProfile) {
		stored.Banned = u.Banned
		stored.BannedAt = u.BannedAt
		stored.BanReason = u.BanReason
	})
}

func (r *MemoryRepository) compareAndSwap(u *UserProfile, apply func(stored *UserProfile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	if stored.Version != u.Version {
		return ErrVersionMismatch
	}

	apply(stored)
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()

	u.Version = stored.Version
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) BlockUser(ctx context.Context, userID, blockedID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[[2]int64{userID, blockedID}] = struct{}{}
	return nil
}

func (r *MemoryRepository) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blocks, [2]int64{userID, blockedID})
	return nil
}

func (r *MemoryRepository) BlockedIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for pair := range r.blocks {
		var other int64
		switch userID {
		case pair[0]:
			other = pair[1]
		case pair[1]:
			other = pair[0]
		default:
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
