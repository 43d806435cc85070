// internal/discovery/service.go

package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-nearby/internal/geo"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

var ErrRequesterBanned = fmt.Errorf("%w: banned accounts cannot browse discovery", apperr.ErrForbidden)

// Config holds the discovery defaults
type Config struct {
	Weights         *Weights // nil means DefaultWeights
	HalfLifeMeters  float64
	SearchRadius    float64 // meters; 0 disables the SQL bounding box
	CandidateLimit  int
	DefaultPageSize int
}

type Service interface {
	// Nearby ranks stored candidates for the stored requester, excluding
	// users blocked in either direction.
	Nearby(ctx context.Context, userID int64, q OptionsDTO) (*RankResponse, error)
	// Rank is the stateless variant over caller-supplied profiles
	Rank(ctx context.Context, req *RankRequest) (*RankResponse, error)
	Scatter(ctx context.Context, req *ScatterRequest) []PositionedUser
}

type service struct {
	repo users.Repository
	cfg  Config
}

func NewService(repo users.Repository, cfg Config) Service {
	if cfg.HalfLifeMeters <= 0 {
		cfg.HalfLifeMeters = DefaultHalfLifeMeters
	}
	if cfg.Weights == nil {
		w := DefaultWeights
		cfg.Weights = &w
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 500
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	return &service{repo: repo, cfg: cfg}
}

func (s *service) Nearby(ctx context.Context, userID int64, q OptionsDTO) (*RankResponse, error) {
	opts, err := s.options(q)
	if err != nil {
		return nil, err
	}

	requester, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requester.Banned {
		return nil, ErrRequesterBanned
	}

	origin, ok := requester.Coords()
	if !ok {
		return &RankResponse{Results: []RankedCandidate{}, Offset: opts.Offset, Limit: opts.Limit}, nil
	}

	filter := users.CandidateFilter{ExcludeID: requester.ID, Origin: &origin, Limit: s.cfg.CandidateLimit}
	if radius := s.searchRadius(opts); radius > 0 {
		box := geo.BoundingBox(origin, radius)
		filter.Box = &box
	}

	var (
		candidates []*users.UserProfile
		blocked    []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.repo.ListCandidates(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		blocked, err = s.repo.BlockedIDs(gctx, requester.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load discovery inputs: %w", err)
	}

	opts.ExcludeIDs = append(opts.ExcludeIDs, blocked...)
	resp := s.rank("nearby", requester, candidates, opts)

	log.Debug().
		Int64("user_id", userID).
		Int("candidates", len(candidates)).
		Int("blocked", len(blocked)).
		Int("total", resp.Total).
		Msg("Nearby feed ranked")

	return resp, nil
}

func (s *service) Rank(ctx context.Context, req *RankRequest) (*RankResponse, error) {
	opts, err := s.options(req.Options)
	if err != nil {
		return nil, err
	}

	candidates := make([]*users.UserProfile, len(req.Candidates))
	for i := range req.Candidates {
		candidates[i] = req.Candidates[i].toProfile()
	}

	return s.rank("request", req.Requester.toProfile(), candidates, opts), nil
}

func (s *service) Scatter(ctx context.Context, req *ScatterRequest) []PositionedUser {
	list := make([]*users.UserProfile, len(req.Users))
	for i, u := range req.Users {
		list[i] = &users.UserProfile{ID: u.ID, Username: u.Username}
	}
	return ScatterUsers(list, req.center())
}

func (s *service) options(q OptionsDTO) (Options, error) {
	opts, err := q.toOptions(*s.cfg.Weights)
	if err != nil {
		return Options{}, err
	}
	if opts.HalfLifeMeters == nil {
		h := s.cfg.HalfLifeMeters
		opts.HalfLifeMeters = &h
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.DefaultPageSize
	}
	return opts, nil
}

// searchRadius picks the tighter of the configured radius and maxMeters
func (s *service) searchRadius(opts Options) float64 {
	radius := s.cfg.SearchRadius
	if m := opts.MaxMeters; m != nil && finite(*m) && *m >= 0 {
		if radius <= 0 || *m < radius {
			radius = *m
		}
	}
	return radius
}

func (s *service) rank(source string, requester *users.UserProfile, candidates []*users.UserProfile, opts Options) *RankResponse {
	start := time.Now()
	all := rankAll(requester, candidates, opts)
	page := Page(all, opts.Offset, opts.Limit)
	observeRanking(source, time.Since(start).Seconds(), len(candidates), page)

	return &RankResponse{
		Results: page,
		Total:   len(all),
		Offset:  opts.Offset,
		Limit:   opts.Limit,
	}
}
