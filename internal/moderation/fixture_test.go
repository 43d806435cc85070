package moderation

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/lock"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

const (
	reporterID int64 = 1
	reportedID int64 = 2
	bystander  int64 = 3
	adminID    int64 = 9
)

var (
	admin    = auth.Actor{UserID: adminID, Username: "mod", IsAdmin: true}
	nonAdmin = auth.Actor{UserID: reporterID, Username: "ada"}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	users      *users.MemoryRepository
	repo       *MemoryRepository
	reports    ReportService
	dispatcher *Dispatcher
	events     *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	usersRepo := users.NewMemoryRepository(
		&users.UserProfile{ID: reporterID, Username: "ada", TrustScore: 100, Visible: true},
		&users.UserProfile{ID: reportedID, Username: "bo", TrustScore: 100, Visible: true},
		&users.UserProfile{ID: bystander, Username: "cy", TrustScore: 100, Visible: true},
		&users.UserProfile{ID: adminID, Username: "mod", TrustScore: 100, Visible: true, IsAdmin: true},
	)
	repo := NewMemoryRepository(usersRepo)
	locker := lock.NewLocalLocker(5 * time.Second)
	events := &recordingPublisher{}

	return &fixture{
		users:      usersRepo,
		repo:       repo,
		reports:    NewReportService(usersRepo, repo, locker, events, 0),
		dispatcher: NewDispatcher(usersRepo, repo, locker, events, zerolog.Nop()),
		events:     events,
	}
}
