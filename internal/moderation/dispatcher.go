// internal/moderation/dispatcher.go
// The only path through which trust scores, bans and report statuses change
// on an admin's behalf. Every mutation holds the entity lock and writes with a
// version compare-and-swap; a lost race surfaces as apperr.ErrConflict.

package moderation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/lock"
	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

type Dispatcher struct {
	users  users.Repository
	repo   Repository
	locker lock.Locker
	events Publisher
	audit  zerolog.Logger
	now    func() time.Time
}

// NewDispatcher wires the admin action path. events may be nil.
func NewDispatcher(usersRepo users.Repository, repo Repository, locker lock.Locker, events Publisher, audit zerolog.Logger) *Dispatcher {
	if events == nil {
		events = nopPublisher{}
	}
	return &Dispatcher{
		users:  usersRepo,
		repo:   repo,
		locker: locker,
		events: events,
		audit:  audit,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// UpdateReportStatus sets any of the four statuses, optionally replacing the resolution note
func (d *Dispatcher) UpdateReportStatus(ctx context.Context, actor auth.Actor, reportID int64, rawStatus string, note *string) (*Report, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAdmin
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	unlock, err := d.locker.Lock(ctx, lock.ReportKey(reportID))
	if err != nil {
		conflict(err, "report")
		return nil, err
	}
	defer unlock()

	report, err := d.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	previous, err := report.ApplyStatus(status, note, actor.UserID, d.now())
	if err != nil {
		return nil, err
	}
	if err := d.repo.UpdateReportStatus(ctx, report); err != nil {
		conflict(err, "report")
		return nil, err
	}

	d.record(ctx, actor, ActionReportStatus, &report.ReportedID, &report.ID, map[string]interface{}{
		"from":            previous,
		"to":              report.Status,
		"resolution_note": report.ResolutionNote,
	})
	d.events.Publish(Event{Type: EventReportStatus, Data: report})

	return report, nil
}

// AdjustTrust applies a delta or an absolute score, clamped to [0, 100].
// Report statuses are left alone.
func (d *Dispatcher) AdjustTrust(ctx context.Context, actor auth.Actor, userID int64, adj trust.Adjustment) (*TrustResult, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAdmin
	}

	unlock, err := d.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		conflict(err, "user")
		return nil, err
	}
	defer unlock()

	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := trust.ApplyAdjustment(u.TrustScore, adj)
	if err != nil {
		return nil, err
	}

	result := &TrustResult{UserID: u.ID, TrustScore: next}
	if next == u.TrustScore {
		actionsTotal.WithLabelValues(ActionTrustAdjust, "false").Inc()
		return result, nil
	}

	previous := u.TrustScore
	u.TrustScore = next
	if err := d.users.UpdateTrustScore(ctx, u); err != nil {
		conflict(err, "user")
		return nil, err
	}
	result.Changed = true

	d.record(ctx, actor, ActionTrustAdjust, &u.ID, nil, map[string]interface{}{
		"from":   previous,
		"to":     next,
		"delta":  adj.Delta,
		"set_to": adj.SetTo,
	})
	d.events.Publish(Event{Type: EventTrustAdjusted, Data: result})

	return result, nil
}

// BanUser bans userID. Banning a banned user keeps the original ban time and
// only updates the reason when a different one is supplied.
func (d *Dispatcher) BanUser(ctx context.Context, actor auth.Actor, userID int64, reason *string) (*users.BanState, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAdmin
	}
	if actor.UserID == userID {
		return nil, ErrSelfBan
	}
	reason = trimmedOrNil(reason)

	return d.mutateBan(ctx, actor, userID, ActionBan, func(u *users.UserProfile) bool {
		if u.Banned {
			if reason == nil || (u.BanReason != nil && *u.BanReason == *reason) {
				return false
			}
			u.BanReason = reason
			return true
		}

		now := d.now()
		u.Banned = true
		u.BannedAt = &now
		u.BanReason = reason
		return true
	})
}

// UnbanUser clears the ban; unbanning an active user is a no-op
func (d *Dispatcher) UnbanUser(ctx context.Context, actor auth.Actor, userID int64) (*users.BanState, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAdmin
	}
	if actor.UserID == userID {
		return nil, ErrSelfBan
	}

	return d.mutateBan(ctx, actor, userID, ActionUnban, func(u *users.UserProfile) bool {
		if !u.Banned && u.BannedAt == nil && u.BanReason == nil {
			return false
		}
		u.Banned = false
		u.BannedAt = nil
		u.BanReason = nil
		return true
	})
}

// mutateBan loads the user under its lock, lets change edit the ban fields
// and persists only when change reports a difference.
func (d *Dispatcher) mutateBan(ctx context.Context, actor auth.Actor, userID int64, action string, change func(u *users.UserProfile) bool) (*users.BanState, error) {
	unlock, err := d.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		conflict(err, "user")
		return nil, err
	}
	defer unlock()

	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !change(u) {
		actionsTotal.WithLabelValues(action, "false").Inc()
		state := u.BanState()
		return &state, nil
	}

	if err := d.users.UpdateBan(ctx, u); err != nil {
		conflict(err, "user")
		return nil, err
	}

	state := u.BanState()
	d.record(ctx, actor, action, &u.ID, nil, map[string]interface{}{
		"banned":     state.Banned,
		"banned_at":  state.BannedAt,
		"ban_reason": state.BanReason,
	})

	eventType := EventUserBanned
	if action == ActionUnban {
		eventType = EventUserUnbanned
	}
	d.events.Publish(Event{Type: eventType, Data: state})

	return &state, nil
}

// record writes the audit row after a successful mutation. The mutation has
// already committed, so a failed insert is logged rather than returned.
func (d *Dispatcher) record(ctx context.Context, actor auth.Actor, action string, targetUserID, reportID *int64, detail map[string]interface{}) {
	actionsTotal.WithLabelValues(action, "true").Inc()

	raw, err := json.Marshal(detail)
	if err != nil {
		raw = []byte("{}")
	}

	entry := &ModerationAction{
		Action:       action,
		ModeratorID:  actor.UserID,
		TargetUserID: targetUserID,
		ReportID:     reportID,
		Detail:       raw,
	}
	if err := d.repo.RecordAction(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Int64("moderator_id", actor.UserID).Msg("Failed to record moderation action")
	}

	event := d.audit.Info().
		Str("action", action).
		Int64("moderator_id", actor.UserID).
		Str("moderator", strings.TrimSpace(actor.Username)).
		RawJSON("detail", raw)
	if targetUserID != nil {
		event = event.Int64("target_user_id", *targetUserID)
	}
	if reportID != nil {
		event = event.Int64("report_id", *reportID)
	}
	event.Msg("Moderation action")
}
