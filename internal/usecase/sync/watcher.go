// Package usecase_sync keeps observers of a room convergent with storage.
// Two paths run concurrently: change events pushed over the bus, and a
// periodic sweep that re-fetches the whole entity set. Push is an
// optimization; the sweep is the correctness backstop, so a dropped,
// duplicated or reordered event can delay convergence but never prevent it.
package usecase_sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
)

const DefaultSweepInterval = 3 * time.Second

// StateReader is the sweep's view of storage. LatestRound returns nil when
// the room has no rounds yet.
type StateReader interface {
	Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error)
	LatestRound(ctx context.Context, roomID uuid.UUID) (*model.Round, error)
	Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error)
}

// EventSource is the push path. The returned cancel tears the subscription
// down; the channel closes after that.
type EventSource interface {
	Subscribe(roomID uuid.UUID) (<-chan model.ChangeEvent, func(), error)
}

// RoomView is one observer's converged picture of a room. The round is
// always held as a whole row; submissions only ever belong to the round
// currently in view.
type RoomView struct {
	Members     map[model.UserID]model.Member
	Round       *model.Round
	Submissions map[uuid.UUID]model.Submission
}

// SubmissionBy answers "have I played this round" for the current round
// only; it can never leak a previous round's submission.
func (v RoomView) SubmissionBy(userID model.UserID) *model.Submission {
	for _, s := range v.Submissions {
		if s.PlayerID == userID {
			out := s
			return &out
		}
	}
	return nil
}

type Watcher struct {
	roomID   uuid.UUID
	reader   StateReader
	source   EventSource
	interval time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	view RoomView

	updates chan struct{}
}

func NewWatcher(roomID uuid.UUID, reader StateReader, source EventSource, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Watcher{
		roomID:   roomID,
		reader:   reader,
		source:   source,
		interval: interval,
		logger:   slog.Default(),
		view: RoomView{
			Members:     make(map[model.UserID]model.Member),
			Submissions: make(map[uuid.UUID]model.Submission),
		},
		updates: make(chan struct{}, 1),
	}
}

// Run blocks until ctx is cancelled. Call it once; Updates is closed when
// it returns, so relays ranging over it unwind with the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.updates)

	events, cancel, err := w.source.Subscribe(w.roomID)
	if err != nil {
		// Degraded but correct: the sweep alone still converges.
		w.logger.Warn("push subscription unavailable, sweep only",
			slog.String("room_id", w.roomID.String()),
			slog.String("error", err.Error()))
		events = nil
	} else {
		defer cancel()
	}

	// Seed the view immediately so observers never start from nothing.
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			w.apply(ev)
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Updates signals that View changed. Notifications are coalesced; consumers
// re-read View rather than counting signals.
func (w *Watcher) Updates() <-chan struct{} {
	return w.updates
}

// View returns a deep copy; callers may hold it across watcher progress.
func (w *Watcher) View() RoomView {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := RoomView{
		Members:     make(map[model.UserID]model.Member, len(w.view.Members)),
		Submissions: make(map[uuid.UUID]model.Submission, len(w.view.Submissions)),
	}
	for k, m := range w.view.Members {
		out.Members[k] = m
	}
	for k, s := range w.view.Submissions {
		out.Submissions[k] = s
	}
	if w.view.Round != nil {
		r := *w.view.Round
		out.Round = &r
	}
	return out
}

// apply folds one pushed event into the view. Events are idempotent by
// construction: an insert of a known id behaves as an update, a duplicate
// with identical content is a no-op.
func (w *Watcher) apply(ev model.ChangeEvent) {
	w.mu.Lock()

	changed := false
	switch ev.Entity {
	case model.EntityMember:
		if ev.Member == nil {
			break
		}
		if ev.Kind == model.ChangeDelete {
			if _, ok := w.view.Members[ev.Member.UserID]; ok {
				delete(w.view.Members, ev.Member.UserID)
				changed = true
			}
			break
		}
		if cur, ok := w.view.Members[ev.Member.UserID]; !ok || cur != *ev.Member {
			w.view.Members[ev.Member.UserID] = *ev.Member
			changed = true
		}

	case model.EntityRound:
		if ev.Round == nil {
			break
		}
		changed = w.adoptRound(ev.Round)

	case model.EntitySubmission:
		if ev.Submission == nil {
			break
		}
		// Ignore submissions for any round other than the one in view;
		// they are either stale or will arrive with the round itself.
		if w.view.Round == nil || ev.Submission.RoundID != w.view.Round.ID {
			break
		}
		if ev.Kind == model.ChangeDelete {
			if _, ok := w.view.Submissions[ev.Submission.ID]; ok {
				delete(w.view.Submissions, ev.Submission.ID)
				changed = true
			}
			break
		}
		if cur, ok := w.view.Submissions[ev.Submission.ID]; !ok || cur != *ev.Submission {
			w.view.Submissions[ev.Submission.ID] = *ev.Submission
			changed = true
		}
	}

	w.mu.Unlock()
	if changed {
		w.notify()
	}
}

// adoptRound replaces the round as a whole row, never field-by-field. When
// the round id changes, submission state is cleared before the new id is
// adopted so last round's plays can never show under this round.
// Caller holds w.mu.
func (w *Watcher) adoptRound(round *model.Round) bool {
	if round == nil {
		if w.view.Round == nil {
			return false
		}
		w.view.Round = nil
		w.view.Submissions = make(map[uuid.UUID]model.Submission)
		return true
	}

	if w.view.Round == nil || w.view.Round.ID != round.ID {
		w.view.Submissions = make(map[uuid.UUID]model.Submission)
		r := *round
		w.view.Round = &r
		return true
	}

	if !roundsEqual(*w.view.Round, *round) {
		r := *round
		w.view.Round = &r
		return true
	}
	return false
}

// sweep re-fetches the full entity set and replaces local state wholesale.
// Read errors keep the previous (possibly stale) view; the next tick tries
// again, which is exactly the bounded-staleness contract.
func (w *Watcher) sweep(ctx context.Context) {
	members, err := w.reader.Members(ctx, w.roomID)
	if err != nil {
		w.logger.Warn("sweep: members fetch failed",
			slog.String("room_id", w.roomID.String()),
			slog.String("error", err.Error()))
		return
	}

	round, err := w.reader.LatestRound(ctx, w.roomID)
	if err != nil {
		w.logger.Warn("sweep: round fetch failed",
			slog.String("room_id", w.roomID.String()),
			slog.String("error", err.Error()))
		return
	}

	var subs []model.Submission
	if round != nil {
		if subs, err = w.reader.Submissions(ctx, round.ID); err != nil {
			w.logger.Warn("sweep: submissions fetch failed",
				slog.String("room_id", w.roomID.String()),
				slog.String("error", err.Error()))
			return
		}
	}

	w.mu.Lock()
	w.view.Members = make(map[model.UserID]model.Member, len(members))
	for _, m := range members {
		w.view.Members[m.UserID] = m
	}
	w.adoptRound(round)
	w.view.Submissions = make(map[uuid.UUID]model.Submission, len(subs))
	for _, s := range subs {
		w.view.Submissions[s.ID] = s
	}
	w.mu.Unlock()

	w.notify()
}

func (w *Watcher) notify() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

func roundsEqual(a, b model.Round) bool {
	if a.WinningSubmissionID == nil != (b.WinningSubmissionID == nil) {
		return false
	}
	if a.WinningSubmissionID != nil && *a.WinningSubmissionID != *b.WinningSubmissionID {
		return false
	}
	a.WinningSubmissionID, b.WinningSubmissionID = nil, nil
	return a == b
}
