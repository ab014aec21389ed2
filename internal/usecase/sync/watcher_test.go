package usecase_sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves sweep reads from in-memory state under a lock, so tests
// can mutate "storage" while the watcher runs.
type fakeReader struct {
	mu          sync.Mutex
	members     []model.Member
	round       *model.Round
	submissions []model.Submission
}

func (f *fakeReader) Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Member, len(f.members))
	copy(out, f.members)
	return out, nil
}

func (f *fakeReader) LatestRound(ctx context.Context, roomID uuid.UUID) (*model.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.round == nil {
		return nil, nil
	}
	r := *f.round
	return &r, nil
}

func (f *fakeReader) Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Submission, len(f.submissions))
	copy(out, f.submissions)
	return out, nil
}

func (f *fakeReader) set(members []model.Member, round *model.Round, subs []model.Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = members
	f.round = round
	f.submissions = subs
}

type fakeSource struct {
	ch chan model.ChangeEvent
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan model.ChangeEvent, 16)}
}

func (f *fakeSource) Subscribe(roomID uuid.UUID) (<-chan model.ChangeEvent, func(), error) {
	return f.ch, func() {}, nil
}

func member(roomID uuid.UUID, user string, score int) model.Member {
	return model.Member{
		ID:     uuid.New(),
		RoomID: roomID,
		UserID: model.UserID(user),
		Role:   model.RolePlayer,
		Score:  score,
	}
}

// waitFor polls the view until cond holds or the deadline passes.
func waitFor(t *testing.T, w *Watcher, cond func(RoomView) bool) RoomView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v := w.View()
		if cond(v) {
			return v
		}
		time.Sleep(5 * time.Millisecond)
	}
	v := w.View()
	require.True(t, cond(v), "condition not reached before deadline, view: %+v", v)
	return v
}

func TestWatcherAppliesPushedEvents(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	source := newFakeSource()

	// Sweep far in the future so only push applies here.
	w := NewWatcher(roomID, reader, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	alice := member(roomID, "alice", 0)
	source.ch <- model.MemberChanged(model.ChangeInsert, alice)

	v := waitFor(t, w, func(v RoomView) bool { return len(v.Members) == 1 })
	assert.Equal(t, alice, v.Members["alice"])
}

func TestWatcherApplyIsIdempotent(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	source := newFakeSource()

	w := NewWatcher(roomID, reader, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	alice := member(roomID, "alice", 2)
	source.ch <- model.MemberChanged(model.ChangeInsert, alice)
	source.ch <- model.MemberChanged(model.ChangeInsert, alice)
	source.ch <- model.MemberChanged(model.ChangeUpdate, alice)

	v := waitFor(t, w, func(v RoomView) bool { return len(v.Members) == 1 })
	assert.Equal(t, 2, v.Members["alice"].Score, "duplicates must not double-apply")
}

func TestWatcherSweepRepairsDroppedEvent(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	source := newFakeSource()

	w := NewWatcher(roomID, reader, source, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// The insert never reaches the bus; only storage knows about bob.
	bob := member(roomID, "bob", 0)
	reader.set([]model.Member{bob}, nil, nil)

	v := waitFor(t, w, func(v RoomView) bool { return len(v.Members) == 1 })
	assert.Equal(t, bob, v.Members["bob"])
}

func TestWatcherSweepRemovesStaleEntities(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	alice := member(roomID, "alice", 0)
	bob := member(roomID, "bob", 0)
	reader.set([]model.Member{alice, bob}, nil, nil)
	source := newFakeSource()

	w := NewWatcher(roomID, reader, source, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, w, func(v RoomView) bool { return len(v.Members) == 2 })

	// Wholesale replace: bob's delete was never pushed, the sweep drops him.
	reader.set([]model.Member{alice}, nil, nil)
	waitFor(t, w, func(v RoomView) bool { return len(v.Members) == 1 })
}

func TestWatcherRoundBoundaryClearsSubmissions(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	source := newFakeSource()

	w := NewWatcher(roomID, reader, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	oldRound := model.Round{ID: uuid.New(), RoomID: roomID, State: model.StateSubmitting}
	source.ch <- model.RoundChanged(model.ChangeInsert, oldRound)

	sub := model.Submission{ID: uuid.New(), RoundID: oldRound.ID, PlayerID: "alice", Text: "old"}
	source.ch <- model.SubmissionChanged(model.ChangeInsert, roomID, sub)

	waitFor(t, w, func(v RoomView) bool { return len(v.Submissions) == 1 })

	newRound := model.Round{ID: uuid.New(), RoomID: roomID, State: model.StateSubmitting}
	source.ch <- model.RoundChanged(model.ChangeInsert, newRound)

	v := waitFor(t, w, func(v RoomView) bool {
		return v.Round != nil && v.Round.ID == newRound.ID
	})
	assert.Empty(t, v.Submissions, "last round's plays must not leak into the new round")

	// A straggler for the old round arrives after the boundary; it is stale
	// and must be ignored.
	source.ch <- model.SubmissionChanged(model.ChangeInsert, roomID, sub)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, w.View().Submissions)
}

func TestWatcherIgnoresWrongRoundSubmission(t *testing.T) {
	roomID := uuid.New()
	reader := &fakeReader{}
	source := newFakeSource()

	w := NewWatcher(roomID, reader, source, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	round := model.Round{ID: uuid.New(), RoomID: roomID, State: model.StateSubmitting}
	source.ch <- model.RoundChanged(model.ChangeInsert, round)
	waitFor(t, w, func(v RoomView) bool { return v.Round != nil })

	stray := model.Submission{ID: uuid.New(), RoundID: uuid.New(), PlayerID: "bob", Text: "stray"}
	source.ch <- model.SubmissionChanged(model.ChangeInsert, roomID, stray)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, w.View().Submissions)
}

func TestWatcherSubmissionBy(t *testing.T) {
	view := RoomView{
		Round:       &model.Round{ID: uuid.New()},
		Submissions: map[uuid.UUID]model.Submission{},
	}
	sub := model.Submission{ID: uuid.New(), PlayerID: "alice", Text: "mine"}
	view.Submissions[sub.ID] = sub

	require.NotNil(t, view.SubmissionBy("alice"))
	assert.Equal(t, "mine", view.SubmissionBy("alice").Text)
	assert.Nil(t, view.SubmissionBy("bob"))
}

func TestWatcherClosesUpdatesOnCancel(t *testing.T) {
	roomID := uuid.New()
	w := NewWatcher(roomID, &fakeReader{}, newFakeSource(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}

	// Drain whatever was coalesced; the channel must then report closed.
	for {
		select {
		case _, ok := <-w.Updates():
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("updates channel was not closed")
		}
	}
}
