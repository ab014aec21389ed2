package scenariotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/quipstack/core/internal/model"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
	usecase_round "github.com/quipstack/core/internal/usecase/round"
	usecase_sync "github.com/quipstack/core/internal/usecase/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GameScenarioSuite struct {
	suite.Suite
}

type game struct {
	store  *memStore
	bus    *memBus
	rooms  *usecase_room.Usecase
	rounds *usecase_round.Usecase
	ctx    context.Context
}

func newGame() *game {
	store := newMemStore(starterDeck())
	bus := newMemBus()

	return &game{
		store:  store,
		bus:    bus,
		rooms:  usecase_room.New(store, bus),
		rounds: usecase_round.New(roundRepo{store}, store, store, bus),
		ctx:    context.Background(),
	}
}

// TestFullRound walks one complete table cycle: create, join, start, deal,
// submit, pick, score.
func (suite *GameScenarioSuite) TestFullRound(t provider.T) {
	g := newGame()
	host := model.UserID("host")
	alice := model.UserID("alice")
	bob := model.UserID("bob")

	room, err := g.rooms.Create(g.ctx, host, "starter")
	require.NoError(t, err)
	require.Len(t, room.Code, 4)

	_, err = g.rooms.Join(g.ctx, room.Code, alice, "")
	require.NoError(t, err)
	_, err = g.rooms.Join(g.ctx, room.Code, bob, "")
	require.NoError(t, err)

	members, err := g.rooms.Members(g.ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	round, err := g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)
	assert.Equal(t, model.StateSubmitting, round.State)
	assert.Equal(t, "Why did the chicken cross the road?", round.PromptText)

	// The room leaves the open state once play begins.
	got, err := g.rooms.Room(g.ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	aliceHand, err := g.rounds.Hand(g.ctx, room.ID, alice)
	require.NoError(t, err)
	assert.Len(t, aliceHand, usecase_round.HandSize)

	again, err := g.rounds.Hand(g.ctx, room.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, aliceHand, again, "a re-fetched hand never changes mid-round")

	// Identical text from different players is two distinct submissions.
	aliceSub, err := g.rounds.Submit(g.ctx, round.ID, alice, "To get to the other side")
	require.NoError(t, err)
	bobSub, err := g.rounds.Submit(g.ctx, round.ID, bob, "To get to the other side")
	require.NoError(t, err)
	assert.NotEqual(t, aliceSub.ID, bobSub.ID)

	_, subs, err := g.rounds.Latest(g.ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	// One submission per player per round.
	_, err = g.rounds.Submit(g.ctx, round.ID, alice, "second try")
	assert.ErrorIs(t, err, usecase_round.ErrAlreadyPlayed)

	done, err := g.rounds.PickWinner(g.ctx, round.ID, host, aliceSub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateComplete, done.State)

	members, err = g.rooms.Members(g.ctx, room.ID)
	require.NoError(t, err)
	scores := make(map[model.UserID]int, len(members))
	for _, m := range members {
		scores[m.UserID] = m.Score
	}
	assert.Equal(t, 1, scores[alice])
	assert.Equal(t, 0, scores[bob])

	// Completion unblocks the next round.
	next, err := g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)
	assert.NotEqual(t, round.ID, next.ID)
}

func (suite *GameScenarioSuite) TestHostOnlyControls(t provider.T) {
	g := newGame()
	host := model.UserID("host")
	alice := model.UserID("alice")

	room, err := g.rooms.Create(g.ctx, host, "starter")
	require.NoError(t, err)
	_, err = g.rooms.Join(g.ctx, room.Code, alice, "")
	require.NoError(t, err)

	_, err = g.rounds.Start(g.ctx, room.ID, alice)
	assert.ErrorIs(t, err, usecase_round.ErrPermissionDenied)

	round, err := g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)

	err = g.rooms.SetDeck(g.ctx, room.Code, host, "expansion")
	assert.ErrorIs(t, err, usecase_room.ErrActiveRound, "deck is frozen while a round is live")

	sub, err := g.rounds.Submit(g.ctx, round.ID, alice, "answer")
	require.NoError(t, err)

	_, err = g.rounds.PickWinner(g.ctx, round.ID, alice, sub.ID)
	assert.ErrorIs(t, err, usecase_round.ErrPermissionDenied)
}

func (suite *GameScenarioSuite) TestSecondStartBlocked(t provider.T) {
	g := newGame()
	host := model.UserID("host")

	room, err := g.rooms.Create(g.ctx, host, "starter")
	require.NoError(t, err)

	_, err = g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)

	_, err = g.rounds.Start(g.ctx, room.ID, host)
	assert.ErrorIs(t, err, usecase_round.ErrActiveRound)
}

// TestConcurrentPickWinner races many picks at one round; exactly one may
// commit and exactly one point may be awarded.
func (suite *GameScenarioSuite) TestConcurrentPickWinner(t provider.T) {
	g := newGame()
	host := model.UserID("host")
	alice := model.UserID("alice")

	room, err := g.rooms.Create(g.ctx, host, "starter")
	require.NoError(t, err)
	_, err = g.rooms.Join(g.ctx, room.Code, alice, "")
	require.NoError(t, err)

	round, err := g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)
	sub, err := g.rounds.Submit(g.ctx, round.ID, alice, "answer")
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.rounds.PickWinner(g.ctx, round.ID, host, sub.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, usecase_round.ErrRoundComplete)
		}
	}
	assert.Equal(t, 1, wins, "exactly one pick commits")

	members, err := g.rooms.Members(g.ctx, room.ID)
	require.NoError(t, err)
	for _, m := range members {
		if m.UserID == alice {
			assert.Equal(t, 1, m.Score, "the point is awarded exactly once")
		}
	}
}

// TestObserverConvergence runs the reconciliation watcher over a real game
// and checks that what observers see matches storage.
func (suite *GameScenarioSuite) TestObserverConvergence(t provider.T) {
	g := newGame()
	host := model.UserID("host")
	alice := model.UserID("alice")

	room, err := g.rooms.Create(g.ctx, host, "starter")
	require.NoError(t, err)

	watcher := usecase_sync.NewWatcher(room.ID, g.store, g.bus, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	_, err = g.rooms.Join(g.ctx, room.Code, alice, "")
	require.NoError(t, err)

	round, err := g.rounds.Start(g.ctx, room.ID, host)
	require.NoError(t, err)
	sub, err := g.rounds.Submit(g.ctx, round.ID, alice, "To get to the other side")
	require.NoError(t, err)
	_, err = g.rounds.PickWinner(g.ctx, round.ID, host, sub.ID)
	require.NoError(t, err)

	converged := func(v usecase_sync.RoomView) bool {
		return len(v.Members) == 2 &&
			v.Round != nil && v.Round.State == model.StateComplete &&
			v.Members[alice].Score == 1 &&
			len(v.Submissions) == 1
	}

	deadline := time.Now().Add(2 * time.Second)
	var view usecase_sync.RoomView
	for time.Now().Before(deadline) {
		view = watcher.View()
		if converged(view) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, converged(view), "observer never converged, view: %+v", view)

	require.NotNil(t, view.Round.WinningSubmissionID)
	assert.Equal(t, sub.ID, *view.Round.WinningSubmissionID)
	require.NotNil(t, view.SubmissionBy(alice))
	assert.Nil(t, view.SubmissionBy(host), "the host never played")
}

func TestGameScenarioSuite(t *testing.T) {
	suite.RunSuite(t, new(GameScenarioSuite))
}
