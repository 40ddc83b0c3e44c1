package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelarena/server/internal/dependencies/mocks"
	"github.com/duelarena/server/internal/locking"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/storage/memory"
	"github.com/duelarena/server/internal/testutil"
)

const (
	roomTimeout   = 30 * time.Minute
	playerTimeout = 10 * time.Minute
)

type SweeperSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	sweeper *Sweeper
	ctx     context.Context
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(SweeperSuite))
}

func (s *SweeperSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sweeper = NewSweeper(s.storage, locking.NewKeyedMutex(), s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SweeperSuite) savePlayer(id model.PlayerID, lastActive time.Time) {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{
		ID:          id,
		DisplayName: string(id),
		CreatedAt:   lastActive,
		LastActive:  lastActive,
	}))
}

func (s *SweeperSuite) saveRoom(code model.RoomCode, roster []model.PlayerID, lastActivity time.Time) {
	room := &model.Room{
		Code:         code,
		HostID:       roster[0],
		Roster:       roster,
		Status:       model.RoomStatusWaiting,
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
	}
	if len(roster) > 1 {
		room.GuestID = roster[1]
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
}

func (s *SweeperSuite) TestIdleRoomIsReaped() {
	stale := s.clock.Now().Add(-roomTimeout - time.Minute)
	s.savePlayer("host-1", s.clock.Now())
	s.saveRoom("ABC234", []model.PlayerID{"host-1"}, stale)

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)

	s.Equal([]model.RoomCode{"ABC234"}, result.RoomsRemoved)
	_, err = s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Eviction clears the reverse index without touching the player record.
	_, err = s.storage.PlayerRoom(s.ctx, "host-1")
	s.ErrorIs(err, model.ErrNotInRoom)
	_, err = s.storage.GetPlayer(s.ctx, "host-1")
	s.NoError(err)
}

func (s *SweeperSuite) TestActiveRoomSurvives() {
	s.savePlayer("host-1", s.clock.Now())
	s.saveRoom("ABC234", []model.PlayerID{"host-1"}, s.clock.Now().Add(-roomTimeout+time.Minute))

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)

	s.Empty(result.RoomsRemoved)
	_, err = s.storage.GetRoom(s.ctx, "ABC234")
	s.NoError(err)
}

func (s *SweeperSuite) TestSeatedPlayerSurvivesAnyIdleTime() {
	stale := s.clock.Now().Add(-24 * time.Hour)
	s.savePlayer("host-1", stale)
	s.saveRoom("ABC234", []model.PlayerID{"host-1"}, s.clock.Now())

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)

	s.Empty(result.PlayersRemoved)
	_, err = s.storage.GetPlayer(s.ctx, "host-1")
	s.NoError(err)
}

func (s *SweeperSuite) TestRoomlessIdlePlayerIsReaped() {
	s.savePlayer("drifter", s.clock.Now().Add(-playerTimeout-time.Minute))
	s.savePlayer("fresh", s.clock.Now())

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)

	s.Equal([]model.PlayerID{"drifter"}, result.PlayersRemoved)
	_, err = s.storage.GetPlayer(s.ctx, "drifter")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "fresh")
	s.NoError(err)
}

func (s *SweeperSuite) TestReapedRoomFreesOccupantSamePass() {
	stale := s.clock.Now().Add(-24 * time.Hour)
	s.savePlayer("host-1", stale)
	s.saveRoom("ABC234", []model.PlayerID{"host-1"}, stale)

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"ABC234"}, result.RoomsRemoved)
	// The room and its occupant go in the same pass; the roster was already
	// unseated when the player scan ran.
	s.Equal([]model.PlayerID{"host-1"}, result.PlayersRemoved)
}

func (s *SweeperSuite) TestRefreshedRoomSurvivesRecheck() {
	stale := s.clock.Now().Add(-roomTimeout - time.Minute)
	s.savePlayer("host-1", s.clock.Now())
	s.saveRoom("ABC234", []model.PlayerID{"host-1"}, stale)

	// An event lands between the candidate list and the locked re-check.
	room, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	room.LastActivity = s.clock.Now()
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)
	s.Empty(result.RoomsRemoved)
}

func (s *SweeperSuite) TestEmptyStoreSweepsClean() {
	result, err := s.sweeper.Sweep(s.ctx, roomTimeout, playerTimeout)
	s.Require().NoError(err)
	s.Empty(result.RoomsRemoved)
	s.Empty(result.PlayersRemoved)
}

func (s *SweeperSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.sweeper.Run(ctx, time.Millisecond, roomTimeout, playerTimeout)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop after context cancellation")
	}
}
