package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelarena/server/internal/dependencies/mocks"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/services/room"
	"github.com/duelarena/server/internal/storage/memory"
	"github.com/duelarena/server/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	rooms    *room.Registry
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.rooms = room.NewRegistry(s.storage, s.clock, s.random, logger)
	s.registry = NewRegistry(s.storage, s.rooms, s.clock, s.random, logger)
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestRegisterSucceeds() {
	player, err := s.registry.Register(s.ctx, "p1", "Alice")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("p1"), player.ID)
	s.Equal("Alice", player.DisplayName)
	s.True(player.Connected)
	s.Equal(s.clock.Now(), player.CreatedAt)
	s.Equal(s.clock.Now(), player.LastActive)
	s.Nil(player.Character)
	s.False(player.Ready)
}

func (s *RegistrySuite) TestRegisterEmptyNameGetsFallback() {
	s.random.QueueCode("K7Q2")

	player, err := s.registry.Register(s.ctx, "p1", "")
	s.Require().NoError(err)
	s.Equal("Player-K7Q2", player.DisplayName)
}

func (s *RegistrySuite) TestRegisterOverwritesExisting() {
	_, err := s.registry.Register(s.ctx, "p1", "Alice")
	s.Require().NoError(err)
	_, err = s.registry.Update(s.ctx, "p1", func(p *model.Player) {
		p.Ready = true
	})
	s.Require().NoError(err)

	player, err := s.registry.Register(s.ctx, "p1", "Alice Again")
	s.Require().NoError(err)
	s.Equal("Alice Again", player.DisplayName)
	s.False(player.Ready)
}

func (s *RegistrySuite) TestUnregisterUnknownIsNoop() {
	left, err := s.registry.Unregister(s.ctx, "ghost")
	s.NoError(err)
	s.Nil(left)
}

func (s *RegistrySuite) TestUnregisterRemovesRecord() {
	_, _ = s.registry.Register(s.ctx, "p1", "Alice")

	left, err := s.registry.Unregister(s.ctx, "p1")
	s.Require().NoError(err)
	s.Nil(left)

	_, err = s.registry.Get(s.ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestUnregisterLeavesRoomFirst() {
	_, _ = s.registry.Register(s.ctx, "host-1", "Host")
	_, _ = s.registry.Register(s.ctx, "guest-1", "Guest")
	created, _, err := s.rooms.CreateRoom(s.ctx, "host-1", room.CreateOptions{Code: "ABC234"})
	s.Require().NoError(err)
	_, _, err = s.rooms.AddPlayer(s.ctx, "guest-1", created.Code)
	s.Require().NoError(err)

	left, err := s.registry.Unregister(s.ctx, "host-1")
	s.Require().NoError(err)
	s.Require().NotNil(left)
	s.True(left.HostChanged)
	s.Equal(model.PlayerID("guest-1"), left.NewHostID)

	remaining, err := s.rooms.Get(s.ctx, created.Code)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"guest-1"}, remaining.Roster)
}

func (s *RegistrySuite) TestTouchRefreshesLastActive() {
	_, _ = s.registry.Register(s.ctx, "p1", "Alice")
	registered := s.clock.Now()

	s.clock.Advance(10 * time.Minute)
	s.Require().NoError(s.registry.Touch(s.ctx, "p1"))

	player, _ := s.registry.Get(s.ctx, "p1")
	s.True(player.LastActive.After(registered))
}

func (s *RegistrySuite) TestTouchUnknownFails() {
	s.ErrorIs(s.registry.Touch(s.ctx, "ghost"), model.ErrPlayerNotFound)
}

func (s *RegistrySuite) TestUpdateAppliesMutation() {
	_, _ = s.registry.Register(s.ctx, "p1", "Alice")
	s.clock.Advance(time.Minute)

	player, err := s.registry.Update(s.ctx, "p1", func(p *model.Player) {
		p.Connected = false
	})
	s.Require().NoError(err)
	s.False(player.Connected)
	s.Equal(s.clock.Now(), player.LastActive)
}

func (s *RegistrySuite) TestUpdateUnknownFails() {
	_, err := s.registry.Update(s.ctx, "ghost", func(p *model.Player) {})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
