package coordinator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelarena/server/internal/catalog"
	"github.com/duelarena/server/internal/dependencies/mocks"
	"github.com/duelarena/server/internal/locking"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/services/match"
	"github.com/duelarena/server/internal/services/player"
	"github.com/duelarena/server/internal/services/reaper"
	"github.com/duelarena/server/internal/services/room"
	"github.com/duelarena/server/internal/storage/memory"
	"github.com/duelarena/server/internal/testutil"
)

// recordingSink captures published events for assertions. Publishing is
// thread-safe because countdown timers fire from their own goroutines.
type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recordingSink) Publish(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingSink) Has(typ model.EventType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func (r *recordingSink) Last(typ model.EventType) (model.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return model.Event{}, false
}

type CoordinatorSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	sink    *recordingSink
	coord   *Coordinator
	ctx     context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sink = &recordingSink{}
	s.ctx = context.Background()

	logger := testutil.NopLogger()
	locks := locking.NewKeyedMutex()
	catalogService := catalog.New(logger)
	s.Require().NoError(catalogService.Load(s.ctx, catalog.NewStaticSource()))

	rooms := room.NewRegistry(s.storage, s.clock, s.random, logger)
	players := player.NewRegistry(s.storage, rooms, s.clock, s.random, logger)
	engine := match.NewEngine(s.storage, s.clock, logger)
	sweeper := reaper.NewSweeper(s.storage, locks, s.clock, logger)

	cfg := DefaultConfig()
	cfg.StartCountdown = 20 * time.Millisecond

	s.coord = New(players, rooms, engine, catalogService, sweeper, s.clock, locks, s.sink, logger, cfg)
}

func (s *CoordinatorSuite) TearDownTest() {
	s.coord.Shutdown()
}

func (s *CoordinatorSuite) connect(id model.PlayerID, name string) {
	_, err := s.coord.Connect(s.ctx, id, name)
	s.Require().NoError(err)
}

// seatPair connects Alice and Bob and seats them in room ABC234
func (s *CoordinatorSuite) seatPair() {
	s.connect("host-1", "Alice")
	s.connect("guest-1", "Bob")
	s.random.QueueCode("ABC234")
	_, err := s.coord.CreateRoom(s.ctx, "host-1", CreateRoomRequest{})
	s.Require().NoError(err)
	_, err = s.coord.JoinRoom(s.ctx, "guest-1", "ABC234")
	s.Require().NoError(err)
}

// startMatch takes a seated pair through select and ready, then waits for the
// countdown to fire
func (s *CoordinatorSuite) startMatch() {
	s.seatPair()
	_, err := s.coord.SelectCharacter(s.ctx, "host-1", "knight")
	s.Require().NoError(err)
	_, err = s.coord.SelectCharacter(s.ctx, "guest-1", "mage")
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "host-1", true)
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "guest-1", true)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		view, err := s.coord.GetRoom(s.ctx, "ABC234")
		return err == nil && view.Status == string(model.RoomStatusInProgress)
	}, time.Second, 5*time.Millisecond, "countdown never started the match")
}

func (s *CoordinatorSuite) TestConnectRegistersPlayer() {
	p, err := s.coord.Connect(s.ctx, "host-1", "Alice")
	s.Require().NoError(err)
	s.Equal("Alice", p.DisplayName)
	s.True(p.Connected)
}

func (s *CoordinatorSuite) TestDisconnectUnknownIsNoop() {
	s.NoError(s.coord.Disconnect(s.ctx, "ghost"))
}

func (s *CoordinatorSuite) TestCreateRoomReturnsView() {
	s.connect("host-1", "Alice")
	s.random.QueueCode("ABC234")

	view, err := s.coord.CreateRoom(s.ctx, "host-1", CreateRoomRequest{Name: "Duel Pit"})
	s.Require().NoError(err)

	s.Equal("ABC234", view.Code)
	s.Equal("Duel Pit", view.Name)
	s.Equal(string(model.RoomStatusWaiting), view.Status)
	s.Equal(model.RoomCapacity, view.Capacity)
	s.Require().Len(view.Occupants, 1)
	s.Equal("host-1", view.Occupants[0].ID)
	s.True(view.Occupants[0].IsHost)
	s.Nil(view.Battle)
}

func (s *CoordinatorSuite) TestCreateRoomUnknownPlayerFails() {
	_, err := s.coord.CreateRoom(s.ctx, "ghost", CreateRoomRequest{})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *CoordinatorSuite) TestJoinRoomPublishesEvents() {
	s.seatPair()

	joined, ok := s.sink.Last(model.EventPlayerJoined)
	s.Require().True(ok)
	s.Equal(model.PlayerID("guest-1"), joined.PlayerID)
	s.ElementsMatch([]model.PlayerID{"host-1", "guest-1"}, joined.Recipients)

	updated, ok := s.sink.Last(model.EventRoomUpdated)
	s.Require().True(ok)
	view, isView := updated.Payload.(*RoomView)
	s.Require().True(isView)
	s.Len(view.Occupants, 2)
}

func (s *CoordinatorSuite) TestJoinUnknownRoomFails() {
	s.connect("guest-1", "Bob")
	_, err := s.coord.JoinRoom(s.ctx, "guest-1", "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *CoordinatorSuite) TestSelectCharacterUpdatesView() {
	s.seatPair()

	view, err := s.coord.SelectCharacter(s.ctx, "host-1", "knight")
	s.Require().NoError(err)

	s.Equal("knight", view.Occupants[0].CharacterID)
	s.Equal("Knight", view.Occupants[0].CharacterName)
	s.Equal(120, view.Occupants[0].Health)
	s.Equal(30, view.Occupants[0].Mana)

	selected, ok := s.sink.Last(model.EventCharacterSelected)
	s.Require().True(ok)
	payload := selected.Payload.(model.CharacterSelectedPayload)
	s.Equal(model.CharacterID("knight"), payload.CharacterID)
}

func (s *CoordinatorSuite) TestSelectUnknownCharacterFails() {
	s.seatPair()
	_, err := s.coord.SelectCharacter(s.ctx, "host-1", "paladin")
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *CoordinatorSuite) TestSelectCharacterRoomlessFails() {
	s.connect("drifter", "Drifter")
	_, err := s.coord.SelectCharacter(s.ctx, "drifter", "knight")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *CoordinatorSuite) TestReadyCountdownStartsMatch() {
	s.startMatch()

	s.True(s.sink.Has(model.EventMatchStarting))
	s.True(s.sink.Has(model.EventMatchStarted))

	view, err := s.coord.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Require().NotNil(view.Battle)
	s.Equal(1, view.Battle.TurnCount)
	s.Equal("host-1", view.Battle.CurrentTurn)
}

func (s *CoordinatorSuite) TestLeaveDuringCountdownCancelsStart() {
	s.seatPair()
	_, err := s.coord.SelectCharacter(s.ctx, "host-1", "knight")
	s.Require().NoError(err)
	_, err = s.coord.SelectCharacter(s.ctx, "guest-1", "mage")
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "host-1", true)
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "guest-1", true)
	s.Require().NoError(err)
	s.Require().True(s.sink.Has(model.EventMatchStarting))

	left, err := s.coord.LeaveRoom(s.ctx, "guest-1")
	s.Require().NoError(err)
	s.Require().True(left)

	time.Sleep(60 * time.Millisecond)

	s.False(s.sink.Has(model.EventMatchStarted))
	view, err := s.coord.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(string(model.RoomStatusWaiting), view.Status)
}

func (s *CoordinatorSuite) TestUnreadyDuringCountdownStillStarts() {
	s.seatPair()
	_, err := s.coord.SelectCharacter(s.ctx, "host-1", "knight")
	s.Require().NoError(err)
	_, err = s.coord.SelectCharacter(s.ctx, "guest-1", "mage")
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "host-1", true)
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "guest-1", true)
	s.Require().NoError(err)

	// A withdrawn vote alone does not regress a ready room, so the armed
	// countdown still fires.
	_, err = s.coord.SetReady(s.ctx, "guest-1", false)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.sink.Has(model.EventMatchStarted)
	}, time.Second, 5*time.Millisecond)
}

func (s *CoordinatorSuite) TestReselectDuringCountdownCancelsStart() {
	s.seatPair()
	_, err := s.coord.SelectCharacter(s.ctx, "host-1", "knight")
	s.Require().NoError(err)
	_, err = s.coord.SelectCharacter(s.ctx, "guest-1", "mage")
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "host-1", true)
	s.Require().NoError(err)
	_, err = s.coord.SetReady(s.ctx, "guest-1", true)
	s.Require().NoError(err)

	_, err = s.coord.SelectCharacter(s.ctx, "guest-1", "rogue")
	s.Require().NoError(err)

	time.Sleep(60 * time.Millisecond)

	s.False(s.sink.Has(model.EventMatchStarted))
	view, err := s.coord.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(string(model.RoomStatusWaiting), view.Status)
}

func (s *CoordinatorSuite) TestPerformActionAdvancesTurn() {
	s.startMatch()

	view, err := s.coord.PerformAction(s.ctx, "host-1", model.Action{
		Type:      model.ActionAbility,
		AbilityID: "slash",
	})
	s.Require().NoError(err)

	s.Require().NotNil(view.Battle)
	s.Equal(2, view.Battle.TurnCount)
	s.Equal("guest-1", view.Battle.CurrentTurn)
	s.Equal(80, view.Occupants[1].Health) // mage 90 - slash 10

	resolved, ok := s.sink.Last(model.EventActionResolved)
	s.Require().True(ok)
	payload := resolved.Payload.(model.ActionResolvedPayload)
	s.Equal(model.AbilityID("slash"), payload.AbilityID)
}

func (s *CoordinatorSuite) TestSurrenderPublishesMatchEnded() {
	s.startMatch()

	view, err := s.coord.PerformAction(s.ctx, "host-1", model.Action{Type: model.ActionSurrender})
	s.Require().NoError(err)
	s.Equal(string(model.RoomStatusCompleted), view.Status)
	s.Equal("guest-1", view.Battle.Winner)

	ended, ok := s.sink.Last(model.EventMatchEnded)
	s.Require().True(ok)
	payload := ended.Payload.(model.MatchEndedPayload)
	s.Equal(model.PlayerID("guest-1"), payload.Winner)
	s.False(payload.Forfeit)
}

func (s *CoordinatorSuite) TestActionOutOfTurnFails() {
	s.startMatch()
	_, err := s.coord.PerformAction(s.ctx, "guest-1", model.Action{
		Type:      model.ActionAbility,
		AbilityID: "spark",
	})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *CoordinatorSuite) TestDisconnectDuringMatchForfeits() {
	s.startMatch()

	s.Require().NoError(s.coord.Disconnect(s.ctx, "host-1"))

	left, ok := s.sink.Last(model.EventPlayerLeft)
	s.Require().True(ok)
	leftPayload := left.Payload.(model.PlayerLeftPayload)
	s.True(leftPayload.Forfeited)

	ended, ok := s.sink.Last(model.EventMatchEnded)
	s.Require().True(ok)
	endedPayload := ended.Payload.(model.MatchEndedPayload)
	s.Equal(model.PlayerID("guest-1"), endedPayload.Winner)
	s.True(endedPayload.Forfeit)

	view, err := s.coord.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(string(model.RoomStatusCompleted), view.Status)
	s.Equal("guest-1", view.Battle.Winner)
}

func (s *CoordinatorSuite) TestLeaveRoomNoRoomIsFalse() {
	s.connect("drifter", "Drifter")
	left, err := s.coord.LeaveRoom(s.ctx, "drifter")
	s.Require().NoError(err)
	s.False(left)
}

func (s *CoordinatorSuite) TestSendChatBroadcasts() {
	s.seatPair()

	err := s.coord.SendChat(s.ctx, "host-1", "  good luck  ")
	s.Require().NoError(err)

	chat, ok := s.sink.Last(model.EventChatMessage)
	s.Require().True(ok)
	payload := chat.Payload.(model.ChatMessagePayload)
	s.Equal("good luck", payload.Text)
	s.Equal("Alice", payload.DisplayName)
	s.ElementsMatch([]model.PlayerID{"host-1", "guest-1"}, chat.Recipients)
}

func (s *CoordinatorSuite) TestSendChatEmptyFails() {
	s.seatPair()
	s.ErrorIs(s.coord.SendChat(s.ctx, "host-1", "   "), model.ErrEmptyMessage)
}

func (s *CoordinatorSuite) TestSendChatTooLongFails() {
	s.seatPair()
	s.ErrorIs(s.coord.SendChat(s.ctx, "host-1", strings.Repeat("x", MaxChatLength+1)), model.ErrMessageTooLong)
}

func (s *CoordinatorSuite) TestSendChatRoomlessFails() {
	s.connect("drifter", "Drifter")
	s.ErrorIs(s.coord.SendChat(s.ctx, "drifter", "hello"), model.ErrNotInRoom)
}

func (s *CoordinatorSuite) TestGetRoomNotFound() {
	_, err := s.coord.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *CoordinatorSuite) TestListRoomsSkipsPrivate() {
	s.connect("host-1", "Alice")
	s.connect("host-2", "Carol")
	s.random.QueueCode("ABC234")
	_, err := s.coord.CreateRoom(s.ctx, "host-1", CreateRoomRequest{Name: "Open"})
	s.Require().NoError(err)
	s.random.QueueCode("XYZ789")
	_, err = s.coord.CreateRoom(s.ctx, "host-2", CreateRoomRequest{Name: "Hidden", Private: true})
	s.Require().NoError(err)

	summaries, err := s.coord.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(model.RoomCode("ABC234"), summaries[0].Code)
}

func (s *CoordinatorSuite) TestCharactersListsCatalog() {
	characters := s.coord.Characters()
	s.Require().Len(characters, 3)
	s.Equal(model.CharacterID("knight"), characters[0].ID)
}
