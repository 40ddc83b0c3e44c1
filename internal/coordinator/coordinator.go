package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/duelarena/server/internal/catalog"
	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/locking"
	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/services/match"
	"github.com/duelarena/server/internal/services/player"
	"github.com/duelarena/server/internal/services/reaper"
	"github.com/duelarena/server/internal/services/room"
)

// EventSink receives broadcast events for delivery to room occupants. The
// transport implements it; Publish must not block.
type EventSink interface {
	Publish(event model.Event)
}

// NopSink discards events. Useful for tests that only assert on state.
type NopSink struct{}

// Publish discards the event
func (NopSink) Publish(model.Event) {}

// Config holds the coordinator's timing knobs
type Config struct {
	// StartCountdown is the delay between all-ready and match start
	StartCountdown time.Duration
	// ReaperInterval is how often the idle sweep runs
	ReaperInterval time.Duration
	// RoomIdleTimeout expires rooms with no activity
	RoomIdleTimeout time.Duration
	// PlayerIdleTimeout expires room-less players with no activity
	PlayerIdleTimeout time.Duration
}

// DefaultConfig returns sensible defaults for the coordinator
func DefaultConfig() Config {
	return Config{
		StartCountdown:    3 * time.Second,
		ReaperInterval:    time.Minute,
		RoomIdleTimeout:   30 * time.Minute,
		PlayerIdleTimeout: 10 * time.Minute,
	}
}

// Coordinator is the single entry point external collaborators call. Each
// inbound event is processed as one atomic state transition: the coordinator
// serializes events per room with a keyed mutex, so unrelated rooms proceed
// concurrently while two actions for one room can never interleave.
type Coordinator struct {
	players *player.Registry
	rooms   *room.Registry
	engine  *match.Engine
	catalog *catalog.Service
	sweeper *reaper.Sweeper
	clock   clock.Clock
	locks   *locking.KeyedMutex
	sink    EventSink
	logger  *slog.Logger
	cfg     Config

	timerMu     sync.Mutex
	startTimers map[model.RoomCode]*time.Timer
}

// New creates a Coordinator. The locks instance must be shared with the
// sweeper so reaping honors in-flight room events.
func New(
	players *player.Registry,
	rooms *room.Registry,
	engine *match.Engine,
	catalog *catalog.Service,
	sweeper *reaper.Sweeper,
	clock clock.Clock,
	locks *locking.KeyedMutex,
	sink EventSink,
	logger *slog.Logger,
	cfg Config,
) *Coordinator {
	return &Coordinator{
		players:     players,
		rooms:       rooms,
		engine:      engine,
		catalog:     catalog,
		sweeper:     sweeper,
		clock:       clock,
		locks:       locks,
		sink:        sink,
		logger:      logger,
		cfg:         cfg,
		startTimers: make(map[model.RoomCode]*time.Timer),
	}
}

// StartReaper launches the background idle sweep. It returns immediately;
// the sweep stops when ctx is cancelled.
func (c *Coordinator) StartReaper(ctx context.Context) {
	go c.sweeper.Run(ctx, c.cfg.ReaperInterval, c.cfg.RoomIdleTimeout, c.cfg.PlayerIdleTimeout)
}

// Shutdown cancels any scheduled match-start timers
func (c *Coordinator) Shutdown() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	for code, timer := range c.startTimers {
		timer.Stop()
		delete(c.startTimers, code)
	}
}

// lockRoom serializes events for one room
func (c *Coordinator) lockRoom(code model.RoomCode) func() {
	c.locks.Lock(string(code))
	return func() { c.locks.Unlock(string(code)) }
}

// lockRooms acquires two room locks in a stable order so concurrent
// cross-room moves cannot deadlock
func (c *Coordinator) lockRooms(a, b model.RoomCode) func() {
	if a == b || b == "" {
		return c.lockRoom(a)
	}
	if a == "" {
		return c.lockRoom(b)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	c.locks.Lock(string(first))
	c.locks.Lock(string(second))
	return func() {
		c.locks.Unlock(string(second))
		c.locks.Unlock(string(first))
	}
}

// maxRoomLockRetries bounds how often lockPlayerRoom chases a player who is
// being moved between rooms by concurrent events
const maxRoomLockRetries = 5

// lockPlayerRoom locks the room the player currently occupies, re-validating
// membership after the lock is held: the player may have been moved or
// evicted between the index read and the lock acquisition.
func (c *Coordinator) lockPlayerRoom(ctx context.Context, id model.PlayerID) (model.RoomCode, func(), error) {
	for i := 0; i < maxRoomLockRetries; i++ {
		code, err := c.rooms.RoomFor(ctx, id)
		if err != nil {
			return "", nil, err
		}
		unlock := c.lockRoom(code)
		current, err := c.rooms.Get(ctx, code)
		if err == nil && current.HasOccupant(id) {
			return code, unlock, nil
		}
		unlock()
	}
	return "", nil, model.ErrConflict
}

// scheduleStart arms the pre-match countdown for a room, replacing any timer
// already armed. The fire re-validates room state: if the room was abandoned
// or altered during the countdown, firing is a no-op.
func (c *Coordinator) scheduleStart(code model.RoomCode) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if timer, ok := c.startTimers[code]; ok {
		timer.Stop()
	}
	c.startTimers[code] = time.AfterFunc(c.cfg.StartCountdown, func() {
		c.fireStart(code)
	})
}

// cancelStart disarms a pending countdown, if any
func (c *Coordinator) cancelStart(code model.RoomCode) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if timer, ok := c.startTimers[code]; ok {
		timer.Stop()
		delete(c.startTimers, code)
	}
}

// fireStart runs when the countdown elapses
func (c *Coordinator) fireStart(code model.RoomCode) {
	c.timerMu.Lock()
	delete(c.startTimers, code)
	c.timerMu.Unlock()

	ctx := context.Background()
	unlock := c.lockRoom(code)
	defer unlock()

	current, err := c.rooms.Get(ctx, code)
	if err != nil || current.Status != model.RoomStatusReady || len(current.Roster) != model.RoomCapacity {
		// Room vanished or regressed during the countdown.
		return
	}

	started, err := c.engine.StartGame(ctx, code)
	if err != nil {
		c.logger.Warn("countdown start failed",
			slog.String("room_code", string(code)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.publishRoomEvent(ctx, started, model.EventMatchStarted, started.HostID, nil)
	c.publishRoomUpdate(ctx, started)
}

// publishRoomEvent emits an event addressed to a room's current occupants
func (c *Coordinator) publishRoomEvent(ctx context.Context, r *model.Room, typ model.EventType, actor model.PlayerID, payload any) {
	recipients := make([]model.PlayerID, len(r.Roster))
	copy(recipients, r.Roster)
	c.sink.Publish(model.Event{
		Type:       typ,
		Timestamp:  c.clock.Now(),
		RoomCode:   r.Code,
		PlayerID:   actor,
		Recipients: recipients,
		Payload:    payload,
	})
}

// publishRoomUpdate broadcasts the updated room view to its occupants
func (c *Coordinator) publishRoomUpdate(ctx context.Context, r *model.Room) {
	view, err := c.buildRoomView(ctx, r)
	if err != nil {
		c.logger.Error("building room view",
			slog.String("room_code", string(r.Code)),
			slog.String("error", err.Error()),
		)
		return
	}
	c.publishRoomEvent(ctx, r, model.EventRoomUpdated, "", view)
}

// publishLeave emits the departure events a LeaveResult implies: player-left,
// host-changed, forfeit match-end, and the updated room view
func (c *Coordinator) publishLeave(ctx context.Context, left *room.LeaveResult, displayName string) {
	if left == nil || left.RoomClosed {
		return
	}
	r := left.Room
	c.publishRoomEvent(ctx, r, model.EventPlayerLeft, left.PlayerID, model.PlayerLeftPayload{
		PlayerID:    left.PlayerID,
		DisplayName: displayName,
		Forfeited:   left.Forfeited,
	})
	if left.HostChanged {
		c.publishRoomEvent(ctx, r, model.EventHostChanged, left.NewHostID, model.HostChangedPayload{
			OldHostID: left.PlayerID,
			NewHostID: left.NewHostID,
		})
	}
	if left.Forfeited {
		c.publishRoomEvent(ctx, r, model.EventMatchEnded, left.Winner, model.MatchEndedPayload{
			Winner:  left.Winner,
			Forfeit: true,
		})
	}
	c.publishRoomUpdate(ctx, r)
}
