package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/storage"
)

// Storage is the in-memory implementation of the storage interface. It is the
// source of truth: there is no durable backend behind it. Records are stored
// and returned as detached copies, so a caller's mutations only take effect
// through a Save call.
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.Player
	rooms      map[model.RoomCode]*model.Room
	playerRoom map[model.PlayerID]model.RoomCode
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:    make(map[model.PlayerID]*model.Player),
		rooms:      make(map[model.RoomCode]*model.Room),
		playerRoom: make(map[model.PlayerID]model.RoomCode),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// clonePlayer copies a player record. The Character pointer is shared: catalog
// definitions are immutable once loaded.
func clonePlayer(p *model.Player) *model.Player {
	cp := *p
	return &cp
}

// cloneRoom copies a room record along with its roster and battle log.
func cloneRoom(r *model.Room) *model.Room {
	cr := *r
	cr.Roster = slices.Clone(r.Roster)
	cr.Battle.Log = slices.Clone(r.Battle.Log)
	return &cr
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = clonePlayer(player)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return clonePlayer(player), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	return players, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room, unseated ...model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeRoomLocked(room, unseated...)
	return nil
}

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; ok {
		return model.ErrConflict
	}
	s.storeRoomLocked(room)
	return nil
}

// storeRoomLocked stores a copy of the room and re-points the reverse index
// at it. Caller holds the write lock.
func (s *Storage) storeRoomLocked(room *model.Room, unseated ...model.PlayerID) {
	s.rooms[room.Code] = cloneRoom(room)
	for _, pid := range unseated {
		// Only clear entries that still point at this room; the player may
		// have already been seated elsewhere.
		if s.playerRoom[pid] == room.Code {
			delete(s.playerRoom, pid)
		}
	}
	for _, pid := range room.Roster {
		s.playerRoom[pid] = room.Code
	}
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil
	}
	for _, pid := range room.Roster {
		if s.playerRoom[pid] == code {
			delete(s.playerRoom, pid)
		}
	}
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, cloneRoom(room))
	}
	return rooms, nil
}

// Reverse index

func (s *Storage) PlayerRoom(ctx context.Context, id model.PlayerID) (model.RoomCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.playerRoom[id]
	if !ok {
		return "", model.ErrNotInRoom
	}
	return code, nil
}
