package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelarena/server/internal/model"
	"github.com/duelarena/server/internal/testutil"
)

func newTestClient(id model.PlayerID, buffer int) *Client {
	return &Client{
		playerID: id,
		send:     make(chan []byte, buffer),
		logger:   testutil.NopLogger(),
	}
}

func TestRegisterAndPublish(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	alice := newTestClient("alice", 4)
	bob := newTestClient("bob", 4)
	hub.Register(alice)
	hub.Register(bob)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Publish(model.Event{
		Type:       model.EventChatMessage,
		Timestamp:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		RoomCode:   "ABC234",
		PlayerID:   "alice",
		Recipients: []model.PlayerID{"alice", "bob"},
		Payload:    model.ChatMessagePayload{PlayerID: "alice", DisplayName: "Alice", Text: "hi"},
	})

	for _, client := range []*Client{alice, bob} {
		select {
		case data := <-client.send:
			var frame Frame
			require.NoError(t, json.Unmarshal(data, &frame))
			assert.Equal(t, string(model.EventChatMessage), frame.Type)
			assert.Equal(t, "ABC234", frame.RoomCode)
			assert.Equal(t, "alice", frame.PlayerID)
		default:
			t.Fatalf("client %s received no frame", client.playerID)
		}
	}
}

func TestPublishOnlyReachesRecipients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	alice := newTestClient("alice", 4)
	carol := newTestClient("carol", 4)
	hub.Register(alice)
	hub.Register(carol)

	hub.Publish(model.Event{
		Type:       model.EventRoomUpdated,
		RoomCode:   "ABC234",
		Recipients: []model.PlayerID{"alice"},
	})

	assert.Len(t, alice.send, 1)
	assert.Empty(t, carol.send)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	slow := newTestClient("slow", 1)
	hub.Register(slow)

	event := model.Event{
		Type:       model.EventRoomUpdated,
		RoomCode:   "ABC234",
		Recipients: []model.PlayerID{"slow"},
	}
	hub.Publish(event)
	hub.Publish(event)

	// The second frame is dropped rather than blocking the publisher.
	assert.Len(t, slow.send, 1)
}

func TestReconnectReplacesConnection(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	first := newTestClient("alice", 4)
	hub.Register(first)

	second := newTestClient("alice", 4)
	hub.Register(second)
	assert.Equal(t, 1, hub.ClientCount())

	// The replaced connection's send channel is closed so its write pump
	// terminates.
	_, open := <-first.send
	assert.False(t, open)

	hub.Publish(model.Event{
		Type:       model.EventRoomUpdated,
		RoomCode:   "ABC234",
		Recipients: []model.PlayerID{"alice"},
	})
	assert.Len(t, second.send, 1)
}

func TestReplacedConnectionSendIsDropped(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	first := newTestClient("alice", 4)
	hub.Register(first)
	second := newTestClient("alice", 4)
	hub.Register(second)

	// The replaced connection's read pump may still be dispatching a message;
	// its outgoing frames degrade to drops once the channel is closed.
	first.sendFrame(Frame{Type: TypeRooms, Data: []model.RoomSummary{}})

	assert.Empty(t, second.send)
	hub.Publish(model.Event{
		Type:       model.EventRoomUpdated,
		RoomCode:   "ABC234",
		Recipients: []model.PlayerID{"alice"},
	})
	assert.Len(t, second.send, 1)
}

func TestUnregisterStaleConnectionIsNoop(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	first := newTestClient("alice", 4)
	hub.Register(first)
	second := newTestClient("alice", 4)
	hub.Register(second)

	// The stale connection reports not-live, so its owner stays registered.
	assert.False(t, hub.Unregister(first))
	assert.Equal(t, 1, hub.ClientCount())

	assert.True(t, hub.Unregister(second))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestFrameFromEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	frame := FrameFromEvent(model.Event{
		Type:      model.EventMatchStarted,
		Timestamp: at,
		RoomCode:  "ABC234",
		PlayerID:  "alice",
	})

	assert.Equal(t, "match_started", frame.Type)
	assert.Equal(t, "ABC234", frame.RoomCode)
	assert.Equal(t, "alice", frame.PlayerID)
	assert.Equal(t, at, frame.Timestamp)
}
