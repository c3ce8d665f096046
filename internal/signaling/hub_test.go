package signaling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/pkg/logger"
)

func testClient(hub *Hub, id, username, group string, buffer int) *Client {
	c := &Client{
		ID:       id,
		Username: username,
		hub:      hub,
		group:    group,
		send:     make(chan []byte, buffer),
		logger:   logger.Nop(),
	}
	hub.Join(group, c)
	return c
}

func received(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("no payload queued")
		return nil
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected payload queued: %s", payload)
	default:
	}
}

func TestBroadcast_SkipsSender(t *testing.T) {
	hub := NewHub(logger.Nop())
	group := VideoCallGroup("100")

	sender := testClient(hub, "c1", "alice", group, 4)
	peer := testClient(hub, "c2", "bob", group, 4)

	hub.Broadcast(group, []byte(`{"type":"offer"}`), sender)

	assert.Equal(t, []byte(`{"type":"offer"}`), received(t, peer))
	assertEmpty(t, sender)
}

func TestBroadcast_VerbatimPayload(t *testing.T) {
	hub := NewHub(logger.Nop())
	group := VideoCallGroup("100")

	sender := testClient(hub, "c1", "alice", group, 4)
	peer := testClient(hub, "c2", "bob", group, 4)

	// The relay must not reinterpret or reserialize frames.
	raw := []byte(`{"sdp":"v=0\r\no=- 463112 2 IN IP4 127.0.0.1","unknown_field":1}`)
	hub.Broadcast(group, raw, sender)

	assert.Equal(t, raw, received(t, peer))
}

func TestBroadcast_ScopedToGroup(t *testing.T) {
	hub := NewHub(logger.Nop())

	inRoom := testClient(hub, "c1", "alice", VideoCallGroup("100"), 4)
	otherRoom := testClient(hub, "c2", "bob", VideoCallGroup("200"), 4)

	hub.Broadcast(VideoCallGroup("100"), []byte("hello"), nil)

	assert.Equal(t, []byte("hello"), received(t, inRoom))
	assertEmpty(t, otherRoom)
}

func TestLeave_StopsDelivery(t *testing.T) {
	hub := NewHub(logger.Nop())
	group := VideoCallGroup("100")

	c := testClient(hub, "c1", "alice", group, 4)
	hub.Leave(group, c)

	hub.Broadcast(group, []byte("hello"), nil)
	assertEmpty(t, c)
}

func TestSendToUser_AllChannels(t *testing.T) {
	hub := NewHub(logger.Nop())

	// Alice has two tabs open; both subscribe to her channel.
	tab1 := testClient(hub, "c1", "alice", UserGroup("alice"), 4)
	tab2 := testClient(hub, "c2", "alice", UserGroup("alice"), 4)

	hub.SendToUser("alice", map[string]any{"type": "video_call_invitation", "proposal_id": 42})

	for _, tab := range []*Client{tab1, tab2} {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(received(t, tab), &decoded))
		assert.Equal(t, "video_call_invitation", decoded["type"])
		assert.Equal(t, float64(42), decoded["proposal_id"])
	}
}

func TestSendToUser_NoOpenChannel(t *testing.T) {
	hub := NewHub(logger.Nop())

	// Fire-and-forget: nothing to deliver to, nothing blows up.
	hub.SendToUser("ghost", map[string]string{"type": "noop"})
}

func TestSlowClientEvicted(t *testing.T) {
	hub := NewHub(logger.Nop())
	group := VideoCallGroup("100")

	slow := testClient(hub, "c1", "alice", group, 1)
	peer := testClient(hub, "c2", "bob", group, 4)

	hub.Broadcast(group, []byte("one"), nil)
	// Slow's buffer is full; the next frame must evict rather than block.
	hub.Broadcast(group, []byte("two"), nil)

	// Eviction removes the client from the group before closing its
	// channel, so further traffic flows to the remaining members.
	hub.Broadcast(group, []byte("three"), nil)
	hub.SendToUser("alice", map[string]string{"type": "noop"})

	assert.Equal(t, []byte("one"), received(t, slow))
	_, open := <-slow.send
	assert.False(t, open, "slow client's channel should be closed")
	assert.NotContains(t, hub.members(group), slow)

	assert.Equal(t, []byte("one"), received(t, peer))
	assert.Equal(t, []byte("two"), received(t, peer))
	assert.Equal(t, []byte("three"), received(t, peer))
}

func TestEnqueueAfterClose_Dropped(t *testing.T) {
	hub := NewHub(logger.Nop())
	group := VideoCallGroup("100")

	c := testClient(hub, "c1", "alice", group, 4)
	c.close()

	// A broadcast racing the close may still hold the client in its
	// membership snapshot; the payload is dropped, never sent on the
	// closed channel.
	c.enqueue([]byte("late"))
}
