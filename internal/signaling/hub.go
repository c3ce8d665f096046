// Package signaling relays opaque payloads between websocket clients
// through named groups. The relay never interprets payload contents.
package signaling

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"skillswap/pkg/logger"
)

// Group name prefixes. Call rooms are keyed by proposal id, notification
// channels by username.
const (
	videoCallGroupPrefix = "video_call_"
	userGroupPrefix      = "user_"
)

func VideoCallGroup(roomName string) string {
	return videoCallGroupPrefix + roomName
}

func UserGroup(username string) string {
	return userGroupPrefix + username
}

var openConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "skillswap_signaling_open_connections",
	Help: "Number of currently open websocket connections.",
})

// Hub is the pub/sub group registry. It is the only shared mutable
// structure of the relay: join/leave are atomic per client, and broadcast
// snapshots the member set at send time.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]bool
	logger logger.Logger
}

func NewHub(logger logger.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]bool),
		logger: logger,
	}
}

// Join adds a client's channel to a named group.
func (h *Hub) Join(group string, c *Client) {
	h.mu.Lock()
	if _, exists := h.groups[group]; !exists {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][c] = true
	h.mu.Unlock()

	h.logger.Debug(context.Background(), "client joined group",
		logger.Field{Key: "group", Value: group},
		logger.Field{Key: "client_id", Value: c.ID},
	)
}

// Leave removes a client's channel from a group, dropping the group once
// it has no members left.
func (h *Hub) Leave(group string, c *Client) {
	h.mu.Lock()
	if members, ok := h.groups[group]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	h.mu.Unlock()
}

// members returns a snapshot of a group's membership. New joiners after
// the snapshot do not receive the in-flight message.
func (h *Hub) members(group string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]*Client, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		members = append(members, c)
	}
	return members
}

// Broadcast relays a raw payload to every member of the group except the
// sender. Payload bytes pass through verbatim.
func (h *Hub) Broadcast(group string, payload []byte, except *Client) {
	for _, c := range h.members(group) {
		if c == except {
			continue
		}
		c.enqueue(payload)
	}
}

// SendToUser pushes a structured payload to every channel the user has
// open. Fire-and-forget: with no open channel the payload is dropped.
func (h *Hub) SendToUser(username string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(context.Background(), "failed to marshal notification",
			logger.Field{Key: "username", Value: username},
			logger.Field{Key: "error", Value: err},
		)
		return
	}

	h.Broadcast(UserGroup(username), data, nil)
}

// Shutdown closes every connection and clears the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[*Client]bool)
	for _, members := range h.groups {
		for c := range members {
			if !seen[c] {
				seen[c] = true
				c.close()
			}
		}
	}
	h.groups = make(map[string]map[*Client]bool)
}
