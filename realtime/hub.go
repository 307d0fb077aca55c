// Package realtime tracks which users are online and pushes events to their
// live connections. Delivery is best effort: frames for a connection that is
// gone or backed up are dropped.
package realtime

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

// Handle is one live connection.
type Handle interface {
	ID() string
	// Enqueue hands a frame to the connection without blocking and reports
	// whether it was accepted.
	Enqueue(frame []byte) bool
}

// Hub is the connection registry. Every change to the registry is followed by
// a presence broadcast to all connections.
type Hub struct {
	mu     sync.Mutex
	users  map[string]map[string]Handle // user id -> handle id -> handle
	owners map[string]string            // handle id -> user id
}

func NewHub() *Hub {
	return &Hub{
		users:  make(map[string]map[string]Handle),
		owners: make(map[string]string),
	}
}

// Register adds h under userID. Registering a handle twice is a no-op; a
// handle registered under another user moves to userID.
func (h *Hub) Register(userID string, hd Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if owner, ok := h.owners[hd.ID()]; ok {
		if owner == userID {
			return
		}
		h.removeLocked(hd.ID())
	}

	conns, ok := h.users[userID]
	if !ok {
		conns = make(map[string]Handle)
		h.users[userID] = conns
	}
	conns[hd.ID()] = hd
	h.owners[hd.ID()] = userID

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id":     userID,
		"conn_id":     hd.ID(),
		"connections": len(conns),
	}).Info("Connection registered")

	h.broadcastOnlineUsersLocked()
}

// Unregister removes h from whichever user holds it. Unknown handles are ignored.
func (h *Hub) Unregister(hd Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID, ok := h.removeLocked(hd.ID())
	if !ok {
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id": userID,
		"conn_id": hd.ID(),
	}).Info("Connection unregistered")

	h.broadcastOnlineUsersLocked()
}

func (h *Hub) removeLocked(handleID string) (string, bool) {
	userID, ok := h.owners[handleID]
	if !ok {
		return "", false
	}
	delete(h.owners, handleID)

	conns := h.users[userID]
	delete(conns, handleID)
	if len(conns) == 0 {
		delete(h.users, userID)
	}
	return userID, true
}

// OnlineUserIDs returns the sorted ids of users with at least one connection.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.onlineLocked()
}

func (h *Hub) onlineLocked() []string {
	ids := make([]string, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) IsOnline(userID string) bool {
	return h.ConnectionCount(userID) > 0
}

func (h *Hub) ConnectionCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[userID])
}

// SendToUser queues event on every connection of userID and returns how many
// accepted it. An offline user yields 0.
func (h *Hub) SendToUser(userID, event string, data interface{}) int {
	frame, err := encode(event, data)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s event: %v", event, err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, hd := range h.users[userID] {
		if hd.Enqueue(frame) {
			sent++
		}
	}
	return sent
}

func (h *Hub) broadcastLocked(frame []byte) int {
	sent := 0
	for _, conns := range h.users {
		for _, hd := range conns {
			if hd.Enqueue(frame) {
				sent++
			}
		}
	}
	return sent
}

// broadcastOnlineUsersLocked sends the full presence list, never a delta.
func (h *Hub) broadcastOnlineUsersLocked() {
	frame, err := encode(EventOnlineUsers, h.onlineLocked())
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling presence: %v", err)
		return
	}
	h.broadcastLocked(frame)
}
