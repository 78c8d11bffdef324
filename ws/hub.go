package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Event is the payload-free realtime signal pushed to joined sessions.
// Clients treat any event as a cue to refetch the chat through the REST
// listing; ordering and durability come from the store, not from here.
type Event struct {
	Type   string `json:"type"` // message_created | chat_closed | internal_message_created | internal_chat_created
	ChatID uint   `json:"chatID"`
}

// Hub maps room names to the set of connected sessions. It holds no
// business data, only ephemeral membership, and starts empty after every
// restart. History recovery goes through the message store.
type Hub struct {
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

// MainHub is the process-wide registry the route handlers broadcast to.
var MainHub = NewHub()

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

func RoomForChat(chatID uint) string { return fmt.Sprintf("chat:%d", chatID) }

// InboxRoom is the personal room every staff session pre-subscribes to
// for internal messaging events.
func InboxRoom(userID uint) string { return fmt.Sprintf("inbox:%d", userID) }

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Leave is idempotent; a session already gone is not an error.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.rooms[room]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast delivers ev to every session in the room for which allow
// returns true; a nil allow delivers to everyone. Slow consumers are
// dropped rather than blocked on.
func (h *Hub) Broadcast(room string, ev Event, allow func(viewerID uint, viewerRole string) bool) {
	b, _ := json.Marshal(ev)

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		if allow == nil || allow(c.UserID, c.Role) {
			recipients = append(recipients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range recipients {
		select {
		case c.send <- b:
		default:
			go c.Close()
		}
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)
