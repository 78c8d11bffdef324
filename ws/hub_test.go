package ws

import (
	"sync"
	"testing"
)

func drain(c *Client) int {
	n := 0
	for {
		select {
		case <-c.send:
			n++
		default:
			return n
		}
	}
}

func TestBroadcastAppliesRecipientFilter(t *testing.T) {
	h := NewHub()
	room := RoomForChat(1)

	admin := newClient(h, room, nil, 1, "admin")
	sender := newClient(h, room, nil, 2, "customer")
	other := newClient(h, room, nil, 3, "customer")
	for _, c := range []*Client{admin, sender, other} {
		h.Join(room, c)
	}

	// the filter a private message from user 2 would produce
	allow := func(viewerID uint, viewerRole string) bool {
		return viewerRole == "admin" || viewerRole == "super_admin" || viewerID == 2
	}
	h.Broadcast(room, Event{Type: "message_created", ChatID: 1}, allow)

	if drain(admin) != 1 {
		t.Error("admin session should receive the signal")
	}
	if drain(sender) != 1 {
		t.Error("sender's own session should receive the signal")
	}
	if drain(other) != 0 {
		t.Error("other customer session must not receive a private-message signal")
	}
}

func TestBroadcastNilFilterReachesEveryone(t *testing.T) {
	h := NewHub()
	room := RoomForChat(2)
	a := newClient(h, room, nil, 1, "customer")
	b := newClient(h, room, nil, 2, "staff")
	h.Join(room, a)
	h.Join(room, b)

	h.Broadcast(room, Event{Type: "chat_closed", ChatID: 2}, nil)

	if drain(a) != 1 || drain(b) != 1 {
		t.Error("chat_closed should reach every joined session")
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := NewHub()
	room := RoomForChat(3)
	c := newClient(h, room, nil, 1, "customer")
	h.Join(room, c)

	h.Leave(room, c)
	h.Leave(room, c) // second leave must not panic or alter anything

	h.Broadcast(room, Event{Type: "message_created", ChatID: 3}, nil)
	if drain(c) != 0 {
		t.Error("left session must not receive broadcasts")
	}
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	h := NewHub()
	// no sessions joined; must be a silent no-op
	h.Broadcast(RoomForChat(4), Event{Type: "message_created", ChatID: 4}, nil)
}

func TestRoomsAreIsolated(t *testing.T) {
	h := NewHub()
	a := newClient(h, RoomForChat(1), nil, 1, "customer")
	b := newClient(h, RoomForChat(2), nil, 2, "customer")
	h.Join(RoomForChat(1), a)
	h.Join(RoomForChat(2), b)

	h.Broadcast(RoomForChat(1), Event{Type: "message_created", ChatID: 1}, nil)

	if drain(a) != 1 {
		t.Error("session in the target room should receive the signal")
	}
	if drain(b) != 0 {
		t.Error("session in another room must not receive the signal")
	}
}

func TestBroadcastRacingDisconnect(t *testing.T) {
	// A session dropping mid-broadcast must never take the sender down;
	// the committed message and the other recipients are unaffected.
	for i := 0; i < 100; i++ {
		h := NewHub()
		room := RoomForChat(1)

		clients := make([]*Client, 4)
		for j := range clients {
			clients[j] = newClient(h, room, nil, uint(j+1), "customer")
			h.Join(room, clients[j])
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for k := 0; k < 25; k++ {
				h.Broadcast(room, Event{Type: "message_created", ChatID: 1}, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for _, c := range clients {
				c.Close()
			}
		}()
		wg.Wait()
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h := NewHub()
	c := newClient(h, RoomForChat(1), nil, 1, "customer")
	h.Join(c.room, c)

	c.Close()
	c.Close() // second close must not panic

	select {
	case <-c.done:
	default:
		t.Error("done must be closed after Close")
	}
}

func TestInboxRoomKeys(t *testing.T) {
	if InboxRoom(7) == InboxRoom(8) {
		t.Error("inbox rooms must be distinct per user")
	}
	if RoomForChat(7) == InboxRoom(7) {
		t.Error("chat rooms and inbox rooms must not collide")
	}
}
