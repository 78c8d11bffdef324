package services

import (
	"testing"

	"github.com/faridreza99/servicemanager-sub001/models"
)

func TestCanSeePrivateMessages(t *testing.T) {
	msg := &models.Message{SenderID: 7, IsPrivate: true, Content: "internal note"}

	cases := []struct {
		name     string
		viewerID uint
		role     string
		want     bool
	}{
		{"admin sees private", 1, "admin", true},
		{"super admin sees private", 2, "super_admin", true},
		{"sender sees own private", 7, "staff", true},
		{"other staff blocked", 8, "staff", false},
		{"customer blocked", 3, "customer", false},
	}
	for _, c := range cases {
		if got := CanSee(msg, c.viewerID, c.role); got != c.want {
			t.Errorf("%s: CanSee = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCanSeePublicMessages(t *testing.T) {
	msg := &models.Message{SenderID: 7, IsPrivate: false, Content: "hello"}
	for _, role := range []string{"customer", "staff", "admin", "super_admin"} {
		if !CanSee(msg, 99, role) {
			t.Errorf("public message hidden from role %s", role)
		}
	}
}

func TestSendCapabilities(t *testing.T) {
	for _, role := range []string{"staff", "admin", "super_admin"} {
		if !CanSendPrivate(role) {
			t.Errorf("role %s should be able to send private messages", role)
		}
		if !CanSendQuotation(role) {
			t.Errorf("role %s should be able to send quotations", role)
		}
	}
	if CanSendPrivate("customer") {
		t.Error("customer must not send private messages")
	}
	if CanSendQuotation("customer") {
		t.Error("customer must not send quotations")
	}
}

func TestCanJoinChat(t *testing.T) {
	staffID := uint(20)
	booking := &models.Booking{CustomerID: 10, StaffID: &staffID}

	if !CanJoinChat(booking, 10, "customer") {
		t.Error("booking customer should be admitted")
	}
	if !CanJoinChat(booking, 20, "staff") {
		t.Error("assigned staff should be admitted")
	}
	if !CanJoinChat(booking, 99, "admin") {
		t.Error("admin should be admitted")
	}
	if CanJoinChat(booking, 11, "customer") {
		t.Error("unrelated customer must be rejected")
	}
	if CanJoinChat(booking, 21, "staff") {
		t.Error("unassigned staff must be rejected")
	}

	unassigned := &models.Booking{CustomerID: 10}
	if CanJoinChat(unassigned, 20, "staff") {
		t.Error("staff must be rejected before assignment")
	}
}

func TestCanCloseChat(t *testing.T) {
	staffID := uint(20)
	booking := &models.Booking{CustomerID: 10, StaffID: &staffID}

	if CanCloseChat(booking, 10, "customer") {
		t.Error("customer must not close the chat")
	}
	if !CanCloseChat(booking, 20, "staff") {
		t.Error("assigned staff should close the chat")
	}
	if CanCloseChat(booking, 21, "staff") {
		t.Error("unassigned staff must not close the chat")
	}
	if !CanCloseChat(booking, 1, "admin") {
		t.Error("admin should close the chat")
	}
}
