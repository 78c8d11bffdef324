package services

import (
	"golang.org/x/exp/slices"

	"github.com/faridreza99/servicemanager-sub001/models"
)

var (
	adminRoles = []string{"admin", "super_admin"}
	staffRoles = []string{"staff", "admin", "super_admin"}
)

// CanSee reports whether a viewer may be shown a message. Private
// messages are restricted to admins and their own sender. This predicate
// runs server-side before any transmission, REST listing and websocket
// fan-out alike.
func CanSee(m *models.Message, viewerID uint, viewerRole string) bool {
	if !m.IsPrivate {
		return true
	}
	if slices.Contains(adminRoles, viewerRole) {
		return true
	}
	return viewerID == m.SenderID
}

// CanSendPrivate gates private-note creation at the write boundary.
func CanSendPrivate(role string) bool {
	return slices.Contains(staffRoles, role)
}

// CanSendQuotation gates priced-offer creation at the write boundary.
func CanSendQuotation(role string) bool {
	return slices.Contains(staffRoles, role)
}

// CanJoinChat decides room admission for a booking chat: the booking's
// customer, the assigned staff member, or any admin.
func CanJoinChat(b *models.Booking, viewerID uint, viewerRole string) bool {
	if slices.Contains(adminRoles, viewerRole) {
		return true
	}
	if b.CustomerID == viewerID {
		return true
	}
	return b.StaffID != nil && *b.StaffID == viewerID
}

// CanCloseChat restricts the open->closed transition to admins and the
// booking's assigned staff member.
func CanCloseChat(b *models.Booking, actorID uint, actorRole string) bool {
	if slices.Contains(adminRoles, actorRole) {
		return true
	}
	return b.StaffID != nil && *b.StaffID == actorID
}

// IsStaff reports whether a role holds the internal-messaging grant.
func IsStaff(role string) bool {
	return slices.Contains(staffRoles, role)
}
