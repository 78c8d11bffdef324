package models

import "gorm.io/gorm"

// Booking is the owner record of a support chat. CRUD beyond creation
// lives in the external booking service; the fields here are what room
// authorization and the chat lifecycle need.
type Booking struct {
	gorm.Model
	CustomerID uint  `json:"customerID" gorm:"not null;index"`
	Customer   User  `json:"customer" gorm:"foreignKey:CustomerID"`
	StaffID    *uint `json:"staffID" gorm:"index"`
	Staff      *User `json:"staff" gorm:"foreignKey:StaffID"`

	ServiceName string `json:"serviceName" gorm:"size:256"`
	Notes       string `json:"notes" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:24;default:pending;index"` // pending, confirmed, completed, cancelled

	Chat *Chat `json:"chat,omitempty"`
}
