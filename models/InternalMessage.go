package models

import "time"

// InternalMessage is one entry in a staff/admin chat. Append-only.
type InternalMessage struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ChatID uint `json:"chatID" gorm:"not null;index"`

	SenderID uint `json:"senderID" gorm:"not null;index"`
	Sender   User `json:"sender" gorm:"foreignKey:SenderID"`

	Content        string `json:"content" gorm:"type:text"`
	AttachmentURL  string `json:"attachmentURL" gorm:"size:512"`
	AttachmentType string `json:"attachmentType" gorm:"size:128"`

	CreatedAt time.Time `json:"createdAt"`
}
