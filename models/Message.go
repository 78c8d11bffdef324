package models

import "time"

// Message stores a single entry in a booking chat. Append-only: no
// update or delete path exists anywhere in the codebase.
type Message struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ChatID uint `json:"chatID" gorm:"not null;index"`
	Chat   Chat `json:"-"`

	SenderID uint `json:"senderID" gorm:"not null;index"`
	Sender   User `json:"sender" gorm:"foreignKey:SenderID"`

	Content   string `json:"content" gorm:"type:text"`
	IsPrivate bool   `json:"isPrivate" gorm:"default:false"` // visible to admins and the sender only

	IsQuotation     bool   `json:"isQuotation" gorm:"default:false"`
	QuotationAmount *int64 `json:"quotationAmount"` // smallest currency unit, set iff IsQuotation

	AttachmentURL  string `json:"attachmentURL" gorm:"size:512"`
	AttachmentType string `json:"attachmentType" gorm:"size:128"` // MIME; audio/* renders as a voice note

	CreatedAt time.Time `json:"createdAt"`
}
