package models

import "time"

// InternalChat is a staff/admin conversation, separate from booking
// chats. A direct chat has exactly two participants and at most one
// exists per unordered pair of users.
type InternalChat struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Type      string    `json:"type" gorm:"size:12;default:direct;index"` // direct | group
	Title     string    `json:"title" gorm:"size:256"`
	CreatorID uint      `json:"creatorID" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`

	// Direct chats persist the normalized participant pair under a
	// unique index so two racing first contacts cannot both insert.
	// Group chats leave the pair null.
	PeerLow  *uint `json:"-" gorm:"uniqueIndex:idx_internal_chats_direct_pair"`
	PeerHigh *uint `json:"-" gorm:"uniqueIndex:idx_internal_chats_direct_pair"`

	Participants []InternalChatParticipant `json:"participants" gorm:"foreignKey:ChatID"`
}

// InternalChatParticipant tracks membership and the per-user read
// position. Participants never leave; unread = messages from others
// newer than LastReadAt (all of them while LastReadAt is null).
type InternalChatParticipant struct {
	ChatID uint `json:"chatID" gorm:"primaryKey;autoIncrement:false"`
	UserID uint `json:"userID" gorm:"primaryKey;autoIncrement:false"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	LastReadAt *time.Time `json:"lastReadAt"`
	JoinedAt   time.Time  `json:"joinedAt" gorm:"autoCreateTime"`
}
