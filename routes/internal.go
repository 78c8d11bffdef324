package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/faridreza99/servicemanager-sub001/models"
	"github.com/faridreza99/servicemanager-sub001/services"
	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"
	"github.com/faridreza99/servicemanager-sub001/ws"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type startInternalChatInput struct {
	ParticipantID uint `json:"participantID" validate:"required"`
}

type sendInternalMessageInput struct {
	Content        string `json:"content" validate:"lt=5000"`
	AttachmentURL  string `json:"attachmentURL" validate:"lt=512"`
	AttachmentType string `json:"attachmentType" validate:"lt=128"`
}

// validateInternalMessagePayload mirrors the booking-chat rules minus
// quotations: text may be empty only when an attachment rides along.
func validateInternalMessagePayload(in *sendInternalMessageInput) string {
	if (in.AttachmentURL == "") != (in.AttachmentType == "") {
		return "attachment requires both url and type"
	}
	if strings.TrimSpace(in.Content) == "" && in.AttachmentURL == "" {
		return "message needs text or an attachment"
	}
	return ""
}

// normalizePair orders an unordered participant pair so every lookup and
// insert for the same two people hits the same row.
func normalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// getOrCreateDirectChat returns the existing direct chat for the pair or
// creates it with both as participants. Called twice it returns the same
// chat id both times; the unique pair index keeps that true even for two
// concurrent first contacts.
func getOrCreateDirectChat(creatorID, peerID uint) (*models.InternalChat, bool, error) {
	lo, hi := normalizePair(creatorID, peerID)

	lookup := func() (*models.InternalChat, error) {
		var chat models.InternalChat
		err := storage.DB.
			Where("type = ? AND peer_low = ? AND peer_high = ?", "direct", lo, hi).
			First(&chat).Error
		return &chat, err
	}

	chat, err := lookup()
	if err == nil {
		return chat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := models.InternalChat{Type: "direct", CreatorID: creatorID, PeerLow: &lo, PeerHigh: &hi}
	createErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		participants := []models.InternalChatParticipant{
			{ChatID: created.ID, UserID: lo},
			{ChatID: created.ID, UserID: hi},
		}
		return tx.Create(&participants).Error
	})
	if createErr == nil {
		return &created, true, nil
	}

	// Lost a first-contact race: the pair index rejected the insert and
	// the winner's chat is in place now.
	if chat, err := lookup(); err == nil {
		return chat, false, nil
	}
	return nil, false, createErr
}

// StartInternalChat gets or creates the direct chat between the caller
// and the given peer.
func StartInternalChat(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input startInternalChatInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.ParticipantID == claims.ID {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_failed", "cannot open a chat with yourself")
		return
	}

	var peer models.User
	if err := storage.DB.First(&peer, input.ParticipantID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.IsStaff(peer.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "internal chats are limited to staff and admins")
		return
	}

	chat, created, err := getOrCreateDirectChat(claims.ID, input.ParticipantID)
	if err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	if created {
		ev := ws.Event{Type: "internal_chat_created", ChatID: chat.ID}
		ws.MainHub.Broadcast(ws.InboxRoom(claims.ID), ev, nil)
		ws.MainHub.Broadcast(ws.InboxRoom(peer.ID), ev, nil)
	}

	storage.DB.Preload("Participants.User").First(chat, chat.ID)
	ctx.JSON(iris.Map{"success": true, "chat": chat, "created": created})
}

// ListInternalChats returns the caller's chats, each annotated with the
// last message and the caller's unread count.
func ListInternalChats(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var memberships []models.InternalChatParticipant
	if err := storage.DB.Where("user_id = ?", claims.ID).Find(&memberships).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	chats := []iris.Map{}
	for _, m := range memberships {
		var chat models.InternalChat
		if err := storage.DB.Preload("Participants.User").First(&chat, m.ChatID).Error; err != nil {
			continue
		}

		entry := iris.Map{"chat": chat, "unreadCount": unreadCountFor(&m)}

		var last models.InternalMessage
		if err := storage.DB.Where("chat_id = ?", m.ChatID).
			Preload("Sender").
			Order("id DESC").First(&last).Error; err == nil {
			entry["lastMessage"] = last
		}

		chats = append(chats, entry)
	}

	ctx.JSON(iris.Map{"success": true, "chats": chats})
}

// unreadCountFor counts the chat's messages from other senders newer
// than the member's read position; all of them while it is null.
func unreadCountFor(m *models.InternalChatParticipant) int64 {
	q := storage.DB.Model(&models.InternalMessage{}).
		Where("chat_id = ? AND sender_id <> ?", m.ChatID, m.UserID)
	if m.LastReadAt != nil {
		q = q.Where("created_at > ?", *m.LastReadAt)
	}
	var unread int64
	q.Count(&unread)
	return unread
}

// SendInternalMessage appends a message and signals every participant's
// personal inbox room.
func SendInternalMessage(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input sendInternalMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if reason := validateInternalMessagePayload(&input); reason != "" {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_failed", reason)
		return
	}

	// Ensure membership
	var membership models.InternalChatParticipant
	if err := storage.DB.Where("chat_id = ? AND user_id = ?", chatID, claims.ID).First(&membership).Error; err != nil {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not a participant of this chat")
		return
	}

	msg := models.InternalMessage{
		ChatID:         chatID,
		SenderID:       claims.ID,
		Content:        strings.TrimSpace(input.Content),
		AttachmentURL:  input.AttachmentURL,
		AttachmentType: input.AttachmentType,
	}
	if err := storage.DB.Create(&msg).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}
	storage.DB.Preload("Sender").First(&msg, msg.ID)

	var participants []models.InternalChatParticipant
	storage.DB.Where("chat_id = ?", chatID).Find(&participants)

	participantIDs := make([]uint, 0, len(participants))
	for _, p := range participants {
		participantIDs = append(participantIDs, p.UserID)
		ws.MainHub.Broadcast(ws.InboxRoom(p.UserID), ws.Event{Type: "internal_message_created", ChatID: chatID}, nil)
	}

	senderName := strings.TrimSpace(msg.Sender.FirstName + " " + msg.Sender.LastName)
	preview := msg.Content
	if preview == "" {
		preview = "Attachment"
		if strings.HasPrefix(msg.AttachmentType, "audio/") {
			preview = "Voice message"
		}
	}
	go services.NewNotificationService().SendInternalMessageNotification(chatID, claims.ID, senderName, preview, participantIDs)

	ctx.JSON(iris.Map{"success": true, "message": msg})
}

// MarkInternalChatRead moves the caller's read position to now. Calling
// it again without new messages keeps the unread count at zero.
func MarkInternalChatRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var membership models.InternalChatParticipant
	if err := storage.DB.Where("chat_id = ? AND user_id = ?", chatID, claims.ID).First(&membership).Error; err != nil {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not a participant of this chat")
		return
	}

	now := time.Now()
	if err := storage.DB.Model(&models.InternalChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, claims.ID).
		Update("last_read_at", now).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	ctx.JSON(iris.Map{"success": true, "lastReadAt": now})
}

// Typing indicator for internal chats, same Redis scheme as booking chats
func InternalTyping(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var membership models.InternalChatParticipant
	if err := storage.DB.Where("chat_id = ? AND user_id = ?", chatID, claims.ID).First(&membership).Error; err != nil {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	storage.Redis.Set(ctx, internalTypingKey(chatID, claims.ID), "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

func ListInternalTyping(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var members []models.InternalChatParticipant
	if err := storage.DB.Where("chat_id = ?", chatID).Preload("User").Find(&members).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	isMember := false
	for _, m := range members {
		if m.UserID == claims.ID {
			isMember = true
			break
		}
	}
	if !isMember {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	typing := []iris.Map{}
	for _, m := range members {
		if m.UserID == claims.ID {
			continue
		}
		if val, err := storage.Redis.Get(ctx, internalTypingKey(chatID, m.UserID)).Result(); err == nil && val == "1" {
			typing = append(typing, iris.Map{
				"userID": m.UserID,
				"name":   m.User.FirstName + " " + m.User.LastName,
			})
		}
	}
	ctx.JSON(iris.Map{"success": true, "typing": typing})
}

func internalTypingKey(chatID uint, userID uint) string {
	return fmt.Sprintf("typing:internal:%d:user:%d", chatID, userID)
}
