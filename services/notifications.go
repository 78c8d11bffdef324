package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/faridreza99/servicemanager-sub001/models"
	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to a specific user
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data map[string]string) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, data); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendChatMessageNotification notifies the counterpart of a booking chat
// about a new message. Private notes notify nobody outside the admin
// team; attachment-only messages get a generic preview.
func (ns *NotificationService) SendChatMessageNotification(booking *models.Booking, msg *models.Message, senderName string) {
	preview := messagePreview(msg)

	recipients := []uint{}
	if msg.IsPrivate {
		// Private notes stay inside the admin team; the assigned staff
		// member sees their own notes, nobody else is notified.
	} else if msg.SenderID == booking.CustomerID {
		if booking.StaffID != nil {
			recipients = append(recipients, *booking.StaffID)
		}
	} else {
		recipients = append(recipients, booking.CustomerID)
	}

	data := map[string]string{
		"type":   "message_created",
		"chatID": fmt.Sprintf("%d", msg.ChatID),
	}

	for _, id := range recipients {
		if err := ns.SendNotificationToUser(id, senderName, preview, data); err != nil {
			log.Printf("❌ NOTIFICATION ERROR: chat %d message push to user %d failed: %v", msg.ChatID, id, err)
		}
	}
}

// SendInternalMessageNotification notifies the other participants of an
// internal chat about a new message.
func (ns *NotificationService) SendInternalMessageNotification(chatID uint, senderID uint, senderName, preview string, participantIDs []uint) {
	data := map[string]string{
		"type":   "internal_message_created",
		"chatID": fmt.Sprintf("%d", chatID),
	}
	for _, id := range participantIDs {
		if id == senderID {
			continue
		}
		if err := ns.SendNotificationToUser(id, senderName, preview, data); err != nil {
			log.Printf("❌ NOTIFICATION ERROR: internal chat %d push to user %d failed: %v", chatID, id, err)
		}
	}
}

func messagePreview(msg *models.Message) string {
	switch {
	case msg.IsQuotation:
		return "New quotation received"
	case msg.Content != "":
		return msg.Content
	case strings.HasPrefix(msg.AttachmentType, "audio/"):
		return "Voice message"
	default:
		return "Attachment"
	}
}
