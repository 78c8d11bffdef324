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

var (
	errForbidden  = errors.New("forbidden")
	errChatClosed = errors.New("chat closed")
)

type createMessageInput struct {
	Content         string `json:"content" validate:"lt=5000"`
	IsPrivate       bool   `json:"isPrivate"`
	IsQuotation     bool   `json:"isQuotation"`
	QuotationAmount *int64 `json:"quotationAmount"`
	AttachmentURL   string `json:"attachmentURL" validate:"lt=512"`
	AttachmentType  string `json:"attachmentType" validate:"lt=128"`
}

// validateMessagePayload enforces the message shape rules: text may be
// empty only when an attachment or quotation is present, a quotation
// always carries a non-negative amount, an attachment needs url and type
// together. Returns an empty string when the payload is fine.
func validateMessagePayload(in *createMessageInput) string {
	if in.IsQuotation {
		if in.QuotationAmount == nil {
			return "quotation requires an amount"
		}
		if *in.QuotationAmount < 0 {
			return "quotation amount cannot be negative"
		}
	} else if in.QuotationAmount != nil {
		return "amount is only valid on a quotation"
	}
	if (in.AttachmentURL == "") != (in.AttachmentType == "") {
		return "attachment requires both url and type"
	}
	if strings.TrimSpace(in.Content) == "" && in.AttachmentURL == "" && !in.IsQuotation {
		return "message needs text, an attachment or a quotation"
	}
	return ""
}

// GetChatMessages lists a chat's messages in store order, filtered
// per-viewer before anything leaves the server.
func GetChatMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var chat models.Chat
	if err := storage.DB.Preload("Booking").First(&chat, chatID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.CanJoinChat(&chat.Booking, claims.ID, claims.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not a participant of this chat")
		return
	}

	var msgs []models.Message
	if err := storage.DB.Where("chat_id = ?", chatID).
		Preload("Sender").
		Order("id ASC").Find(&msgs).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	visible := make([]models.Message, 0, len(msgs))
	for i := range msgs {
		if services.CanSee(&msgs[i], claims.ID, claims.Role) {
			visible = append(visible, msgs[i])
		}
	}

	ctx.JSON(iris.Map{"success": true, "isOpen": chat.IsOpen, "messages": visible})
}

// CreateChatMessage appends a message to an open chat. Capability checks
// run before any database work; the open/closed check shares the
// insert's transaction so a post racing a close cannot land after it.
func CreateChatMessage(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input createMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if reason := validateMessagePayload(&input); reason != "" {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_failed", reason)
		return
	}
	if input.IsPrivate && !services.CanSendPrivate(claims.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "private messages require a staff or admin grant")
		return
	}
	if input.IsQuotation && !services.CanSendQuotation(claims.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "quotations require a staff or admin grant")
		return
	}

	var chat models.Chat
	var msg models.Message
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Booking").First(&chat, chatID).Error; err != nil {
			return err
		}
		if !services.CanJoinChat(&chat.Booking, claims.ID, claims.Role) {
			return errForbidden
		}
		// Self-assigning update: it matches only while the chat is open
		// and holds the row lock until this transaction commits, so a
		// concurrent close either waits for the insert or has already
		// flipped is_open and nothing matches. A plain read would not
		// serialize under READ COMMITTED.
		guard := tx.Model(&models.Chat{}).
			Where("id = ? AND is_open", chat.ID).
			Update("is_open", gorm.Expr("is_open"))
		if guard.Error != nil {
			return guard.Error
		}
		if guard.RowsAffected == 0 {
			return errChatClosed
		}
		msg = models.Message{
			ChatID:          chat.ID,
			SenderID:        claims.ID,
			Content:         strings.TrimSpace(input.Content),
			IsPrivate:       input.IsPrivate,
			IsQuotation:     input.IsQuotation,
			QuotationAmount: input.QuotationAmount,
			AttachmentURL:   input.AttachmentURL,
			AttachmentType:  input.AttachmentType,
		}
		return tx.Create(&msg).Error
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			utils.CreateNotFound(ctx)
		case errors.Is(txErr, errForbidden):
			utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not a participant of this chat")
		case errors.Is(txErr, errChatClosed):
			utils.JSONError(ctx, http.StatusConflict, "chat_closed", "this chat has been closed")
		default:
			ctx.StopWithStatus(http.StatusInternalServerError)
		}
		return
	}

	// preload sender for client display
	storage.DB.Preload("Sender").First(&msg, msg.ID)

	// Payload-free signal; joined sessions refetch the listing. Private
	// messages signal only admin sessions and the sender's own session.
	ws.MainHub.Broadcast(ws.RoomForChat(chat.ID), ws.Event{Type: "message_created", ChatID: chat.ID},
		func(viewerID uint, viewerRole string) bool {
			return services.CanSee(&msg, viewerID, viewerRole)
		})

	senderName := strings.TrimSpace(msg.Sender.FirstName + " " + msg.Sender.LastName)
	go services.NewNotificationService().SendChatMessageNotification(&chat.Booking, &msg, senderName)

	ctx.JSON(iris.Map{"success": true, "message": msg})
}

// CloseChat performs the one-shot open->closed transition. Closing marks
// the work approved; the chat is read-only afterwards.
func CloseChat(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var chat models.Chat
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Booking").First(&chat, chatID).Error; err != nil {
			return err
		}
		if !services.CanCloseChat(&chat.Booking, claims.ID, claims.Role) {
			return errForbidden
		}
		// Conditional update: only the first close matches the open
		// row, so a racing second close reports zero rows and ClosedAt
		// is written exactly once.
		now := time.Now()
		res := tx.Model(&models.Chat{}).Where("id = ? AND is_open", chat.ID).
			Updates(map[string]interface{}{"is_open": false, "closed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errChatClosed
		}
		chat.IsOpen = false
		chat.ClosedAt = &now
		return nil
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			utils.CreateNotFound(ctx)
		case errors.Is(txErr, errForbidden):
			utils.JSONError(ctx, http.StatusForbidden, "forbidden", "closing requires admin or the assigned staff member")
		case errors.Is(txErr, errChatClosed):
			utils.JSONError(ctx, http.StatusConflict, "chat_closed", "chat is already closed")
		default:
			ctx.StopWithStatus(http.StatusInternalServerError)
		}
		return
	}

	utils.Audit(ctx, "chat.close", "chat", chat.ID, nil, iris.Map{"closedAt": chat.ClosedAt})

	ws.MainHub.Broadcast(ws.RoomForChat(chat.ID), ws.Event{Type: "chat_closed", ChatID: chat.ID}, nil)

	ctx.JSON(iris.Map{"success": true, "chat": chat})
}

// Typing indicator: set a short-lived key in Redis for 5 seconds
func Typing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var chat models.Chat
	if err := storage.DB.Preload("Booking").First(&chat, chatID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.CanJoinChat(&chat.Booking, claims.ID, claims.Role) {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	storage.Redis.Set(ctx, typingKey(chatID, claims.ID), "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

// List who is typing by checking the booking participants' Redis keys
func ListTyping(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	chatID, err := ctx.Params().GetUint("chatID")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var chat models.Chat
	if err := storage.DB.Preload("Booking.Customer").Preload("Booking.Staff").First(&chat, chatID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.CanJoinChat(&chat.Booking, claims.ID, claims.Role) {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	participants := []models.User{chat.Booking.Customer}
	if chat.Booking.Staff != nil {
		participants = append(participants, *chat.Booking.Staff)
	}

	typing := []iris.Map{}
	for _, p := range participants {
		if p.ID == claims.ID {
			continue
		}
		if val, err := storage.Redis.Get(ctx, typingKey(chatID, p.ID)).Result(); err == nil && val == "1" {
			typing = append(typing, iris.Map{
				"userID": p.ID,
				"name":   p.FirstName + " " + p.LastName,
			})
		}
	}
	ctx.JSON(iris.Map{"success": true, "typing": typing})
}

func typingKey(chatID uint, userID uint) string {
	return fmt.Sprintf("typing:chat:%d:user:%d", chatID, userID)
}
