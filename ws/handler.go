package ws

import (
	"net/http"

	"github.com/faridreza99/servicemanager-sub001/models"
	"github.com/faridreza99/servicemanager-sub001/services"
	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, restrict to configured origins.
		return true
	},
}

// ServeChat upgrades an authorized session into a booking chat room.
// Admission mirrors the REST rule: the booking's customer, the assigned
// staff member, or an admin. Everyone else is refused before upgrade.
func ServeChat(h *Hub, ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	chatID, err := ctx.URLParamInt("chat_id")
	if err != nil || chatID <= 0 {
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

	conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		return
	}
	c := newClient(h, RoomForChat(chat.ID), conn, claims.ID, claims.Role)
	h.Join(c.room, c)
	go c.writePump()
	go c.readPump()
}

// ServeInbox subscribes a staff session to its personal inbox room for
// internal messaging events. The room key is the actor's own id, so the
// token is the only admission check needed.
func ServeInbox(h *Hub, ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	if !services.IsStaff(claims.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "staff access required")
		return
	}

	conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		return
	}
	c := newClient(h, InboxRoom(claims.ID), conn, claims.ID, claims.Role)
	h.Join(c.room, c)
	go c.writePump()
	go c.readPump()
}
