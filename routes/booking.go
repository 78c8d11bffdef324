package routes

import (
	"net/http"

	"github.com/faridreza99/servicemanager-sub001/models"
	"github.com/faridreza99/servicemanager-sub001/services"
	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type createBookingInput struct {
	ServiceName string `json:"serviceName" validate:"required,lt=256"`
	Notes       string `json:"notes" validate:"lt=5000"`
}

// CreateBooking creates the booking together with its support chat in
// one transaction; exactly one chat exists per booking, from birth.
func CreateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input createBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	var chat models.Chat
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		booking = models.Booking{
			CustomerID:  claims.ID,
			ServiceName: input.ServiceName,
			Notes:       input.Notes,
			Status:      "pending",
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		chat = models.Chat{BookingID: booking.ID, IsOpen: true}
		return tx.Create(&chat).Error
	})
	if err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	ctx.JSON(iris.Map{"success": true, "booking": booking, "chat": chat})
}

// GetBooking returns a booking with its chat for participants and admins
func GetBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Chat").Preload("Customer").Preload("Staff").First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.CanJoinChat(&booking, claims.ID, claims.Role) {
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "not a participant of this booking")
		return
	}

	ctx.JSON(iris.Map{"success": true, "booking": booking})
}

type assignStaffInput struct {
	StaffID uint `json:"staffID" validate:"required"`
}

// AssignBookingStaff sets the staff member whose sessions may join the
// booking's chat room and close its chat. Admin only, audited.
func AssignBookingStaff(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input assignStaffInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var staff models.User
	if err := storage.DB.First(&staff, input.StaffID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !services.IsStaff(staff.Role) {
		utils.JSONError(ctx, http.StatusBadRequest, "validation_failed", "assignee must hold a staff role")
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := booking.StaffID
	if err := storage.DB.Model(&booking).Update("staff_id", input.StaffID).Error; err != nil {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	utils.Audit(ctx, "booking.assign_staff", "booking", booking.ID, iris.Map{"staffID": before}, iris.Map{"staffID": input.StaffID})

	ctx.JSON(iris.Map{"success": true, "booking": booking})
}
