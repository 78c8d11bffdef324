package routes

import (
	"net/http"

	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"

	"github.com/kataras/iris/v12"
)

type uploadInput struct {
	Data     string `json:"data" validate:"required"` // base64 data URL or raw base64
	Mime     string `json:"mime" validate:"required"` // e.g. image/jpeg, audio/m4a
	PublicID string `json:"public_id"`                // optional
}

// Upload is phase one of attachment sending: hand the raw payload to the
// media store, return {url, mimeType} for the follow-up message. Nothing
// is persisted here, so a failed upload leaves no orphaned state.
func Upload(ctx iris.Context) {
	var in uploadInput
	if err := ctx.ReadJSON(&in); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	url, err := storage.UploadBase64Media(in.Data, in.PublicID, in.Mime)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadGateway, "upload_failed", err.Error())
		return
	}

	ctx.JSON(iris.Map{"url": url, "mimeType": in.Mime})
}
