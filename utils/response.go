package utils

import (
	"github.com/kataras/iris/v12"
)

// JSONError writes the error taxonomy shape shared by every handler:
// a stable machine code plus a human message.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
