package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/pkg/apperrors"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// Fail maps a service error onto the envelope. The HTTP status comes from the
// error taxonomy, the numeric code stays per call site like every handler here.
func Fail(ctx *gin.Context, err error, code int) {
	Respond(ctx, apperrors.HTTPStatus(err), code, err.Error(), nil)
}
