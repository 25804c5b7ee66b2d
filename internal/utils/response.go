package utils

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// AppError carries an HTTP status alongside the user-facing message. Every
// handler funnels failures through RespondError so the wire shape stays
// uniform.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

var includeStacks bool

// SetIncludeStacks controls whether error responses carry a stack trace.
// Enabled outside prod, set once at startup.
func SetIncludeStacks(enabled bool) {
	includeStacks = enabled
}

func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	if appErr, ok := err.(*AppError); ok {
		status = appErr.Status
		message = appErr.Message
	}

	body := gin.H{
		"success": false,
		"message": message,
	}
	if includeStacks {
		body["stack"] = string(debug.Stack())
	}
	c.JSON(status, body)
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}
