package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/utils"
)

type AuthHandler struct {
	auth *services.AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sendToken(c, http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "Please provide email and password"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sendToken(c, http.StatusOK, result)
}

// sendToken writes the auth envelope: token at the top level, sanitized
// user under data.
func sendToken(c *gin.Context, status int, result *services.AuthResult) {
	c.JSON(status, gin.H{
		"success":    true,
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"data":       gin.H{"user": result.User},
	})
}
