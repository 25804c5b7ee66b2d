package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/http/middleware"
	"github.com/msaimsawaid/music/internal/services"
	"github.com/msaimsawaid/music/internal/utils"
)

type UserHandler struct {
	users *services.UserService
	auth  *services.AuthService
}

// UpdateProfileRequest is an allow-list: anything else in the body, a
// submitted role in particular, is silently dropped.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func NewUserHandler(users *services.UserService, auth *services.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.users.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"user": profile})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, services.ProfilePatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    gin.H{"user": updated},
	})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusBadRequest, "Please provide current and new password"))
		return
	}

	result, err := h.auth.UpdatePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Password updated successfully",
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"data":       gin.H{"user": result.User},
	})
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.users.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondMessage(c, http.StatusOK, "Your account has been deleted")
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": len(users),
		"data":    gin.H{"users": users},
	})
}

func (h *UserHandler) AdminStats(c *gin.Context) {
	stats, err := h.users.AdminStats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"stats": stats})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	if err := h.users.DeleteUser(c.Request.Context(), admin.ID, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondMessage(c, http.StatusOK, "User deleted successfully")
}
