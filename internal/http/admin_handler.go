package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado-api/internal/service"
)

// AdminHandler mantiene dependencias para las operaciones de moderación.
type AdminHandler struct {
	logger *zap.Logger
	modSvc *service.ModerationService
}

func NewAdminHandler(logger *zap.Logger, modSvc *service.ModerationService) *AdminHandler {
	return &AdminHandler{
		logger: logger,
		modSvc: modSvc,
	}
}

// ListUsers maneja GET /auth/users. El hash de password nunca se serializa.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.modSvc.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	respondData(c, http.StatusOK, "", users)
}

// BanUser maneja POST /auth/ban-user.
func (h *AdminHandler) BanUser(c *gin.Context) {
	var req struct {
		UserID          string `json:"userId" binding:"required"`
		Reason          string `json:"reason"`
		BanDurationDays int    `json:"banDuration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "User ID is required")
		return
	}

	ban, err := h.modSvc.Ban(c.Request.Context(), service.BanInput{
		UserID:          req.UserID,
		Reason:          req.Reason,
		BanDurationDays: req.BanDurationDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "User ID is required")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAlreadyBanned):
			respondError(c, http.StatusBadRequest, "User is already banned")
		default:
			h.logger.Error("ban user failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusOK, "User banned successfully", ban)
}

// UnbanUser maneja POST /auth/unban-user.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "User ID is required")
		return
	}

	if err := h.modSvc.Unban(c.Request.Context(), req.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "User ID is required")
		case errors.Is(err, service.ErrNotBanned):
			respondError(c, http.StatusNotFound, "User is not banned")
		default:
			h.logger.Error("unban user failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusOK, "User unbanned successfully", nil)
}

// BannedUsers maneja GET /auth/banned-users.
func (h *AdminHandler) BannedUsers(c *gin.Context) {
	bans, err := h.modSvc.ListBans(c.Request.Context())
	if err != nil {
		h.logger.Error("list banned users failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	respondData(c, http.StatusOK, "", bans)
}

// CreateAdmin maneja POST /auth/create-admin. El gate admin lo aplica el
// middleware sobre el claim de rol verificado.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	user, err := h.modSvc.CreateAdmin(c.Request.Context(), service.CreateAdminInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "Please provide all fields")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, service.ErrUserExists):
			respondError(c, http.StatusBadRequest, "Admin with this email already exists")
		default:
			h.logger.Error("create admin failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusCreated, "Admin created successfully", user)
}
