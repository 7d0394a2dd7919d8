package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado-api/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
	otpSvc  *service.OTPService
	jwtSvc  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService, otpSvc *service.OTPService, jwtSvc *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
		otpSvc:  otpSvc,
		jwtSvc:  jwtSvc,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "Please provide all fields")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, service.ErrUserExists):
			respondError(c, http.StatusBadRequest, "User with this email already exists")
		default:
			h.logger.Error("register failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	tokens, err := h.jwtSvc.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"data":    user,
		"tokens":  tokens,
	})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	user, err := h.authSvc.Authenticate(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		var banned *service.BannedError
		switch {
		case errors.As(err, &banned):
			body := gin.H{
				"success": false,
				"message": bannedMessage(banned),
				"reason":  banned.Reason,
			}
			if banned.Until != nil {
				body["bannedUntil"] = banned.Until.UTC()
			}
			c.JSON(http.StatusForbidden, body)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, service.ErrRoleMismatch):
			respondError(c, http.StatusForbidden, "User role mismatch")
		default:
			h.logger.Error("login failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	tokens, err := h.jwtSvc.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data":    user,
		"tokens":  tokens,
	})
}

// GenerateToken maneja POST /auth/generate-token. La identidad sale de los
// claims verificados y se reconsulta en la base; los campos del body se
// ignoran.
func (h *AuthHandler) GenerateToken(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}

	user, err := h.authSvc.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("generate token failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}

	tokens, err := h.jwtSvc.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	// El campo token plano lo espera el cliente legado.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   tokens.AccessToken,
		"tokens":  tokens,
	})
}

// GenerateOTP maneja GET /auth/generate-otp. El código nunca viaja en la
// respuesta: se guarda el hash del lado del servidor y se envía por correo.
func (h *AuthHandler) GenerateOTP(c *gin.Context) {
	emailAddr := c.Query("email")
	if emailAddr == "" {
		respondError(c, http.StatusBadRequest, "Email is required")
		return
	}

	err := h.otpSvc.Request(c.Request.Context(), emailAddr)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, service.ErrRateLimited):
			respondError(c, http.StatusTooManyRequests, "Too many OTP requests")
		case errors.Is(err, service.ErrEmailSendFailure):
			respondError(c, http.StatusServiceUnavailable, "Email delivery unavailable")
		default:
			h.logger.Error("generate otp failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusOK, "OTP sent", nil)
}

// VerifyOTP maneja POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	if err := h.otpSvc.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, service.ErrOTPNotRequested), errors.Is(err, service.ErrOTPInvalid):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusOK, "OTP verified", nil)
}

// RefreshToken maneja POST /auth/refresh.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}
	tokens, err := h.jwtSvc.RefreshPair(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}
	_ = h.jwtSvc.RevokeRefresh(req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// Profile maneja GET /auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}
	user, err := h.authSvc.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Server Error")
		return
	}
	respondData(c, http.StatusOK, "", user)
}

// UpdateProfile maneja POST /auth/update-profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}
	var req struct {
		Name           string `json:"name" binding:"required"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.UserID, req.Name, req.ProfilePicture)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(c, http.StatusBadRequest, "Please provide all fields")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("update profile failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Server Error")
		}
		return
	}
	respondData(c, http.StatusOK, "Profile updated successfully", user)
}

func bannedMessage(b *service.BannedError) string {
	if b.Until == nil {
		return "Account banned permanently"
	}
	return "Account banned until " + b.Until.UTC().Format(time.RFC3339)
}
