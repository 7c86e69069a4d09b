package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"nutricare/internal/domain"
	"nutricare/internal/repository"
	"nutricare/internal/service"
)

// UserHandler mantiene dependencias para endpoints del usuario en sesion.
type UserHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	settings repository.SettingsRepository
}

func NewUserHandler(logger *zap.Logger, authServ *service.AuthService, settings repository.SettingsRepository) *UserHandler {
	return &UserHandler{
		logger:   logger,
		authServ: authServ,
		settings: settings,
	}
}

// Me maneja GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.authServ.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe maneja PATCH /users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Phone        *string `json:"phone"`
		ProfileImage *string `json:"profile_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authServ.UpdateProfile(c.Request.Context(), claims.UserID, service.ProfileUpdate{
		Name:         req.Name,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequestPasswordChange maneja POST /users/me/password/request.
func (h *UserHandler) RequestPasswordChange(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.authServ.RequestPasswordChange(c.Request.Context(), claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
			return
		default:
			h.logger.Error("request password change failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not request otp"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// ChangePassword maneja POST /users/me/password. Al completar, todas las
// sesiones del usuario quedan revocadas y debe volver a loguearse.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Code            string `json:"code" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authServ.ChangePassword(c.Request.Context(), claims.UserID, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPNotRequested),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrOTPInvalid),
			errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			h.logger.Error("change password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not change password"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

// GetSettings maneja GET /users/me/settings. Sin fila persistida se
// devuelven los defaults, el cliente rehidrata desde ahi.
func (h *UserHandler) GetSettings(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusOK, gin.H{"settings": domain.DefaultSettings()})
			return
		}
		h.logger.Error("get settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings maneja PUT /users/me/settings con merge parcial.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		DarkMode      *bool `json:"dark_mode"`
		Notifications *struct {
			Enabled          *bool   `json:"enabled"`
			MedicineReminder *bool   `json:"medicine_reminder"`
			Time             *string `json:"time"`
		} `json:"notifications"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid settings request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("get settings failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settings"})
			return
		}
		settings = domain.DefaultSettings()
	}

	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	if req.Notifications != nil {
		if req.Notifications.Enabled != nil {
			settings.Notifications.Enabled = *req.Notifications.Enabled
		}
		if req.Notifications.MedicineReminder != nil {
			settings.Notifications.MedicineReminder = *req.Notifications.MedicineReminder
		}
		if req.Notifications.Time != nil {
			settings.Notifications.Time = *req.Notifications.Time
		}
	}

	if err := h.settings.Upsert(c.Request.Context(), claims.UserID, settings); err != nil {
		h.logger.Error("save settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
