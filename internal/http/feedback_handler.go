package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutricare/internal/domain"
	"nutricare/internal/service"
)

// FeedbackHandler mantiene dependencias para feedback, FAQs y stats.
type FeedbackHandler struct {
	logger       *zap.Logger
	feedbackServ *service.FeedbackService
}

func NewFeedbackHandler(logger *zap.Logger, feedbackServ *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		logger:       logger,
		feedbackServ: feedbackServ,
	}
}

// Create maneja POST /feedback.
func (h *FeedbackHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user := domain.User{ID: claims.UserID, Name: claims.Name}
	fb, err := h.feedbackServ.Create(c.Request.Context(), user, req.Rating, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) || errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create feedback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": fb})
}

// ListMine maneja GET /feedback.
func (h *FeedbackHandler) ListMine(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	feedbacks, err := h.feedbackServ.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list feedback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedbacks})
}

// ListAll maneja GET /admin/feedback.
func (h *FeedbackHandler) ListAll(c *gin.Context) {
	feedbacks, err := h.feedbackServ.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list all feedback failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedbacks})
}

// Reply maneja POST /admin/feedback/:id/reply.
func (h *FeedbackHandler) Reply(c *gin.Context) {
	var req struct {
		Reply string `json:"reply" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reply request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	fb, err := h.feedbackServ.Reply(c.Request.Context(), c.Param("id"), req.Reply)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeedbackNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		case errors.Is(err, service.ErrFeedbackReplied):
			c.JSON(http.StatusConflict, gin.H{"error": "feedback already replied"})
			return
		case errors.Is(err, service.ErrEmptyReply):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("reply feedback failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reply"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"feedback": fb})
}

// ListFAQs maneja GET /faqs.
func (h *FeedbackHandler) ListFAQs(c *gin.Context) {
	faqs, err := h.feedbackServ.ListFAQs(c.Request.Context())
	if err != nil {
		h.logger.Error("list faqs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list faqs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

// Stats maneja GET /admin/stats.
func (h *FeedbackHandler) Stats(c *gin.Context) {
	stats, err := h.feedbackServ.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
