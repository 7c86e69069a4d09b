package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutricare/internal/domain"
	"nutricare/internal/service"
)

// CatalogHandler mantiene dependencias para el catalogo de enfermedades
// y comidas.
type CatalogHandler struct {
	logger      *zap.Logger
	catalogServ *service.CatalogService
}

func NewCatalogHandler(logger *zap.Logger, catalogServ *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		logger:      logger,
		catalogServ: catalogServ,
	}
}

// ListDiseases maneja GET /diseases.
func (h *CatalogHandler) ListDiseases(c *gin.Context) {
	diseases, err := h.catalogServ.ListDiseases(c.Request.Context())
	if err != nil {
		h.logger.Error("list diseases failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list diseases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"diseases": diseases})
}

// GetDisease maneja GET /diseases/:id.
func (h *CatalogHandler) GetDisease(c *gin.Context) {
	disease, err := h.catalogServ.GetDisease(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDiseaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		}
		h.logger.Error("get disease failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load disease"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"disease": disease})
}

// ListMeals maneja GET /diseases/:id/meals?category=.
func (h *CatalogHandler) ListMeals(c *gin.Context) {
	meals, err := h.catalogServ.ListMeals(c.Request.Context(), c.Param("id"), c.Query("category"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiseaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		case errors.Is(err, service.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("list meals failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list meals"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

type diseaseRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	DidYouKnow  []string `json:"did_you_know"`
}

// CreateDisease maneja POST /admin/diseases.
func (h *CatalogHandler) CreateDisease(c *gin.Context) {
	var req diseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid disease request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	disease, err := h.catalogServ.CreateDisease(c.Request.Context(), service.DiseaseInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		DidYouKnow:  req.DidYouKnow,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create disease failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create disease"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"disease": disease})
}

// UpdateDisease maneja PUT /admin/diseases/:id.
func (h *CatalogHandler) UpdateDisease(c *gin.Context) {
	var req diseaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid disease request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	disease, err := h.catalogServ.UpdateDisease(c.Request.Context(), c.Param("id"), service.DiseaseInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		DidYouKnow:  req.DidYouKnow,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiseaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		case errors.Is(err, service.ErrEmptyName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("update disease failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update disease"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"disease": disease})
}

// DeleteDisease maneja DELETE /admin/diseases/:id.
func (h *CatalogHandler) DeleteDisease(c *gin.Context) {
	if err := h.catalogServ.DeleteDisease(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrDiseaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "disease not found"})
			return
		}
		h.logger.Error("delete disease failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete disease"})
		return
	}

	c.Status(http.StatusNoContent)
}

type mealRequest struct {
	DiseaseID        string           `json:"disease_id" binding:"required"`
	Category         string           `json:"category" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	Image            string           `json:"image"`
	PreparationSteps []string         `json:"preparation_steps"`
	Nutrients        domain.Nutrients `json:"nutrients"`
	Benefits         []string         `json:"benefits"`
}

func (r mealRequest) toInput() service.MealInput {
	return service.MealInput{
		DiseaseID:        r.DiseaseID,
		Category:         r.Category,
		Name:             r.Name,
		Description:      r.Description,
		Image:            r.Image,
		PreparationSteps: r.PreparationSteps,
		Nutrients:        r.Nutrients,
		Benefits:         r.Benefits,
	}
}

// CreateMeal maneja POST /admin/meals.
func (h *CatalogHandler) CreateMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid meal request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	meal, err := h.catalogServ.CreateMeal(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondMealError(c, err, "create meal failed", "could not create meal")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// UpdateMeal maneja PUT /admin/meals/:id.
func (h *CatalogHandler) UpdateMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid meal request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	meal, err := h.catalogServ.UpdateMeal(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		h.respondMealError(c, err, "update meal failed", "could not update meal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// DeleteMeal maneja DELETE /admin/meals/:id.
func (h *CatalogHandler) DeleteMeal(c *gin.Context) {
	if err := h.catalogServ.DeleteMeal(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		h.logger.Error("delete meal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete meal"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) respondMealError(c *gin.Context, err error, logMsg, clientMsg string) {
	switch {
	case errors.Is(err, service.ErrDiseaseNotFound), errors.Is(err, service.ErrMealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCategory), errors.Is(err, service.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": clientMsg})
	}
}
