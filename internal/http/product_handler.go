package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mercado-api/internal/catalog"
)

// ProductHandler mantiene dependencias para el catálogo de productos.
type ProductHandler struct {
	logger   *zap.Logger
	products catalog.Repository
}

func NewProductHandler(logger *zap.Logger, products catalog.Repository) *ProductHandler {
	return &ProductHandler{
		logger:   logger,
		products: products,
	}
}

// Create maneja POST /api/products. El vendedor sale de los claims
// verificados y queda denormalizado en la publicación.
func (h *ProductHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}

	var req struct {
		Name             string  `json:"name" binding:"required"`
		Category         string  `json:"category" binding:"required"`
		ShortDescription string  `json:"shortDescription" binding:"required"`
		Description      string  `json:"description" binding:"required"`
		Price            float64 `json:"price" binding:"required,gt=0"`
		Count            int     `json:"count" binding:"required,gte=0"`
		Image            []byte  `json:"image"`
		ImageType        string  `json:"imageType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please provide all fields")
		return
	}

	product := catalog.Product{
		Name:             req.Name,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Price:            req.Price,
		Count:            req.Count,
		SellersName:      claims.Name,
		SellersEmail:     claims.Email,
		Image:            req.Image,
		ImageType:        req.ImageType,
	}
	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		h.logger.Error("create product failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// List maneja GET /api/products con filtros opcionales por query.
func (h *ProductHandler) List(c *gin.Context) {
	filter := catalog.Filter{
		Category:     c.Query("category"),
		Name:         c.Query("name"),
		SellersEmail: c.Query("seller"),
	}
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid rating filter")
			return
		}
		filter.MinRating = rating
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetByID maneja GET /api/products/:id.
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("get product failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// Update maneja PUT /api/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req struct {
		Name             string  `json:"name"`
		Category         string  `json:"category"`
		ShortDescription string  `json:"shortDescription"`
		Description      string  `json:"description"`
		Price            float64 `json:"price"`
		Count            int     `json:"count"`
		Rating           float64 `json:"rating"`
		Image            []byte  `json:"image"`
		ImageType        string  `json:"imageType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := catalog.Product{
		ID:               id,
		Name:             req.Name,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Price:            req.Price,
		Count:            req.Count,
		Rating:           req.Rating,
		Image:            req.Image,
		ImageType:        req.ImageType,
	}
	if err := h.products.Update(c.Request.Context(), &product); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("update product failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, "Product updated successfully", nil)
}

// Delete maneja DELETE /api/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("delete product failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, "Product deleted successfully", nil)
}
