package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado-api/internal/ai"
)

// AIHandler proxya hacia el servicio externo de IA.
type AIHandler struct {
	logger *zap.Logger
	client ai.Client
}

func NewAIHandler(logger *zap.Logger, client ai.Client) *AIHandler {
	return &AIHandler{
		logger: logger,
		client: client,
	}
}

// FashionRecommend maneja POST /api/ai/fashion/recommend.
func (h *AIHandler) FashionRecommend(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Prompt is required")
		return
	}

	recommendation, err := h.client.FashionRecommend(c.Request.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("fashion recommend failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "AI service unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recommendation": recommendation})
}

// SalesForecast maneja POST /api/ai/sales/forecast. El body se reenvía tal
// cual; la respuesta del servicio vuelve sin tocar.
func (h *AIHandler) SalesForecast(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	forecast, err := h.client.SalesForecast(c.Request.Context(), json.RawMessage(body))
	if err != nil {
		h.logger.Error("sales forecast failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "AI service unavailable")
		return
	}
	c.Data(http.StatusOK, "application/json", forecast)
}
