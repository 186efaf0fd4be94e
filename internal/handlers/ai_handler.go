package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type AIHandler struct {
	BaseHandler
	service services.AIService
}

func NewAIHandler(service services.AIService, logger utils.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Chat relays one message to the study assistant. Upstream failures come
// back as a 200 with an apology text.
// @Summary Chat with the study assistant
// @Tags ai
// @Accept json
// @Param chat body services.ChatRequest true "Message and optional session id"
// @Success 200 {object} services.ChatResponse
// @Failure 400 {object} ErrorResponse "Message must not be empty"
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req services.ChatRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health(c.Request.Context()))
}
