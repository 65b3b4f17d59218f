package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	Service           string `json:"service"`
	Provider          string `json:"provider"`
	Model             string `json:"model"`
	APIKeyLoaded      bool   `json:"api_key_loaded"`
	ClientInitialized bool   `json:"client_initialized"`
}

type healthHandler struct {
	chat ChatUseCase
}

func newHealthHandler(chat ChatUseCase) *healthHandler {
	return &healthHandler{chat: chat}
}

// Health reports static service state and never calls upstream.
func (h *healthHandler) Health(c *gin.Context) {
	st := h.chat.Status()
	c.JSON(http.StatusOK, HealthResponse{
		Status:            "healthy",
		Message:           "AI Chatbot API is running",
		Service:           st.Service,
		Provider:          st.Provider,
		Model:             st.Model,
		APIKeyLoaded:      st.APIKeyLoaded,
		ClientInitialized: st.ClientInitialized,
	})
}
