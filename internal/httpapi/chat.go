package httpapi

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legendai-gateway/internal/usecase"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

type probeResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	TestResponse string `json:"test_response,omitempty"`
	Model        string `json:"model,omitempty"`
	Error        string `json:"error,omitempty"`
}

type chatHandler struct {
	chat   ChatUseCase
	debug  bool
	logger *slog.Logger
}

func newChatHandler(chat ChatUseCase, debug bool, logger *slog.Logger) *chatHandler {
	return &chatHandler{chat: chat, debug: debug, logger: logger}
}

func (h *chatHandler) Chat(c *gin.Context) {
	rid := RequestID(c.Request.Context())

	if !isJSON(c.GetHeader("Content-Type")) {
		h.logger.Warn("non-JSON request received", "request_id", rid)
		writeError(c, http.StatusBadRequest, "Request must be JSON", "")
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid JSON body", "request_id", rid, "err", err)
		writeError(c, http.StatusBadRequest, "Request must be JSON", "")
		return
	}

	out, err := h.chat.Reply(c.Request.Context(), usecase.ChatInput{Message: req.Message})
	if err != nil {
		h.logError("chat request failed", rid, err)
		writeUseCaseError(c, err, h.debug)
		return
	}

	h.logger.Info("generated reply", "request_id", rid, "reply_len", len(out.Reply))
	c.JSON(http.StatusOK, chatResponse{Reply: out.Reply, Status: "success"})
}

// Preflight answers OPTIONS /chat without looking at the body.
func (h *chatHandler) Preflight(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Test checks upstream connectivity with a fixed message.
func (h *chatHandler) Test(c *gin.Context) {
	out, err := h.chat.Probe(c.Request.Context())
	if err != nil {
		h.logError("groq connection test failed", RequestID(c.Request.Context()), err)
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorUnavailable {
			c.JSON(http.StatusInternalServerError, probeResponse{
				Status:  "error",
				Message: "Groq client not initialized",
				Error:   "Client initialization failed",
			})
			return
		}
		cause := err.Error()
		if ucErr != nil && ucErr.Cause() != "" {
			cause = ucErr.Cause()
		}
		c.JSON(http.StatusInternalServerError, probeResponse{
			Status:  "error",
			Message: "Groq connection failed",
			Error:   cause,
		})
		return
	}

	c.JSON(http.StatusOK, probeResponse{
		Status:       "success",
		Message:      "Groq connection working",
		TestResponse: out.Response,
		Model:        out.Model,
	})
}

func (h *chatHandler) logError(msg, rid string, err error) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		h.logger.Warn(msg, "request_id", rid, "reason", ucErr.Reason)
		return
	}
	h.logger.Error(msg, "request_id", rid, "err", err)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
