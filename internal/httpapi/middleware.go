package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// requestIDMiddleware reuses the caller's X-Request-Id or assigns one, echoes
// it back and writes one access log line per request.
func requestIDMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Writer.Header().Set(requestIDHeader, rid)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// RequestID extracts the request ID from a request context.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

func recoverHandler(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("internal server error",
			"request_id", RequestID(c.Request.Context()),
			"panic", recovered,
		)
		writeError(c, http.StatusInternalServerError, "Internal server error", "")
	}
}

var preflightBody = []byte(`{"status":"ok"}`)

// corsMiddleware applies the CORS policy to allowed origins. The cors package
// answers their preflight requests itself and aborts the chain with an empty
// body, so the JSON body clients expect is written here. Other origins fall
// through to the routes without CORS headers and the browser enforces the
// policy.
func corsMiddleware(policy originPolicy) gin.HandlerFunc {
	apply := cors.New(policy.corsConfig())
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !policy.allows(origin) {
			c.Next()
			return
		}
		c.Header("Content-Type", "application/json; charset=utf-8")
		apply(c)
		if !c.IsAborted() {
			c.Writer.Header().Del("Content-Type")
			return
		}
		if c.Writer.Size() <= 0 && c.Writer.Status() == http.StatusOK {
			_, _ = c.Writer.Write(preflightBody)
		}
	}
}
