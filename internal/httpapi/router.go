package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"legendai-gateway/internal/usecase"
)

// ChatUseCase is the gateway behaviour the HTTP layer exposes.
type ChatUseCase interface {
	Reply(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Probe(ctx context.Context) (usecase.ProbeOutput, error)
	Status() usecase.StatusOutput
}

type RouterDeps struct {
	Chat ChatUseCase
	// AllowAllOrigins overrides AllowedOrigins with the "*" policy.
	AllowAllOrigins bool
	AllowedOrigins  []string
	StaticDir       string
	Debug           bool
	Logger          *slog.Logger
}

// NewRouter builds the gin engine serving the chat gateway.
func NewRouter(dep RouterDeps) (*gin.Engine, error) {
	if dep.Chat == nil {
		return nil, errors.New("httpapi: chat usecase must not be nil")
	}
	if !dep.AllowAllOrigins && len(dep.AllowedOrigins) == 0 {
		return nil, errors.New("httpapi: allowed origins must not be empty")
	}
	logger := dep.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		requestIDMiddleware(logger),
		gin.CustomRecoveryWithWriter(io.Discard, recoverHandler(logger)),
		corsMiddleware(newOriginPolicy(dep.AllowAllOrigins, dep.AllowedOrigins)),
	)

	chat := newChatHandler(dep.Chat, dep.Debug, logger)
	r.POST("/chat", chat.Chat)
	r.OPTIONS("/chat", chat.Preflight)
	r.GET("/test", chat.Test)

	health := newHealthHandler(dep.Chat)
	r.GET("/health", health.Health)
	r.HEAD("/health", health.Health)

	static := newStaticHandler(dep.StaticDir, health, logger)
	r.GET("/", static.Index)
	r.HEAD("/", static.Index)
	r.NoRoute(static.Serve)
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	return r, nil
}

// originPolicy decides which origins get CORS headers. Requests from other
// origins are still served, just without Access-Control-Allow-* headers.
type originPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

func newOriginPolicy(allowAll bool, origins []string) originPolicy {
	p := originPolicy{allowAll: allowAll, origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		p.origins[strings.ToLower(o)] = struct{}{}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return ok
}

func (p originPolicy) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		ExposeHeaders:             []string{requestIDHeader},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if p.allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOriginFunc = p.allows
	return cfg
}
