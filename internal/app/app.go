// Package app wires configuration, the Groq client, the chat service and the
// HTTP router together. Both the HTTP server and the Lambda entrypoint start
// from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-gonic/gin"

	"legendai-gateway/internal/config"
	"legendai-gateway/internal/httpapi"
	"legendai-gateway/internal/integrations/groq"
	"legendai-gateway/internal/integrations/paramstore"
	"legendai-gateway/internal/usecase"
)

// NewLogger returns a JSON logger, or a text logger at debug level when debug
// is set.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Options carries the optional collaborators of Build.
type Options struct {
	Logger *slog.Logger
	// FetchSecret resolves GROQ_API_KEY_PARAM. Defaults to SSM Parameter Store.
	FetchSecret config.SecretFetcher
}

// Build resolves the API key and returns the ready-to-serve router. A missing
// key is an error unless cfg.App.AllowMissingAPIKey is set, in which case the
// gateway starts without an upstream client.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fetch := opts.FetchSecret
	if fetch == nil {
		fetch = SSMSecretFetcher
	}

	if err := cfg.ResolveAPIKey(ctx, fetch); err != nil {
		if !cfg.App.AllowMissingAPIKey {
			return nil, err
		}
		logger.Warn("starting without Groq client", "err", err)
	}

	var llm usecase.Completer
	if cfg.Groq.APIKey != "" {
		client, err := newGroqClient(cfg.Groq)
		if err != nil {
			return nil, fmt.Errorf("app: create groq client: %w", err)
		}
		llm = client
		logger.Info("groq client initialized", "model", cfg.Groq.Model)
	}

	svc, err := usecase.NewChatService(usecase.ChatServiceConfig{
		LLM:          llm,
		Model:        cfg.Groq.Model,
		APIKeyLoaded: cfg.Groq.APIKey != "",
	})
	if err != nil {
		return nil, fmt.Errorf("app: create chat service: %w", err)
	}

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := httpapi.NewRouter(httpapi.RouterDeps{
		Chat:            svc,
		AllowAllOrigins: cfg.AllowAllOrigins(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		StaticDir:       cfg.Server.StaticDir,
		Debug:           cfg.App.Debug,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create router: %w", err)
	}
	return r, nil
}

func newGroqClient(cfg config.GroqConfig) (*groq.Client, error) {
	opts := []groq.Option{groq.WithTimeout(cfg.Timeout)}
	if cfg.BaseURL != "" {
		opts = append(opts, groq.WithBaseURL(cfg.BaseURL))
	}
	return groq.NewClient(cfg.APIKey, opts...)
}

// SSMSecretFetcher reads a secret from SSM Parameter Store using the default
// AWS credential chain.
func SSMSecretFetcher(ctx context.Context, name string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("app: load AWS config: %w", err)
	}
	store, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return "", err
	}
	return paramstore.Secret(ctx, store, name)
}
