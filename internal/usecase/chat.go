package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"legendai-gateway/internal/domain"
)

const (
	MaxMessageLength = 2000

	ServiceName  = "LegendAI"
	ProviderName = "Groq"
)

type Completer interface {
	Complete(ctx context.Context, in domain.CompletionRequest) (string, error)
}

type upstreamKinder interface {
	UpstreamKind() domain.UpstreamKind
}

// ChatService relays single chat messages to the completion API. It is built
// once at startup and never mutated afterwards. A nil LLM puts the service in
// degraded mode: chat and probe calls fail with ErrorUnavailable while Status
// keeps answering.
type ChatService struct {
	llm          Completer
	model        string
	apiKeyLoaded bool
}

type ChatServiceConfig struct {
	LLM          Completer
	Model        string
	APIKeyLoaded bool
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Reply string
}

type ProbeOutput struct {
	Response string
	Model    string
}

type StatusOutput struct {
	Service           string
	Provider          string
	Model             string
	APIKeyLoaded      bool
	ClientInitialized bool
}

func NewChatService(cfg ChatServiceConfig) (*ChatService, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("usecase: model must not be empty")
	}
	return &ChatService{
		llm:          cfg.LLM,
		model:        model,
		apiKeyLoaded: cfg.APIKeyLoaded,
	}, nil
}

// Reply validates the message and makes exactly one upstream call for it.
func (s *ChatService) Reply(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, ReasonEmptyMessage, nil)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return ChatOutput{}, newError(ErrorInvalidInput, ReasonMessageTooLong, nil)
	}
	if s.llm == nil {
		return ChatOutput{}, newError(ErrorUnavailable, ReasonClientNotReady, nil)
	}

	raw, err := s.llm.Complete(ctx, buildChatRequest(s.model, message))
	if err != nil {
		return ChatOutput{}, upstreamError(err)
	}
	return ChatOutput{Reply: strings.TrimSpace(raw)}, nil
}

// Probe sends the fixed connectivity message upstream.
func (s *ChatService) Probe(ctx context.Context) (ProbeOutput, error) {
	if s.llm == nil {
		return ProbeOutput{}, newError(ErrorUnavailable, ReasonClientNotReady, nil)
	}
	raw, err := s.llm.Complete(ctx, buildProbeRequest(s.model))
	if err != nil {
		return ProbeOutput{}, upstreamError(err)
	}
	return ProbeOutput{Response: strings.TrimSpace(raw), Model: s.model}, nil
}

// Status reports static service state. It never calls upstream.
func (s *ChatService) Status() StatusOutput {
	return StatusOutput{
		Service:           ServiceName,
		Provider:          ProviderName,
		Model:             s.model,
		APIKeyLoaded:      s.apiKeyLoaded,
		ClientInitialized: s.llm != nil,
	}
}

func upstreamError(err error) *Error {
	switch upstreamKind(err) {
	case domain.UpstreamRateLimited:
		return newError(ErrorRateLimited, "groq_rate_limited", err)
	case domain.UpstreamAuth:
		return newError(ErrorUpstreamAuth, "groq_auth_error", err)
	case domain.UpstreamModelUnavailable:
		return newError(ErrorUpstreamModel, "groq_model_unavailable", err)
	default:
		return newError(ErrorUpstream, ReasonUpstreamFailure, err)
	}
}

func upstreamKind(err error) domain.UpstreamKind {
	var k upstreamKinder
	if !errors.As(err, &k) {
		return domain.UpstreamUnknown
	}
	return k.UpstreamKind()
}
