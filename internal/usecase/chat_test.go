package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"legendai-gateway/internal/domain"
	"legendai-gateway/internal/integrations/groq"
)

type mockLLM struct {
	answer string
	err    error
	calls  []domain.CompletionRequest
}

func (m *mockLLM) Complete(_ context.Context, in domain.CompletionRequest) (string, error) {
	m.calls = append(m.calls, in)
	return m.answer, m.err
}

func newService(t *testing.T, llm Completer) *ChatService {
	t.Helper()
	svc, err := NewChatService(ChatServiceConfig{LLM: llm, Model: "llama3-8b-8192", APIKeyLoaded: llm != nil})
	require.NoError(t, err)
	return svc
}

func requireCode(t *testing.T, err error, code ErrorCode) *Error {
	t.Helper()
	var ucErr *Error
	require.True(t, errors.As(err, &ucErr), "expected *usecase.Error, got %T", err)
	require.Equal(t, code, ucErr.Code)
	return ucErr
}

func TestNewChatService_RequiresModel(t *testing.T) {
	_, err := NewChatService(ChatServiceConfig{LLM: &mockLLM{}, Model: "  "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestReply_HappyPath(t *testing.T) {
	llm := &mockLLM{answer: "\n  Hi there!  \n"}
	svc := newService(t, llm)

	out, err := svc.Reply(context.Background(), ChatInput{Message: "  Hello  "})
	require.NoError(t, err)
	require.Equal(t, "Hi there!", out.Reply)

	require.Len(t, llm.calls, 1)
	call := llm.calls[0]
	require.Equal(t, "llama3-8b-8192", call.Model)
	require.Equal(t, []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Hello"},
	}, call.Messages)
	require.Equal(t, 0.7, *call.Sampling.Temperature)
	require.Equal(t, 1000, *call.Sampling.MaxTokens)
	require.Equal(t, 0.8, *call.Sampling.TopP)
	require.Equal(t, 0.0, *call.Sampling.FrequencyPenalty)
	require.Equal(t, 0.0, *call.Sampling.PresencePenalty)
}

func TestReply_RejectsBlankMessages(t *testing.T) {
	for _, msg := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run(fmt.Sprintf("%q", msg), func(t *testing.T) {
			llm := &mockLLM{answer: "unused"}
			svc := newService(t, llm)

			_, err := svc.Reply(context.Background(), ChatInput{Message: msg})
			ucErr := requireCode(t, err, ErrorInvalidInput)
			require.Equal(t, ReasonEmptyMessage, ucErr.Reason)
			require.Empty(t, llm.calls)
		})
	}
}

func TestReply_LengthLimit(t *testing.T) {
	llm := &mockLLM{answer: "ok"}
	svc := newService(t, llm)

	_, err := svc.Reply(context.Background(), ChatInput{Message: strings.Repeat("a", MaxMessageLength)})
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), ChatInput{Message: strings.Repeat("a", MaxMessageLength+1)})
	ucErr := requireCode(t, err, ErrorInvalidInput)
	require.Equal(t, ReasonMessageTooLong, ucErr.Reason)
	require.Len(t, llm.calls, 1)
}

func TestReply_LengthCountsCharactersNotBytes(t *testing.T) {
	llm := &mockLLM{answer: "ok"}
	svc := newService(t, llm)

	_, err := svc.Reply(context.Background(), ChatInput{Message: strings.Repeat("é", MaxMessageLength)})
	require.NoError(t, err)
}

func TestReply_SurroundingWhitespaceDoesNotCount(t *testing.T) {
	llm := &mockLLM{answer: "ok"}
	svc := newService(t, llm)

	msg := "   " + strings.Repeat("a", MaxMessageLength) + "   "
	_, err := svc.Reply(context.Background(), ChatInput{Message: msg})
	require.NoError(t, err)
}

func TestReply_DegradedMode(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Reply(context.Background(), ChatInput{Message: "Hello"})
	ucErr := requireCode(t, err, ErrorUnavailable)
	require.Equal(t, ReasonClientNotReady, ucErr.Reason)
}

func TestReply_ValidationBeforeAvailability(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Reply(context.Background(), ChatInput{Message: ""})
	requireCode(t, err, ErrorInvalidInput)
}

func TestReply_MapsUpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{name: "rate limited", err: &groq.APIError{StatusCode: 429, Kind: domain.UpstreamRateLimited, Message: "rate_limit"}, code: ErrorRateLimited},
		{name: "auth", err: &groq.APIError{StatusCode: 401, Kind: domain.UpstreamAuth}, code: ErrorUpstreamAuth},
		{name: "model", err: &groq.APIError{StatusCode: 404, Kind: domain.UpstreamModelUnavailable}, code: ErrorUpstreamModel},
		{name: "other status", err: &groq.APIError{StatusCode: 500, Kind: domain.UpstreamUnknown}, code: ErrorUpstream},
		{name: "wrapped", err: fmt.Errorf("groq: request failed: %w", &groq.APIError{StatusCode: 429, Kind: domain.UpstreamRateLimited}), code: ErrorRateLimited},
		{name: "transport", err: errors.New("dial tcp: connection refused"), code: ErrorUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(t, &mockLLM{err: tc.err})

			_, err := svc.Reply(context.Background(), ChatInput{Message: "Hello"})
			ucErr := requireCode(t, err, tc.code)
			require.Equal(t, tc.err.Error(), ucErr.Cause())
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestProbe(t *testing.T) {
	llm := &mockLLM{answer: " Hello! \n"}
	svc := newService(t, llm)

	out, err := svc.Probe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Hello!", out.Response)
	require.Equal(t, "llama3-8b-8192", out.Model)

	require.Len(t, llm.calls, 1)
	call := llm.calls[0]
	require.Equal(t, []domain.ChatMessage{{Role: "user", Content: probeMessage}}, call.Messages)
	require.Equal(t, 50, *call.Sampling.MaxTokens)
	require.Nil(t, call.Sampling.Temperature)
	require.Nil(t, call.Sampling.TopP)
}

func TestProbe_Errors(t *testing.T) {
	_, err := newService(t, nil).Probe(context.Background())
	requireCode(t, err, ErrorUnavailable)

	_, err = newService(t, &mockLLM{err: errors.New("boom")}).Probe(context.Background())
	requireCode(t, err, ErrorUpstream)
}

func TestStatus_NeverCallsUpstream(t *testing.T) {
	llm := &mockLLM{answer: "unused"}
	svc := newService(t, llm)

	st := svc.Status()
	require.Equal(t, StatusOutput{
		Service:           ServiceName,
		Provider:          ProviderName,
		Model:             "llama3-8b-8192",
		APIKeyLoaded:      true,
		ClientInitialized: true,
	}, st)
	require.Empty(t, llm.calls)
}

func TestStatus_Degraded(t *testing.T) {
	st := newService(t, nil).Status()
	require.False(t, st.APIKeyLoaded)
	require.False(t, st.ClientInitialized)
}

func TestError_Format(t *testing.T) {
	require.Equal(t, "usecase: INVALID_INPUT (empty_message)", newError(ErrorInvalidInput, ReasonEmptyMessage, nil).Error())
	require.Equal(t, "usecase: UPSTREAM_ERROR (groq_error): boom", newError(ErrorUpstream, ReasonUpstreamFailure, errors.New("boom")).Error())
	var nilErr *Error
	require.Equal(t, "", nilErr.Error())
	require.Nil(t, nilErr.Unwrap())
	require.Equal(t, "", nilErr.Cause())
}
