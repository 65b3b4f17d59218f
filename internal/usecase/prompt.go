package usecase

import "legendai-gateway/internal/domain"

const (
	systemPrompt = "You are LegendAI, a helpful and friendly AI assistant. " +
		"You are knowledgeable, supportive, and always ready to help users with their questions. " +
		"Keep your responses conversational and engaging."

	probeMessage   = "Hello, this is a test message."
	probeMaxTokens = 50
)

// chatSampling is fixed for every /chat call.
func chatSampling() domain.Sampling {
	temperature, topP := 0.7, 0.8
	maxTokens := 1000
	frequencyPenalty, presencePenalty := 0.0, 0.0
	return domain.Sampling{
		Temperature:      &temperature,
		MaxTokens:        &maxTokens,
		TopP:             &topP,
		FrequencyPenalty: &frequencyPenalty,
		PresencePenalty:  &presencePenalty,
	}
}

func buildChatRequest(model, message string) domain.CompletionRequest {
	return domain.CompletionRequest{
		Model: model,
		Messages: []domain.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		Sampling: chatSampling(),
	}
}

func buildProbeRequest(model string) domain.CompletionRequest {
	maxTokens := probeMaxTokens
	return domain.CompletionRequest{
		Model:    model,
		Messages: []domain.ChatMessage{{Role: "user", Content: probeMessage}},
		Sampling: domain.Sampling{MaxTokens: &maxTokens},
	}
}
