package domain

// ChatMessage is the provider-agnostic chat message shape used by the usecase
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sampling holds optional generation parameters. Nil fields are left out of
// the upstream request so the provider default applies.
type Sampling struct {
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	Model    string
	Messages []ChatMessage
	Sampling Sampling
}
