package domain

// UpstreamKind classifies a completion API failure.
type UpstreamKind string

const (
	UpstreamUnknown          UpstreamKind = "unknown"
	UpstreamRateLimited      UpstreamKind = "rate_limited"
	UpstreamAuth             UpstreamKind = "auth"
	UpstreamModelUnavailable UpstreamKind = "model_unavailable"
)
