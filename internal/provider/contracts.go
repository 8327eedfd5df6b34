package provider

import (
	"context"
	"time"

	"github.com/yogeshhk/MiningResume/internal/textextract"
)

// AttributeSpec names one field to extract. Directive optionally points the
// backend at a specific rule term or prompt template; when empty the backend
// resolves by Name.
type AttributeSpec struct {
	Name      string
	Directive string
}

// Request is one extraction attempt against a backend. Value object,
// constructed per attempt.
type Request struct {
	Text         *textextract.NormalizedText
	Attribute    AttributeSpec
	PriorContext string
}

// Usage carries backend-specific accounting for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is the outcome of one extraction call. Never mutated after return.
type Response struct {
	Value   string
	Values  []string // populated for multi-valued attributes
	Found   bool     // false when the backend matched nothing (not an error)
	Latency time.Duration
	Usage   Usage
	Model   string
	Cached  bool
}

// Provider is the pluggable extraction backend. Both variants (rule-based and
// model-based) are interchangeable; callers never branch on which is active.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	HealthCheck(ctx context.Context) bool
}
