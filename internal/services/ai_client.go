package services

import "context"

// AIClient is the external text generator. The orchestrator invokes it at
// most once per request and never retries; a failed call means the fallback
// verdict.
type AIClient interface {
	GenerateJSONText(ctx context.Context, prompt string) (*AIGeneration, error)
}

type AIGeneration struct {
	Text       string
	Model      string
	TokensUsed int
}
