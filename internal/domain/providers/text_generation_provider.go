package providers

import "context"

// TextGenerationProvider is the contract for the external LLM collaborator.
// Implementations are expected to return an error on network or auth failure;
// callers treat any error as "the collaborator is unavailable" and fall back
// to deterministic behavior.
type TextGenerationProvider interface {
	// Generate produces a completion for the given system and user prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}
