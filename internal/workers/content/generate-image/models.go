// internal/workers/content/generate-image/models.go
package generateimage

import (
	"context"

	"ai-post-scheduler/internal/models"
)

// Providers
const (
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderMock             = "mock"

	DefaultModel = "dall-e-3"
)

// Provider is one image-generation backend. Implementations return
// StandardErrors already classified as transient or rejected.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req models.ContentRequest) (*ProviderImage, error)
}

// ProviderImage is the raw provider answer: inline bytes, a URL, or both.
type ProviderImage struct {
	Data          []byte
	URL           string
	RevisedPrompt string
}
