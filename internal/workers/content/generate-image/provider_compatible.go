// internal/workers/content/generate-image/provider_compatible.go
package generateimage

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"net/http"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"

	goopenai "github.com/sashabaranov/go-openai"
)

// CompatibleProvider talks to any OpenAI-compatible images endpoint.
type CompatibleProvider struct {
	client *goopenai.Client
	model  string
	format string
}

func NewCompatibleProvider(config *Config, httpClient *http.Client) *CompatibleProvider {
	cfg := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	format := goopenai.CreateImageResponseFormatB64JSON
	if config.RequestURL {
		format = goopenai.CreateImageResponseFormatURL
	}
	return &CompatibleProvider{client: goopenai.NewClientWithConfig(cfg), model: config.Model, format: format}
}

func (p *CompatibleProvider) Name() string {
	return ProviderOpenAICompatible
}

func (p *CompatibleProvider) Generate(ctx context.Context, req models.ContentRequest) (*ProviderImage, error) {
	resp, err := p.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.model,
		N:              1,
		Size:           req.Resolution,
		Quality:        req.Quality,
		Style:          req.Vividness,
		ResponseFormat: p.format,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if stderrors.As(err, &apiErr) {
			return nil, classifyStatus(p.Name(), apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		var reqErr *goopenai.RequestError
		if stderrors.As(err, &reqErr) {
			return nil, classifyStatus(p.Name(), reqErr.HTTPStatusCode, "", err)
		}
		return nil, classifyTransport(p.Name(), err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.NewGenerationFailedError(p.Name(), stderrors.New("empty image list"))
	}

	img := resp.Data[0]
	out := &ProviderImage{URL: img.URL, RevisedPrompt: img.RevisedPrompt}
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, errors.NewGenerationFailedError(p.Name(), err)
		}
		out.Data = data
	}
	return out, nil
}
