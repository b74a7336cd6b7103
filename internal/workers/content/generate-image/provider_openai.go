// internal/workers/content/generate-image/provider_openai.go
package generateimage

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"net/http"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider generates images with the official OpenAI SDK.
type OpenAIProvider struct {
	client openai.Client
	model  string
	format openai.ImageGenerateParamsResponseFormat
}

func NewOpenAIProvider(config *Config, httpClient *http.Client) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// retries are owned by the retry policy
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	format := openai.ImageGenerateParamsResponseFormatB64JSON
	if config.RequestURL {
		format = openai.ImageGenerateParamsResponseFormatURL
	}
	return &OpenAIProvider{client: openai.NewClient(opts...), model: config.Model, format: format}
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) Generate(ctx context.Context, req models.ContentRequest) (*ProviderImage, error) {
	params := openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(p.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(req.Resolution),
		ResponseFormat: p.format,
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(req.Quality)
	}
	if req.Vividness != "" {
		params.Style = openai.ImageGenerateParamsStyle(req.Vividness)
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if stderrors.As(err, &apiErr) {
			return nil, classifyStatus(p.Name(), apiErr.StatusCode, apiErr.Message, err)
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
