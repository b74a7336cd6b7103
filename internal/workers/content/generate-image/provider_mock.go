// internal/workers/content/generate-image/provider_mock.go
package generateimage

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"
)

// MockProvider renders a flat PNG whose colour is derived from the prompt.
// Used for dry runs and tests; it never leaves the process.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string {
	return ProviderMock
}

func (p *MockProvider) Generate(ctx context.Context, req models.ContentRequest) (*ProviderImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := parseResolution(req.Resolution)

	hash := fnv.New32a()
	_, _ = hash.Write([]byte(req.Prompt))
	sum := hash.Sum32()
	fill := color.RGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.NewGenerationFailedError(p.Name(), err)
	}
	return &ProviderImage{Data: buf.Bytes(), RevisedPrompt: req.Prompt}, nil
}

// parseResolution reads "WxH", falling back to 64x64 for anything else.
func parseResolution(res string) (int, int) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) != 2 {
		return 64, 64
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 64, 64
	}
	return w, h
}
