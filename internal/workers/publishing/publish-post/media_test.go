// internal/workers/publishing/publish-post/media_test.go
package publishpost

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		postType      models.PostType
		expectedW     int
		expectedH     int
		paddedAt      image.Point // expected white
		contentAt     image.Point // expected source colour
	}{
		{
			name: "wide image on feed canvas", width: 200, height: 100, postType: models.PostTypeFeed,
			expectedW: 1080, expectedH: 1080,
			paddedAt: image.Pt(540, 10), contentAt: image.Pt(540, 540),
		},
		{
			name: "square image on story canvas", width: 100, height: 100, postType: models.PostTypeStory,
			expectedW: 1080, expectedH: 1920,
			paddedAt: image.Pt(540, 20), contentAt: image.Pt(540, 960),
		},
		{
			name: "tall image on feed canvas", width: 50, height: 200, postType: models.PostTypeFeed,
			expectedW: 1080, expectedH: 1080,
			paddedAt: image.Pt(10, 540), contentAt: image.Pt(540, 540),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := pngBytes(t, tt.width, tt.height, color.RGBA{B: 255, A: 255})

			out, err := PrepareImage(src, tt.postType)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(out), MaxMediaBytes)

			img, err := jpeg.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedW, img.Bounds().Dx())
			assert.Equal(t, tt.expectedH, img.Bounds().Dy())

			r, g, b, _ := img.At(tt.paddedAt.X, tt.paddedAt.Y).RGBA()
			assert.Greater(t, r>>8, uint32(240), "padding is white")
			assert.Greater(t, g>>8, uint32(240), "padding is white")
			assert.Greater(t, b>>8, uint32(240), "padding is white")

			r, g, b, _ = img.At(tt.contentAt.X, tt.contentAt.Y).RGBA()
			assert.Less(t, r>>8, uint32(30))
			assert.Less(t, g>>8, uint32(30))
			assert.Greater(t, b>>8, uint32(220))
		})
	}
}

func TestPrepareImage_RejectsGarbage(t *testing.T) {
	_, err := PrepareImage([]byte("not an image"), models.PostTypeFeed)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMediaProcessingFailed, errors.CodeOf(err))
	assert.False(t, errors.IsRetryable(err))
}
