// internal/workers/publishing/publish-post/media.go
package publishpost

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// TargetSize returns the canvas for a post type.
func TargetSize(postType models.PostType) (int, int) {
	if postType == models.PostTypeStory {
		return StoryWidth, StoryHeight
	}
	return FeedWidth, FeedHeight
}

// PrepareImage fits the image inside the post type's canvas keeping its
// aspect ratio, centres it on white and encodes it as JPEG.
func PrepareImage(data []byte, postType models.PostType) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewMediaProcessingFailedError(fmt.Errorf("decode image: %w", err))
	}

	tw, th := TargetSize(postType)
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	if sw == 0 || sh == 0 {
		return nil, errors.NewMediaProcessingFailedError(fmt.Errorf("image has no pixels"))
	}

	var nw, nh int
	if float64(sw)/float64(sh) > float64(tw)/float64(th) {
		nw = tw
		nh = int(float64(tw) * float64(sh) / float64(sw))
	} else {
		nh = th
		nw = int(float64(th) * float64(sw) / float64(sh))
	}

	canvas := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x0 := (tw - nw) / 2
	y0 := (th - nh) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(x0, y0, x0+nw, y0+nh), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, errors.NewMediaProcessingFailedError(fmt.Errorf("encode jpeg: %w", err))
	}
	if buf.Len() > MaxMediaBytes {
		return nil, errors.NewMediaProcessingFailedError(fmt.Errorf("prepared image is %d bytes, limit is %d", buf.Len(), MaxMediaBytes))
	}
	return buf.Bytes(), nil
}
