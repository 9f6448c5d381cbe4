package export

import (
	"context"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"dayreel/internal/composition"
	"dayreel/internal/logging"
	"dayreel/internal/timeline"
)

const posterJPEGQuality = 85

// writePoster extracts a representative frame from the finished clip and
// saves it next to the video. Poster failures never fail the export.
func (e *Exporter) writePoster(ctx context.Context, videoPath string, plan *composition.Plan, day timeline.Day) string {
	at := math.Min(1.0, plan.TotalDuration/2)
	frame, err := e.source.ExtractFrame(ctx, videoPath, at, 0)
	if err != nil {
		e.logger.Warn("poster frame extraction failed",
			logging.String(logging.FieldDay, string(day)),
			logging.Error(err))
		return ""
	}

	width := int(math.Round(plan.RenderSize.Width))
	height := int(math.Round(plan.RenderSize.Height))
	if width <= 0 || height <= 0 {
		width, height = e.cfg.Render.Width, e.cfg.Render.Height
	}
	poster := coverScale(frame, width, height)

	posterPath := filepath.Join(e.cfg.Paths.LibraryDir, string(day)+".jpg")
	file, err := os.Create(posterPath)
	if err != nil {
		e.logger.Warn("poster write failed",
			logging.String(logging.FieldDay, string(day)),
			logging.Error(err))
		return ""
	}
	defer file.Close()

	if err := jpeg.Encode(file, poster, &jpeg.Options{Quality: posterJPEGQuality}); err != nil {
		e.logger.Warn("poster encode failed",
			logging.String(logging.FieldDay, string(day)),
			logging.Error(err))
		os.Remove(posterPath)
		return ""
	}
	return posterPath
}

// coverScale resamples src to fill exactly width by height, cropping the
// overflowing dimension around the center.
func coverScale(src image.Image, width, height int) image.Image {
	bounds := src.Bounds()
	srcW := float64(bounds.Dx())
	srcH := float64(bounds.Dy())
	if srcW <= 0 || srcH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	scale := math.Max(float64(width)/srcW, float64(height)/srcH)
	cropW := int(math.Round(float64(width) / scale))
	cropH := int(math.Round(float64(height) / scale))
	if cropW > bounds.Dx() {
		cropW = bounds.Dx()
	}
	if cropH > bounds.Dy() {
		cropH = bounds.Dy()
	}
	x0 := bounds.Min.X + (bounds.Dx()-cropW)/2
	y0 := bounds.Min.Y + (bounds.Dy()-cropH)/2
	cropRect := image.Rect(x0, y0, x0+cropW, y0+cropH)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect, draw.Over, nil)
	return dst
}
