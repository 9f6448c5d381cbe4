package mediasource

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os/exec"
	"strings"

	"github.com/nfnt/resize"

	"dayreel/internal/services"
)

// ExtractFrame decodes one frame at the given time by piping a PNG out of
// ffmpeg, then downscales it to the requested height.
func (s *FFSource) ExtractFrame(ctx context.Context, ref string, atSeconds float64, height int) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, services.Wrap(services.ErrImageLoad, "mediasource", "extract frame", "empty source reference", nil)
	}
	if atSeconds < 0 {
		atSeconds = 0
	}

	binary := strings.TrimSpace(s.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}

	args := []string{
		"-v", "error",
		"-ss", formatSeconds(atSeconds),
		"-i", ref,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrThumbnailCreation, "mediasource", "extract frame", strings.TrimSpace(stderr.String()), err)
	}
	if stdout.Len() == 0 {
		return nil, services.Wrap(services.ErrThumbnailCreation, "mediasource", "extract frame", "no frame produced at "+formatSeconds(atSeconds)+"s", nil)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, services.Wrap(services.ErrImageConversion, "mediasource", "decode frame", ref, err)
	}

	return ScaleToHeight(img, height), nil
}

// ScaleToHeight downscales the image to the given height preserving aspect.
// A zero or larger-than-source height keeps the image untouched.
func ScaleToHeight(img image.Image, height int) image.Image {
	if img == nil || height <= 0 {
		return img
	}
	bounds := img.Bounds()
	if bounds.Dy() <= height {
		return img
	}
	return resize.Resize(0, uint(height), img, resize.Bilinear)
}
