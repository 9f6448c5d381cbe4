package thumbnails

import "image"

// RotateImage returns the image rotated clockwise by the given quarter turns.
// Zero turns returns the image unchanged; four turns restore the original
// dimensions.
func RotateImage(img image.Image, turns int) image.Image {
	if img == nil {
		return nil
	}
	turns = ((turns % 4) + 4) % 4
	if turns == 0 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	if turns%2 == 1 {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch turns {
			case 1:
				dst.Set(h-1-y, x, c)
			case 2:
				dst.Set(w-1-x, h-1-y, c)
			case 3:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

// RotateFrames rotates every generated frame in place. Cheaper than
// regenerating from source; callers schedule a full regeneration afterward
// for fidelity.
func RotateFrames(frames []Frame, turns int) {
	for i := range frames {
		if frames[i].Image != nil {
			frames[i].Image = RotateImage(frames[i].Image, turns)
		}
	}
}
