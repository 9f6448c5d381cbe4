package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAssetUnavailable marks failures opening or probing source media.
	ErrAssetUnavailable = errors.New("asset unavailable")
	// ErrImageLoad marks failures reading a source image or video frame.
	ErrImageLoad = errors.New("image load failed")
	// ErrThumbnailCreation marks proxy or poster thumbnail generation failures.
	ErrThumbnailCreation = errors.New("thumbnail creation failed")
	// ErrImageConversion marks failures converting a decoded frame between formats.
	ErrImageConversion = errors.New("image conversion failed")
	// ErrNoSelectedSegments is returned when every segment clamps to zero
	// effective duration, or the segment list is empty.
	ErrNoSelectedSegments = errors.New("no selected segments")
	// ErrUnableToCreateTrack marks a composition that could not allocate a
	// required video or audio track.
	ErrUnableToCreateTrack = errors.New("unable to create track")
	// ErrExportFailed marks a render that reported failure or was cancelled
	// before completing.
	ErrExportFailed = errors.New("export failed")
	// ErrBackgroundTrackMissing is returned when a background track was
	// selected but its source could not be resolved.
	ErrBackgroundTrackMissing = errors.New("background track missing")
	// ErrBackgroundTrackLoad is returned when a resolved background track
	// could not be read.
	ErrBackgroundTrackLoad = errors.New("background track load failed")
	// ErrValidation marks caller mistakes: bad arguments, impossible state.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Terminal reports whether the error represents a failure the engine will not
// recover by dropping a single segment: export and background-track errors
// abort the whole operation, per-segment asset errors do not.
func Terminal(err error) bool {
	switch {
	case errors.Is(err, ErrExportFailed),
		errors.Is(err, ErrNoSelectedSegments),
		errors.Is(err, ErrUnableToCreateTrack),
		errors.Is(err, ErrBackgroundTrackMissing),
		errors.Is(err, ErrBackgroundTrackLoad):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
