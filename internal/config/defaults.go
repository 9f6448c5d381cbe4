package config

const (
	defaultLibraryDir   = "~/.local/share/dayreel/library"
	defaultSessionDir   = "~/.local/share/dayreel/sessions"
	defaultThumbnailDir = "~/.cache/dayreel/thumbnails"
	defaultLogDir       = "~/.local/share/dayreel/logs"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultRenderWidth  = 1080
	defaultRenderHeight = 1920
	defaultRenderPreset = "medium"
	defaultRenderCRF    = 23

	defaultThumbnailMaxFrames    = 80
	defaultThumbnailBaseInterval = 0.5
	defaultThumbnailProxyHeight  = 120

	defaultScrubThrottleMS    = 30
	defaultScrubDragTolerance = 0.1
	defaultRebuildDebounceMS  = 250

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:   defaultLibraryDir,
			SessionDir:   defaultSessionDir,
			ThumbnailDir: defaultThumbnailDir,
			LogDir:       defaultLogDir,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Render: Render{
			Width:  defaultRenderWidth,
			Height: defaultRenderHeight,
			Preset: defaultRenderPreset,
			CRF:    defaultRenderCRF,
		},
		Thumbnails: Thumbnails{
			MaxFrames:           defaultThumbnailMaxFrames,
			BaseIntervalSeconds: defaultThumbnailBaseInterval,
			ProxyHeight:         defaultThumbnailProxyHeight,
		},
		Scrub: Scrub{
			ThrottleMS:        defaultScrubThrottleMS,
			DragTolerance:     defaultScrubDragTolerance,
			RebuildDebounceMS: defaultRebuildDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
