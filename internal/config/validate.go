package config

import "fmt"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateThumbnails(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return fmt.Errorf("render.width and render.height must be even, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.CRF > 51 {
		return fmt.Errorf("render.crf must be at most 51, got %d", c.Render.CRF)
	}
	switch c.Render.Preset {
	case "ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow":
		return nil
	default:
		return fmt.Errorf("render.preset %q is not a recognized encoder preset", c.Render.Preset)
	}
}

func (c *Config) validateThumbnails() error {
	if c.Thumbnails.MaxFrames > 512 {
		return fmt.Errorf("thumbnails.max_frames must be at most 512, got %d", c.Thumbnails.MaxFrames)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
