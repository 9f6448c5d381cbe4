// Package config loads, normalizes, and validates the TOML configuration for
// the engine and its CLI.
//
// Load resolves the config path (explicit flag, then the user config dir, then
// a project-local dayreel.toml), decodes it over Default values, expands all
// path fields, and validates the result. A missing file is not an error; the
// defaults are usable as-is.
package config
