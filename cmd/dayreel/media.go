package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dayreel/internal/timeline"
)

var mediaExtensions = map[string]bool{
	".avi": true,
	".m4v": true,
	".mkv": true,
	".mov": true,
	".mp4": true,
	".webm": true,
}

// listMedia returns the media files directly inside dir, sorted by name so
// the default segment order matches capture order for timestamped filenames.
func listMedia(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read media directory: %w", err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		refs = append(refs, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(refs)
	return refs, nil
}

// resolveDay picks the day key: an explicit flag wins, otherwise the
// directory name must be a YYYY-MM-DD key.
func resolveDay(dir, explicit string) (timeline.Day, error) {
	if strings.TrimSpace(explicit) != "" {
		return timeline.ParseDay(explicit)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	day, err := timeline.ParseDay(filepath.Base(abs))
	if err != nil {
		return "", fmt.Errorf("directory %q is not a day key; pass --day", filepath.Base(abs))
	}
	return day, nil
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%05.2f", minutes, seconds-float64(minutes*60))
}
