package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dayreel/internal/logging"
	"dayreel/internal/timeline"
)

// SegmentRecord captures one segment's editable state. Media is referenced by
// file name so records stay valid when the library directory moves.
type SegmentRecord struct {
	Filename             string  `json:"filename"`
	Order                int     `json:"order"`
	TrimStart            float64 `json:"trim_start"`
	TrimDuration         float64 `json:"trim_duration"`
	RotationQuarterTurns int     `json:"rotation_quarter_turns"`
}

// BackgroundRecord captures the chosen background track, if any.
type BackgroundRecord struct {
	Filename string  `json:"filename"`
	Volume   float64 `json:"volume"`
}

// Record is the persisted editing state for one day.
type Record struct {
	Day               timeline.Day      `json:"day"`
	MuteOriginalAudio bool              `json:"mute_original_audio"`
	Background        *BackgroundRecord `json:"background,omitempty"`
	Segments          []SegmentRecord   `json:"segments"`
	RenderWidth       float64           `json:"render_width,omitempty"`
	RenderHeight      float64           `json:"render_height,omitempty"`
	SavedAt           time.Time         `json:"saved_at"`
}

// Store reads and writes day records under a session directory, one JSON file
// per day. An empty directory makes every operation a no-op.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "session"),
	}
}

// Save persists the record for its day atomically.
func (s *Store) Save(record Record) error {
	if s.dir == "" {
		return nil
	}
	if record.Day == "" {
		return errors.New("record day cannot be empty")
	}
	if record.SavedAt.IsZero() {
		record.SavedAt = time.Now().UTC()
	}
	sort.Slice(record.Segments, func(i, j int) bool {
		return record.Segments[i].Order < record.Segments[j].Order
	})

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	path := s.path(record.Day)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved day record",
		logging.String(logging.FieldDay, string(record.Day)),
		logging.Int("segment_count", len(record.Segments)))
	return nil
}

// Load returns the record for the day. A missing file is not an error; the
// second return reports whether a record existed.
func (s *Store) Load(day timeline.Day) (Record, bool, error) {
	if s.dir == "" || day == "" {
		return Record{}, false, nil
	}

	data, err := os.ReadFile(s.path(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("read session record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, false, fmt.Errorf("parse session record: %w", err)
	}
	if record.Day == "" {
		record.Day = day
	}
	sort.Slice(record.Segments, func(i, j int) bool {
		return record.Segments[i].Order < record.Segments[j].Order
	})
	return record, true, nil
}

// Delete removes the day's record. Deleting a missing record is not an error.
func (s *Store) Delete(day timeline.Day) error {
	if s.dir == "" || day == "" {
		return nil
	}
	if err := os.Remove(s.path(day)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

// Days lists every day with a saved record, oldest first.
func (s *Store) Days() ([]timeline.Day, error) {
	if s.dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session directory: %w", err)
	}

	days := make([]timeline.Day, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		day, err := timeline.ParseDay(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

func (s *Store) path(day timeline.Day) string {
	return filepath.Join(s.dir, string(day)+".json")
}
