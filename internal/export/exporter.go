package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"dayreel/internal/clipstore"
	"dayreel/internal/composition"
	"dayreel/internal/config"
	"dayreel/internal/logging"
	"dayreel/internal/mediasource"
	"dayreel/internal/services"
	"dayreel/internal/timeline"
)

// State is the exporter's lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateExporting State = "exporting"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Result describes a finished export.
type Result struct {
	Day             timeline.Day
	VideoPath       string
	ThumbnailPath   string
	DurationSeconds float64
}

// ProgressFunc receives render progress in percent.
type ProgressFunc func(percent float64)

// Exporter renders plans to MP4 files in the library directory. At most one
// export runs at a time.
type Exporter struct {
	cfg    *config.Config
	source mediasource.Source
	clips  *clipstore.Store
	logger *slog.Logger
	runner Runner

	mu      sync.Mutex
	state   State
	percent float64
	cancel  context.CancelFunc
}

// New constructs an exporter. The clip store may be nil; exports then skip
// catalog updates.
func New(cfg *config.Config, source mediasource.Source, clips *clipstore.Store, logger *slog.Logger) *Exporter {
	return &Exporter{
		cfg:    cfg,
		source: source,
		clips:  clips,
		logger: logging.NewComponentLogger(logger, "export"),
		runner: NewRunner(),
		state:  StateIdle,
	}
}

// State returns the lifecycle phase of the most recent export.
func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Percent returns the current render progress.
func (e *Exporter) Percent() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.percent
}

// Cancel aborts the in-flight export, if any. The partial output is removed.
func (e *Exporter) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateExporting && e.cancel != nil {
		e.cancel()
	}
}

// Export renders the plan to <library>/<day>.mp4, writes a poster thumbnail
// next to it, and records the clip in the catalog. Progress callbacks fire
// from the render goroutine as ffmpeg reports output time.
func (e *Exporter) Export(ctx context.Context, plan *composition.Plan, day timeline.Day, onProgress ProgressFunc) (*Result, error) {
	if plan == nil || len(plan.VideoTrack.Insertions) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "validate", "plan has no video insertions", nil)
	}
	if day == "" {
		return nil, services.Wrap(services.ErrValidation, "export", "validate", "export day cannot be empty", nil)
	}

	e.mu.Lock()
	if e.state == StateExporting {
		e.mu.Unlock()
		return nil, services.Wrap(services.ErrExportFailed, "export", "start", "an export is already running", nil)
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.state = StateExporting
	e.percent = 0
	e.cancel = cancel
	e.mu.Unlock()
	defer cancel()

	result, err := e.run(runCtx, plan, day, onProgress)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel = nil
	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.state = StateCancelled
		} else {
			e.state = StateFailed
		}
		return nil, err
	}
	e.state = StateCompleted
	e.percent = 100
	return result, nil
}

func (e *Exporter) run(ctx context.Context, plan *composition.Plan, day timeline.Day, onProgress ProgressFunc) (*Result, error) {
	if err := e.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "export", "prepare", "ensure directories", err)
	}

	lock := flock.New(filepath.Join(e.cfg.Paths.LibraryDir, "export.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "export", "lock", "acquire export lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrExportFailed, "export", "lock", "another process is exporting this library", nil)
	}
	defer func() { _ = lock.Unlock() }()

	finalPath := filepath.Join(e.cfg.Paths.LibraryDir, string(day)+".mp4")
	tmpPath := finalPath + ".partial"
	defer os.Remove(tmpPath)

	e.logger.Info("export started",
		logging.String(logging.FieldDay, string(day)),
		logging.Int("segments", len(plan.VideoTrack.Insertions)),
		logging.Float64("duration", plan.TotalDuration))

	args := BuildArgs(plan, e.cfg.Render, tmpPath)
	totalUs := int64(plan.TotalDuration * 1e6)
	err = e.runner.Run(ctx, e.cfg.Tools.FFmpegBinary, args, func(outTimeUs int64) {
		if totalUs <= 0 {
			return
		}
		percent := float64(outTimeUs) / float64(totalUs) * 100
		if percent > 100 {
			percent = 100
		}
		e.mu.Lock()
		e.percent = percent
		e.mu.Unlock()
		if onProgress != nil {
			onProgress(percent)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.logger.Info("export cancelled", logging.String(logging.FieldDay, string(day)))
			return nil, err
		}
		return nil, services.Wrap(services.ErrExportFailed, "export", "render", fmt.Sprintf("render day %s", day), err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, services.Wrap(services.ErrExportFailed, "export", "finalize", "move clip into place", err)
	}

	result := &Result{
		Day:             day,
		VideoPath:       finalPath,
		ThumbnailPath:   e.writePoster(ctx, finalPath, plan, day),
		DurationSeconds: plan.TotalDuration,
	}

	if e.clips != nil {
		if _, storeErr := e.clips.Upsert(ctx, clipstore.Clip{
			Day:             day,
			VideoPath:       result.VideoPath,
			ThumbnailPath:   result.ThumbnailPath,
			DurationSeconds: result.DurationSeconds,
		}); storeErr != nil {
			e.logger.Warn("clip catalog update failed",
				logging.String(logging.FieldDay, string(day)),
				logging.Error(storeErr))
		}
	}

	e.logger.Info("export completed",
		logging.String(logging.FieldDay, string(day)),
		logging.String("path", result.VideoPath))
	return result, nil
}
