package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dayreel/internal/clipstore"
	"dayreel/internal/composition"
	"dayreel/internal/config"
	"dayreel/internal/logging"
	"dayreel/internal/mediasource"
	"dayreel/internal/services"
	"dayreel/internal/testsupport"
	"dayreel/internal/timeline"
)

// fakeExportRunner stands in for ffmpeg: it records the invocation, emits
// scripted progress, creates the output file, and optionally blocks until
// released or cancelled.
type fakeExportRunner struct {
	mu       sync.Mutex
	binary   string
	args     []string
	calls    int
	progress []int64
	err      error
	block    chan struct{}
}

func (r *fakeExportRunner) Run(ctx context.Context, binary string, args []string, onProgress func(int64)) error {
	r.mu.Lock()
	r.binary = binary
	r.args = append([]string(nil), args...)
	r.calls++
	progress := r.progress
	block := r.block
	runErr := r.err
	r.mu.Unlock()

	for _, us := range progress {
		if onProgress != nil {
			onProgress(us)
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if runErr != nil {
		return runErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	output := args[len(args)-1]
	return os.WriteFile(output, []byte("mp4"), 0o644)
}

func (r *fakeExportRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type exportFixture struct {
	cfg      *config.Config
	exporter *Exporter
	runner   *fakeExportRunner
	source   *testsupport.FakeSource
	clips    *clipstore.Store
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	clips, err := clipstore.Open(cfg)
	if err != nil {
		t.Fatalf("open clip store: %v", err)
	}
	t.Cleanup(func() { _ = clips.Close() })

	source := testsupport.NewFakeSource()
	runner := &fakeExportRunner{}
	exporter := New(cfg, source, clips, logging.NewNop())
	exporter.runner = runner
	return &exportFixture{cfg: cfg, exporter: exporter, runner: runner, source: source, clips: clips}
}

func exportPlan(t *testing.T) *composition.Plan {
	t.Helper()
	seg := timeline.NewSegment("/lib/a.mov", 10, timeline.Size{Width: 1080, Height: 1920}, 0, true)
	plan, err := composition.Build([]timeline.Segment{seg}, composition.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return plan
}

func TestExportRendersCatalogsAndCleansUp(t *testing.T) {
	f := newExportFixture(t)
	day := timeline.Day("2025-06-14")
	finalPath := filepath.Join(f.cfg.Paths.LibraryDir, "2025-06-14.mp4")
	f.source.AddAsset(finalPath, mediasource.AssetInfo{
		DurationSeconds: 2,
		NaturalSize:     timeline.Size{Width: 1080, Height: 1920},
		HasVideo:        true,
	})

	result, err := f.exporter.Export(context.Background(), exportPlan(t), day, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if f.exporter.State() != StateCompleted {
		t.Fatalf("state = %s", f.exporter.State())
	}
	if f.exporter.Percent() != 100 {
		t.Fatalf("percent = %v", f.exporter.Percent())
	}

	if result.VideoPath != finalPath {
		t.Fatalf("video path = %s", result.VideoPath)
	}
	if _, err := os.Stat(finalPath); err != nil {
		t.Fatalf("final clip missing: %v", err)
	}
	if _, err := os.Stat(finalPath + ".partial"); !os.IsNotExist(err) {
		t.Fatal("partial file left behind")
	}
	if result.ThumbnailPath == "" {
		t.Fatal("poster not written")
	}
	if _, err := os.Stat(result.ThumbnailPath); err != nil {
		t.Fatalf("poster missing: %v", err)
	}

	clip, err := f.clips.GetByDay(context.Background(), day)
	if err != nil {
		t.Fatalf("GetByDay: %v", err)
	}
	if clip == nil || clip.VideoPath != finalPath {
		t.Fatalf("catalog row = %+v", clip)
	}
	if clip.DurationSeconds != 2 {
		t.Fatalf("catalog duration = %v", clip.DurationSeconds)
	}
}

func TestExportReportsProgressPercent(t *testing.T) {
	f := newExportFixture(t)
	// Plan duration is 2s; report half way and past the end.
	f.runner.progress = []int64{1_000_000, 2_500_000}

	var mu sync.Mutex
	var percents []float64
	_, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), func(p float64) {
		mu.Lock()
		defer mu.Unlock()
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(percents) != 2 {
		t.Fatalf("got %d progress callbacks", len(percents))
	}
	if percents[0] != 50 {
		t.Fatalf("first percent = %v", percents[0])
	}
	if percents[1] != 100 {
		t.Fatalf("overshoot not capped: %v", percents[1])
	}
}

func TestExportRejectsSecondWhileRunning(t *testing.T) {
	f := newExportFixture(t)
	f.runner.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), nil)
		done <- err
	}()

	waitForState(t, f.exporter, StateExporting)
	_, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-15"), nil)
	if !errors.Is(err, services.ErrExportFailed) {
		t.Fatalf("second export err = %v", err)
	}
	if f.runner.callCount() != 1 {
		t.Fatalf("runner calls = %d", f.runner.callCount())
	}

	close(f.runner.block)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}
}

func TestCancelAbortsAndLeavesNoOutput(t *testing.T) {
	f := newExportFixture(t)
	f.runner.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), nil)
		done <- err
	}()

	waitForState(t, f.exporter, StateExporting)
	f.exporter.Cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if f.exporter.State() != StateCancelled {
		t.Fatalf("state = %s", f.exporter.State())
	}

	finalPath := filepath.Join(f.cfg.Paths.LibraryDir, "2025-06-14.mp4")
	if _, statErr := os.Stat(finalPath); !os.IsNotExist(statErr) {
		t.Fatal("cancelled export left a clip")
	}
	if _, statErr := os.Stat(finalPath + ".partial"); !os.IsNotExist(statErr) {
		t.Fatal("cancelled export left a partial file")
	}
}

func TestExportFailureMarksFailed(t *testing.T) {
	f := newExportFixture(t)
	f.runner.err = errors.New("ffmpeg exploded")

	_, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), nil)
	if !errors.Is(err, services.ErrExportFailed) {
		t.Fatalf("err = %v", err)
	}
	if f.exporter.State() != StateFailed {
		t.Fatalf("state = %s", f.exporter.State())
	}

	// A later export still works once the tool recovers.
	f.runner.mu.Lock()
	f.runner.err = nil
	f.runner.mu.Unlock()
	if _, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), nil); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if f.exporter.State() != StateCompleted {
		t.Fatalf("state after retry = %s", f.exporter.State())
	}
}

func TestExportValidation(t *testing.T) {
	f := newExportFixture(t)

	if _, err := f.exporter.Export(context.Background(), nil, timeline.Day("2025-06-14"), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("nil plan err = %v", err)
	}
	if _, err := f.exporter.Export(context.Background(), exportPlan(t), "", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty day err = %v", err)
	}
}

func TestPosterFailureDoesNotFailExport(t *testing.T) {
	f := newExportFixture(t)
	// No asset registered for the rendered clip, so frame extraction fails.

	result, err := f.exporter.Export(context.Background(), exportPlan(t), timeline.Day("2025-06-14"), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.ThumbnailPath != "" {
		t.Fatalf("thumbnail path = %s", result.ThumbnailPath)
	}
	if f.exporter.State() != StateCompleted {
		t.Fatalf("state = %s", f.exporter.State())
	}
}

func waitForState(t *testing.T, e *Exporter, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never became %s (now %s)", want, e.State())
}
