package testsupport

import (
	"context"
	"image"
	"sync"
	"time"

	"dayreel/internal/mediasource"
	"dayreel/internal/services"
)

// FakeSource is a scriptable media backend for tests. Probe and frame results
// are keyed by source reference; unknown references fail with the asset error.
type FakeSource struct {
	mu sync.Mutex

	Infos      map[string]mediasource.AssetInfo
	ProbeErrs  map[string]error
	FrameErr   error
	FrameDelay time.Duration

	probeCalls []string
	frameCalls []FrameCall
}

// FrameCall records one ExtractFrame invocation.
type FrameCall struct {
	Ref       string
	AtSeconds float64
	Height    int
}

// NewFakeSource returns an empty fake; register assets with AddAsset.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Infos:     make(map[string]mediasource.AssetInfo),
		ProbeErrs: make(map[string]error),
	}
}

// AddAsset registers a probe result for the reference.
func (f *FakeSource) AddAsset(ref string, info mediasource.AssetInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Infos[ref] = info
}

// Probe returns the scripted asset info.
func (f *FakeSource) Probe(ctx context.Context, ref string) (mediasource.AssetInfo, error) {
	if err := ctx.Err(); err != nil {
		return mediasource.AssetInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls = append(f.probeCalls, ref)
	if err, ok := f.ProbeErrs[ref]; ok {
		return mediasource.AssetInfo{}, err
	}
	info, ok := f.Infos[ref]
	if !ok {
		return mediasource.AssetInfo{}, services.Wrap(services.ErrAssetUnavailable, "testsupport", "probe", ref, nil)
	}
	return info, nil
}

// ExtractFrame returns a blank frame sized from the scripted asset info.
func (f *FakeSource) ExtractFrame(ctx context.Context, ref string, atSeconds float64, height int) (image.Image, error) {
	if f.FrameDelay > 0 {
		select {
		case <-time.After(f.FrameDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frameCalls = append(f.frameCalls, FrameCall{Ref: ref, AtSeconds: atSeconds, Height: height})
	if f.FrameErr != nil {
		return nil, f.FrameErr
	}
	info, ok := f.Infos[ref]
	if !ok {
		return nil, services.Wrap(services.ErrImageLoad, "testsupport", "extract frame", ref, nil)
	}
	width := 160
	if height <= 0 {
		height = 90
	}
	if !info.NaturalSize.IsZero() {
		width = int(info.NaturalSize.Width * float64(height) / info.NaturalSize.Height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// ProbeCalls returns the references probed so far.
func (f *FakeSource) ProbeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.probeCalls))
	copy(out, f.probeCalls)
	return out
}

// FrameCalls returns the frame extractions requested so far.
func (f *FakeSource) FrameCalls() []FrameCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FrameCall, len(f.frameCalls))
	copy(out, f.frameCalls)
	return out
}
