package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dayreel/internal/composition"
	"dayreel/internal/config"
)

const (
	outputFrameRate = 30
	audioBitrate    = "192k"
	audioSampleRate = 44100
)

// BuildArgs assembles the full ffmpeg argument list for rendering the plan to
// outputPath. One input per video insertion, the background source last with
// infinite stream looping; everything else happens in the filter graph.
func BuildArgs(plan *composition.Plan, render config.Render, outputPath string) []string {
	args := []string{"-y", "-hide_banner"}
	for _, ins := range plan.VideoTrack.Insertions {
		args = append(args, "-i", ins.SourceRef)
	}
	if plan.BackgroundTrack != nil && len(plan.BackgroundTrack.Insertions) > 0 {
		args = append(args, "-stream_loop", "-1", "-i", plan.BackgroundTrack.Insertions[0].SourceRef)
	}

	filter, hasAudio := buildFilter(plan, render)
	args = append(args, "-filter_complex", filter, "-map", "[vout]")
	if hasAudio {
		args = append(args,
			"-map", "[aout]",
			"-c:a", "aac",
			"-b:a", audioBitrate,
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", render.Preset,
		"-crf", strconv.Itoa(render.CRF),
		"-r", strconv.Itoa(outputFrameRate),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-t", formatSeconds(plan.TotalDuration),
		outputPath,
	)
	return args
}

// buildFilter produces the filter_complex graph: per-segment trim, rotation,
// and cover scaling, a single concat, date overlays, and the background mix.
// The second return reports whether the graph yields an [aout] stream.
func buildFilter(plan *composition.Plan, render config.Render) (string, bool) {
	width, height := outputDimensions(plan, render)
	videoCount := len(plan.VideoTrack.Insertions)
	hasSegmentAudio := plan.AudioTrack != nil && len(plan.AudioTrack.Insertions) > 0
	hasBackground := plan.BackgroundTrack != nil && len(plan.BackgroundTrack.Insertions) > 0

	var parts []string
	for i, ins := range plan.VideoTrack.Insertions {
		chain := fmt.Sprintf("[%d:v]trim=start=%s:duration=%s,setpts=PTS-STARTPTS",
			i, formatSeconds(ins.SourceStart), formatSeconds(ins.SourceDuration))
		chain += transposeFilter(plan.Placements[i].Transform)
		chain += fmt.Sprintf(",scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1[v%d]",
			width, height, width, height, i)
		parts = append(parts, chain)
	}

	if hasSegmentAudio {
		// Segments without audio get silence of the same length so the
		// concat stays aligned with the video stream.
		audio := plan.AudioTrack.Insertions
		j := 0
		for i, ins := range plan.VideoTrack.Insertions {
			if j < len(audio) && math.Abs(audio[j].At-ins.At) < 1e-6 {
				parts = append(parts, fmt.Sprintf("[%d:a]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS[a%d]",
					i, formatSeconds(ins.SourceStart), formatSeconds(ins.SourceDuration), i))
				j++
				continue
			}
			parts = append(parts, fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d,atrim=duration=%s[a%d]",
				audioSampleRate, formatSeconds(ins.SourceDuration), i))
		}
	}

	var concat strings.Builder
	for i := 0; i < videoCount; i++ {
		fmt.Fprintf(&concat, "[v%d]", i)
		if hasSegmentAudio {
			fmt.Fprintf(&concat, "[a%d]", i)
		}
	}
	audioStreams := 0
	if hasSegmentAudio {
		audioStreams = 1
	}
	videoLabel := "[vout]"
	if len(plan.Overlays) > 0 {
		videoLabel = "[vcat]"
	}
	fmt.Fprintf(&concat, "concat=n=%d:v=1:a=%d%s", videoCount, audioStreams, videoLabel)
	if hasSegmentAudio {
		concat.WriteString("[acat]")
	}
	parts = append(parts, concat.String())

	if len(plan.Overlays) > 0 {
		chain := "[vcat]"
		for _, overlay := range plan.Overlays {
			// between() is closed at both ends; gte*lt keeps the plan's
			// half-open ranges so adjacent overlays never show together.
			chain += fmt.Sprintf("drawtext=text='%s':fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=h-%d:enable='gte(t,%s)*lt(t,%s)',",
				escapeDrawtext(overlay.Text), height/24, height/8,
				formatSeconds(overlay.Start), formatSeconds(overlay.End))
		}
		chain = strings.TrimSuffix(chain, ",") + "[vout]"
		parts = append(parts, chain)
	}

	if hasBackground {
		parts = append(parts, fmt.Sprintf("[%d:a]atrim=duration=%s,asetpts=PTS-STARTPTS,volume=%.3f[abg]",
			videoCount, formatSeconds(plan.TotalDuration), plan.BackgroundVolume))
	}

	switch {
	case hasSegmentAudio && hasBackground:
		parts = append(parts, "[acat][abg]amix=inputs=2:duration=first:normalize=0[aout]")
	case hasSegmentAudio:
		parts = append(parts, "[acat]anull[aout]")
	case hasBackground:
		parts = append(parts, "[abg]anull[aout]")
	}

	return strings.Join(parts, ";"), hasSegmentAudio || hasBackground
}

func outputDimensions(plan *composition.Plan, render config.Render) (int, int) {
	width := int(math.Round(plan.RenderSize.Width))
	height := int(math.Round(plan.RenderSize.Height))
	if width <= 0 || height <= 0 {
		width, height = render.Width, render.Height
	}
	// libx264 requires even dimensions.
	width -= width % 2
	height -= height % 2
	return width, height
}

// transposeFilter maps the placement's affine back to ffmpeg transpose steps.
// The affine is a quarter-turn rotation optionally composed with a positive
// uniform scale, so the signs of its coefficients identify the turn count.
func transposeFilter(t composition.Affine) string {
	switch quarterTurns(t) {
	case 1:
		return ",transpose=1"
	case 2:
		return ",transpose=1,transpose=1"
	case 3:
		return ",transpose=2"
	default:
		return ""
	}
}

func quarterTurns(t composition.Affine) int {
	const eps = 1e-9
	switch {
	case t.B > eps && t.C < -eps:
		return 1
	case t.A < -eps && t.D < -eps:
		return 2
	case t.B < -eps && t.C > eps:
		return 3
	default:
		return 0
	}
}

func escapeDrawtext(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "'", "'\\''")
	text = strings.ReplaceAll(text, ":", "\\:")
	text = strings.ReplaceAll(text, "[", "\\[")
	text = strings.ReplaceAll(text, "]", "\\]")
	return text
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
