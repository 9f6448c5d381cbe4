package mediasource

import (
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"dayreel/internal/services"
	"dayreel/internal/timeline"
)

// FFSource probes media with ffprobe and extracts frames with ffmpeg.
type FFSource struct {
	FFprobeBinary string
	FFmpegBinary  string
}

// NewFFSource returns a Source backed by the given binaries. Empty values
// fall back to ffprobe/ffmpeg on PATH.
func NewFFSource(ffprobeBinary, ffmpegBinary string) *FFSource {
	return &FFSource{FFprobeBinary: ffprobeBinary, FFmpegBinary: ffmpegBinary}
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string          `json:"codec_type"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Duration     string          `json:"duration"`
	SideDataList []probeSideData `json:"side_data_list"`
	Tags         probeStreamTags `json:"tags"`
}

type probeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

type probeStreamTags struct {
	Rotate string `json:"rotate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe executes ffprobe against the reference and decodes the JSON response.
func (s *FFSource) Probe(ctx context.Context, ref string) (AssetInfo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return AssetInfo{}, services.Wrap(services.ErrAssetUnavailable, "mediasource", "probe", "empty source reference", nil)
	}

	binary := strings.TrimSpace(s.FFprobeBinary)
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", ref)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return AssetInfo{}, services.Wrap(services.ErrAssetUnavailable, "mediasource", "probe", strings.TrimSpace(string(output)), err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return AssetInfo{}, services.Wrap(services.ErrAssetUnavailable, "mediasource", "parse probe output", ref, err)
	}

	return assetInfoFromProbe(result), nil
}

func assetInfoFromProbe(result probeResult) AssetInfo {
	info := AssetInfo{DurationSeconds: parseProbeFloat(result.Format.Duration)}
	for _, stream := range result.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.NaturalSize = timeline.Size{Width: float64(stream.Width), Height: float64(stream.Height)}
			info.RotationQuarterTurns = rotationTurns(stream)
			if info.DurationSeconds == 0 {
				info.DurationSeconds = parseProbeFloat(stream.Duration)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	return info
}

// rotationTurns resolves the display rotation from stream side data, falling
// back to the legacy rotate tag. ffprobe reports counterclockwise degrees in
// side data and clockwise degrees in the tag.
func rotationTurns(stream probeStream) int {
	for _, sd := range stream.SideDataList {
		if strings.EqualFold(sd.SideDataType, "Display Matrix") && sd.Rotation != 0 {
			return degreesToTurns(-sd.Rotation)
		}
	}
	if stream.Tags.Rotate != "" {
		if deg, err := strconv.ParseFloat(stream.Tags.Rotate, 64); err == nil {
			return degreesToTurns(deg)
		}
	}
	return 0
}

func degreesToTurns(clockwiseDegrees float64) int {
	deg := math.Mod(clockwiseDegrees, 360)
	if deg < 0 {
		deg += 360
	}
	return int(math.Round(deg/90)) % 4
}

func parseProbeFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "n/a") {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
