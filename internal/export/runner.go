package export

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes ffmpeg and streams its machine-readable progress. Split out
// so exports can be exercised without a real ffmpeg on the machine.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, onProgress func(outTimeUs int64)) error
}

type ffmpegRunner struct{}

// NewRunner returns the real ffmpeg-backed runner.
func NewRunner() Runner {
	return ffmpegRunner{}
}

// Run executes ffmpeg with progress reporting on stdout. -stats_period 0.5
// keeps the updates frequent without flooding the pipe; out_time_us can be
// "N/A" at the start and is skipped until real values appear.
func (ffmpegRunner) Run(ctx context.Context, binary string, args []string, onProgress func(outTimeUs int64)) error {
	progressArgs := append([]string{"-progress", "pipe:1", "-stats_period", "0.5", "-nostats"}, args...)

	cmd := exec.CommandContext(ctx, binary, progressArgs...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	var stderrBuf strings.Builder
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "out_time_us=") {
			continue
		}
		value := strings.TrimPrefix(line, "out_time_us=")
		if value == "N/A" {
			continue
		}
		if timeUs, parseErr := strconv.ParseInt(value, 10, 64); parseErr == nil && timeUs >= 0 && onProgress != nil {
			onProgress(timeUs)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, tail(stderrBuf.String(), 2000))
	}
	return nil
}

func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
