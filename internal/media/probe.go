package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// probeFormat mirrors the format section of ffprobe's JSON output. Only
// the creation_time tag is consumed.
type probeFormat struct {
	Format struct {
		Tags struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
}

// ProbeCreationTime reads the container's creation_time tag via ffprobe.
// Subprocesses are skipped in dry-run mode, which pushes datetime
// resolution down the fallback chain.
func (t *implTools) ProbeCreationTime(ctx context.Context, videoPath string) (time.Time, error) {
	if t.cfg.DryRun {
		return time.Time{}, fmt.Errorf("metadata probe skipped in dry-run mode")
	}

	out, err := t.executor.Execute(ctx, t.cfg.Tools.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		videoPath,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("ffprobe metadata: %w", err)
	}

	var meta probeFormat
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return time.Time{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	raw := meta.Format.Tags.CreationTime
	if raw == "" {
		return time.Time{}, fmt.Errorf("no creation_time found in video metadata")
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse creation_time %q: %w", raw, err)
	}

	t.logger.Info(ctx, "Found creation time from metadata: %s", ts.Format(time.RFC3339))
	return ts, nil
}

// ProbeDuration reports the media duration in seconds via ffprobe.
func (t *implTools) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if t.cfg.DryRun {
		return 0, fmt.Errorf("duration probe skipped in dry-run mode")
	}

	out, err := t.executor.Execute(ctx, t.cfg.Tools.FFprobePath,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}

	return seconds, nil
}
