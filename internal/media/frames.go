package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractFrames samples the normalized video into numbered JPEG frames at
// the configured interval (fps=1/interval).
func (t *implTools) ExtractFrames(ctx context.Context, videoPath, framesDir string) error {
	t.logger.Info(ctx, "Extracting frames...")

	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", t.cfg.Frames.IntervalSeconds),
		"-q:v", "2",
		filepath.Join(framesDir, "frame_%04d.jpg"),
	}

	if t.cfg.DryRun {
		t.logger.Info(ctx, "DRY RUN: Would run: %s %s", t.cfg.Tools.FFmpegPath, strings.Join(args, " "))
		return nil
	}

	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return fmt.Errorf("create frames directory: %w", err)
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Tools.FFmpegPath, args...); err != nil {
		return fmt.Errorf("frame extraction: %w", err)
	}

	t.logger.Info(ctx, "Frame extraction completed")
	return nil
}
