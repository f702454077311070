package media

import (
	"context"
	"fmt"
	"strings"
)

// ExtractAudio pulls the audio track out of the normalized video into its
// own container. Stream copy only; no re-encode.
func (t *implTools) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	t.logger.Info(ctx, "Extracting audio...")

	args := []string{
		"-i", videoPath,
		"-vn",
		"-c:a", "copy",
		audioPath,
	}

	if t.cfg.DryRun {
		t.logger.Info(ctx, "DRY RUN: Would run: %s %s", t.cfg.Tools.FFmpegPath, strings.Join(args, " "))
		return nil
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Tools.FFmpegPath, args...); err != nil {
		return fmt.Errorf("audio extraction: %w", err)
	}

	t.logger.Info(ctx, "Audio extraction completed")
	return nil
}
