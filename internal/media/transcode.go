package media

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Transcode converts the input video to the normalized format using
// HandBrakeCLI with the configured JSON preset. HandBrake has been seen
// exiting zero without producing a usable file, so the output is verified
// after the run.
func (t *implTools) Transcode(ctx context.Context, inputPath, outputPath string) error {
	t.logger.Info(ctx, "Converting video with HandBrakeCLI using JSON preset...")

	if _, err := os.Stat(t.cfg.Tools.PresetFile); err != nil {
		return fmt.Errorf("handbrake preset file not found: %s", t.cfg.Tools.PresetFile)
	}

	args := []string{
		"--preset-import-file", t.cfg.Tools.PresetFile,
		"-Z", t.cfg.Tools.PresetName,
		"-i", inputPath,
		"-o", outputPath,
	}

	if t.cfg.DryRun {
		t.logger.Info(ctx, "DRY RUN: Would run: %s %s", t.cfg.Tools.HandBrakePath, strings.Join(args, " "))
		return nil
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Tools.HandBrakePath, args...); err != nil {
		return fmt.Errorf("handbrake transcode: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("handbrake reported success but output file was not created: %s", outputPath)
	}
	if info.Size() == 0 {
		return fmt.Errorf("handbrake created empty output file: %s", outputPath)
	}

	t.logger.Info(ctx, "Video conversion completed")
	return nil
}
