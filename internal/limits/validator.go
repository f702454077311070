package limits

import (
	"context"
	"os"
	"path/filepath"

	"github.com/meetingdoc/meetingdoc/internal/logger"
)

// TokenCounter counts input tokens for a block of text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int32, error)
}

// DurationProber reports a media file's duration in seconds.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Validator compares materialized assets against a model's ceilings. Every
// violation is warn-only except frame-count overflow, which truncates the
// frame list. The validator never aborts the pipeline.
type Validator struct {
	limits ModelLimits
	logger logger.Logger
}

// NewValidator creates a Validator bound to one model's limits.
func NewValidator(l ModelLimits, log logger.Logger) *Validator {
	return &Validator{limits: l, logger: log}
}

// CheckPromptTokens counts the prompt's input tokens and warns when the
// count exceeds the ceiling. A counting failure is itself only a warning.
func (v *Validator) CheckPromptTokens(ctx context.Context, counter TokenCounter, prompt string) {
	tokens, err := counter.CountTokens(ctx, prompt)
	if err != nil {
		v.logger.Warn(ctx, "Could not count prompt tokens: %v", err)
		return
	}

	v.logger.Info(ctx, "Prompt tokens: %d", tokens)
	if tokens > v.limits.MaxInputTokens {
		v.logger.Warn(ctx, "Prompt tokens (%d) exceed limit (%d)", tokens, v.limits.MaxInputTokens)
	}
}

// CheckAudioDuration probes the audio file's length and warns when it
// exceeds the per-model audio ceiling.
func (v *Validator) CheckAudioDuration(ctx context.Context, prober DurationProber, audioPath string) {
	seconds, err := prober.ProbeDuration(ctx, audioPath)
	if err != nil {
		v.logger.Warn(ctx, "Could not check audio duration: %v", err)
		return
	}

	hours := seconds / 3600
	if hours > v.limits.MaxAudioLengthHours {
		v.logger.Warn(ctx, "Audio duration (%.2f hours) exceeds limit (%g hours)", hours, v.limits.MaxAudioLengthHours)
	}
}

// FilterFrames enforces the images-per-prompt ceiling by keeping the first
// N frames in collection order, and warns about individual frames larger
// than the per-image size ceiling. Oversized frames are kept; only the
// count overflow changes the list.
func (v *Validator) FilterFrames(ctx context.Context, frames []string) []string {
	if len(frames) > v.limits.MaxImagesPerPrompt {
		v.logger.Warn(ctx, "Number of frames (%d) exceeds limit (%d), limiting to first %d",
			len(frames), v.limits.MaxImagesPerPrompt, v.limits.MaxImagesPerPrompt)
		frames = frames[:v.limits.MaxImagesPerPrompt]
	}

	for _, frame := range frames {
		info, err := os.Stat(frame)
		if err != nil {
			v.logger.Warn(ctx, "Could not stat frame %s: %v", filepath.Base(frame), err)
			continue
		}
		sizeMB := float64(info.Size()) / (1024 * 1024)
		if sizeMB > v.limits.MaxImageSizeMB {
			v.logger.Warn(ctx, "Image file %s size (%.2f MB) exceeds limit (%g MB)",
				filepath.Base(frame), sizeMB, v.limits.MaxImageSizeMB)
		}
	}

	return frames
}
