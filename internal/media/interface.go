package media

import (
	"context"
	"time"
)

// Tools defines the interface for the external media tool invocations the
// pipeline depends on. Every call is synchronous; failures are fatal and
// carry the tool's captured diagnostic output.
type Tools interface {
	// Transcode normalizes the input video through the configured
	// HandBrake preset. The output file is verified to exist and be
	// non-empty; a clean exit status alone is not trusted.
	Transcode(ctx context.Context, inputPath, outputPath string) error

	// ExtractAudio stream-copies the audio track out of the normalized
	// video, without re-encoding.
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error

	// ExtractFrames samples the normalized video into a numbered image
	// sequence at the configured interval.
	ExtractFrames(ctx context.Context, videoPath, framesDir string) error

	// ProbeCreationTime reads the creation timestamp from container
	// metadata.
	ProbeCreationTime(ctx context.Context, videoPath string) (time.Time, error)

	// ProbeDuration reports a media file's duration in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
