// Package timestamp resolves the recording time of a video from an ordered
// list of sources with fallback.
package timestamp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/meetingdoc/meetingdoc/internal/logger"
)

// Source identifies where a resolved timestamp came from.
type Source string

const (
	SourceMetadata  Source = "metadata"
	SourceFileMtime Source = "file_mtime"
	SourceManual    Source = "manual"
)

// fallbackOrder is the fixed fall-through order when the preferred source
// fails. The preferred source is tried first and never retried.
var fallbackOrder = []Source{SourceMetadata, SourceFileMtime, SourceManual}

// MetadataProber extracts the creation timestamp from container metadata.
type MetadataProber interface {
	ProbeCreationTime(ctx context.Context, videoPath string) (time.Time, error)
}

// PromptFunc supplies a manually entered timestamp. May be nil when no
// interactive input is available.
type PromptFunc func(ctx context.Context) (time.Time, error)

// Resolver produces a recording timestamp from a preferred source with
// multi-source fallback. The attempt order is fixed up front; resolution
// never mutates configuration and tries each source at most once.
type Resolver struct {
	prober MetadataProber
	prompt PromptFunc
	dryRun bool
	logger logger.Logger

	now func() time.Time // swappable for tests
}

// New creates a Resolver. prompt may be nil; in that case manual
// resolution outside dry-run mode is a fatal error.
func New(prober MetadataProber, prompt PromptFunc, dryRun bool, log logger.Logger) *Resolver {
	return &Resolver{
		prober: prober,
		prompt: prompt,
		dryRun: dryRun,
		logger: log,
		now:    time.Now,
	}
}

// attempts builds the immutable attempt list: the preferred source first,
// then the remaining sources in the fixed fallback order.
func attempts(preferred Source) []Source {
	order := []Source{preferred}
	for _, s := range fallbackOrder {
		if s != preferred {
			order = append(order, s)
		}
	}
	return order
}

// Resolve produces the recording timestamp for videoPath, tagged with the
// source that supplied it. Failures of individual sources are logged and
// fall through; only exhausting every source is fatal.
func (r *Resolver) Resolve(ctx context.Context, preferred string, videoPath string) (time.Time, Source, error) {
	pref := Source(preferred)
	switch pref {
	case SourceMetadata, SourceFileMtime, SourceManual:
	default:
		r.logger.Warn(ctx, "Invalid preferred date source '%s'. Using 'metadata' as fallback", preferred)
		pref = SourceMetadata
	}

	r.logger.Info(ctx, "Extracting date and time using source: %s", pref)

	var lastErr error
	for _, source := range attempts(pref) {
		ts, err := r.resolveFrom(ctx, source, videoPath)
		if err == nil {
			r.logger.Info(ctx, "Resolved recording time %s from %s", ts.Format(time.RFC3339), source)
			return ts, source, nil
		}
		lastErr = err
		r.logger.Warn(ctx, "Date source %s failed: %v", source, err)
	}

	return time.Time{}, "", fmt.Errorf("could not extract datetime from any source: %w", lastErr)
}

func (r *Resolver) resolveFrom(ctx context.Context, source Source, videoPath string) (time.Time, error) {
	switch source {
	case SourceMetadata:
		return r.prober.ProbeCreationTime(ctx, videoPath)
	case SourceFileMtime:
		info, err := os.Stat(videoPath)
		if err != nil {
			return time.Time{}, fmt.Errorf("stat video file: %w", err)
		}
		return info.ModTime(), nil
	case SourceManual:
		if r.dryRun {
			ts := r.now()
			r.logger.Info(ctx, "DRY RUN: Using placeholder time: %s", ts.Format(time.RFC3339))
			return ts, nil
		}
		if r.prompt == nil {
			return time.Time{}, fmt.Errorf("manual date input required but not available")
		}
		return r.prompt(ctx)
	default:
		return time.Time{}, fmt.Errorf("unknown date source: %s", source)
	}
}
