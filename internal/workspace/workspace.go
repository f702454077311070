// Package workspace manages the per-run session directory and its fixed
// artifact paths. One run owns its workspace exclusively: it is created
// once, every derived path is fixed at creation, and on pipeline failure
// the whole tree is rolled back. The original input video lives outside
// the workspace and is never touched.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meetingdoc/meetingdoc/internal/logger"
)

// dirTimestampLayout names timestamp-based session directories, e.g.
// 2026-08-29_14.30.
const dirTimestampLayout = "2006-01-02_15.04"

// Workspace is the session directory with its derived artifact paths.
type Workspace struct {
	Dir        string
	Video      string // normalized video (small.mp4)
	Audio      string // stream-copied audio container (audio.m4a)
	FramesDir  string // numbered frame images
	Document   string // generated meeting document (meeting.md)
	Docx       string // optional docx export (meeting.docx)
	Note       string // user notes (note.txt)
	Prompt     string // prompt template copy (prompt.txt)
	ProcessLog string // durable log sink (process.log)
}

func derive(dir string) *Workspace {
	return &Workspace{
		Dir:        dir,
		Video:      filepath.Join(dir, "small.mp4"),
		Audio:      filepath.Join(dir, "audio.m4a"),
		FramesDir:  filepath.Join(dir, "frames"),
		Document:   filepath.Join(dir, "meeting.md"),
		Docx:       filepath.Join(dir, "meeting.docx"),
		Note:       filepath.Join(dir, "note.txt"),
		Prompt:     filepath.Join(dir, "prompt.txt"),
		ProcessLog: filepath.Join(dir, "process.log"),
	}
}

// Create establishes the session directory and derives the artifact paths.
// An explicit targetDir is reused if it already exists; otherwise a
// timestamp-named directory is created under the current working directory.
// In dry-run mode paths are derived but nothing is created on disk.
func Create(ctx context.Context, log logger.Logger, targetDir string, recordedAt time.Time, dryRun bool) (*Workspace, error) {
	dir := targetDir
	if dir == "" {
		dir = recordedAt.Format(dirTimestampLayout)
	}

	w := derive(dir)

	if dryRun {
		log.Info(ctx, "DRY RUN: Would create target directory: %s", dir)
		return w, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create target directory %s: %w", dir, err)
	}

	if targetDir != "" {
		log.Info(ctx, "Using specified target directory: %s", dir)
	} else {
		log.Info(ctx, "Created target directory: %s", dir)
	}

	return w, nil
}

// Frames lists the extracted frame images in collection order (the
// numbered filenames sort lexicographically). A missing frames directory
// yields an empty list.
func (w *Workspace) Frames() ([]string, error) {
	entries, err := os.ReadDir(w.FramesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".jpg") {
			frames = append(frames, filepath.Join(w.FramesDir, e.Name()))
		}
	}

	sort.Strings(frames)
	return frames, nil
}

// Rollback deletes the whole workspace tree after a pipeline failure.
// Deletion problems are logged, not escalated: the caller is already
// propagating the original stage error.
func (w *Workspace) Rollback(ctx context.Context, log logger.Logger) {
	log.Info(ctx, "Cleaning up created files due to failure...")

	if err := os.RemoveAll(w.Dir); err != nil {
		log.Warn(ctx, "Failed to cleanup target directory: %v", err)
		return
	}
	log.Info(ctx, "Removed target directory: %s", w.Dir)
}

// CleanupFrames removes only the frames subdirectory after a successful
// run. The normalized video, audio, and output document remain.
func (w *Workspace) CleanupFrames(ctx context.Context, log logger.Logger) error {
	if _, err := os.Stat(w.FramesDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(w.FramesDir); err != nil {
		return fmt.Errorf("remove frames directory: %w", err)
	}
	log.Info(ctx, "Removed frames directory")
	return nil
}
