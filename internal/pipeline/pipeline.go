package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meetingdoc/meetingdoc/internal/config"
	"github.com/meetingdoc/meetingdoc/internal/workspace"
)

// Run orchestrates the entire meeting documentation pipeline for one video.
func (p *implPipeline) Run(ctx context.Context, videoPath, promptName, notes string) error {
	startTime := time.Now()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting processing of video: %s", videoPath)
	p.logger.Info(ctx, "========================================")

	// Step 1: Resolve the recording timestamp.
	recordedAt, source, err := p.resolver.Resolve(ctx, p.cfg.DateTime.PreferredSource, videoPath)
	if err != nil {
		return fmt.Errorf("extract datetime: %w", err)
	}
	p.logger.Debug(ctx, "Recording time provenance: %s", source)

	// Step 2: Establish the session workspace.
	ws, err := workspace.Create(ctx, p.logger, p.cfg.Output.TargetDirectory, recordedAt, p.cfg.DryRun)
	if err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	// The durable log sink can only exist once the directory does.
	if !p.cfg.DryRun {
		if err := p.logger.AttachFile(ws.ProcessLog); err != nil {
			p.logger.Warn(ctx, "Failed to add file logging: %v", err)
		} else {
			p.logger.Info(ctx, "Logging to file enabled")
		}
		defer p.logger.Close()
	}

	promptFile := p.resolvePromptFile(promptName)

	if err := p.runStages(ctx, ws, videoPath, promptFile, notes); err != nil {
		p.logger.Error(ctx, "Error during processing: %v", err)
		if !p.cfg.DryRun {
			p.logger.Close()
			ws.Rollback(ctx, p.logger)
		}
		return err
	}

	// Step 10: Success cleanup.
	if !p.cfg.NoCleanup {
		p.logger.Info(ctx, "Cleaning up temporary files...")
		if p.cfg.DryRun {
			p.logger.Info(ctx, "DRY RUN: Would clean up temporary files")
		} else if err := ws.CleanupFrames(ctx, p.logger); err != nil {
			p.logger.Warn(ctx, "Failed to clean up frames: %v", err)
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Output document: %s", ws.Document)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return nil
}

// runStages executes every fallible stage between workspace creation and
// success cleanup. A non-nil return triggers workspace rollback.
func (p *implPipeline) runStages(ctx context.Context, ws *workspace.Workspace, videoPath, promptFile, notes string) error {
	// Step 3: Normalize the video.
	if err := p.tools.Transcode(ctx, videoPath, ws.Video); err != nil {
		return fmt.Errorf("convert video: %w", err)
	}

	// Step 4: Extract audio.
	if err := p.tools.ExtractAudio(ctx, ws.Video, ws.Audio); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	// Step 5: Extract frames. The transcript-only prompt never looks at
	// visual content, so frames are skipped entirely for it.
	if promptFile != config.PromptOnlyTranscript {
		if err := p.tools.ExtractFrames(ctx, ws.Video, ws.FramesDir); err != nil {
			return fmt.Errorf("extract frames: %w", err)
		}
	}

	// Step 6: Create the (initially empty) output document.
	if err := p.createDocument(ctx, ws); err != nil {
		return err
	}

	// Step 7: Copy the prompt template into the workspace.
	if err := p.copyPrompt(ctx, ws, promptFile); err != nil {
		return err
	}

	// Step 8: Write the notes file.
	if err := p.writeNote(ctx, ws, notes); err != nil {
		return err
	}

	// Step 9: Upload assets and generate the document.
	return p.uploadAndGenerate(ctx, ws)
}

func (p *implPipeline) resolvePromptFile(promptName string) string {
	if promptName != "" {
		return config.ResolvePrompt(promptName)
	}
	return config.ResolvePrompt(p.cfg.Prompts.Default)
}

func (p *implPipeline) createDocument(ctx context.Context, ws *workspace.Workspace) error {
	p.logger.Info(ctx, "Creating meeting.md...")
	if p.cfg.DryRun {
		p.logger.Info(ctx, "DRY RUN: Would create meeting.md")
		return nil
	}
	f, err := os.OpenFile(ws.Document, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create meeting.md: %w", err)
	}
	return f.Close()
}

func (p *implPipeline) copyPrompt(ctx context.Context, ws *workspace.Workspace, promptFile string) error {
	p.logger.Info(ctx, "Selecting prompt template: %s", promptFile)

	source := filepath.Join(p.cfg.Prompts.Dir, promptFile)
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("prompt template not found: %s", source)
	}

	if p.cfg.DryRun {
		p.logger.Info(ctx, "DRY RUN: Would copy prompt template: %s", promptFile)
		return nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read prompt template: %w", err)
	}
	if err := os.WriteFile(ws.Prompt, data, 0644); err != nil {
		return fmt.Errorf("copy prompt template: %w", err)
	}

	p.logger.Info(ctx, "Copied prompt template: %s", promptFile)
	return nil
}

func (p *implPipeline) writeNote(ctx context.Context, ws *workspace.Workspace, notes string) error {
	p.logger.Info(ctx, "Creating note.txt...")
	if p.cfg.DryRun {
		p.logger.Info(ctx, "DRY RUN: Would create note.txt")
		return nil
	}
	if err := os.WriteFile(ws.Note, []byte(notes), 0644); err != nil {
		return fmt.Errorf("create note.txt: %w", err)
	}
	return nil
}
