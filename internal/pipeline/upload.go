package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meetingdoc/meetingdoc/internal/docwriter"
	"github.com/meetingdoc/meetingdoc/internal/gemini"
	"github.com/meetingdoc/meetingdoc/internal/limits"
	"github.com/meetingdoc/meetingdoc/internal/workspace"
	"github.com/meetingdoc/meetingdoc/pkg/retry"
)

// assetKind tags a manifest entry. Audio is mandatory-critical: its upload
// failure aborts the run. Frames and notes are best-effort.
type assetKind string

const (
	kindAudio assetKind = "audio"
	kindFrame assetKind = "frame"
	kindNote  assetKind = "note"
)

type manifestEntry struct {
	kind assetKind
	path string
}

// uploadedSet holds the remote handles from one run's uploads, in the
// order the generation request expects them.
type uploadedSet struct {
	audio  *gemini.Handle
	frames []gemini.Handle
	note   *gemini.Handle
}

func (u *uploadedSet) all() []gemini.Handle {
	var handles []gemini.Handle
	if u.audio != nil {
		handles = append(handles, *u.audio)
	}
	handles = append(handles, u.frames...)
	if u.note != nil {
		handles = append(handles, *u.note)
	}
	return handles
}

// uploadAndGenerate performs the remote half of the pipeline: limit
// checking, sequential asset upload, retried content generation, result
// persistence, and best-effort release of the uploaded handles.
func (p *implPipeline) uploadAndGenerate(ctx context.Context, ws *workspace.Workspace) error {
	p.logger.Info(ctx, "Uploading to Google Gemini...")

	modelLimits, err := p.limits.ForModel(p.cfg.Gemini.Model)
	if err != nil {
		return err
	}
	p.logModelLimits(ctx, modelLimits)

	validator := limits.NewValidator(modelLimits, p.logger)

	promptText, err := p.readPrompt(ctx, ws)
	if err != nil {
		return err
	}

	if !p.cfg.DryRun {
		validator.CheckPromptTokens(ctx, p.gemini, promptText)
	}

	manifest := p.buildManifest(ctx, ws, validator)

	if p.cfg.DryRun {
		p.logger.Info(ctx, "DRY RUN: Would upload files to Gemini and save results")
		return nil
	}

	uploaded, err := p.uploadManifest(ctx, manifest)
	if err != nil {
		return err
	}

	// Uploaded handles are released no matter how generation turns out.
	defer p.releaseUploads(ctx, uploaded)

	params := gemini.GenerateParams{
		Defaults:        modelLimits.ValidatedDefaults(ctx, p.logger),
		MaxOutputTokens: modelLimits.MaxOutputTokens,
	}
	p.logger.Info(ctx, "Generating content with %s...", p.cfg.Gemini.Model)
	p.logger.Info(ctx, "Using max_output_tokens: %d", params.MaxOutputTokens)
	p.logGenerationDefaults(ctx, params.Defaults)

	handles := uploaded.all()
	text, err := retry.Do(ctx, p.logger, p.retry, func() (string, error) {
		return p.gemini.Generate(ctx, promptText, handles, params)
	})
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty response from gemini")
	}

	if err := os.WriteFile(ws.Document, []byte(text), 0644); err != nil {
		return fmt.Errorf("save meeting.md: %w", err)
	}
	p.logger.Info(ctx, "Gemini analysis completed and saved to meeting.md")

	if p.cfg.Output.ExportDocx {
		title := filepath.Base(ws.Dir)
		if err := docwriter.Export(title, text, ws.Docx); err != nil {
			p.logger.Warn(ctx, "Failed to export meeting.docx: %v", err)
		} else {
			p.logger.Info(ctx, "Exported meeting.docx")
		}
	}

	return nil
}

func (p *implPipeline) readPrompt(ctx context.Context, ws *workspace.Workspace) (string, error) {
	if p.cfg.DryRun {
		return "# DRY RUN - Prompt content would be read here", nil
	}
	data, err := os.ReadFile(ws.Prompt)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	return string(data), nil
}

// buildManifest collects the materialized assets in upload order: audio,
// then frames, then the note. Missing best-effort assets are simply
// absent; the limit validator runs as each kind is collected.
func (p *implPipeline) buildManifest(ctx context.Context, ws *workspace.Workspace, validator *limits.Validator) []manifestEntry {
	var manifest []manifestEntry

	if _, err := os.Stat(ws.Audio); err == nil {
		validator.CheckAudioDuration(ctx, p.tools, ws.Audio)
		manifest = append(manifest, manifestEntry{kind: kindAudio, path: ws.Audio})
	}

	frames, err := ws.Frames()
	if err != nil {
		p.logger.Warn(ctx, "Could not list frames: %v", err)
	}
	frames = validator.FilterFrames(ctx, frames)
	for _, frame := range frames {
		manifest = append(manifest, manifestEntry{kind: kindFrame, path: frame})
	}

	if info, err := os.Stat(ws.Note); err == nil && info.Size() > 0 {
		manifest = append(manifest, manifestEntry{kind: kindNote, path: ws.Note})
	}

	return manifest
}

// uploadManifest uploads the entries sequentially. An audio failure is
// fatal; frame and note failures are logged and skipped.
func (p *implPipeline) uploadManifest(ctx context.Context, manifest []manifestEntry) (*uploadedSet, error) {
	uploaded := &uploadedSet{}
	total := len(manifest)

	for i, entry := range manifest {
		handle, err := p.gemini.UploadFile(ctx, entry.path)
		if err != nil {
			p.logger.Error(ctx, "Failed to upload %s: %v", filepath.Base(entry.path), err)
			if entry.kind == kindAudio {
				// Audio is critical; without it there is nothing to analyze.
				return nil, fmt.Errorf("upload audio: %w", err)
			}
			continue
		}

		switch entry.kind {
		case kindAudio:
			h := handle
			uploaded.audio = &h
		case kindFrame:
			uploaded.frames = append(uploaded.frames, handle)
		case kindNote:
			h := handle
			uploaded.note = &h
		}

		p.logger.Info(ctx, "Uploading files to Gemini: %d/%d (%s)", i+1, total, strings.ToUpper(string(entry.kind)))
	}

	if total > 0 {
		p.logger.Info(ctx, "Uploading files to Gemini: %d/%d completed", total, total)
	}

	return uploaded, nil
}

// releaseUploads deletes every uploaded remote handle. Individual
// failures are logged and never escalated.
func (p *implPipeline) releaseUploads(ctx context.Context, uploaded *uploadedSet) {
	handles := uploaded.all()
	if len(handles) == 0 {
		return
	}

	p.logger.Info(ctx, "Cleaning up uploaded files...")
	cleaned := 0
	for _, h := range handles {
		if err := p.gemini.DeleteFile(ctx, h.Name); err != nil {
			p.logger.Warn(ctx, "Failed to cleanup uploaded file %s: %v", h.Name, err)
			continue
		}
		cleaned++
	}
	p.logger.Info(ctx, "Cleaned up %d/%d uploaded files", cleaned, len(handles))
}

func (p *implPipeline) logModelLimits(ctx context.Context, l limits.ModelLimits) {
	p.logger.Info(ctx, "Using model limits for %s:", p.cfg.Gemini.Model)
	p.logger.Info(ctx, "  max_input_tokens: %d", l.MaxInputTokens)
	p.logger.Info(ctx, "  max_output_tokens: %d", l.MaxOutputTokens)
	p.logger.Info(ctx, "  max_images_per_prompt: %d", l.MaxImagesPerPrompt)
	p.logger.Info(ctx, "  max_image_size_mb: %g", l.MaxImageSizeMB)
	p.logger.Info(ctx, "  max_audio_length_hours: %g", l.MaxAudioLengthHours)
	p.logger.Info(ctx, "  max_audio_files_per_prompt: %d", l.MaxAudioFilesPerPrompt)
}

func (p *implPipeline) logGenerationDefaults(ctx context.Context, d limits.GenerationDefaults) {
	p.logger.Info(ctx, "Using parameter defaults:")
	p.logger.Info(ctx, "  temperature: %g", d.Temperature)
	p.logger.Info(ctx, "  top_p: %g", d.TopP)
	p.logger.Info(ctx, "  top_k: %g", d.TopK)
	p.logger.Info(ctx, "  candidate_count: %d", d.CandidateCount)
}
