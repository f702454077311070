package limits

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) AttachFile(path string) error                               { return nil }
func (nopLogger) Close() error                                               { return nil }

func TestValidatedDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		in       GenerationDefaults
		wantTemp float32
		wantTopP float32
		wantCand int
	}{
		{
			name:     "in-range values pass through",
			in:       GenerationDefaults{Temperature: 0.3, TopP: 0.95, TopK: 64, CandidateCount: 1},
			wantTemp: 0.3, wantTopP: 0.95, wantCand: 1,
		},
		{
			name:     "temperature above range clamps to 2.0",
			in:       GenerationDefaults{Temperature: 3.5, TopP: 0.5, CandidateCount: 2},
			wantTemp: 2.0, wantTopP: 0.5, wantCand: 2,
		},
		{
			name:     "temperature below range clamps to 0.0",
			in:       GenerationDefaults{Temperature: -1, TopP: 0.5, CandidateCount: 2},
			wantTemp: 0.0, wantTopP: 0.5, wantCand: 2,
		},
		{
			name:     "top_p above range clamps to 1.0",
			in:       GenerationDefaults{Temperature: 1, TopP: 1.5, CandidateCount: 1},
			wantTemp: 1, wantTopP: 1.0, wantCand: 1,
		},
		{
			name:     "candidate_count above range clamps to 8",
			in:       GenerationDefaults{Temperature: 1, TopP: 0.5, CandidateCount: 20},
			wantTemp: 1, wantTopP: 0.5, wantCand: 8,
		},
		{
			name:     "candidate_count below range clamps to 1",
			in:       GenerationDefaults{Temperature: 1, TopP: 0.5, CandidateCount: 0},
			wantTemp: 1, wantTopP: 0.5, wantCand: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ModelLimits{ParameterDefaults: tt.in}
			got := l.ValidatedDefaults(ctx, nopLogger{})

			if got.Temperature != tt.wantTemp {
				t.Errorf("Temperature = %v, want %v", got.Temperature, tt.wantTemp)
			}
			if got.TopP != tt.wantTopP {
				t.Errorf("TopP = %v, want %v", got.TopP, tt.wantTopP)
			}
			if got.CandidateCount != tt.wantCand {
				t.Errorf("CandidateCount = %v, want %v", got.CandidateCount, tt.wantCand)
			}
			if got.TopK != 64 {
				t.Errorf("TopK = %v, want 64 regardless of input", got.TopK)
			}
		})
	}
}

func TestTopKForcedRegardlessOfInput(t *testing.T) {
	ctx := context.Background()
	for _, topK := range []float32{0, 1, 40, 64, 500} {
		l := ModelLimits{ParameterDefaults: GenerationDefaults{Temperature: 1, TopP: 0.5, TopK: topK, CandidateCount: 1}}
		got := l.ValidatedDefaults(ctx, nopLogger{})
		if got.TopK != 64 {
			t.Errorf("TopK input %v: got %v, want 64", topK, got.TopK)
		}
	}
}

func TestLoadMissingFileFallsBackToBuiltins(t *testing.T) {
	ctx := context.Background()
	table := Load(ctx, filepath.Join(t.TempDir(), "absent.yaml"), nopLogger{})

	l, err := table.ForModel("gemini-2.5-pro")
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if l.MaxInputTokens != 1048576 {
		t.Errorf("MaxInputTokens = %d, want 1048576", l.MaxInputTokens)
	}
	if l.MaxOutputTokens != 65535 {
		t.Errorf("MaxOutputTokens = %d, want 65535", l.MaxOutputTokens)
	}
	if l.MaxImagesPerPrompt != 3000 {
		t.Errorf("MaxImagesPerPrompt = %d, want 3000", l.MaxImagesPerPrompt)
	}

	flash20, err := table.ForModel("gemini-2.0-flash")
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if flash20.MaxOutputTokens != 8192 {
		t.Errorf("gemini-2.0-flash MaxOutputTokens = %d, want 8192", flash20.MaxOutputTokens)
	}
}

func TestLoadFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model_limits.yaml")

	content := `
custom-model:
  max_input_tokens: 1000
  max_output_tokens: 500
  max_images_per_prompt: 10
  max_image_size_mb: 2
  max_audio_length_hours: 1.5
  max_audio_files_per_prompt: 1
  parameter_defaults:
    temperature: 0.7
    top_p: 0.9
    top_k: 40
    candidate_count: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table := Load(ctx, path, nopLogger{})
	l, err := table.ForModel("custom-model")
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if l.MaxImagesPerPrompt != 10 {
		t.Errorf("MaxImagesPerPrompt = %d, want 10", l.MaxImagesPerPrompt)
	}
	if l.ParameterDefaults.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", l.ParameterDefaults.Temperature)
	}
}

func TestForModelFallsBackToPro(t *testing.T) {
	ctx := context.Background()
	table := Load(ctx, "does-not-exist.yaml", nopLogger{})

	l, err := table.ForModel("some-future-model")
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if l.MaxInputTokens != 1048576 {
		t.Errorf("fallback MaxInputTokens = %d, want 1048576", l.MaxInputTokens)
	}
}
