package config

import (
	"os"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Tools.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %v, want ffmpeg", cfg.Tools.FFmpegPath)
	}
	if cfg.Tools.HandBrakePath != "HandBrakeCLI" {
		t.Errorf("HandBrakePath = %v, want HandBrakeCLI", cfg.Tools.HandBrakePath)
	}
	if cfg.Tools.PresetName != "Meeting" {
		t.Errorf("PresetName = %v, want Meeting", cfg.Tools.PresetName)
	}
	if cfg.Frames.IntervalSeconds != 60 {
		t.Errorf("IntervalSeconds = %v, want 60", cfg.Frames.IntervalSeconds)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %v, want gemini-2.5-pro", cfg.Gemini.Model)
	}
	if cfg.DateTime.PreferredSource != "metadata" {
		t.Errorf("PreferredSource = %v, want metadata", cfg.DateTime.PreferredSource)
	}
}

func TestValidateRejectsNegativeInterval(t *testing.T) {
	cfg := &Config{Frames: FramesConfig{IntervalSeconds: -5}}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a negative frame interval")
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
tools:
  ffmpeg: "/usr/local/bin/ffmpeg"
  handbrake: "/opt/homebrew/bin/HandBrakeCLI"
  preset_file: "Meeting.json"
  preset_name: "Meeting"

frames:
  interval_seconds: 30

gemini:
  model: "gemini-2.5-flash"

datetime:
  preferred_source: "file_mtime"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tools.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %v, want /usr/local/bin/ffmpeg", cfg.Tools.FFmpegPath)
	}
	if cfg.Frames.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %v, want 30", cfg.Frames.IntervalSeconds)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %v, want gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.DateTime.PreferredSource != "file_mtime" {
		t.Errorf("PreferredSource = %v, want file_mtime", cfg.DateTime.PreferredSource)
	}

	// Unset fields still default.
	if cfg.Tools.FFprobePath != "ffprobe" {
		t.Errorf("FFprobePath = %v, want ffprobe", cfg.Tools.FFprobePath)
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gemini.APIKey != "test-key-123" {
		t.Errorf("APIKey = %v, want test-key-123", cfg.Gemini.APIKey)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestResolvePrompt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"only transcript shortcut", "only transcript", "prompt_only_transcript.txt"},
		{"without transcript shortcut", "without transcript", "prompt_wo_transcript.txt"},
		{"shortcut is case insensitive", "Only Transcript", "prompt_only_transcript.txt"},
		{"filename passes through", "prompt.txt", "prompt.txt"},
		{"custom filename passes through", "my_prompt.txt", "my_prompt.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrompt(tt.input); got != tt.want {
				t.Errorf("ResolvePrompt(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
