package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meetingdoc/meetingdoc/internal/config"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) AttachFile(path string) error                               { return nil }
func (nopLogger) Close() error                                               { return nil }

// fakeExecutor records invocations and plays back canned results.
type fakeExecutor struct {
	commands [][]string
	stdout   string
	err      error
	onRun    func(name string, args []string)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.commands = append(f.commands, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return f.stdout, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writePreset(t *testing.T, cfg *config.Config) {
	t.Helper()
	preset := filepath.Join(t.TempDir(), "Meeting.json")
	if err := os.WriteFile(preset, []byte(`{"PresetList":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.PresetFile = preset
}

func TestTranscodeVerifiesOutput(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	writePreset(t, cfg)
	out := filepath.Join(t.TempDir(), "small.mp4")

	tests := []struct {
		name    string
		prepare func(f *fakeExecutor)
		wantErr string
	}{
		{
			name: "exit zero but missing output fails",
			prepare: func(f *fakeExecutor) {
				// Tool "succeeds" without writing anything.
			},
			wantErr: "output file was not created",
		},
		{
			name: "exit zero but empty output fails",
			prepare: func(f *fakeExecutor) {
				f.onRun = func(name string, args []string) {
					os.WriteFile(out, nil, 0644)
				}
			},
			wantErr: "empty output file",
		},
		{
			name: "non-empty output succeeds",
			prepare: func(f *fakeExecutor) {
				f.onRun = func(name string, args []string) {
					os.WriteFile(out, []byte("mp4data"), 0644)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Remove(out)
			exec := &fakeExecutor{}
			tt.prepare(exec)

			tools := New(cfg, exec, nopLogger{})
			err := tools.Transcode(ctx, "input.mov", out)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Transcode() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Transcode() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTranscodeMissingPresetFile(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Tools.PresetFile = filepath.Join(t.TempDir(), "absent.json")

	exec := &fakeExecutor{}
	tools := New(cfg, exec, nopLogger{})

	err := tools.Transcode(ctx, "input.mov", filepath.Join(t.TempDir(), "small.mp4"))
	if err == nil || !strings.Contains(err.Error(), "preset file not found") {
		t.Errorf("Transcode() error = %v, want preset file not found", err)
	}
	if len(exec.commands) != 0 {
		t.Error("missing preset must abort before tool invocation")
	}
}

func TestTranscodeToolFailureCarriesDiagnostics(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	writePreset(t, cfg)

	exec := &fakeExecutor{err: fmt.Errorf("command 'HandBrakeCLI' failed: exit status 1\nstderr: scan failed")}
	tools := New(cfg, exec, nopLogger{})

	err := tools.Transcode(ctx, "input.mov", filepath.Join(t.TempDir(), "small.mp4"))
	if err == nil || !strings.Contains(err.Error(), "scan failed") {
		t.Errorf("Transcode() error = %v, want captured stderr", err)
	}
}

func TestExtractAudioCommandShape(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	tools := New(cfg, exec, nopLogger{})

	if err := tools.ExtractAudio(ctx, "session/small.mp4", "session/audio.m4a"); err != nil {
		t.Fatalf("ExtractAudio() error = %v", err)
	}

	if len(exec.commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(exec.commands))
	}
	got := strings.Join(exec.commands[0], " ")
	want := "ffmpeg -i session/small.mp4 -vn -c:a copy session/audio.m4a"
	if got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestExtractFramesCommandShape(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Frames.IntervalSeconds = 30
	framesDir := filepath.Join(t.TempDir(), "frames")

	exec := &fakeExecutor{}
	tools := New(cfg, exec, nopLogger{})

	if err := tools.ExtractFrames(ctx, "small.mp4", framesDir); err != nil {
		t.Fatalf("ExtractFrames() error = %v", err)
	}

	if _, err := os.Stat(framesDir); err != nil {
		t.Errorf("frames directory not created: %v", err)
	}
	got := strings.Join(exec.commands[0], " ")
	if !strings.Contains(got, "fps=1/30") {
		t.Errorf("command %q missing sampling interval", got)
	}
	if !strings.Contains(got, "-q:v 2") {
		t.Errorf("command %q missing quality flag", got)
	}
}

func TestProbeCreationTime(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	tests := []struct {
		name    string
		stdout  string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "creation_time present",
			stdout: `{"format":{"tags":{"creation_time":"2025-06-01T10:30:00.000000Z"}}}`,
			want:   time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "creation_time absent",
			stdout:  `{"format":{"tags":{}}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			stdout:  "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{stdout: tt.stdout}
			tools := New(cfg, exec, nopLogger{})

			got, err := tools.ProbeCreationTime(ctx, "video.mp4")
			if tt.wantErr {
				if err == nil {
					t.Error("ProbeCreationTime() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("ProbeCreationTime() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProbeDuration(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	exec := &fakeExecutor{stdout: "5432.10\n"}
	tools := New(cfg, exec, nopLogger{})

	seconds, err := tools.ProbeDuration(ctx, "audio.m4a")
	if err != nil {
		t.Fatalf("ProbeDuration() error = %v", err)
	}
	if seconds != 5432.10 {
		t.Errorf("seconds = %v, want 5432.10", seconds)
	}
}

func TestDryRunExecutesNothing(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	writePreset(t, cfg)
	cfg.DryRun = true

	exec := &fakeExecutor{}
	tools := New(cfg, exec, nopLogger{})
	framesDir := filepath.Join(t.TempDir(), "frames")

	if err := tools.Transcode(ctx, "in.mov", "small.mp4"); err != nil {
		t.Errorf("Transcode() dry run error = %v", err)
	}
	if err := tools.ExtractAudio(ctx, "small.mp4", "audio.m4a"); err != nil {
		t.Errorf("ExtractAudio() dry run error = %v", err)
	}
	if err := tools.ExtractFrames(ctx, "small.mp4", framesDir); err != nil {
		t.Errorf("ExtractFrames() dry run error = %v", err)
	}

	if len(exec.commands) != 0 {
		t.Errorf("dry run executed %d commands, want 0", len(exec.commands))
	}
	if _, err := os.Stat(framesDir); !os.IsNotExist(err) {
		t.Error("dry run must not create the frames directory")
	}
}
