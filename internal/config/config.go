package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Tools    ToolsConfig    `yaml:"tools"`
	Frames   FramesConfig   `yaml:"frames"`
	Prompts  PromptsConfig  `yaml:"prompts"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	DateTime DateTimeConfig `yaml:"datetime"`
	Output   OutputConfig   `yaml:"output"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Runtime options set from the command line, not from YAML.
	Debug     bool `yaml:"-"`
	DryRun    bool `yaml:"-"`
	NoCleanup bool `yaml:"-"`
}

type ToolsConfig struct {
	FFmpegPath    string `yaml:"ffmpeg"`
	FFprobePath   string `yaml:"ffprobe"`
	HandBrakePath string `yaml:"handbrake"`
	PresetFile    string `yaml:"preset_file"`
	PresetName    string `yaml:"preset_name"`
}

type FramesConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type PromptsConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

type GeminiConfig struct {
	Model      string `yaml:"model"`
	LimitsFile string `yaml:"limits_file"`
	APIKey     string `yaml:"-"` // environment only, never YAML
}

type DateTimeConfig struct {
	PreferredSource string `yaml:"preferred_source"`
}

type OutputConfig struct {
	TargetDirectory string `yaml:"target_directory"`
	ExportDocx      bool   `yaml:"export_docx"`
}

type WatchConfig struct {
	Inbox string `yaml:"inbox"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Prompt shortcuts accepted on the command line and in prompts.default.
const (
	PromptFull           = "prompt.txt"
	PromptWoTranscript   = "prompt_wo_transcript.txt"
	PromptOnlyTranscript = "prompt_only_transcript.txt"
)

// Load reads the YAML config file, overlays environment variables from an
// optional .env file, and applies defaults. An empty path yields a
// defaults-only configuration.
func Load(path string) (*Config, error) {
	// Missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tools.FFmpegPath == "" {
		c.Tools.FFmpegPath = "ffmpeg"
	}
	if c.Tools.FFprobePath == "" {
		c.Tools.FFprobePath = "ffprobe"
	}
	if c.Tools.HandBrakePath == "" {
		c.Tools.HandBrakePath = "HandBrakeCLI"
	}
	if c.Tools.PresetFile == "" {
		c.Tools.PresetFile = "Meeting.json"
	}
	if c.Tools.PresetName == "" {
		c.Tools.PresetName = "Meeting"
	}
	if c.Frames.IntervalSeconds == 0 {
		c.Frames.IntervalSeconds = 60
	}
	if c.Frames.IntervalSeconds < 0 {
		return fmt.Errorf("frames.interval_seconds must be positive, got %d", c.Frames.IntervalSeconds)
	}
	if c.Prompts.Dir == "" {
		c.Prompts.Dir = "prompts"
	}
	if c.Prompts.Default == "" {
		c.Prompts.Default = PromptFull
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-pro"
	}
	if c.Gemini.LimitsFile == "" {
		c.Gemini.LimitsFile = "model_limits.yaml"
	}
	if c.DateTime.PreferredSource == "" {
		c.DateTime.PreferredSource = "metadata"
	}
	if c.Watch.Inbox == "" {
		c.Watch.Inbox = "data/inbox"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// ResolvePrompt maps the two named shortcuts to their template filenames.
// Anything else passes through unchanged.
func ResolvePrompt(input string) string {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "only transcript":
		return PromptOnlyTranscript
	case "without transcript":
		return PromptWoTranscript
	default:
		return input
	}
}
