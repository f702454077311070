// Package limits holds per-model resource ceilings and generation-parameter
// defaults, and validates materialized assets against them before upload.
package limits

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meetingdoc/meetingdoc/internal/logger"
)

// fallbackModel is used when the configured model has no limits entry.
const fallbackModel = "gemini-2.5-pro"

// ModelLimits holds the ceilings and generation defaults for one model.
// Loaded once per run and treated as immutable afterwards.
type ModelLimits struct {
	MaxInputTokens         int32              `yaml:"max_input_tokens"`
	MaxOutputTokens        int32              `yaml:"max_output_tokens"`
	MaxImagesPerPrompt     int                `yaml:"max_images_per_prompt"`
	MaxImageSizeMB         float64            `yaml:"max_image_size_mb"`
	MaxAudioLengthHours    float64            `yaml:"max_audio_length_hours"`
	MaxAudioFilesPerPrompt int                `yaml:"max_audio_files_per_prompt"`
	ParameterDefaults      GenerationDefaults `yaml:"parameter_defaults"`
}

// GenerationDefaults are the tunable generation parameters sent with every
// request. Use ModelLimits.ValidatedDefaults to get a range-clamped copy.
type GenerationDefaults struct {
	Temperature    float32 `yaml:"temperature"`
	TopP           float32 `yaml:"top_p"`
	TopK           float32 `yaml:"top_k"`
	CandidateCount int     `yaml:"candidate_count"`
}

// Table maps model identifiers to their limits.
type Table map[string]ModelLimits

func defaultParameterDefaults() GenerationDefaults {
	return GenerationDefaults{
		Temperature:    0.3,
		TopP:           0.95,
		TopK:           64,
		CandidateCount: 1,
	}
}

func builtinTable() Table {
	base := ModelLimits{
		MaxInputTokens:         1048576,
		MaxOutputTokens:        65535,
		MaxImagesPerPrompt:     3000,
		MaxImageSizeMB:         7,
		MaxAudioLengthHours:    8.4,
		MaxAudioFilesPerPrompt: 1,
		ParameterDefaults:      defaultParameterDefaults(),
	}

	flash20 := base
	flash20.MaxOutputTokens = 8192

	return Table{
		"gemini-2.5-pro":   base,
		"gemini-2.5-flash": base,
		"gemini-2.0-flash": flash20,
	}
}

// Load reads a limits table from the given YAML file. A missing or
// unreadable file is not fatal: the built-in table is used instead, with a
// warning. The result is fixed for the rest of the run.
func Load(ctx context.Context, path string, log logger.Logger) Table {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn(ctx, "Could not load model limits from %s: %v. Using built-in defaults", path, err)
		return builtinTable()
	}

	table := Table{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		log.Warn(ctx, "Could not parse model limits from %s: %v. Using built-in defaults", path, err)
		return builtinTable()
	}

	for name, l := range table {
		if (l.ParameterDefaults == GenerationDefaults{}) {
			l.ParameterDefaults = defaultParameterDefaults()
			table[name] = l
		}
	}

	return table
}

// ForModel returns the limits entry for the named model, falling back to
// gemini-2.5-pro when no entry exists.
func (t Table) ForModel(name string) (ModelLimits, error) {
	if l, ok := t[name]; ok {
		return l, nil
	}
	if l, ok := t[fallbackModel]; ok {
		return l, nil
	}
	return ModelLimits{}, fmt.Errorf("no limits configured for model %s", name)
}

// ValidatedDefaults returns the generation defaults clamped to their valid
// ranges: temperature [0.0, 2.0], top_p [0.0, 1.0], candidate_count [1, 8].
// top_k is always forced to 64 regardless of input. Each clamp is
// independent; out-of-range inputs produce a warning.
func (l ModelLimits) ValidatedDefaults(ctx context.Context, log logger.Logger) GenerationDefaults {
	d := l.ParameterDefaults
	out := GenerationDefaults{TopK: 64}

	out.Temperature = clampFloat32(d.Temperature, 0.0, 2.0)
	if out.Temperature != d.Temperature {
		log.Warn(ctx, "temperature %v is outside valid range [0.0-2.0], clamping to %v", d.Temperature, out.Temperature)
	}

	out.TopP = clampFloat32(d.TopP, 0.0, 1.0)
	if out.TopP != d.TopP {
		log.Warn(ctx, "top_p %v is outside valid range [0.0-1.0], clamping to %v", d.TopP, out.TopP)
	}

	out.CandidateCount = clampInt(d.CandidateCount, 1, 8)
	if out.CandidateCount != d.CandidateCount {
		log.Warn(ctx, "candidate_count %v is outside valid range [1-8], clamping to %v", d.CandidateCount, out.CandidateCount)
	}

	return out
}

func clampFloat32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
