package gemini

import (
	"context"

	"github.com/meetingdoc/meetingdoc/internal/limits"
)

// Handle identifies a file uploaded to the generative service.
type Handle struct {
	Name     string
	URI      string
	MIMEType string
}

// GenerateParams carries the numeric generation parameters for one request.
type GenerateParams struct {
	Defaults        limits.GenerationDefaults
	MaxOutputTokens int32
}

// Service defines the interface to the generative AI backend. Errors
// crossing this boundary are already classified: transient
// (service-unavailable class) failures come back as *TransientError,
// everything else passes through untagged.
type Service interface {
	CountTokens(ctx context.Context, text string) (int32, error)
	UploadFile(ctx context.Context, path string) (Handle, error)
	Generate(ctx context.Context, prompt string, handles []Handle, params GenerateParams) (string, error)
	DeleteFile(ctx context.Context, name string) error
}
