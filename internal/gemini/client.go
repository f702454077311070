package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/meetingdoc/meetingdoc/internal/logger"
)

type implService struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// New creates a Service backed by the Google GenAI API. The API key is
// required; a missing key is a configuration error raised before any
// network call.
func New(ctx context.Context, apiKey, model string, log logger.Logger) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &implService{
		client: client,
		model:  model,
		logger: log,
	}, nil
}

func (s *implService) CountTokens(ctx context.Context, text string) (int32, error) {
	resp, err := s.client.Models.CountTokens(ctx, s.model, genai.Text(text), nil)
	if err != nil {
		return 0, classify(fmt.Errorf("count tokens: %w", err))
	}
	return resp.TotalTokens, nil
}

func (s *implService) UploadFile(ctx context.Context, path string) (Handle, error) {
	file, err := s.client.Files.UploadFromPath(ctx, path, nil)
	if err != nil {
		return Handle{}, classify(fmt.Errorf("upload file: %w", err))
	}
	return Handle{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
	}, nil
}

// Generate sends the assembled request: the prompt text first, then each
// remote handle in the order given.
func (s *implService) Generate(ctx context.Context, prompt string, handles []Handle, params GenerateParams) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, h := range handles {
		parts = append(parts, genai.NewPartFromURI(h.URI, h.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Defaults.Temperature),
		TopP:            genai.Ptr(params.Defaults.TopP),
		TopK:            genai.Ptr(params.Defaults.TopK),
		CandidateCount:  int32(params.Defaults.CandidateCount),
		MaxOutputTokens: params.MaxOutputTokens,
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", classify(fmt.Errorf("generate content: %w", err))
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text, nil
}

func (s *implService) DeleteFile(ctx context.Context, name string) error {
	if _, err := s.client.Files.Delete(ctx, name, nil); err != nil {
		return classify(fmt.Errorf("delete file %s: %w", name, err))
	}
	return nil
}
