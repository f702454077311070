package pipeline

import (
	"github.com/meetingdoc/meetingdoc/internal/config"
	"github.com/meetingdoc/meetingdoc/internal/gemini"
	"github.com/meetingdoc/meetingdoc/internal/limits"
	"github.com/meetingdoc/meetingdoc/internal/logger"
	"github.com/meetingdoc/meetingdoc/internal/media"
	"github.com/meetingdoc/meetingdoc/internal/timestamp"
	"github.com/meetingdoc/meetingdoc/pkg/retry"
)

type implPipeline struct {
	cfg      *config.Config
	limits   limits.Table
	tools    media.Tools
	gemini   gemini.Service
	resolver *timestamp.Resolver
	logger   logger.Logger
	retry    retry.Options
}

// New creates a new Pipeline instance
func New(cfg *config.Config, table limits.Table, tools media.Tools, svc gemini.Service, resolver *timestamp.Resolver, log logger.Logger) Pipeline {
	return &implPipeline{
		cfg:      cfg,
		limits:   table,
		tools:    tools,
		gemini:   svc,
		resolver: resolver,
		logger:   log,
		retry:    retry.NewOptions(gemini.IsTransient),
	}
}
