package media

import (
	"github.com/meetingdoc/meetingdoc/internal/config"
	"github.com/meetingdoc/meetingdoc/internal/logger"
	"github.com/meetingdoc/meetingdoc/pkg/executor"
)

type implTools struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Tools instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Tools {
	return &implTools{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
