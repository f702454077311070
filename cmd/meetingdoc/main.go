package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetingdoc/meetingdoc/internal/config"
	"github.com/meetingdoc/meetingdoc/internal/gemini"
	"github.com/meetingdoc/meetingdoc/internal/limits"
	"github.com/meetingdoc/meetingdoc/internal/logger"
	"github.com/meetingdoc/meetingdoc/internal/media"
	"github.com/meetingdoc/meetingdoc/internal/pipeline"
	"github.com/meetingdoc/meetingdoc/internal/timestamp"
	"github.com/meetingdoc/meetingdoc/internal/watcher"
	"github.com/meetingdoc/meetingdoc/pkg/executor"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	debug      bool
	dryRun     bool
	noCleanup  bool
}

type processFlags struct {
	video     string
	prompt    string
	notes     string
	targetDir string
}

func newRootCommand() *cobra.Command {
	gf := &globalFlags{}
	pf := &processFlags{}

	root := &cobra.Command{
		Use:   "meetingdoc",
		Short: "Turn meeting recordings into structured documentation",
		Long: `meetingdoc processes a meeting video into a documented session directory:
it normalizes the video, extracts the audio track and periodic frames,
uploads them to Google Gemini, and saves the generated meeting document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), gf, pf)
		},
	}

	root.PersistentFlags().StringVar(&gf.configPath, "config", "config.yaml", "path to configuration file")
	root.PersistentFlags().BoolVar(&gf.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&gf.dryRun, "dry-run", false, "simulate the run without side effects")
	root.PersistentFlags().BoolVar(&gf.noCleanup, "no-cleanup", false, "keep extracted frames after success")

	addProcessFlags(root, pf)

	process := &cobra.Command{
		Use:   "process",
		Short: "Process a single meeting video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), gf, pf)
		},
	}
	addProcessFlags(process, pf)

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Monitor the inbox directory and process new videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), gf)
		},
	}

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Verify the configured external tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), gf)
		},
	}

	root.AddCommand(process, watch, setup)
	return root
}

func addProcessFlags(cmd *cobra.Command, pf *processFlags) {
	cmd.Flags().StringVar(&pf.video, "video", "", "path to the meeting video (required)")
	cmd.Flags().StringVar(&pf.prompt, "prompt", "", `prompt template name or shortcut ("only transcript", "without transcript")`)
	cmd.Flags().StringVar(&pf.notes, "notes", "", "notes to include alongside the recording")
	cmd.Flags().StringVarP(&pf.targetDir, "dir", "d", "", "target directory (default: timestamp-named)")
}

func loadConfig(gf *globalFlags) (*config.Config, logger.Logger, error) {
	path := gf.configPath
	if path == "config.yaml" {
		// The default config file is optional; an explicitly passed
		// path must exist.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	cfg.Debug = gf.debug
	cfg.DryRun = gf.dryRun
	cfg.NoCleanup = gf.noCleanup
	if gf.debug {
		cfg.Logging.Level = "debug"
	}

	return cfg, logger.New(cfg.Logging.Level), nil
}

func runProcess(ctx context.Context, gf *globalFlags, pf *processFlags) error {
	cfg, log, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	if pf.video == "" {
		fmt.Fprintln(os.Stderr, "Missing required flag: --video")
		return errors.New("missing video path")
	}
	if _, err := os.Stat(pf.video); err != nil {
		log.Error(ctx, "Video file not found: %s", pf.video)
		return err
	}
	if pf.targetDir != "" {
		cfg.Output.TargetDirectory = pf.targetDir
	}

	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		return err
	}

	if err := p.Run(ctx, pf.video, pf.prompt, pf.notes); err != nil {
		log.Error(ctx, "Processing failed: %v", err)
		return err
	}
	return nil
}

func runWatch(ctx context.Context, gf *globalFlags) error {
	cfg, log, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	if err := os.MkdirAll(cfg.Watch.Inbox, 0755); err != nil {
		log.Error(ctx, "Failed to create inbox directory: %v", err)
		return err
	}

	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		return err
	}

	w, err := watcher.New(cfg.Watch.Inbox, func(ctx context.Context, videoPath string) error {
		// Each video resolves its own timestamp-named directory; an
		// explicit -d override would funnel every inbox video into one
		// directory, so watch mode ignores it.
		cfg.Output.TargetDirectory = ""
		return p.Run(ctx, videoPath, "", "")
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "meetingdoc watch mode is ready")
	log.Info(ctx, "Monitoring: %s", cfg.Watch.Inbox)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return err
	}
	return nil
}

func runSetup(ctx context.Context, gf *globalFlags) error {
	cfg, log, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	log.Info(ctx, "Checking external tools...")

	tools := map[string]string{
		"ffmpeg":       cfg.Tools.FFmpegPath,
		"ffprobe":      cfg.Tools.FFprobePath,
		"HandBrakeCLI": cfg.Tools.HandBrakePath,
	}

	missing := 0
	for name, path := range tools {
		resolved, err := exec.LookPath(path)
		if err != nil {
			log.Error(ctx, "  %s: NOT FOUND (%s)", name, path)
			missing++
			continue
		}
		log.Info(ctx, "  %s: %s", name, resolved)
	}

	if _, err := os.Stat(cfg.Tools.PresetFile); err != nil {
		log.Error(ctx, "  preset file: NOT FOUND (%s)", cfg.Tools.PresetFile)
		missing++
	} else {
		log.Info(ctx, "  preset file: %s", cfg.Tools.PresetFile)
	}
	if _, err := os.Stat(cfg.Prompts.Dir); err != nil {
		log.Error(ctx, "  prompts directory: NOT FOUND (%s)", cfg.Prompts.Dir)
		missing++
	} else {
		log.Info(ctx, "  prompts directory: %s", cfg.Prompts.Dir)
	}

	if cfg.Gemini.APIKey == "" {
		log.Warn(ctx, "  GEMINI_API_KEY is not set")
	} else {
		log.Info(ctx, "  GEMINI_API_KEY is set")
	}

	if missing > 0 {
		return fmt.Errorf("%d required tools missing", missing)
	}
	log.Info(ctx, "All external tools are available")
	return nil
}

func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (pipeline.Pipeline, error) {
	exec := executor.New()
	tools := media.New(cfg, exec, log)
	table := limits.Load(ctx, cfg.Gemini.LimitsFile, log)

	// The generative client needs a key and is never contacted in a
	// simulated run, so dry-run skips constructing it entirely.
	var svc gemini.Service
	if !cfg.DryRun {
		var err error
		svc, err = gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return nil, err
		}
	}

	resolver := timestamp.New(tools, promptManualTime(), cfg.DryRun, log)
	return pipeline.New(cfg, table, tools, svc, resolver, log), nil
}

// promptManualTime asks the user for the recording date and time on stdin.
func promptManualTime() timestamp.PromptFunc {
	return func(ctx context.Context) (time.Time, error) {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Enter the recording date (YYYY-MM-DD): ")
		date, err := reader.ReadString('\n')
		if err != nil {
			return time.Time{}, fmt.Errorf("read date: %w", err)
		}
		fmt.Print("Enter the recording time (HH:MM): ")
		clock, err := reader.ReadString('\n')
		if err != nil {
			return time.Time{}, fmt.Errorf("read time: %w", err)
		}

		value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
		dt, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse manual datetime %q: %w", value, err)
		}
		return dt, nil
	}
}
