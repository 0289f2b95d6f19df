package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ably/internal/config"
)

// errFindings makes `check --fail-on-findings` exit non-zero without an
// error message.
var errFindings = errors.New("problems found")

const (
	exitFindings = 1
	exitFailure  = 2
)

func exitCode(err error) int {
	if errors.Is(err, errFindings) {
		return exitFindings
	}
	return exitFailure
}

// runState holds what PersistentPreRunE prepared for the subcommand.
type runState struct {
	cfg      config.Config
	logger   zerolog.Logger
	cleanups []func()
}

var state = runState{cfg: config.Default(), logger: zerolog.Nop()}

func setupRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	state.cfg = cfg

	logger, closeLog, err := setupLogger(cmd, cfg.Log)
	if err != nil {
		return err
	}
	state.logger = logger
	state.cleanups = append(state.cleanups, closeLog)
	if cfg.Path != "" {
		logger.Debug().Str("path", cfg.Path).Msg("settings loaded")
	}
	for _, key := range cfg.Unknown {
		logger.Warn().Str("key", key).Str("path", cfg.Path).Msg("unknown setting ignored")
	}

	cleanupTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	state.cleanups = append(state.cleanups, cleanupTrace)

	cleanupProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	state.cleanups = append(state.cleanups, cleanupProf)
	return nil
}

func teardownRun() {
	for i := len(state.cleanups) - 1; i >= 0; i-- {
		state.cleanups[i]()
	}
	state.cleanups = nil
}

// loadConfig reads --config, or discovers the settings file from the checked
// path (check) or the working directory.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if explicit != "" {
		return config.Load(explicit)
	}
	start := "."
	if cmd.Name() == checkCmd.Name() && len(args) > 0 {
		start = args[0]
		if info, statErr := os.Stat(start); statErr == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
	}
	cfg, err := config.Discover(start)
	if errors.Is(err, config.ErrNotFound) {
		return cfg, nil
	}
	return cfg, err
}

// setupLogger builds the zerolog logger: a console writer on stderr for the
// text format, JSON otherwise, plus an optional log file.
func setupLogger(cmd *cobra.Command, cfg config.LogConfig) (zerolog.Logger, func(), error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if levelStr == "" {
		levelStr = cfg.Level
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}

	var stderr io.Writer = os.Stderr
	// stdout/stdin несут протокол LSP, консольный формат там не нужен
	if cfg.Format != "json" && cmd.Name() != lspCmd.Name() {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal(os.Stderr), TimeFormat: "15:04:05"}
	}
	writers := []io.Writer{stderr}
	closeLog := func() {}
	if cfg.File != "" {
		// #nosec G304 -- path comes from the settings file
		file, err := os.OpenFile(filepath.Clean(cfg.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
		closeLog = func() { _ = file.Close() }
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return logger, closeLog, nil
}
