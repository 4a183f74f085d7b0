package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"negcheck/internal/config"
	"negcheck/internal/logger"
	"negcheck/internal/proc"
	"negcheck/internal/suite"
	"negcheck/internal/tui"
)

const usage = "Usage: negcheck <converter> <test_data_dir> <comparer>"

// errTestsFailed ends the process with exit code 1 after the report has
// already been printed.
var errTestsFailed = errors.New("tests failed")

var (
	configPath    string
	timeout       time.Duration
	quarantineDir string
	logLevel      string
	progress      bool
	noColor       bool
)

var rootCmd = &cobra.Command{
	Use:   "negcheck <converter> <test_data_dir> <comparer>",
	Short: "negcheck - conformance runner for BMP negative converters",
	Long: "negcheck runs a BMP negative converter over the ok, not_ok and twice fixture suites,\n" +
		"checks exit codes and output, and compares images with an external comparer.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 3 {
			return errors.New(usage)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTests,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.DurationVar(&timeout, "timeout", config.DefaultTimeout, "kill each converter/comparer run after this long (0 disables)")
	flags.StringVar(&quarantineDir, "quarantine-dir", config.DefaultQuarantineDir, "where failing outputs are moved")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	flags.BoolVar(&progress, "progress", false, "show a live progress view (terminal only)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
}

func runTests(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	converterArgs, err := cfg.ConverterArgs()
	if err != nil {
		return err
	}
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if noColor || !interactive {
		color.NoColor = true
	}
	logColor := !noColor && term.IsTerminal(int(os.Stderr.Fd()))
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, NoColor: !logColor}); err != nil {
		return err
	}
	defer logger.Sync()

	converter, dataDir, comparer, err := resolvePaths(args)
	if err != nil {
		return err
	}

	quarantine := suite.Quarantine{Dir: cfg.QuarantineDir}
	if err := quarantine.Prepare(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var outBuf, errBuf bytes.Buffer
	showProgress := cfg.Progress && interactive
	if showProgress {
		stdout, stderr = &outBuf, &errBuf
	}
	reporter := suite.NewReporter(stdout, stderr)

	opts := suite.Options{
		Converter:      converter,
		ConverterFlags: converterArgs,
		Comparator:     comparer,
		Runner:         proc.Exec{Timeout: cfg.Timeout},
		Quarantine:     quarantine,
		Reporter:       reporter,
	}

	var summary suite.Summary
	if showProgress {
		updates := make(chan suite.ProgressUpdate, 64)
		opts.Updates = updates
		program := tea.NewProgram(tui.NewModel(updates), tea.WithInput(nil))

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			for range updates {
			}
			close(uiDone)
		}()

		summary, err = suite.RunAll(ctx, dataDir, opts)
		close(updates)
		<-uiDone
		flush(cmd.OutOrStdout(), &outBuf)
		flush(cmd.ErrOrStderr(), &errBuf)
	} else {
		summary, err = suite.RunAll(ctx, dataDir, opts)
	}
	if err != nil {
		return fmt.Errorf("run suites: %w", err)
	}

	reporter = suite.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	reporter.Banner(summary.Failed)
	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(summary))

	if summary.Failed > 0 {
		return errTestsFailed
	}
	return nil
}

// loadConfig applies defaults, then the config file, then flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("quarantine-dir") {
		cfg.QuarantineDir = quarantineDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("progress") {
		cfg.Progress = progress
	}
	return cfg, cfg.Validate()
}

func resolvePaths(args []string) (string, string, string, error) {
	converter, err := filepath.Abs(args[0])
	if err != nil {
		return "", "", "", err
	}
	dataDir, err := filepath.Abs(args[1])
	if err != nil {
		return "", "", "", err
	}
	comparer, err := filepath.Abs(args[2])
	if err != nil {
		return "", "", "", err
	}

	if !isFile(converter) {
		return "", "", "", fmt.Errorf("Converter executable '%s' does not exist or is not a file.", converter)
	}
	if !isFile(comparer) {
		return "", "", "", fmt.Errorf("Comparer executable '%s' does not exist or is not a file.", comparer)
	}
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		return "", "", "", fmt.Errorf("Test data directory '%s' does not exist or is not a directory.", dataDir)
	}
	return converter, dataDir, comparer, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func flush(w io.Writer, buf *bytes.Buffer) {
	_, _ = io.Copy(w, buf)
}
