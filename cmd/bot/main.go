// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/bot"
	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/console"
	"github.com/rovshanmuradov/limit-bot/internal/logger"
	"github.com/rovshanmuradov/limit-bot/internal/quote"
	"github.com/rovshanmuradov/limit-bot/internal/strategy"
	"github.com/rovshanmuradov/limit-bot/internal/token"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

var rootCmd = &cobra.Command{
	Use:           "limit-bot",
	Short:         "Limit order trading bot with hot-reloaded token configuration",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and tokens files and list every pair",
	RunE:  runCheck,
}

var saveSettingsCmd = &cobra.Command{
	Use:   "save-settings",
	Short: "Rewrite the settings file with every default filled in",
	RunE:  runSaveSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("settings", "s", config.DefaultSettingsPath, "settings file")
	flags.StringP("tokens", "t", config.DefaultTokensPath, "tokens file")
	flags.BoolP("verbose", "v", false, "print detailed messages to stdout")
	flags.Bool("debug", false, "print debug lines")
	flags.Bool("slow-mode", false, "check prices at most twice per second")
	flags.Int("poll-interval", config.DefaultPollIntervalMS, "price polling interval in milliseconds")
	flags.Int("repeat-threshold", config.DefaultRepeatThreshold, "identical messages swallowed before one is printed again")
	flags.String("log-file", config.DefaultLogFile, "rotated JSON log file")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("release-repo", config.DefaultReleaseRepo, "GitHub repository checked for new releases")

	rootCmd.AddCommand(checkCmd, saveSettingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(config.ExitCode(err))
	}
}

// reportedError wraps an error the console printer has already shown.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reportError(w io.Writer, err error) {
	var shown *reportedError
	if errors.As(err, &shown) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

type app struct {
	opts    *config.Options
	logger  *zap.Logger
	printer *console.Printer
}

func setup(cmd *cobra.Command) (*app, error) {
	opts, err := config.LoadOptions(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = opts.LogFile
	logCfg.Debug = opts.Debug
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	printer := console.NewPrinter(os.Stdout, log, console.Options{
		Verbose: opts.Verbose,
		Debug:   opts.Debug,
	})
	return &app{opts: opts, logger: log, printer: printer}, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync(a.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.printer.Print("Preloading data")

	collector := metrics.NewCollector()
	prices := quote.NewBinance(quote.BinanceOptions{}, collector, a.logger)

	runner := bot.NewRunner(a.opts, bot.Deps{
		Printer:  a.printer,
		Pricer:   prices,
		Quoter:   prices,
		Sell:     strategy.NewTargets(a.logger),
		Releases: quote.NewReleaseChecker("", a.opts.ReleaseRepo, a.logger),
		Metrics:  collector,
	}, a.logger)
	runner.Shutdown().AddFunc("logger", func() error { return logger.Sync(a.logger) })

	if err := runner.Initialize(ctx); err != nil {
		a.printer.Error(err)
		return &reportedError{err: err}
	}
	if err := runner.Run(ctx); err != nil {
		a.printer.Error(err)
		return &reportedError{err: err}
	}
	a.logger.Info("Bot stopped")
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync(a.logger)

	settings, err := config.LoadSettings(a.opts.SettingsPath, a.logger)
	if err != nil {
		return err
	}
	builder := token.NewBuilder(settings.Exchange, nil, strategy.NewTargets(a.logger), a.logger)
	tokens, err := builder.LoadFile(context.Background(), a.opts.TokensPath)
	if err != nil {
		return err
	}
	a.printer.PrintReport(token.NewReport(tokens, true))
	a.printer.OK("Configuration is valid")
	return nil
}

func runSaveSettings(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync(a.logger)

	settings, err := config.LoadSettings(a.opts.SettingsPath, a.logger)
	if err != nil {
		return err
	}
	if err := config.SaveSettings(a.opts.SettingsPath, settings); err != nil {
		return err
	}
	a.printer.OK("Settings saved to", a.opts.SettingsPath)
	return nil
}
