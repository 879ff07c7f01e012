// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/console"
	"github.com/rovshanmuradov/limit-bot/internal/reload"
	"github.com/rovshanmuradov/limit-bot/internal/token"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

// Deps are the collaborators a Runner uses. Only Printer is required.
type Deps struct {
	Printer   *console.Printer
	Pricer    token.BasePricer
	Quoter    Quoter
	Sell      token.SellConditionBuilder
	Decrypter KeyDecrypter
	Releases  ReleaseChecker
	Metrics   *metrics.Collector
}

// Runner owns the live configuration and the polling loop that uses it.
type Runner struct {
	opts   *config.Options
	deps   Deps
	logger *zap.Logger

	snapshot   atomic.Pointer[Snapshot]
	reconciler *token.Reconciler
	gate       *console.Gate
	watcher    *reload.Watcher
	shutdown   *ShutdownHandler
	interval   time.Duration
}

func NewRunner(opts *config.Options, deps Deps, logger *zap.Logger) *Runner {
	return &Runner{
		opts:     opts,
		deps:     deps,
		logger:   logger.Named("runner"),
		shutdown: NewShutdownHandler(logger, 0),
		interval: opts.PollInterval,
	}
}

// Initialize loads settings and tokens and publishes the first snapshot.
func (r *Runner) Initialize(ctx context.Context) error {
	settings, err := config.LoadSettings(r.opts.SettingsPath, r.logger)
	if err != nil {
		return err
	}

	if r.deps.Decrypter != nil {
		if err := r.deps.Decrypter.Decrypt(ctx, settings.Exchange); err != nil {
			return fmt.Errorf("%w: %w", ErrDecryption, err)
		}
	}

	if settings.Exchange.SlowMode && r.interval < config.SlowModePollIntervalMS*time.Millisecond {
		r.interval = config.SlowModePollIntervalMS * time.Millisecond
	}

	builder := token.NewBuilder(settings.Exchange, r.deps.Pricer, r.deps.Sell, r.logger)
	tokens, err := builder.LoadFile(ctx, r.opts.TokensPath)
	if err != nil {
		return err
	}
	r.reconciler = token.NewReconciler(builder, r.deps.Metrics, r.logger)

	verbose := r.opts.Verbose || settings.Exchange.VerbosePricing
	r.gate = console.NewGate(r.deps.Printer, r.opts.RepeatThreshold, verbose, r.deps.Metrics)

	r.watcher, err = reload.NewWatcher(r.opts.TokensPath, r.logger)
	if err != nil {
		return err
	}

	r.publish(&Snapshot{Settings: settings, Tokens: tokens, LoadedAt: time.Now()})

	if r.deps.Releases != nil {
		r.deps.Printer.Print("Checking latest release version on GitHub, please make sure you are staying updated =",
			r.deps.Releases.Latest(ctx))
	}
	return nil
}

// Snapshot returns the current configuration. Safe for concurrent use.
func (r *Runner) Snapshot() *Snapshot { return r.snapshot.Load() }

func (r *Runner) publish(snap *Snapshot) {
	r.snapshot.Store(snap)

	r.deps.Printer.PrintReport(token.NewReport(snap.Tokens, false))
	r.deps.Metrics.SetTokens("total", snap.Tokens.Len())
	r.deps.Metrics.SetTokens("enabled", len(token.Enabled(snap.Tokens)))
	derived := 0
	for _, tok := range snap.Tokens.Tokens() {
		if tok.Derived() {
			derived++
		}
	}
	r.deps.Metrics.SetTokens("derived", derived)
}

// Run drives the polling loop until ctx is cancelled or a reload fails.
// Initialize must have succeeded first.
func (r *Runner) Run(ctx context.Context) error {
	if r.Snapshot() == nil {
		return fmt.Errorf("runner not initialized")
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.watcher.Run(gCtx)
	})

	if r.opts.MetricsAddr != "" && r.deps.Metrics != nil {
		g.Go(func() error {
			return r.deps.Metrics.Serve(gCtx, r.opts.MetricsAddr, r.logger)
		})
	}

	g.Go(func() error {
		return r.loop(gCtx)
	})

	err := g.Wait()
	if shutdownErr := r.shutdown.Shutdown(context.Background()); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// Shutdown returns the handler services can register closers with.
func (r *Runner) Shutdown() *ShutdownHandler { return r.shutdown }

func (r *Runner) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Polling loop started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Polling loop stopped")
			return nil
		case <-r.watcher.Notify():
			if err := r.reloadIfChanged(ctx); err != nil {
				return err
			}
		case <-ticker.C:
			if err := r.reloadIfChanged(ctx); err != nil {
				return err
			}
			r.tick(ctx)
		}
	}
}

// reloadIfChanged runs on the loop goroutine, so no price check can observe
// a partially merged set.
func (r *Runner) reloadIfChanged(ctx context.Context) error {
	changed, err := r.watcher.Changed()
	if err != nil {
		r.logger.Warn("Cannot check token file", zap.Error(err))
		return nil
	}
	if !changed {
		return nil
	}
	return r.Reload(ctx)
}

// Reload rebuilds the token set and publishes a new snapshot.
func (r *Runner) Reload(ctx context.Context) error {
	prev := r.Snapshot()
	next, err := r.reconciler.Reload(ctx, r.opts.TokensPath, prev.Tokens)
	if err != nil {
		return fmt.Errorf("reload %s: %w", r.opts.TokensPath, err)
	}
	settings := prev.Settings.Clone()
	settings.Global.ResetRuntime()

	r.publish(&Snapshot{
		Settings:   settings,
		Tokens:     next,
		Generation: prev.Generation + 1,
		LoadedAt:   time.Now(),
	})
	return nil
}

func (r *Runner) tick(ctx context.Context) {
	if r.deps.Quoter == nil {
		return
	}
	for _, tok := range token.Enabled(r.Snapshot().Tokens) {
		if ctx.Err() != nil {
			return
		}
		price, err := r.deps.Quoter.Price(ctx, tok)
		if err != nil {
			r.gate.Repeating(tok, fmt.Sprintf("%s: price unavailable: %v", tok.PairSymbol, err))
			continue
		}
		tok.ObserveQuote(price)
		r.gate.Price(tok, price)
	}
}
