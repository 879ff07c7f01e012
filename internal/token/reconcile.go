package token

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

// Reconciler rebuilds the token set from disk and carries runtime state
// forward from the previous set by symbol.
type Reconciler struct {
	builder *Builder
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewReconciler creates a Reconciler. collector may be nil.
func NewReconciler(builder *Builder, collector *metrics.Collector, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		builder: builder,
		metrics: collector,
		logger:  logger.Named("reconciler"),
	}
}

// Reload re-runs the pipeline against path and merges the result with prev.
// prev is never modified; on error it remains the live set.
func (r *Reconciler) Reload(ctx context.Context, path string, prev *Set) (*Set, error) {
	start := time.Now()
	logger := r.logger.With(zap.String("reload_id", uuid.NewString()))
	logger.Info("Reloading tokens, do not change token SYMBOL while running",
		zap.String("path", path))

	records, err := config.LoadFile(path)
	if err != nil {
		r.metrics.RecordReload(false, time.Since(start))
		return nil, err
	}
	next, err := r.builder.Rebuild(ctx, records, prev)
	if err != nil {
		r.metrics.RecordReload(false, time.Since(start))
		return nil, err
	}

	Merge(prev, next, logger)

	r.metrics.RecordReload(true, time.Since(start))
	logger.Info("Tokens reloaded",
		zap.Int("tokens", next.Len()),
		zap.Duration("took", time.Since(start)))
	return next, nil
}

// Merge copies runtime state from prev into next for every symbol present
// in both that was not already carried by Builder.Rebuild. Tokens only in
// next keep their fresh state.
func Merge(prev, next *Set, logger *zap.Logger) {
	for _, tok := range next.Tokens() {
		old, ok := prev.Get(tok.Symbol)
		if !ok {
			logger.Info("New token", zap.String("symbol", tok.Symbol.String()))
			continue
		}
		if tok.State != StateMerged {
			carryRuntime(old, tok)
		}
	}

	dropped := lo.Filter(prev.Symbols(), func(sym Symbol, _ int) bool {
		_, ok := next.Get(sym)
		return !ok
	})
	if len(dropped) > 0 {
		logger.Warn("Tokens removed or renamed, their runtime state is discarded",
			zap.Stringers("symbols", dropped))
	}
}

// carryRuntime moves the program-owned state of old onto tok. A BUY_THE_DIP
// token also keeps the buy price resolved by the previous set.
func carryRuntime(old, tok *Token) {
	if tok.Config.BuyTheDip {
		tok.Config.BuyPriceInBase = old.Config.BuyPriceInBase
	}
	tok.Runtime = old.Runtime
	tok.State = StateMerged
	tok.PairSymbol = pairSymbol(tok)
}
