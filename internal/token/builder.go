package token

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/config"
)

// Builder runs the token pipeline: defaulting, stable-pair expansion and
// set construction.
type Builder struct {
	exchangeBase string
	pricer       BasePricer
	sell         SellConditionBuilder
	logger       *zap.Logger
}

// NewBuilder creates a Builder. pricer may be nil, in which case tokens
// start with a zero base price.
func NewBuilder(exchange *config.ExchangeSettings, pricer BasePricer, sell SellConditionBuilder, logger *zap.Logger) *Builder {
	var base string
	if exchange != nil {
		base = exchange.BaseSymbol
	}
	return &Builder{
		exchangeBase: base,
		pricer:       pricer,
		sell:         sell,
		logger:       logger.Named("tokens"),
	}
}

// LoadFile parses path and builds a fresh set from it.
func (b *Builder) LoadFile(ctx context.Context, path string) (*Set, error) {
	b.logger.Info("Loading tokens", zap.String("path", path))
	records, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, records)
}

// Build defaults every record and commits derived stable-pair tokens after
// all user tokens have been added.
func (b *Builder) Build(ctx context.Context, records []config.Record) (*Set, error) {
	return b.Rebuild(ctx, records, nil)
}

// Rebuild is Build for a reload: a token whose symbol is in prev takes its
// runtime state from there before stable pairs are derived from it, so
// derived tokens are scaled with the carried base price and cost basis.
// prev is never modified and may be nil.
func (b *Builder) Rebuild(ctx context.Context, records []config.Record, prev *Set) (*Set, error) {
	defaulter := NewDefaulter(b.exchangeBase, b.basePrice(ctx), b.logger)
	expander := NewExpander(defaulter, b.sell, b.logger)

	set := NewSet()
	var derived []*Token
	for i, rec := range records {
		tok, err := defaulter.Default(rec)
		if err != nil {
			return nil, fmt.Errorf("token #%d: %w", i+1, err)
		}
		if old, ok := prev.Get(tok.Symbol); ok {
			carryRuntime(old, tok)
		}
		extra, err := expander.Expand(tok)
		if err != nil {
			return nil, err
		}
		for _, d := range extra {
			if old, ok := prev.Get(d.Symbol); ok {
				carryRuntime(old, d)
			}
		}
		derived = append(derived, extra...)

		if err := set.Add(tok); err != nil {
			return nil, err
		}
	}

	for _, tok := range derived {
		if err := set.Add(tok); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (b *Builder) basePrice(ctx context.Context) float64 {
	if b.pricer == nil || b.exchangeBase == "" {
		return 0
	}
	price, err := b.pricer.BasePrice(ctx, b.exchangeBase)
	if err != nil {
		b.logger.Warn("Base price unavailable, using 0",
			zap.String("base", b.exchangeBase),
			zap.Error(err))
		return 0
	}
	return price
}
