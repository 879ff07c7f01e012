package token

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// SellPhase selects the baseline sell targets are computed from.
type SellPhase int

const (
	// BeforeBuy uses the configured buy price.
	BeforeBuy SellPhase = iota
	// AfterBuy uses the recorded cost per token.
	AfterBuy
)

func (p SellPhase) String() string {
	if p == AfterBuy {
		return "after_buy"
	}
	return "before_buy"
}

// SellConditionBuilder computes Runtime.CalculatedSellPrice and
// Runtime.CalculatedStopLossPrice. quiet suppresses any user-facing output.
type SellConditionBuilder interface {
	BuildSellConditions(tok *Token, phase SellPhase, quiet bool)
}

// Expander synthesizes one token per stable base for tokens with
// WATCH_STABLES_PAIRS enabled.
type Expander struct {
	defaulter *Defaulter
	sell      SellConditionBuilder
	logger    *zap.Logger
}

func NewExpander(defaulter *Defaulter, sell SellConditionBuilder, logger *zap.Logger) *Expander {
	return &Expander{
		defaulter: defaulter,
		sell:      sell,
		logger:    logger.Named("expander"),
	}
}

// Expand returns the derived tokens for src. It never modifies any set; the
// caller commits the result after its own iteration completes.
func (e *Expander) Expand(src *Token) ([]*Token, error) {
	if !src.Config.WatchStablesPairs {
		return nil, nil
	}
	if src.Config.UseCustomBasePair {
		e.logger.Warn("Ignoring WATCH_STABLES_PAIRS: unsupported together with USECUSTOMBASEPAIR",
			zap.String("symbol", src.Symbol.String()))
		return nil, nil
	}

	phase := BeforeBuy
	if src.Runtime.CostPerToken != 0 {
		phase = AfterBuy
	}
	if e.sell != nil {
		e.sell.BuildSellConditions(src, phase, true)
	}

	bases := make([]string, 0, len(src.Config.StableBases))
	for base := range src.Config.StableBases {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	derived := make([]*Token, 0, len(bases))
	for _, base := range bases {
		tok, err := e.derive(src, base, src.Config.StableBases[base])
		if err != nil {
			return nil, fmt.Errorf("stable pair %s for %s: %w", base, src.Symbol, err)
		}
		derived = append(derived, tok)
	}

	if len(derived) > 0 {
		e.logger.Debug("Stable pairs derived",
			zap.String("symbol", src.Symbol.String()),
			zap.Strings("bases", bases))
	}
	return derived, nil
}

func (e *Expander) derive(src *Token, base string, sb StableBase) (*Token, error) {
	multiplier := sb.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	factor := multiplier
	if src.Runtime.BasePrice != 0 {
		factor *= src.Runtime.BasePrice
	}

	rec := src.Record()
	rec["BASESYMBOL"] = base
	rec["BASEADDRESS"] = sb.Address
	rec["USECUSTOMBASEPAIR"] = true
	rec["LIQUIDITYINNATIVETOKEN"] = false
	rec["WATCH_STABLES_PAIRS"] = false
	rec["_STABLE_BASES"] = map[string]any{}

	rec["BUYAMOUNTINBASE"] = src.Config.BuyAmountInBase * factor
	rec["MAX_BASE_AMOUNT_PER_EXACT_TOKENS_TRANSACTION"] = src.Config.MaxBaseAmountPerExactTxn * factor
	if !src.Config.BuyTheDip {
		rec["BUYPRICEINBASE"] = src.Config.BuyPriceInBase * factor
	}
	rec["SELLPRICEINBASE"] = src.Runtime.CalculatedSellPrice * factor
	rec["STOPLOSSPRICEINBASE"] = src.Runtime.CalculatedStopLossPrice * factor

	tok, err := e.defaulter.Default(rec)
	if err != nil {
		return nil, err
	}
	sym, err := ParseSymbol(DerivedSymbol(src.Symbol, base).String())
	if err != nil {
		return nil, err
	}
	tok.Symbol = sym
	tok.Source = src.Symbol
	return tok, nil
}
