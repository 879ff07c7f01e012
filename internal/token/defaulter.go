// =============================================
// File: internal/token/defaulter.go
// =============================================
package token

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/config"
)

// BasePricer reports the USD price of the exchange's native base asset.
type BasePricer interface {
	BasePrice(ctx context.Context, baseSymbol string) (float64, error)
}

// Defaulter turns a raw token object into a fully defaulted Token.
type Defaulter struct {
	exchangeBase string
	basePrice    float64
	logger       *zap.Logger
}

// NewDefaulter creates a Defaulter. exchangeBase is the symbol pairs are
// quoted in when no custom base is used; basePrice seeds Runtime.BasePrice
// of newly initialized tokens.
func NewDefaulter(exchangeBase string, basePrice float64, logger *zap.Logger) *Defaulter {
	return &Defaulter{
		exchangeBase: exchangeBase,
		basePrice:    basePrice,
		logger:       logger.Named("defaulter"),
	}
}

// Normalize applies the static defaulting passes to rec in place: required
// keys, boolean defaults, value defaults and string coercion. Running it on
// an already normalized record changes nothing.
func (d *Defaulter) Normalize(rec config.Record) (Symbol, error) {
	if !rec.Has("SYMBOL") {
		return "", &config.MissingFieldError{Scope: config.ScopeToken, Field: "SYMBOL"}
	}
	sym, err := ParseSymbol(rec.String("SYMBOL"))
	if err != nil {
		return "", &config.InvalidFieldError{Scope: config.ScopeToken, Field: "SYMBOL", Value: rec["SYMBOL"], Err: err}
	}
	rec["SYMBOL"] = sym.String()

	for _, key := range requiredKeys {
		if !rec.Has(key) {
			return "", &config.MissingFieldError{Scope: config.ScopeToken, Field: key, Symbol: sym.String()}
		}
	}

	if err := d.defaultBools(rec, sym, defaultFalseKeys, false); err != nil {
		return "", err
	}
	if err := d.defaultBools(rec, sym, defaultTrueKeys, true); err != nil {
		return "", err
	}

	for _, vd := range valueDefaults {
		if rec.Has(vd.key) {
			continue
		}
		d.logger.Debug("Token key not found, using default",
			zap.String("symbol", sym.String()),
			zap.String("key", vd.key),
			zap.Any("default", vd.value))
		rec[vd.key] = cloneDefault(vd.value)
	}
	for _, key := range lowerCaseKeys {
		if s, ok := rec[key].(string); ok {
			rec[key] = strings.ToLower(strings.TrimSpace(s))
		}
	}
	if s, ok := rec["BUYPRICEINBASE"].(string); ok && strings.EqualFold(strings.TrimSpace(s), BuyTheDipSentinel) {
		rec["BUYPRICEINBASE"] = BuyTheDipSentinel
	}

	rec.CoerceStrings()
	return sym, nil
}

func (d *Defaulter) defaultBools(rec config.Record, sym Symbol, keys []string, def bool) error {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok {
			d.logger.Debug("Token key not found, using default",
				zap.String("symbol", sym.String()),
				zap.String("key", key),
				zap.Bool("default", def))
			rec[key] = def
			continue
		}
		b, err := config.NormalizeBool(v)
		if err != nil {
			return &config.InvalidFieldError{Scope: config.ScopeToken, Field: key, Symbol: sym.String(), Value: v, Err: err}
		}
		rec[key] = b
	}
	return nil
}

func cloneDefault(v any) any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, inner := range m {
			out[k] = inner
		}
		return out
	}
	return v
}

// Default normalizes a copy of rec, decodes it and initializes the runtime
// state of the resulting token.
func (d *Defaulter) Default(rec config.Record) (*Token, error) {
	rec = rec.Clone()
	sym, err := d.Normalize(rec)
	if err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(sym, rec)
	if err != nil {
		return nil, err
	}

	tok := &Token{
		Symbol: sym,
		State:  StateRaw,
		Config: cfg,
		record: rec,
	}
	d.Ensure(tok)
	return tok, nil
}

// Ensure initializes runtime state of raw tokens and refreshes the display
// pair symbol. Tokens past StateRaw keep their runtime state.
func (d *Defaulter) Ensure(tok *Token) {
	if tok.State == StateRaw {
		tok.Runtime = Runtime{
			PairToDisplay:       initialPairToDisplay,
			CalculatedSellPrice: initialCalculatedSellPrice,
			BasePrice:           d.basePrice,
			ExchangeBaseSymbol:  d.exchangeBase,
		}
		tok.State = StateInitialized
	}
	tok.PairSymbol = pairSymbol(tok)
}

func pairSymbol(tok *Token) string {
	base := tok.Runtime.ExchangeBaseSymbol
	if tok.Config.UseCustomBasePair && !tok.Config.LiquidityInNativeToken {
		base = tok.Config.BaseSymbol
	}
	return tok.Config.Symbol + "/" + base
}

func decodeConfig(sym Symbol, rec config.Record) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			priceTargetHook,
			amountHook,
			gasHook,
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return Config{}, fmt.Errorf("failed to decode token %s: %w", sym, err)
	}

	switch v := rec["BUYPRICEINBASE"].(type) {
	case string:
		if v == BuyTheDipSentinel {
			cfg.BuyTheDip = true
			break
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Config{}, &config.InvalidFieldError{Scope: config.ScopeToken, Field: "BUYPRICEINBASE", Symbol: sym.String(), Value: v, Err: err}
		}
		cfg.BuyPriceInBase = f
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Config{}, &config.InvalidFieldError{Scope: config.ScopeToken, Field: "BUYPRICEINBASE", Symbol: sym.String(), Value: v, Err: err}
		}
		cfg.BuyPriceInBase = f
	}

	delete(cfg.Extra, "BUYPRICEINBASE")
	if len(cfg.Extra) == 0 {
		cfg.Extra = nil
	}
	return cfg, nil
}

var (
	priceTargetType = reflect.TypeOf(PriceTarget{})
	amountType      = reflect.TypeOf(Amount{})
	gasType         = reflect.TypeOf(Gas{})
)

// priceTargetHook accepts a number or a "NNN%" string.
func priceTargetHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != priceTargetType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		s = strings.TrimSpace(s)
		if pct, found := strings.CutSuffix(s, "%"); found {
			f, err := cast.ToFloat64E(strings.TrimSpace(pct))
			if err != nil {
				return nil, fmt.Errorf("invalid percent price %q: %w", s, err)
			}
			return PriceTarget{Value: f, Percent: true}, nil
		}
		data = s
	}
	f, err := cast.ToFloat64E(data)
	if err != nil {
		return nil, fmt.Errorf("invalid price %v: %w", data, err)
	}
	return PriceTarget{Value: f}, nil
}

// amountHook accepts "all" or a number.
func amountHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != amountType {
		return data, nil
	}
	if s, ok := data.(string); ok && strings.EqualFold(strings.TrimSpace(s), "all") {
		return Amount{All: true}, nil
	}
	f, err := cast.ToFloat64E(data)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %v: %w", data, err)
	}
	return Amount{Value: f}, nil
}

// gasHook accepts "boost" or a gwei price.
func gasHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != gasType {
		return data, nil
	}
	if s, ok := data.(string); ok && strings.EqualFold(strings.TrimSpace(s), "boost") {
		return Gas{Boost: true}, nil
	}
	f, err := cast.ToFloat64E(data)
	if err != nil {
		return nil, fmt.Errorf("invalid gas %v: %w", data, err)
	}
	return Gas{Gwei: f}, nil
}
