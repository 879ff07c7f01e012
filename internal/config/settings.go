// internal/config/settings.go
package config

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExchangeKey marks the exchange settings object inside the settings array.
const ExchangeKey = "EXCHANGE"

// TimestampLayout is the format accepted by the START_*_AFTER_TIMESTAMP keys.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	settingsDefaultFalse = []string{
		"UNLIMITEDSLIPPAGE",
		"USECUSTOMNODE",
		"PASSWORD_ON_CHANGE",
		"SLOW_MODE",
		"ENABLE_APPRISE_NOTIFICATIONS",
	}
	// absent means disabled; present may be a boolean or a timestamp
	settingsTimestampOrFalse = []string{
		"START_BUY_AFTER_TIMESTAMP",
		"START_SELL_AFTER_TIMESTAMP",
	}
	settingsDefaultTrue = []string{
		"PREAPPROVE",
		"VERBOSE_PRICING",
	}
	settingsRequired = []string{
		ExchangeKey,
	}
)

// exchangeBaseSymbols maps a lower-cased exchange name to the symbol of the
// native asset its pairs are quoted in.
var exchangeBaseSymbols = map[string]string{
	"pancakeswap":        "BNB",
	"pancakeswaptestnet": "BNB",
	"apeswap":            "BNB",
	"biswap":             "BNB",
	"babyswap":           "BNB",
	"bakeryswap":         "BNB",
	"uniswap":            "ETH",
	"uniswaptestnet":     "ETH",
	"sushiswap":          "ETH",
	"kuswap":             "KCS",
	"koffeeswap":         "KCS",
	"quickswap":          "MATIC",
	"spookyswap":         "FTM",
	"spiritswap":         "FTM",
	"protofi":            "FTM",
	"traderjoe":          "AVAX",
	"pangolin":           "AVAX",
	"pinkswap":           "BNB",
	"milkyswap":          "MILKADA",
	"vvs":                "CRO",
	"cronos":             "CRO",
}

// GlobalSettings holds bot-wide options from the first non-exchange object
// plus values the program owns.
type GlobalSettings struct {
	Raw Record

	NeedNewLine      bool
	QueriesPerSecond string
}

// ResetRuntime restores program-owned values. Called on every reload.
func (g *GlobalSettings) ResetRuntime() {
	g.NeedNewLine = false
	g.QueriesPerSecond = "Unknown"
}

// ExchangeSettings holds the options of the exchange the bot trades on.
type ExchangeSettings struct {
	Exchange   string
	BaseSymbol string

	UnlimitedSlippage          bool
	UseCustomNode              bool
	PasswordOnChange           bool
	SlowMode                   bool
	EnableAppriseNotifications bool
	Preapprove                 bool
	VerbosePricing             bool

	// Zero time means the gate is off.
	StartBuyAfter  time.Time
	StartSellAfter time.Time

	// Raw is the normalized object, written back by SaveSettings.
	Raw Record
}

// Settings pairs the two resolved settings objects.
type Settings struct {
	Global   *GlobalSettings
	Exchange *ExchangeSettings
}

// Clone returns a copy of s whose global settings can change without
// affecting s. Exchange settings are shared; nothing modifies them after
// resolution.
func (s *Settings) Clone() *Settings {
	out := *s
	if s.Global != nil {
		g := *s.Global
		g.Raw = s.Global.Raw.Clone()
		out.Global = &g
	}
	return &out
}

// LoadSettings parses path and resolves its settings array.
func LoadSettings(path string, logger *zap.Logger) (*Settings, error) {
	logger.Info("Loading settings", zap.String("path", path))
	records, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return ResolveSettings(records, logger)
}

// ResolveSettings splits the settings array into exchange and global
// settings, applies the default passes and validates required keys.
// The first object of each kind wins.
func ResolveSettings(records []Record, logger *zap.Logger) (*Settings, error) {
	var exchange, global Record
	for _, rec := range records {
		if rec.Has(ExchangeKey) {
			if exchange == nil {
				exchange = rec.Clone()
			}
			continue
		}
		if global == nil {
			global = rec.Clone()
		}
	}

	if len(global) > 0 {
		logger.Info("Global settings detected")
	}
	if global == nil {
		global = Record{}
	}
	g := &GlobalSettings{Raw: global}
	g.ResetRuntime()

	if exchange == nil {
		return nil, fmt.Errorf("%w in settings file: %w", ErrNoExchangeSettings,
			&MissingFieldError{Scope: ScopeSettings, Field: ExchangeKey})
	}

	ex, err := resolveExchange(exchange, logger)
	if err != nil {
		return nil, err
	}
	return &Settings{Global: g, Exchange: ex}, nil
}

func resolveExchange(rec Record, logger *zap.Logger) (*ExchangeSettings, error) {
	for _, key := range settingsDefaultFalse {
		if err := defaultBool(rec, key, false, logger); err != nil {
			return nil, err
		}
	}
	for _, key := range settingsTimestampOrFalse {
		if err := defaultTimestamp(rec, key, logger); err != nil {
			return nil, err
		}
	}
	for _, key := range settingsDefaultTrue {
		if err := defaultBool(rec, key, true, logger); err != nil {
			return nil, err
		}
	}
	for _, key := range settingsRequired {
		if !rec.Has(key) {
			return nil, &MissingFieldError{Scope: ScopeSettings, Field: key}
		}
		rec[key] = strings.ToLower(rec.String(key))
	}

	ex := &ExchangeSettings{
		Exchange:                   rec.String(ExchangeKey),
		UnlimitedSlippage:          rec["UNLIMITEDSLIPPAGE"].(bool),
		UseCustomNode:              rec["USECUSTOMNODE"].(bool),
		PasswordOnChange:           rec["PASSWORD_ON_CHANGE"].(bool),
		SlowMode:                   rec["SLOW_MODE"].(bool),
		EnableAppriseNotifications: rec["ENABLE_APPRISE_NOTIFICATIONS"].(bool),
		Preapprove:                 rec["PREAPPROVE"].(bool),
		VerbosePricing:             rec["VERBOSE_PRICING"].(bool),
		StartBuyAfter:              timestampOf(rec, "START_BUY_AFTER_TIMESTAMP"),
		StartSellAfter:             timestampOf(rec, "START_SELL_AFTER_TIMESTAMP"),
		Raw:                        rec,
	}

	ex.BaseSymbol = strings.ToUpper(rec.String("EXCHANGE_BASE_SYMBOL"))
	if ex.BaseSymbol == "" {
		base, ok := exchangeBaseSymbols[ex.Exchange]
		if !ok {
			logger.Warn("Unknown exchange, base symbol left empty",
				zap.String("exchange", ex.Exchange))
		}
		ex.BaseSymbol = base
	}
	return ex, nil
}

func defaultBool(rec Record, key string, def bool, logger *zap.Logger) error {
	v, ok := rec[key]
	if !ok {
		logger.Info("Setting not found, using default",
			zap.String("key", key), zap.Bool("default", def))
		rec[key] = def
		return nil
	}
	b, err := NormalizeBool(v)
	if err != nil {
		return &InvalidFieldError{Scope: ScopeSettings, Field: key, Value: v, Err: err}
	}
	rec[key] = b
	return nil
}

func defaultTimestamp(rec Record, key string, logger *zap.Logger) error {
	v, ok := rec[key]
	if !ok {
		logger.Info("Setting not found, using default",
			zap.String("key", key), zap.Bool("default", false))
		rec[key] = false
		return nil
	}
	if b, err := NormalizeBool(v); err == nil {
		rec[key] = b
		return nil
	}
	s := strings.TrimSpace(rec.String(key))
	if _, err := time.ParseInLocation(TimestampLayout, s, time.Local); err != nil {
		return &InvalidFieldError{Scope: ScopeSettings, Field: key, Value: v, Err: err}
	}
	rec[key] = s
	return nil
}

func timestampOf(rec Record, key string) time.Time {
	s, ok := rec[key].(string)
	if !ok {
		return time.Time{}
	}
	t, _ := time.ParseInLocation(TimestampLayout, s, time.Local)
	return t
}
