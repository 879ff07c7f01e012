package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveSettingsDefaults(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	settings, err := ResolveSettings([]Record{{"EXCHANGE": "x"}, {}}, logger)
	require.NoError(t, err)

	ex := settings.Exchange
	assert.Equal(t, "x", ex.Exchange)
	assert.False(t, ex.UnlimitedSlippage)
	assert.False(t, ex.UseCustomNode)
	assert.False(t, ex.PasswordOnChange)
	assert.False(t, ex.SlowMode)
	assert.False(t, ex.EnableAppriseNotifications)
	assert.True(t, ex.Preapprove)
	assert.True(t, ex.VerbosePricing)
	assert.True(t, ex.StartBuyAfter.IsZero())
	assert.True(t, ex.StartSellAfter.IsZero())
	assert.Equal(t, false, ex.Raw["START_BUY_AFTER_TIMESTAMP"])
	assert.Equal(t, false, ex.Raw["START_SELL_AFTER_TIMESTAMP"])

	require.NotNil(t, settings.Global)
	assert.Empty(t, settings.Global.Raw)
	assert.False(t, settings.Global.NeedNewLine)
	assert.Equal(t, "Unknown", settings.Global.QueriesPerSecond)

	assert.Equal(t, 0, logs.FilterMessage("Global settings detected").Len())
	assert.Equal(t, 1, logs.FilterMessage("Unknown exchange, base symbol left empty").Len())
	assert.Empty(t, ex.BaseSymbol)
}

func TestResolveSettingsNormalizesValues(t *testing.T) {
	records := []Record{
		{"CHECK_INTERVAL": int64(5)},
		{
			"EXCHANGE":                   "PancakeSwap",
			"SLOW_MODE":                  "True",
			"PREAPPROVE":                 "false",
			"START_BUY_AFTER_TIMESTAMP":  "2022-03-04 12:30:00",
			"START_SELL_AFTER_TIMESTAMP": true,
		},
	}

	settings, err := ResolveSettings(records, zaptest.NewLogger(t))
	require.NoError(t, err)

	ex := settings.Exchange
	assert.Equal(t, "pancakeswap", ex.Exchange)
	assert.Equal(t, "BNB", ex.BaseSymbol)
	assert.True(t, ex.SlowMode)
	assert.False(t, ex.Preapprove)

	want := time.Date(2022, 3, 4, 12, 30, 0, 0, time.Local)
	assert.True(t, ex.StartBuyAfter.Equal(want), "got %v", ex.StartBuyAfter)
	assert.True(t, ex.StartSellAfter.IsZero())
	assert.Equal(t, true, ex.Raw["START_SELL_AFTER_TIMESTAMP"])

	assert.Equal(t, int64(5), settings.Global.Raw["CHECK_INTERVAL"])
}

func TestResolveSettingsFirstWins(t *testing.T) {
	records := []Record{
		{"EXCHANGE": "uniswap"},
		{"NAME": "first"},
		{"EXCHANGE": "pancakeswap"},
		{"NAME": "second"},
	}

	settings, err := ResolveSettings(records, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "uniswap", settings.Exchange.Exchange)
	assert.Equal(t, "ETH", settings.Exchange.BaseSymbol)
	assert.Equal(t, "first", settings.Global.Raw["NAME"])
}

func TestResolveSettingsBaseSymbolOverride(t *testing.T) {
	settings, err := ResolveSettings([]Record{{"EXCHANGE": "mydex", "EXCHANGE_BASE_SYMBOL": "one"}}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "ONE", settings.Exchange.BaseSymbol)
}

func TestResolveSettingsDoesNotModifyInput(t *testing.T) {
	in := Record{"EXCHANGE": "Uniswap"}
	_, err := ResolveSettings([]Record{in}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, Record{"EXCHANGE": "Uniswap"}, in)
}

func TestResolveSettingsErrors(t *testing.T) {
	t.Run("no exchange object", func(t *testing.T) {
		_, err := ResolveSettings([]Record{{"NAME": "global"}}, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoExchangeSettings))

		var missing *MissingFieldError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, ScopeSettings, missing.Scope)
		assert.Equal(t, ExchangeKey, missing.Field)
		assert.Equal(t, ExitNoExchange, ExitCode(err))
	})

	t.Run("invalid boolean", func(t *testing.T) {
		_, err := ResolveSettings([]Record{{"EXCHANGE": "x", "SLOW_MODE": "sometimes"}}, zaptest.NewLogger(t))
		var invalid *InvalidFieldError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "SLOW_MODE", invalid.Field)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		_, err := ResolveSettings([]Record{{"EXCHANGE": "x", "START_BUY_AFTER_TIMESTAMP": "tomorrow"}}, zaptest.NewLogger(t))
		var invalid *InvalidFieldError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "START_BUY_AFTER_TIMESTAMP", invalid.Field)
	})
}

func TestGlobalSettingsResetRuntime(t *testing.T) {
	g := &GlobalSettings{NeedNewLine: true, QueriesPerSecond: "12"}
	g.ResetRuntime()
	assert.False(t, g.NeedNewLine)
	assert.Equal(t, "Unknown", g.QueriesPerSecond)
}

func TestSettingsClone(t *testing.T) {
	s, err := ResolveSettings([]Record{{"EXCHANGE": "x"}, {"NOTE": "global"}}, zaptest.NewLogger(t))
	require.NoError(t, err)
	s.Global.QueriesPerSecond = "12"

	c := s.Clone()
	c.Global.ResetRuntime()
	c.Global.Raw["NOTE"] = "changed"

	assert.Equal(t, "12", s.Global.QueriesPerSecond)
	assert.Equal(t, "global", s.Global.Raw["NOTE"])
	assert.Same(t, s.Exchange, c.Exchange)
}
