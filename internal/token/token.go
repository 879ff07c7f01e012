// =============================================
// File: internal/token/token.go
// =============================================
// Package token builds, defaults, expands and reconciles the set of tokens
// the bot trades.
package token

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/rovshanmuradov/limit-bot/internal/config"
)

// State tags how far a token has progressed through its lifecycle.
type State int

const (
	// StateRaw tokens have static configuration only.
	StateRaw State = iota
	// StateInitialized tokens carry program-initialized runtime fields.
	StateInitialized
	// StateMerged tokens carry runtime fields from the previous set.
	StateMerged
)

func (s State) String() string {
	switch s {
	case StateRaw:
		return "raw"
	case StateInitialized:
		return "initialized"
	case StateMerged:
		return "merged"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// PriceTarget is an absolute price in base or a percentage of a baseline.
type PriceTarget struct {
	Value   float64
	Percent bool
}

// Resolve returns the absolute price for baseline.
func (p PriceTarget) Resolve(baseline float64) float64 {
	if p.Percent {
		return baseline * p.Value / 100
	}
	return p.Value
}

func (p PriceTarget) String() string {
	if p.Percent {
		return strconv.FormatFloat(p.Value, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

// Amount is either every token held or a fixed quantity.
type Amount struct {
	All   bool
	Value float64
}

// Gas is either the "boost" policy or a fixed gwei price.
type Gas struct {
	Boost bool
	Gwei  float64
}

// StableBase is one entry of the _STABLE_BASES table.
type StableBase struct {
	Address    string  `mapstructure:"address"`
	Multiplier float64 `mapstructure:"multiplier"`
}

// Config holds the user-supplied fields of a token after defaulting.
type Config struct {
	Symbol      string `mapstructure:"SYMBOL"`
	Address     string `mapstructure:"ADDRESS"`
	BaseSymbol  string `mapstructure:"BASESYMBOL"`
	BaseAddress string `mapstructure:"BASEADDRESS"`
	KindOfSwap  string `mapstructure:"KIND_OF_SWAP"`

	Enabled                bool `mapstructure:"ENABLED"`
	UseCustomBasePair      bool `mapstructure:"USECUSTOMBASEPAIR"`
	HasFees                bool `mapstructure:"HASFEES"`
	RugdocCheck            bool `mapstructure:"RUGDOC_CHECK"`
	MultipleBuys           bool `mapstructure:"MULTIPLEBUYS"`
	AlwaysCheckBalance     bool `mapstructure:"ALWAYS_CHECK_BALANCE"`
	WaitForOpenTrade       bool `mapstructure:"WAIT_FOR_OPEN_TRADE"`
	WatchStablesPairs      bool `mapstructure:"WATCH_STABLES_PAIRS"`
	LiquidityInNativeToken bool `mapstructure:"LIQUIDITYINNATIVETOKEN"`

	BuyAmountInBase  float64 `mapstructure:"BUYAMOUNTINBASE"`
	BuyAmountInToken float64 `mapstructure:"BUYAMOUNTINTOKEN"`
	BuyPriceInBase   float64 `mapstructure:"-"`
	// BuyTheDip is set when BUYPRICEINBASE holds the BUY_THE_DIP sentinel.
	BuyTheDip           bool        `mapstructure:"-"`
	SellPriceInBase     PriceTarget `mapstructure:"SELLPRICEINBASE"`
	StopLossPriceInBase PriceTarget `mapstructure:"STOPLOSSPRICEINBASE"`
	SellAmountInTokens  Amount      `mapstructure:"SELLAMOUNTINTOKENS"`

	Slippage                  float64 `mapstructure:"SLIPPAGE"`
	MaxTokens                 float64 `mapstructure:"MAXTOKENS"`
	Moonbag                   float64 `mapstructure:"MOONBAG"`
	MinimumLiquidityInDollars float64 `mapstructure:"MINIMUM_LIQUIDITY_IN_DOLLARS"`
	MaxBaseAmountPerExactTxn  float64 `mapstructure:"MAX_BASE_AMOUNT_PER_EXACT_TOKENS_TRANSACTION"`
	Gas                       Gas     `mapstructure:"GAS"`
	MaxGas                    float64 `mapstructure:"MAX_GAS"`
	BoostPercent              float64 `mapstructure:"BOOSTPERCENT"`
	GasLimit                  int64   `mapstructure:"GASLIMIT"`
	GasPriorityForEthOnly     float64 `mapstructure:"GASPRIORITY_FOR_ETH_ONLY"`
	BuyAfterSeconds           int64   `mapstructure:"BUYAFTER_XXX_SECONDS"`
	CooldownAfterBuySeconds   int64   `mapstructure:"XXX_SECONDS_COOLDOWN_AFTER_BUY_SUCCESS_TX"`
	CooldownAfterSellSeconds  int64   `mapstructure:"XXX_SECONDS_COOLDOWN_AFTER_SELL_SUCCESS_TX"`
	MaxFailedTxInARow         int     `mapstructure:"MAX_FAILED_TRANSACTIONS_IN_A_ROW"`
	MaxSuccessTxInARow        int     `mapstructure:"MAX_SUCCESS_TRANSACTIONS_IN_A_ROW"`
	BuyCount                  int     `mapstructure:"BUYCOUNT"`
	TrailingStopLoss          float64 `mapstructure:"TRAILING_STOP_LOSS"`
	AntiDumpPrice             float64 `mapstructure:"ANTI_DUMP_PRICE"`
	PinksalePresaleAddress    string  `mapstructure:"PINKSALE_PRESALE_ADDRESS"`

	StableBases map[string]StableBase `mapstructure:"_STABLE_BASES"`

	// Extra keeps keys the bot does not interpret so they survive reloads.
	Extra map[string]any `mapstructure:",remain"`
}

// Runtime holds the state the program owns for a token. It is never read
// from disk. Fields must stay value types: the reconciler carries the whole
// struct forward by assignment.
type Runtime struct {
	LiquidityReady      bool
	LiquidityChecked    bool
	InformedSell        bool
	ReachedMaxTokens    bool
	TradingIsOn         bool
	NotEnoughToBuy      bool
	GasIsCalculated     bool
	ReachedMaxSuccessTx bool
	BuyTheDipActive     bool

	InToken        string
	OutToken       string
	RugdocDecision string
	PairToDisplay  string

	GasToUse            float64
	FailedTransactions  int
	SuccessTransactions int

	TokenBalance         float64
	PreviousTokenBalance float64
	BaseBalance          float64
	BasePrice            float64
	BaseUsedForTx        float64
	CustomBaseBalance    float64

	Quote          float64
	PreviousQuote  float64
	ListingQuote   float64
	FirstSellQuote float64
	AllTimeHigh    float64
	AllTimeLow     float64
	CostPerToken   float64

	CalculatedSellPrice            float64
	CalculatedStopLossPrice        float64
	TrailingStopLossPrice          float64
	TrailingStopLossWithoutPercent float64

	ContractDecimals  int
	BaseDecimals      int
	WethDecimals      int
	LiquidityDecimals int

	LastPriceMessage string
	LastMessage      string
	RepeatCount      int

	ExchangeBaseSymbol string
}

// Token is one tradable pair: static configuration plus in-memory state.
type Token struct {
	Symbol Symbol
	// Source is the user token a stable-pair entry was derived from.
	Source Symbol
	State  State

	Config  Config
	Runtime Runtime

	PairSymbol string

	// record is the normalized source object, kept to derive stable pairs.
	record config.Record
}

// Derived reports whether the token was synthesized by stable-pair watch.
func (t *Token) Derived() bool { return t.Source != "" }

// Record returns a copy of the normalized configuration object.
func (t *Token) Record() config.Record { return t.record.Clone() }

// ObserveQuote records a fresh price sample, shifting the current quote into
// the previous one and tracking the session extremes.
func (t *Token) ObserveQuote(price float64) {
	rt := &t.Runtime
	rt.PreviousQuote = rt.Quote
	rt.Quote = price
	if price > rt.AllTimeHigh {
		rt.AllTimeHigh = price
	}
	if rt.AllTimeLow == 0 || (price > 0 && price < rt.AllTimeLow) {
		rt.AllTimeLow = price
	}
}

// Equal compares every field except the lifecycle tag.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Symbol == other.Symbol &&
		t.Source == other.Source &&
		t.PairSymbol == other.PairSymbol &&
		t.Runtime == other.Runtime &&
		reflect.DeepEqual(t.Config, other.Config)
}

func (t *Token) String() string {
	return fmt.Sprintf("%s (%s, %s)", t.Symbol, t.PairSymbol, t.State)
}
