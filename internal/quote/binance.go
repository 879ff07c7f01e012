// Package quote fetches reference prices and release information from
// public HTTP APIs.
package quote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/token"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

// USDQuoteAsset is the stable coin base prices are quoted against.
const USDQuoteAsset = "USDT"

// wrapped natives are listed on Binance under the unwrapped ticker
var binanceAliases = map[string]string{
	"WBNB":   "BNB",
	"WETH":   "ETH",
	"WAVAX":  "AVAX",
	"WFTM":   "FTM",
	"WMATIC": "MATIC",
	"WCRO":   "CRO",
}

// BinanceOptions configures the Binance price source.
type BinanceOptions struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL    string
	MaxRetries uint
	Timeout    time.Duration
}

// Binance reads spot prices from Binance's public ticker endpoint. It
// implements token.BasePricer and bot.Quoter.
type Binance struct {
	client  *binance.Client
	opts    BinanceOptions
	metrics *metrics.Collector
	logger  *zap.Logger
}

var _ token.BasePricer = (*Binance)(nil)

func NewBinance(opts BinanceOptions, collector *metrics.Collector, logger *zap.Logger) *Binance {
	client := binance.NewClient("", "")
	if opts.BaseURL != "" {
		client.BaseURL = opts.BaseURL
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Binance{
		client:  client,
		opts:    opts,
		metrics: collector,
		logger:  logger.Named("binance"),
	}
}

// BasePrice returns the USD price of baseSymbol.
func (b *Binance) BasePrice(ctx context.Context, baseSymbol string) (float64, error) {
	return b.price(ctx, pairOf(baseSymbol, USDQuoteAsset))
}

// Price returns the reference price of tok in its quote asset.
func (b *Binance) Price(ctx context.Context, tok *token.Token) (float64, error) {
	quoteAsset := tok.Runtime.ExchangeBaseSymbol
	if tok.Config.UseCustomBasePair {
		quoteAsset = tok.Config.BaseSymbol
	}
	return b.price(ctx, pairOf(tok.Config.Symbol, quoteAsset))
}

func pairOf(asset, quoteAsset string) string {
	asset = strings.ToUpper(asset)
	quoteAsset = strings.ToUpper(quoteAsset)
	if alias, ok := binanceAliases[asset]; ok {
		asset = alias
	}
	if alias, ok := binanceAliases[quoteAsset]; ok {
		quoteAsset = alias
	}
	return asset + quoteAsset
}

func (b *Binance) price(ctx context.Context, symbol string) (float64, error) {
	start := time.Now()
	op := func() (float64, error) {
		reqCtx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()

		prices, err := b.client.NewListPricesService().Symbol(symbol).Do(reqCtx)
		if err != nil {
			return 0, fmt.Errorf("failed to get price of %s: %w", symbol, err)
		}
		if len(prices) == 0 {
			return 0, backoff.Permanent(fmt.Errorf("no price data for symbol %s", symbol))
		}
		price, err := strconv.ParseFloat(prices[0].Price, 64)
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("invalid price %q for %s: %w", prices[0].Price, symbol, err))
		}
		return price, nil
	}

	price, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(b.opts.MaxRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			b.logger.Debug("Retrying price request",
				zap.String("symbol", symbol),
				zap.Duration("next", next),
				zap.Error(err))
		}),
	)
	b.metrics.RecordQuoteLatency("binance", time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return price, nil
}
