package bot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/console"
	"github.com/rovshanmuradov/limit-bot/internal/strategy"
	"github.com/rovshanmuradov/limit-bot/internal/token"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

const settingsDoc = `[
	{"EXCHANGE": "pancakeswap", "SLOW_MODE": false, "VERBOSE_PRICING": false},
	{"NOTE": "global"},
]`

const runnerTokensDoc = `[
	{
		"SYMBOL": "CAKE",
		"ENABLED": true,
		"ADDRESS": "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82",
		"BUYAMOUNTINBASE": 0.1,
		"BUYPRICEINBASE": 0.01,
		"SELLPRICEINBASE": "200%",
	},
]`

type fakePricer struct{}

func (fakePricer) BasePrice(context.Context, string) (float64, error) { return 300, nil }

type fakeQuoter struct {
	mu     sync.Mutex
	prices []float64
	err    error
	calls  int
}

func (q *fakeQuoter) Price(_ context.Context, _ *token.Token) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return 0, q.err
	}
	if len(q.prices) == 0 {
		return 1, nil
	}
	p := q.prices[0]
	if len(q.prices) > 1 {
		q.prices = q.prices[1:]
	}
	return p, nil
}

func (q *fakeQuoter) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

type fakeDecrypter struct{ err error }

func (d fakeDecrypter) Decrypt(context.Context, *config.ExchangeSettings) error { return d.err }

type fakeReleases struct{}

func (fakeReleases) Latest(context.Context) string { return "v9.9.9" }

// syncBuffer guards the printer output shared with the loop goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	opts    *config.Options
	out     *syncBuffer
	quoter  *fakeQuoter
	metrics *metrics.Collector
	logger  *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	opts := &config.Options{
		SettingsPath:    filepath.Join(dir, "settings.json"),
		TokensPath:      filepath.Join(dir, "tokens.json"),
		PollInterval:    10 * time.Millisecond,
		RepeatThreshold: 3,
	}
	require.NoError(t, os.WriteFile(opts.SettingsPath, []byte(settingsDoc), 0o600))
	require.NoError(t, os.WriteFile(opts.TokensPath, []byte(runnerTokensDoc), 0o600))

	return &fixture{
		opts:    opts,
		out:     &syncBuffer{},
		quoter:  &fakeQuoter{},
		metrics: metrics.NewCollector(),
		logger:  zaptest.NewLogger(t),
	}
}

func (f *fixture) runner(decrypter KeyDecrypter) *Runner {
	printer := console.NewPrinter(f.out, f.logger, console.Options{})
	return NewRunner(f.opts, Deps{
		Printer:   printer,
		Pricer:    fakePricer{},
		Quoter:    f.quoter,
		Sell:      strategy.NewTargets(f.logger),
		Decrypter: decrypter,
		Releases:  fakeReleases{},
		Metrics:   f.metrics,
	}, f.logger)
}

func TestRunnerInitialize(t *testing.T) {
	f := newFixture(t)
	r := f.runner(fakeDecrypter{})

	require.NoError(t, r.Initialize(context.Background()))

	snap := r.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Generation)
	assert.Equal(t, "pancakeswap", snap.Settings.Exchange.Exchange)
	assert.Equal(t, "global", snap.Settings.Global.Raw["NOTE"])

	cake, ok := snap.Tokens.Get("CAKE")
	require.True(t, ok)
	assert.Equal(t, "CAKE/BNB", cake.PairSymbol)
	assert.Equal(t, 300.0, cake.Runtime.BasePrice)

	out := f.out.String()
	assert.Contains(t, out, "Quantity of tokens attempting to trade: 1 ( CAKE/BNB )")
	assert.Contains(t, out, "v9.9.9")
}

func TestRunnerInitializeDecryptionFailure(t *testing.T) {
	f := newFixture(t)
	r := f.runner(fakeDecrypter{err: errors.New("bad password")})

	err := r.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryption))
	assert.Nil(t, r.Snapshot())
}

func TestRunnerInitializeConfigErrors(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.opts.SettingsPath, []byte(`[{"NOTE": "no exchange"}]`), 0o600))

	err := f.runner(nil).Initialize(context.Background())
	assert.Equal(t, config.ExitNoExchange, config.ExitCode(err))
}

func TestRunnerSlowModeRaisesInterval(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.opts.SettingsPath, []byte(`[{"EXCHANGE": "uniswap", "SLOW_MODE": "true"}]`), 0o600))

	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))
	assert.Equal(t, config.SlowModePollIntervalMS*time.Millisecond, r.interval)
}

func TestRunnerReloadCarriesState(t *testing.T) {
	f := newFixture(t)
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	first := r.Snapshot()
	cake, _ := first.Tokens.Get("CAKE")
	cake.Runtime.TokenBalance = 55
	first.Settings.Global.QueriesPerSecond = "12"

	updated := strings.Replace(runnerTokensDoc, `"SELLPRICEINBASE": "200%"`, `"SELLPRICEINBASE": "300%"`, 1)
	require.NoError(t, os.WriteFile(f.opts.TokensPath, []byte(updated), 0o600))

	require.NoError(t, r.Reload(context.Background()))

	second := r.Snapshot()
	assert.Equal(t, uint64(1), second.Generation)
	assert.NotSame(t, first.Settings, second.Settings)
	assert.Same(t, first.Settings.Exchange, second.Settings.Exchange)
	assert.Equal(t, "Unknown", second.Settings.Global.QueriesPerSecond)
	assert.Equal(t, "12", first.Settings.Global.QueriesPerSecond, "published snapshot changed")
	assert.Equal(t, "global", second.Settings.Global.Raw["NOTE"])

	got, _ := second.Tokens.Get("CAKE")
	assert.Equal(t, 55.0, got.Runtime.TokenBalance)
	assert.Equal(t, token.PriceTarget{Value: 300, Percent: true}, got.Config.SellPriceInBase)
	assert.Equal(t, token.StateMerged, got.State)
}

func TestRunnerReloadFailure(t *testing.T) {
	f := newFixture(t)
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	require.NoError(t, os.WriteFile(f.opts.TokensPath, []byte(`[{"SYMBOL": "CAKE"}]`), 0o600))
	err := r.Reload(context.Background())

	var missing *config.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, uint64(0), r.Snapshot().Generation)
}

func TestRunnerRunPollsAndStops(t *testing.T) {
	f := newFixture(t)
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	var closed bool
	r.Shutdown().AddFunc("test", func() error {
		closed = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return f.quoter.Calls() >= 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, closed)
}

func TestRunnerRunReloadsEditedFile(t *testing.T) {
	f := newFixture(t)
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.NoError(t, os.WriteFile(f.opts.TokensPath, []byte(runnerTokensDoc), 0o600))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(f.opts.TokensPath, later, later))

	require.Eventually(t, func() bool { return r.Snapshot().Generation >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunnerRunStopsOnBrokenReload(t *testing.T) {
	f := newFixture(t)
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	require.NoError(t, os.WriteFile(f.opts.TokensPath, []byte(`[{`), 0o600))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(f.opts.TokensPath, later, later))

	select {
	case err := <-done:
		var perr *config.ParseError
		assert.True(t, errors.As(err, &perr), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner kept running after a broken reload")
	}
}

func TestRunnerRunRequiresInitialize(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.runner(nil).Run(context.Background()))
}

func TestRunnerTickGatesQuoteErrors(t *testing.T) {
	f := newFixture(t)
	f.quoter.err = errors.New("no route")
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	for i := 0; i < 4; i++ {
		r.tick(context.Background())
	}
	assert.Equal(t, 1, strings.Count(f.out.String(), "price unavailable"))
}

func TestRunnerTickRendersPrices(t *testing.T) {
	f := newFixture(t)
	f.quoter.prices = []float64{10, 12, 11}
	r := f.runner(nil)
	require.NoError(t, r.Initialize(context.Background()))

	for i := 0; i < 3; i++ {
		r.tick(context.Background())
	}
	cake, _ := r.Snapshot().Tokens.Get("CAKE")
	assert.Equal(t, 11.0, cake.Runtime.Quote)
	assert.Equal(t, 12.0, cake.Runtime.PreviousQuote)
	assert.True(t, cake.Runtime.TradingIsOn)
	assert.Equal(t, 3, strings.Count(f.out.String(), "CAKE/BNB Price:"))
}
