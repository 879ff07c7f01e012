package console

import (
	"sync/atomic"

	"github.com/rovshanmuradov/limit-bot/internal/token"
	"github.com/rovshanmuradov/limit-bot/internal/utils/metrics"
)

// Direction classifies a price sample against the previous quote.
type Direction int

const (
	Neutral Direction = iota
	Favorable
	Unfavorable
)

func (d Direction) String() string {
	switch d {
	case Favorable:
		return "favorable"
	case Unfavorable:
		return "unfavorable"
	default:
		return "neutral"
	}
}

// Gate suppresses repeated per-token console lines. Its state lives in the
// token's runtime fields, so it survives reloads with the token.
type Gate struct {
	printer   *Printer
	threshold int
	verbose   bool
	metrics   *metrics.Collector

	// Stats for monitoring
	rendered   atomic.Uint64
	suppressed atomic.Uint64
}

// NewGate creates a Gate. threshold bounds how many identical messages in a
// row are swallowed before one is printed again; verbose disables
// suppression entirely.
func NewGate(printer *Printer, threshold int, verbose bool, collector *metrics.Collector) *Gate {
	return &Gate{
		printer:   printer,
		threshold: threshold,
		verbose:   verbose,
		metrics:   collector,
	}
}

// Repeating prints message in red unless it repeats the token's last
// message. Reports whether the line was rendered.
func (g *Gate) Repeating(tok *token.Token, message string) bool {
	rt := &tok.Runtime
	defer func() { rt.LastMessage = message }()

	if message == rt.LastMessage && !g.verbose && g.threshold >= rt.RepeatCount {
		rt.RepeatCount++
		g.suppressed.Add(1)
		g.metrics.RecordSuppressed("message")
		return false
	}

	g.printer.Emit(StyleError, false, message)
	rt.RepeatCount = 0
	g.rendered.Add(1)
	return true
}

// Price renders the price line for tok, colored by the direction of price
// against Runtime.PreviousQuote. Any strict move turns trading on. A line
// identical to the last one is skipped unless verbose.
func (g *Gate) Price(tok *token.Token, price float64) (Direction, bool) {
	msg := FormatPriceMessage(tok, price)
	rt := &tok.Runtime
	defer func() { rt.LastPriceMessage = msg }()

	if msg == rt.LastPriceMessage && !g.verbose {
		g.suppressed.Add(1)
		g.metrics.RecordSuppressed("price")
		return Neutral, false
	}

	dir := Neutral
	switch {
	case price > rt.PreviousQuote:
		dir = Favorable
		g.printer.Emit(StyleOK, false, msg)
		rt.TradingIsOn = true
	case price < rt.PreviousQuote:
		dir = Unfavorable
		g.printer.Emit(StyleError, false, msg)
		rt.TradingIsOn = true
	default:
		g.printer.Emit(StylePlain, false, msg)
	}

	g.rendered.Add(1)
	g.metrics.RecordDirection(dir.String())
	return dir, true
}

// Stats returns how many lines were rendered and suppressed.
func (g *Gate) Stats() (rendered, suppressed uint64) {
	return g.rendered.Load(), g.suppressed.Load()
}
