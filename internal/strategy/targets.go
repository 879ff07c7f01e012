// Package strategy holds the price target calculations shared by the
// trading loop and the stable-pair expander.
package strategy

import (
	"go.uber.org/zap"

	"github.com/rovshanmuradov/limit-bot/internal/token"
)

// Targets is the default token.SellConditionBuilder. Absolute targets are
// used as-is; percent targets apply to the buy price before the first buy
// and to the recorded cost per token after it.
type Targets struct {
	logger *zap.Logger
}

func NewTargets(logger *zap.Logger) *Targets {
	return &Targets{logger: logger.Named("targets")}
}

// BuildSellConditions implements token.SellConditionBuilder.
func (t *Targets) BuildSellConditions(tok *token.Token, phase token.SellPhase, quiet bool) {
	baseline := tok.Config.BuyPriceInBase
	if phase == token.AfterBuy {
		baseline = tok.Runtime.CostPerToken
	}

	rt := &tok.Runtime
	rt.CalculatedSellPrice = tok.Config.SellPriceInBase.Resolve(baseline)
	rt.CalculatedStopLossPrice = tok.Config.StopLossPriceInBase.Resolve(baseline)

	if quiet {
		return
	}
	t.logger.Info("Sell conditions computed",
		zap.String("symbol", tok.Symbol.String()),
		zap.Stringer("phase", phase),
		zap.Float64("baseline", baseline),
		zap.Float64("sell", rt.CalculatedSellPrice),
		zap.Float64("stop_loss", rt.CalculatedStopLossPrice))
}
