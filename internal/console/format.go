package console

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/limit-bot/internal/token"
)

// FormatPriceMessage renders the price line of a token at price.
func FormatPriceMessage(tok *token.Token, price float64) string {
	cfg := &tok.Config
	rt := &tok.Runtime

	base := rt.ExchangeBaseSymbol
	if cfg.UseCustomBasePair {
		base = cfg.BaseSymbol
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Price: %.24f %s - Buy: %.6g", tok.PairSymbol, price, base, cfg.BuyPriceInBase)
	fmt.Fprintf(&b, " Sell: %.6g Stop: %.6g", rt.CalculatedSellPrice, rt.CalculatedStopLossPrice)

	if cfg.TrailingStopLoss != 0 {
		fmt.Fprintf(&b, " TrailingStop: %.6g", rt.TrailingStopLossPrice)
	}

	if cfg.UseCustomBasePair {
		fmt.Fprintf(&b, " - Token balance: %.4f (= %.2f %s)", rt.TokenBalance, price*rt.TokenBalance, base)
	} else {
		fmt.Fprintf(&b, " - Token balance: %.4f (= %.2f $)", rt.TokenBalance, price*rt.BasePrice*rt.TokenBalance)
	}

	if rt.ReachedMaxTokens {
		b.WriteString(" - MAXTOKENS reached")
	}
	return b.String()
}
