package token

import (
	"strings"

	"github.com/samber/lo"
)

// Report summarizes the tokens the bot is attempting to trade.
type Report struct {
	Count int
	Pairs []string
}

// String renders the pair list as a space-separated line.
func (r Report) String() string { return strings.Join(r.Pairs, " ") }

// NewReport lists enabled tokens, or every token when allPairs is set.
func NewReport(set *Set, allPairs bool) Report {
	tokens := set.Tokens()
	if !allPairs {
		tokens = lo.Filter(tokens, func(tok *Token, _ int) bool {
			return tok.Config.Enabled
		})
	}
	return Report{
		Count: len(tokens),
		Pairs: lo.Map(tokens, func(tok *Token, _ int) string { return tok.PairSymbol }),
	}
}

// Enabled returns the enabled tokens in set order.
func Enabled(set *Set) []*Token {
	return lo.Filter(set.Tokens(), func(tok *Token, _ int) bool {
		return tok.Config.Enabled
	})
}
