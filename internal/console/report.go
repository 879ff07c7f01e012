package console

import "github.com/rovshanmuradov/limit-bot/internal/token"

// PrintReport prints the token list summary.
func (p *Printer) PrintReport(r token.Report) {
	p.Print("Quantity of tokens attempting to trade:", r.Count, "(", r.String(), ")")
}
