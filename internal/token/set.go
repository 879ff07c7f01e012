package token

import (
	"fmt"

	"github.com/rovshanmuradov/limit-bot/internal/config"
)

// DuplicateSymbolError is returned when two tokens, user-defined or derived,
// resolve to the same symbol.
type DuplicateSymbolError struct {
	Symbol Symbol
	// Source is set when the rejected token was derived from a stable pair.
	Source Symbol
}

func (e *DuplicateSymbolError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("duplicate symbol %s (stable pair of %s)", e.Symbol, e.Source)
	}
	return fmt.Sprintf("duplicate symbol %s", e.Symbol)
}

// ExitCode implements the exit status contract used by the CLI.
func (e *DuplicateSymbolError) ExitCode() int { return config.ExitDuplicateSymbols }

// Set is an ordered collection of tokens keyed by symbol. User tokens come
// first in file order, derived tokens after them.
type Set struct {
	order    []Symbol
	bySymbol map[Symbol]*Token
}

func NewSet() *Set {
	return &Set{bySymbol: make(map[Symbol]*Token)}
}

// Add appends tok, rejecting a symbol already present.
func (s *Set) Add(tok *Token) error {
	if _, exists := s.bySymbol[tok.Symbol]; exists {
		return &DuplicateSymbolError{Symbol: tok.Symbol, Source: tok.Source}
	}
	s.order = append(s.order, tok.Symbol)
	s.bySymbol[tok.Symbol] = tok
	return nil
}

func (s *Set) Get(sym Symbol) (*Token, bool) {
	if s == nil {
		return nil, false
	}
	tok, ok := s.bySymbol[sym]
	return tok, ok
}

// Tokens returns the tokens in insertion order.
func (s *Set) Tokens() []*Token {
	if s == nil {
		return nil
	}
	out := make([]*Token, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.bySymbol[sym])
	}
	return out
}

func (s *Set) Symbols() []Symbol {
	if s == nil {
		return nil
	}
	return append([]Symbol(nil), s.order...)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Equal reports whether both sets hold the same tokens in the same order,
// ignoring lifecycle tags.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for i, sym := range s.order {
		if other.order[i] != sym {
			return false
		}
		if !s.bySymbol[sym].Equal(other.bySymbol[sym]) {
			return false
		}
	}
	return true
}
