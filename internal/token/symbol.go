package token

import (
	"fmt"
	"strings"
	"unicode"
)

// Symbol identifies a token across the live set and across reloads.
type Symbol string

// ParseSymbol validates a user-assigned symbol: non-empty, no whitespace
// and no '/' (reserved for pair display).
func ParseSymbol(s string) (Symbol, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("symbol is empty")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '/' {
			return "", fmt.Errorf("symbol %q contains %q", s, r)
		}
	}
	return Symbol(s), nil
}

// DerivedSymbol names the stable-pair entry built from source for base.
func DerivedSymbol(source Symbol, base string) Symbol {
	return Symbol(fmt.Sprintf("%s-%s", source, strings.ToUpper(base)))
}

func (s Symbol) String() string { return string(s) }
