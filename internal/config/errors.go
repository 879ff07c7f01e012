// internal/config/errors.go
package config

import (
	"errors"
	"fmt"
)

// Exit statuses used by the CLI when a configuration phase fails.
const (
	ExitFailure          = 1
	ExitNoExchange       = 11
	ExitMissingSetting   = 255
	ExitMissingTokenKey  = 255
	ExitDuplicateSymbols = 12
)

// ParseError reports a settings or token file that is not valid
// comment-tolerant JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports a required key absent after defaulting.
// Scope is "settings" or "token"; Symbol is set for tokens only.
type MissingFieldError struct {
	Scope  string
	Field  string
	Symbol string
}

func (e *MissingFieldError) Error() string {
	if e.Scope == ScopeToken {
		return fmt.Sprintf("%s not found in configuration for token %s", e.Field, e.Symbol)
	}
	return fmt.Sprintf("%s not found in settings", e.Field)
}

// InvalidFieldError reports a present key whose value cannot be normalized.
type InvalidFieldError struct {
	Scope  string
	Field  string
	Symbol string
	Value  any
	Err    error
}

func (e *InvalidFieldError) Error() string {
	where := e.Scope
	if e.Symbol != "" {
		where = fmt.Sprintf("%s %s", e.Scope, e.Symbol)
	}
	return fmt.Sprintf("invalid value %v for %s in %s: %v", e.Value, e.Field, where, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

const (
	ScopeSettings = "settings"
	ScopeToken    = "token"
)

// ErrNoExchangeSettings is wrapped when the settings array has no object
// carrying the EXCHANGE key.
var ErrNoExchangeSettings = errors.New("no exchange settings found")

// exitCoder is implemented by errors that pick their own exit status.
type exitCoder interface {
	ExitCode() int
}

// ExitCode maps a configuration failure to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	if errors.Is(err, ErrNoExchangeSettings) {
		return ExitNoExchange
	}
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		if missing.Scope == ScopeToken {
			return ExitMissingTokenKey
		}
		return ExitMissingSetting
	}
	return ExitFailure
}
