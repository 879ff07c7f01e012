package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rovshanmuradov/limit-bot/internal/config"
)

func TestReportErrorPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	reportError(&out, errors.New("bad flag"))
	assert.Equal(t, "Error: bad flag\n", out.String())

	out.Reset()
	missing := &config.MissingFieldError{Scope: config.ScopeSettings, Field: config.ExchangeKey}
	err := fmt.Errorf("%w: %w", config.ErrNoExchangeSettings, missing)
	reportError(&out, &reportedError{err: err})
	assert.Empty(t, out.String())
	assert.Equal(t, config.ExitNoExchange, config.ExitCode(&reportedError{err: err}))
}
