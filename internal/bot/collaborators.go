package bot

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/token"
)

// Quoter returns the current price of a token in its quote asset.
type Quoter interface {
	Price(ctx context.Context, tok *token.Token) (float64, error)
}

// KeyDecrypter unlocks the wallet keys referenced by the exchange settings.
type KeyDecrypter interface {
	Decrypt(ctx context.Context, exchange *config.ExchangeSettings) error
}

// ReleaseChecker reports the latest published release. It must not fail.
type ReleaseChecker interface {
	Latest(ctx context.Context) string
}

// ErrDecryption is fatal: a human has to supply the right password.
var ErrDecryption = errors.New("failed to decrypt private keys")
