package bot

import (
	"time"

	"github.com/rovshanmuradov/limit-bot/internal/config"
	"github.com/rovshanmuradov/limit-bot/internal/token"
)

// Snapshot is the configuration the trading loop works against. A new
// Snapshot replaces the old one after every successful reload; a published
// Snapshot is never modified except for token runtime fields, which only
// the loop writes.
type Snapshot struct {
	Settings   *config.Settings
	Tokens     *token.Set
	Generation uint64
	LoadedAt   time.Time
}
