package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcherChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	w, err := NewWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	changed, err := w.Changed()
	require.NoError(t, err)
	assert.False(t, changed)

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err = w.Changed()
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = w.Changed()
	require.NoError(t, err)
	assert.False(t, changed, "a change is reported once")
}

func TestWatcherMissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.json"), zaptest.NewLogger(t))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	w, err := NewWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = w.Changed()
	assert.Error(t, err)
}

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	w, err := NewWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// other files in the directory are ignored; the watched file signals
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o600)
		_ = os.WriteFile(path, []byte(`[{"SYMBOL": "CAKE"}]`), 0o600)
		select {
		case <-w.Notify():
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherRunWithoutEventsWaitsForCancel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	require.NoError(t, os.Mkdir(dir, 0o700))
	path := filepath.Join(dir, "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	w, err := NewWatcher(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	// the directory is gone, so no watch can be added
	require.NoError(t, os.RemoveAll(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Never(t, func() bool { return len(done) > 0 }, 200*time.Millisecond, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
