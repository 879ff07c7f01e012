package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestShutdownRunsInReverseOrder(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), time.Second)

	var order []string
	done := make(chan string, 3)
	for _, name := range []string{"watcher", "metrics", "logger"} {
		sh.AddFunc(name, func() error {
			done <- name
			return nil
		})
	}

	require.NoError(t, sh.Shutdown(context.Background()))
	close(done)
	for name := range done {
		order = append(order, name)
	}
	assert.Equal(t, []string{"logger", "metrics", "watcher"}, order)

	// services are released after shutdown
	assert.NoError(t, sh.Shutdown(context.Background()))
}

func TestShutdownReportsFirstError(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), time.Second)
	sh.AddFunc("first", func() error { return errors.New("first failed") })
	sh.AddFunc("second", func() error { return errors.New("second failed") })

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Equal(t, "second: second failed", err.Error())
}

func TestShutdownTimeout(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	sh.AddFunc("stuck", func() error {
		<-release
		return nil
	})

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown timeout")
}
