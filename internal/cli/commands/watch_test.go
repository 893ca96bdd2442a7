package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/leapstack-labs/leapmetrics/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile_CallsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "metrics.yaml")
	sibling := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, target, 10*time.Millisecond, testutil.NewTestLogger(t), func() {
			calls.Add(1)
		})
	}()

	// Writes to other files in the directory are ignored
	require.NoError(t, os.WriteFile(sibling, []byte("b"), 0600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())

	// The watcher starts asynchronously, so keep writing until it notices
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("c"), 0600)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	err := watchFile(context.Background(), filepath.Join(t.TempDir(), "missing", "metrics.yaml"),
		time.Millisecond, testutil.NewTestLogger(t), func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestDebouncer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	deb := newDebouncer(clock, 100*time.Millisecond)
	defer deb.Stop()

	fired := func() int {
		n := 0
		for {
			select {
			case <-deb.C():
				n++
			default:
				return n
			}
		}
	}

	assert.Nil(t, deb.C(), "no channel before the first trigger")

	// A burst of triggers restarts the quiet period
	deb.Trigger()
	clock.Advance(50 * time.Millisecond)
	deb.Trigger()
	clock.Advance(60 * time.Millisecond)
	assert.Zero(t, fired())
	clock.Advance(40 * time.Millisecond)
	assert.Equal(t, 1, fired())

	// A tick left unread when a new event arrives is dropped
	deb.Trigger()
	clock.Advance(100 * time.Millisecond)
	deb.Trigger()
	clock.Advance(50 * time.Millisecond)
	assert.Zero(t, fired())
	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, fired())

	// Stop prevents a pending tick
	deb.Trigger()
	deb.Stop()
	clock.Advance(time.Second)
	assert.Zero(t, fired())
}
