package store

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackedNotifier(window time.Duration) (*SyncNotifier, *atomic.Int32) {
	var reloads atomic.Int32
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := NewSyncNotifier(nil, func(context.Context) { reloads.Add(1) }, window, log)
	return n, &reloads
}

func TestSyncNotifier_ExpiryDuringReArmedWindowWaits(t *testing.T) {
	n, reloads := newTrackedNotifier(60 * time.Millisecond)
	defer n.Close()

	n.schedule()
	// An expiry racing a fresh event finds the window pushed out and must
	// not reload yet.
	n.fire()
	assert.Zero(t, reloads.Load())

	require.Eventually(t, func() bool { return reloads.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// The re-armed window produced exactly one reload.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestSyncNotifier_StaleExpiryAfterWakeDoesNotReload(t *testing.T) {
	n, reloads := newTrackedNotifier(60 * time.Millisecond)
	defer n.Close()

	n.schedule()
	n.WakeImmediate("resume")
	assert.Equal(t, int32(1), reloads.Load())

	// An expiry arriving after the wake finds no armed window.
	n.fire()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}
