package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/josemcv/tabsync/internal/ledger"
)

// SyncNotifier turns change events on the tab and tab-item tables into tab
// store reloads. Bursts are coalesced: each event re-arms a single timer,
// so exactly one reload fires after the last event of a burst (a debounce,
// not a throttle). Wake triggers bypass the delay entirely.
//
// Against a backend without a change feed the notifier is inert.
type SyncNotifier struct {
	feed   ledger.ChangeFeed
	reload func(context.Context)
	window time.Duration
	log    *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	deadline    time.Time
	unsubscribe func()
	closed      bool
}

func NewSyncNotifier(feed ledger.ChangeFeed, reload func(context.Context), window time.Duration, log *slog.Logger) *SyncNotifier {
	if window <= 0 {
		window = 150 * time.Millisecond
	}
	return &SyncNotifier{
		feed:   feed,
		reload: reload,
		window: window,
		log:    log,
	}
}

// Start subscribes to the change feed. With a nil feed it does nothing.
func (n *SyncNotifier) Start(ctx context.Context) error {
	if n.feed == nil {
		n.log.Info("change feed unavailable, realtime sync disabled")
		return nil
	}

	unsubscribe, err := n.feed.Subscribe(ctx,
		[]string{ledger.TableTabs, ledger.TableTabItems},
		func(ledger.ChangeEvent) { n.schedule() })
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.unsubscribe = unsubscribe
	n.mu.Unlock()
	return nil
}

// schedule arms the debounce timer, or pushes it out when already armed.
func (n *SyncNotifier) schedule() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.deadline = time.Now().Add(n.window)
	if n.timer != nil {
		n.timer.Reset(n.window)
		return
	}
	n.timer = time.AfterFunc(n.window, n.fire)
}

// fire runs the debounced reload. An event can land between the timer
// expiring and this goroutine taking the lock; the deadline re-check keeps
// such a pushed-out window honored instead of reloading twice. A nil timer
// means a wake or close already emptied the window.
func (n *SyncNotifier) fire() {
	n.mu.Lock()
	if n.closed || n.timer == nil {
		n.mu.Unlock()
		return
	}
	if remaining := time.Until(n.deadline); remaining > 0 {
		n.timer.Reset(remaining)
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.mu.Unlock()

	n.reload(context.Background())
}

// WakeImmediate runs a zero-delay reload, cancelling any pending debounced
// one. Clients call it when they regain foreground visibility; the
// connectivity watcher calls it when the backend becomes reachable again.
func (n *SyncNotifier) WakeImmediate(reason string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.log.Debug("immediate reload", "reason", reason)
	n.reload(context.Background())
}

// Close cancels the pending timer and unsubscribes from the change feed.
// Skipping either leaks timers or listeners across restarts. Close is
// idempotent and teardown failures are logged, never propagated.
func (n *SyncNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	unsubscribe := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()

	if unsubscribe != nil {
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("change feed unsubscribe panicked", "err", r)
			}
		}()
		unsubscribe()
	}
}

// ConnectivityWatcher probes the ledger and fires an immediate reload on
// the offline-to-online transition.
type ConnectivityWatcher struct {
	ping     func(context.Context) error
	interval time.Duration
	onOnline func()
	log      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewConnectivityWatcher(ping func(context.Context) error, interval time.Duration, onOnline func(), log *slog.Logger) *ConnectivityWatcher {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ConnectivityWatcher{
		ping:     ping,
		interval: interval,
		onOnline: onOnline,
		log:      log,
	}
}

func (w *ConnectivityWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		online := w.ping(ctx) == nil
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			err := w.ping(ctx)
			switch {
			case err != nil && online:
				online = false
				w.log.Warn("ledger unreachable", "err", err)
			case err == nil && !online:
				online = true
				w.log.Info("ledger reachable again")
				w.onOnline()
			}
		}
	}()
}

func (w *ConnectivityWatcher) Close() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
}
