package ledgerpg

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/josemcv/tabsync/internal/infrastructure/database"
	"github.com/josemcv/tabsync/internal/ledger"
)

// ChangeFeed delivers change events over a dedicated LISTEN connection.
// The pg_notify triggers installed at migration time publish the changed
// table's name on database.NotifyChannel.
type ChangeFeed struct {
	dsn string
	log *slog.Logger
}

func NewChangeFeed(dsn string, log *slog.Logger) *ChangeFeed {
	return &ChangeFeed{dsn: dsn, log: log}
}

// Subscribe opens a listening connection and dispatches events for the
// given tables to fn until the returned unsubscribe function is called.
// Dropped connections are re-established with a short backoff.
func (f *ChangeFeed) Subscribe(ctx context.Context, tables []string, fn func(ledger.ChangeEvent)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	conn, err := f.listen(ctx)
	if err != nil {
		cancel()
		close(done)
		return nil, err
	}

	go func() {
		defer close(done)
		for {
			if conn == nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
				}
				if conn, err = f.listen(ctx); err != nil {
					f.log.Warn("change feed reconnect failed", "err", err)
					conn = nil
					continue
				}
			}

			notification, err := conn.WaitForNotification(ctx)
			if err != nil {
				_ = conn.Close(context.Background())
				conn = nil
				if ctx.Err() != nil {
					return
				}
				f.log.Warn("change feed connection lost", "err", err)
				continue
			}

			if slices.Contains(tables, notification.Payload) {
				fn(ledger.ChangeEvent{Table: notification.Payload})
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return unsubscribe, nil
}

func (f *ChangeFeed) listen(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+database.NotifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}
	return conn, nil
}
