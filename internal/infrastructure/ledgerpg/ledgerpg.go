// Package ledgerpg implements the generic ledger interface over the real
// PostgreSQL backend: gorm for table-scoped queries and mutations, a
// dedicated pgx connection for the LISTEN/NOTIFY change feed.
package ledgerpg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/ledger"
	"gorm.io/gorm"
)

type Ledger struct {
	db   *gorm.DB
	feed ledger.ChangeFeed
}

// New wraps db as a generic ledger. feed may be nil when realtime sync is
// not wanted.
func New(db *gorm.DB, feed ledger.ChangeFeed) *Ledger {
	return &Ledger{db: db, feed: feed}
}

func (l *Ledger) Select(ctx context.Context, table string, filter ledger.Row, orderBy string) ([]ledger.Row, error) {
	q := l.db.WithContext(ctx).Table(table)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}

	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Row, len(rows))
	for i, r := range rows {
		out[i] = ledger.Row(r)
	}
	return out, nil
}

func (l *Ledger) Insert(ctx context.Context, table string, row ledger.Row) (ledger.Row, error) {
	stored := newRow(table, row)
	if err := l.db.WithContext(ctx).Table(table).Create(stored).Error; err != nil {
		return nil, err
	}
	return ledger.Row(stored), nil
}

// newRow copies row and fills the backend-assigned fields. gorm builds the
// INSERT column list from the map's keys, so only columns the table's
// schema actually carries may be added here.
func newRow(table string, row ledger.Row) map[string]any {
	stored := make(map[string]any, len(row)+2)
	for k, v := range row {
		stored[k] = v
	}
	if stored["id"] == nil || stored["id"] == "" {
		stored["id"] = uuid.New().String()
	}
	if ledger.HasColumn(table, "created_at") && stored["created_at"] == nil {
		stored["created_at"] = time.Now().UTC()
	}
	return stored
}

func (l *Ledger) Update(ctx context.Context, table string, filter ledger.Row, changes ledger.Row) error {
	return l.db.WithContext(ctx).Table(table).
		Where(map[string]any(filter)).
		Updates(map[string]any(changes)).Error
}

func (l *Ledger) Delete(ctx context.Context, table string, filter ledger.Row) error {
	return l.db.WithContext(ctx).Table(table).
		Where(map[string]any(filter)).
		Delete(&struct{}{}).Error
}

func (l *Ledger) Changes() ledger.ChangeFeed {
	return l.feed
}

func (l *Ledger) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
