// Package ledgermem is the local simulation of the remote ledger, used in
// disconnected environments and in tests. It implements the same generic
// table interface as the postgres backend over mutex-guarded maps and
// enforces the same column schema on writes. It has no change feed, which
// leaves the sync notifier inert.
package ledgermem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/ledger"
)

type Store struct {
	mu       sync.RWMutex
	tables   map[string][]ledger.Row
	failures map[string]error // keyed "op:table", "" table matches any
}

func New() *Store {
	return &Store{
		tables:   make(map[string][]ledger.Row),
		failures: make(map[string]error),
	}
}

// FailWith makes every op ("select", "insert", "update", "delete", "ping")
// against table return err until cleared. An empty table matches all tables.
func (s *Store) FailWith(op, table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op+":"+table] = err
}

// ClearFailures removes all injected failures.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

func (s *Store) failure(op, table string) error {
	if err, ok := s.failures[op+":"+table]; ok {
		return err
	}
	if err, ok := s.failures[op+":"]; ok {
		return err
	}
	return nil
}

func (s *Store) Select(ctx context.Context, table string, filter ledger.Row, orderBy string) ([]ledger.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("select", table); err != nil {
		return nil, err
	}

	var out []ledger.Row
	for _, row := range s.tables[table] {
		if matches(row, filter) {
			out = append(out, copyRow(row))
		}
	}
	if orderBy != "" {
		sortRows(out, orderBy)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, table string, row ledger.Row) (ledger.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("insert", table); err != nil {
		return nil, err
	}
	if err := checkColumns(table, row); err != nil {
		return nil, err
	}

	stored := copyRow(row)
	if stored["id"] == nil || stored["id"] == "" {
		stored["id"] = uuid.New().String()
	}
	if ledger.HasColumn(table, "created_at") && stored["created_at"] == nil {
		stored["created_at"] = time.Now().UTC()
	}
	s.tables[table] = append(s.tables[table], stored)
	return copyRow(stored), nil
}

func (s *Store) Update(ctx context.Context, table string, filter ledger.Row, changes ledger.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("update", table); err != nil {
		return err
	}
	if err := checkColumns(table, changes); err != nil {
		return err
	}

	for _, row := range s.tables[table] {
		if matches(row, filter) {
			for k, v := range changes {
				row[k] = canon(v)
			}
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, filter ledger.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("delete", table); err != nil {
		return err
	}

	kept := s.tables[table][:0]
	for _, row := range s.tables[table] {
		if !matches(row, filter) {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept
	return nil
}

// Changes returns nil: the simulation has no realtime feed.
func (s *Store) Changes() ledger.ChangeFeed {
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure("ping", "")
}

// Count reports the number of rows in table, for tests.
func (s *Store) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// Rows returns a copy of all rows in table, for tests.
func (s *Store) Rows(table string) []ledger.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Row, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		out = append(out, copyRow(row))
	}
	return out
}

// checkColumns rejects writes outside the table's schema, mirroring
// postgres.
func checkColumns(table string, row ledger.Row) error {
	for col := range row {
		if !ledger.HasColumn(table, col) {
			return fmt.Errorf("column %q of relation %q does not exist", col, table)
		}
	}
	return nil
}

func copyRow(row ledger.Row) ledger.Row {
	out := make(ledger.Row, len(row))
	for k, v := range row {
		out[k] = canon(v)
	}
	return out
}

// canon normalizes values so filters written with uuid.UUID or int match
// rows stored from JSON-ish sources and vice versa.
func canon(v any) any {
	switch n := v.(type) {
	case uuid.UUID:
		return n.String()
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return float64(n)
	case time.Time:
		return n.UTC()
	default:
		return v
	}
}

func matches(row, filter ledger.Row) bool {
	for k, want := range filter {
		if !equal(row[k], want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	a, b = canon(a), canon(b)
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func sortRows(rows []ledger.Row, orderBy string) {
	fields := strings.Fields(strings.ToLower(orderBy))
	if len(fields) == 0 {
		return
	}
	col := fields[0]
	desc := len(fields) > 1 && fields[1] == "desc"

	sort.SliceStable(rows, func(i, j int) bool {
		less := lessValue(rows[i][col], rows[j][col])
		if desc {
			return lessValue(rows[j][col], rows[i][col])
		}
		return less
	})
}

func lessValue(a, b any) bool {
	a, b = canon(a), canon(b)
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
		if bv, ok := b.(float64); ok {
			return float64(av) < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
		if bv, ok := b.(int64); ok {
			return av < float64(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return false
}
