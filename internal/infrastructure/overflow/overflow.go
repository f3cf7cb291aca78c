// Package overflow is the on-device fallback store for completed sales and
// their financial entries when the remote ledger is unreachable. Records are
// durably queued for later manual reconciliation; automatic replay to the
// remote store is out of scope.
package overflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/josemcv/tabsync/internal/domain/entity"
)

const (
	salesFile        = "pending_sales.json"
	transactionsFile = "pending_transactions.json"
)

// Store keeps two independent append-only buckets as JSON files under dir.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating overflow dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// AppendSale durably queues a sale record.
func (s *Store) AppendSale(sale entity.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales := readBucket[entity.SaleRecord](filepath.Join(s.dir, salesFile))
	sales = append(sales, sale)
	return s.writeBucket(salesFile, sales)
}

// AppendTransaction durably queues a financial ledger entry.
func (s *Store) AppendTransaction(tx entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := readBucket[entity.Transaction](filepath.Join(s.dir, transactionsFile))
	txs = append(txs, tx)
	return s.writeBucket(transactionsFile, txs)
}

// PendingSales returns the queued sales. A missing or corrupt bucket reads
// as empty, never as an error.
func (s *Store) PendingSales() []entity.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readBucket[entity.SaleRecord](filepath.Join(s.dir, salesFile))
}

// PendingTransactions returns the queued ledger entries.
func (s *Store) PendingTransactions() []entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readBucket[entity.Transaction](filepath.Join(s.dir, transactionsFile))
}

func readBucket[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupt content is treated as empty; the next append rewrites it.
		return nil
	}
	return records
}

func (s *Store) writeBucket(name string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
