package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/infrastructure/overflow"
	"github.com/josemcv/tabsync/internal/ledger"
)

// SaleRegistrar converts a paid tab or a direct order into permanent
// records: the sale itself and, unless the sale is a courtesy, its income
// ledger entry. Each half is persisted remotely when possible and falls
// back to the overflow store independently; the guarantee is "recorded
// somewhere", not "recorded remotely". Only a remote failure followed by a
// local write failure is fatal, because checkout must never silently lose
// a completed sale.
type SaleRegistrar struct {
	ledger   ledger.Ledger
	overflow *overflow.Store
	notices  NoticeSink
	log      *slog.Logger
	now      func() time.Time
}

func NewSaleRegistrar(l ledger.Ledger, ov *overflow.Store, notices NoticeSink, log *slog.Logger) *SaleRegistrar {
	return &SaleRegistrar{
		ledger:   l,
		overflow: ov,
		notices:  notices,
		log:      log,
		now:      time.Now,
	}
}

// RegisterSaleInput describes a finalized tab or direct order at checkout.
// Total is computed once by the caller and never recomputed.
type RegisterSaleInput struct {
	Items         []entity.SaleItem
	Total         int64 // cents
	PaymentMethod enum.PaymentMethod
	DirectSale    bool
	Courtesy      bool
	TabNumber     *int
	CustomerName  string
}

// RegisterSaleResult reports where the sale landed. StoredLocally refers
// to the sale half; a locally stored sale takes its transaction with it.
type RegisterSaleResult struct {
	Sale          entity.SaleRecord `json:"sale"`
	TransactionID string            `json:"transaction_id,omitempty"`
	StoredLocally bool              `json:"stored_locally"`
}

// RegisterSale persists the sale and its derived financial entry.
func (r *SaleRegistrar) RegisterSale(ctx context.Context, input RegisterSaleInput) (RegisterSaleResult, error) {
	items := make([]entity.SaleItem, len(input.Items))
	copy(items, input.Items)

	sale := entity.SaleRecord{
		TabNumber:     input.TabNumber,
		CustomerName:  input.CustomerName,
		Items:         items,
		Total:         input.Total,
		PaymentMethod: input.PaymentMethod,
		SoldAt:        r.now().UTC(),
		DirectSale:    input.DirectSale,
		Courtesy:      input.Courtesy,
	}

	storedLocally, err := r.persistSale(ctx, &sale)
	if err != nil {
		return RegisterSaleResult{}, err
	}

	result := RegisterSaleResult{Sale: sale, StoredLocally: storedLocally}

	if input.Courtesy {
		r.notices.Publish(Notice{
			Level:   NoticeInfo,
			Kind:    NoticeCourtesyRecorded,
			Message: "Courtesy sale recorded. No ledger entry was created.",
		})
		return result, nil
	}

	txID, err := r.persistTransaction(ctx, sale, storedLocally)
	if err != nil {
		return RegisterSaleResult{}, err
	}
	result.TransactionID = txID

	r.notices.Publish(Notice{
		Level:   NoticeInfo,
		Kind:    NoticeSaleRecorded,
		Message: "Sale recorded.",
	})
	return result, nil
}

// persistSale tries the remote ledger first and falls back to the overflow
// store with a locally generated id.
func (r *SaleRegistrar) persistSale(ctx context.Context, sale *entity.SaleRecord) (bool, error) {
	row, rowErr := ledger.SaleRow(*sale)
	if rowErr == nil {
		stored, err := r.ledger.Insert(ctx, ledger.TableSales, row)
		if err == nil {
			sale.ID = fmt.Sprint(stored["id"])
			return false, nil
		}
		rowErr = err
	}

	r.log.Warn("remote sale persistence failed, falling back to overflow store", "err", rowErr)
	sale.ID = entity.LocalIDPrefix + uuid.New().String()
	if err := r.overflow.AppendSale(*sale); err != nil {
		return false, fmt.Errorf(
			"sale could not be recorded remotely (%v) nor locally: %w", rowErr, err)
	}
	return true, nil
}

// persistTransaction derives and stores the income entry. When the sale
// already fell back locally the transaction goes straight to the overflow
// store, so both halves travel together for later manual reconciliation.
func (r *SaleRegistrar) persistTransaction(ctx context.Context, sale entity.SaleRecord, saleLocal bool) (string, error) {
	tx := entity.Transaction{
		Kind:        enum.TransactionKindIncome,
		Description: transactionDescription(sale),
		Amount:      sale.Total,
		Category:    entity.TransactionCategorySales,
		OccurredAt:  sale.SoldAt,
	}

	var remoteErr error
	if !saleLocal {
		stored, err := r.ledger.Insert(ctx, ledger.TableTransactions, ledger.TransactionRow(tx))
		if err == nil {
			return fmt.Sprint(stored["id"]), nil
		}
		remoteErr = err
		r.log.Warn("remote transaction persistence failed, falling back to overflow store", "err", err)
	}

	tx.ID = entity.LocalIDPrefix + uuid.New().String()
	if err := r.overflow.AppendTransaction(tx); err != nil {
		if remoteErr != nil {
			return "", fmt.Errorf(
				"transaction could not be recorded remotely (%v) nor locally: %w", remoteErr, err)
		}
		return "", fmt.Errorf("transaction could not be recorded locally: %w", err)
	}
	return tx.ID, nil
}

func transactionDescription(sale entity.SaleRecord) string {
	switch {
	case sale.TabNumber != nil && sale.CustomerName != "":
		return fmt.Sprintf("Sale, tab %d (%s)", *sale.TabNumber, sale.CustomerName)
	case sale.TabNumber != nil:
		return fmt.Sprintf("Sale, tab %d", *sale.TabNumber)
	case sale.CustomerName != "":
		return fmt.Sprintf("Direct sale (%s)", sale.CustomerName)
	default:
		return "Direct sale"
	}
}
