package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/josemcv/tabsync/internal/domain/entity"
	"github.com/josemcv/tabsync/internal/domain/enum"
	"github.com/josemcv/tabsync/internal/ledger"
	"github.com/josemcv/tabsync/pkg/apperror"
)

// TabStore synchronizes the open-tab set against the remote ledger. Every
// mutation writes remotely and then runs a full reload, so callers always
// observe post-reload authoritative state rather than an optimistic update.
//
// Reads fail open: a remote failure logs, surfaces a rate-limited notice
// and yields an empty set, while consumers keep rendering prior state.
type TabStore struct {
	ledger  ledger.Ledger
	notices NoticeSink
	log     *slog.Logger

	mu       sync.Mutex
	tabs     []entity.Tab
	watchers []chan []entity.Tab

	// Per-notice-kind shown flags, explicit store state rather than
	// incidental closures.
	shownSourceNotice bool
	wasEmpty          bool
}

func NewTabStore(l ledger.Ledger, notices NoticeSink, log *slog.Logger) *TabStore {
	return &TabStore{
		ledger:  l,
		notices: notices,
		log:     log,
	}
}

// ListOpenTabs reloads and returns the open tabs, newest first. It never
// returns an error.
func (s *TabStore) ListOpenTabs(ctx context.Context) []entity.Tab {
	return s.Reload(ctx)
}

// Snapshot returns the last published open-tab set without touching the
// remote ledger.
func (s *TabStore) Snapshot() []entity.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs
}

// Watch returns a channel receiving each republished snapshot and a cancel
// function. The channel holds one pending snapshot; stale ones are dropped.
func (s *TabStore) Watch() (<-chan []entity.Tab, func()) {
	ch := make(chan []entity.Tab, 1)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Reload fetches the full open-tab set and republishes it, fetching items
// per tab. Line items are reconstructed purely from their stored snapshots,
// never re-joined against the live catalog.
func (s *TabStore) Reload(ctx context.Context) []entity.Tab {
	rows, err := s.ledger.Select(ctx, ledger.TableTabs, nil, "created_at desc")
	if err != nil {
		// Fail open: empty result, notice, prior snapshot left untouched
		// so consumers keep rendering stale-but-valid state.
		s.log.Error("loading tabs failed", "err", err)
		s.publishSourceNotice()
		return nil
	}

	tabs := make([]entity.Tab, 0, len(rows))
	for _, row := range rows {
		tab, err := ledger.TabFromRow(row)
		if err != nil {
			s.log.Warn("skipping malformed tab row", "err", err)
			continue
		}
		if !tab.IsOpen() {
			continue
		}

		itemRows, err := s.ledger.Select(ctx, ledger.TableTabItems,
			ledger.Row{"tab_id": tab.ID.String()}, "created_at asc")
		if err != nil {
			s.log.Error("loading tab items failed", "tab", tab.ID, "err", err)
			s.publishSourceNotice()
			return nil
		}
		tab.Items = make([]entity.TabItem, 0, len(itemRows))
		for _, itemRow := range itemRows {
			item, err := ledger.TabItemFromRow(itemRow)
			if err != nil {
				s.log.Warn("skipping malformed tab item row", "tab", tab.ID, "err", err)
				continue
			}
			tab.Items = append(tab.Items, item)
		}
		tabs = append(tabs, tab)
	}

	return s.publish(tabs)
}

// CreateTab opens a new tab. The tab number must not collide with a
// currently open tab; there is no local fallback here because numbering
// authority must stay centralized to avoid cross-device collisions.
func (s *TabStore) CreateTab(ctx context.Context, number int, customerName string) (uuid.UUID, error) {
	open := s.Reload(ctx)
	for _, tab := range open {
		if tab.Number == number {
			return uuid.Nil, apperror.NewConflictError(
				fmt.Sprintf("Tab %d is already open", number))
		}
	}

	row, err := s.ledger.Insert(ctx, ledger.TableTabs, ledger.NewTabRow(number, customerName))
	if err != nil {
		s.log.Error("creating tab failed", "number", number, "err", err)
		s.notices.Publish(Notice{
			Level:   NoticeError,
			Kind:    NoticeTabCreateFailed,
			Message: "Could not create the tab. Check the connection and try again.",
		})
		return uuid.Nil, apperror.NewAppError(apperror.ErrInternalServer.Code, "Could not create tab")
	}

	tab, err := ledger.TabFromRow(row)
	if err != nil {
		s.log.Error("created tab row unreadable", "err", err)
		return uuid.Nil, apperror.NewAppError(apperror.ErrInternalServer.Code, "Could not create tab")
	}

	s.Reload(ctx)
	return tab.ID, nil
}

// AddItem adds one unit of a product to a tab. A line for the same product
// is incremented instead of duplicated. Failures are logged and non-fatal;
// the attempted change simply does not appear after the reload.
func (s *TabStore) AddItem(ctx context.Context, tabID, productID uuid.UUID, productName string, unitPrice int64) []entity.Tab {
	filter := ledger.Row{
		"tab_id":     tabID.String(),
		"product_id": productID.String(),
	}

	rows, err := s.ledger.Select(ctx, ledger.TableTabItems, filter, "")
	if err != nil {
		s.log.Error("looking up tab item failed", "tab", tabID, "product", productID, "err", err)
		return s.Reload(ctx)
	}

	if len(rows) > 0 {
		item, err := ledger.TabItemFromRow(rows[0])
		if err != nil {
			s.log.Error("existing tab item row unreadable", "tab", tabID, "err", err)
			return s.Reload(ctx)
		}
		err = s.ledger.Update(ctx, ledger.TableTabItems, filter,
			ledger.Row{"quantity": item.Quantity + 1})
		if err != nil {
			s.log.Error("incrementing tab item failed", "tab", tabID, "product", productID, "err", err)
		}
		return s.Reload(ctx)
	}

	_, err = s.ledger.Insert(ctx, ledger.TableTabItems,
		ledger.NewItemRow(tabID, productID, productName, unitPrice))
	if err != nil {
		s.log.Error("adding tab item failed", "tab", tabID, "product", productID, "err", err)
	}
	return s.Reload(ctx)
}

// RemoveItem deletes the product's whole line from the tab, regardless of
// quantity.
func (s *TabStore) RemoveItem(ctx context.Context, tabID, productID uuid.UUID) []entity.Tab {
	err := s.ledger.Delete(ctx, ledger.TableTabItems, ledger.Row{
		"tab_id":     tabID.String(),
		"product_id": productID.String(),
	})
	if err != nil {
		s.log.Error("removing tab item failed", "tab", tabID, "product", productID, "err", err)
	}
	return s.Reload(ctx)
}

// CloseTab marks the tab closed. Closed tabs vanish from the open set on
// the following reload.
func (s *TabStore) CloseTab(ctx context.Context, tabID uuid.UUID, paymentMethod enum.PaymentMethod) []entity.Tab {
	err := s.ledger.Update(ctx, ledger.TableTabs,
		ledger.Row{"id": tabID.String()},
		ledger.Row{"status": int(enum.TabStatusClosed)})
	if err != nil {
		s.log.Error("closing tab failed", "tab", tabID, "method", paymentMethod, "err", err)
	}
	return s.Reload(ctx)
}

// DeleteTab hard-deletes the tab and its line items.
func (s *TabStore) DeleteTab(ctx context.Context, tabID uuid.UUID) []entity.Tab {
	err := s.ledger.Delete(ctx, ledger.TableTabItems, ledger.Row{"tab_id": tabID.String()})
	if err != nil {
		s.log.Error("deleting tab items failed", "tab", tabID, "err", err)
	}
	err = s.ledger.Delete(ctx, ledger.TableTabs, ledger.Row{"id": tabID.String()})
	if err != nil {
		s.log.Error("deleting tab failed", "tab", tabID, "err", err)
	}
	return s.Reload(ctx)
}

// publish stores the snapshot, fans it out to watchers and fires the
// empty-transition warning.
func (s *TabStore) publish(tabs []entity.Tab) []entity.Tab {
	s.mu.Lock()
	s.tabs = tabs

	empty := len(tabs) == 0
	warnEmpty := empty && !s.wasEmpty
	s.wasEmpty = empty

	watchers := make([]chan []entity.Tab, len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- tabs:
		default:
			// Drop the stale pending snapshot and queue the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- tabs:
			default:
			}
		}
	}

	if warnEmpty {
		s.notices.Publish(Notice{
			Level:   NoticeWarn,
			Kind:    NoticeNoOpenTabs,
			Message: "No open tabs.",
		})
	}
	return tabs
}

// publishSourceNotice fires the data-source notice at most once per store
// lifetime.
func (s *TabStore) publishSourceNotice() {
	s.mu.Lock()
	shown := s.shownSourceNotice
	s.shownSourceNotice = true
	s.mu.Unlock()
	if shown {
		return
	}
	s.notices.Publish(Notice{
		Level:   NoticeInfo,
		Kind:    NoticeDataSource,
		Message: "The tab service is temporarily unreachable; showing the last known state.",
	})
}
