package service

import (
	"context"
	"fmt"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/metrics"
	"telegram_casino/internal/repository"
	"telegram_casino/internal/store"
)

// TransferService переносит предметы между инвентарями
type TransferService struct {
	store       store.Store
	inventories *repository.InventoryRepository
	ledger      *Ledger
	audit       *AuditService
}

func NewTransferService(s store.Store, ledger *Ledger, audit *AuditService) *TransferService {
	return &TransferService{
		store:       s,
		inventories: repository.NewInventoryRepository(s),
		ledger:      ledger,
		audit:       audit,
	}
}

type TransferResult struct {
	Entry          domain.InventoryEntry `json:"entry"`
	FromUserID     int64                 `json:"from_user_id"`
	ToUserID       int64                 `json:"to_user_id"`
	SenderCount    int                   `json:"sender_count"`
	RecipientCount int                   `json:"recipient_count"`
}

// Transfer передает предмет по его уникальному идентификатору
func (s *TransferService) Transfer(ctx context.Context, fromID, toID int64, uniqueID string) (*TransferResult, error) {
	return s.move(ctx, fromID, toID, func(inv *domain.Inventory) int {
		return inv.IndexOf(uniqueID)
	})
}

// TransferAt передает предмет по позиции (0-based) на момент выполнения
func (s *TransferService) TransferAt(ctx context.Context, fromID, toID int64, index int) (*TransferResult, error) {
	return s.move(ctx, fromID, toID, func(*domain.Inventory) int {
		return index
	})
}

func (s *TransferService) move(ctx context.Context, fromID, toID int64, locate func(*domain.Inventory) int) (*TransferResult, error) {
	if fromID == toID {
		return nil, domain.ErrSelfTransfer
	}

	res := &TransferResult{FromUserID: fromID, ToUserID: toID}
	keys := []store.Key{
		s.inventories.Key(fromID),
		s.inventories.Key(toID),
		s.ledger.AccountKey(toID),
	}
	err := s.store.Update(ctx, keys, func(tx store.Tx) error {
		from, err := s.inventories.GetTx(tx, fromID)
		if err != nil {
			return err
		}
		entry, ok := from.RemoveAt(locate(from))
		if !ok {
			return domain.ErrItemNotFound
		}

		// получатель может еще не иметь аккаунта
		if _, err := s.ledger.InTx(tx).Account(toID); err != nil {
			return err
		}

		to, err := s.inventories.GetTx(tx, toID)
		if err != nil {
			return err
		}
		to.Append(entry)

		if err := s.inventories.PutTx(tx, from); err != nil {
			return err
		}
		if err := s.inventories.PutTx(tx, to); err != nil {
			return err
		}

		res.Entry = entry
		res.SenderCount = len(from.Items)
		res.RecipientCount = len(to.Items)
		return nil
	})

	metrics.Transfers.WithLabelValues(metrics.Result(err, domain.ErrorCode)).Inc()
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error("transfer failed", "from", fromID, "to", toID, "error", err)
			return nil, fmt.Errorf("transfer item: %w", err)
		}
		return nil, err
	}

	s.audit.LogTransfer(ctx, fromID, toID, res.Entry.UniqueID)
	return res, nil
}
