package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/repository"
	"telegram_casino/internal/store"
)

// Ledger - реестр аккаунтов: баланс и игровая статистика.
// Каждое изменение выполняется в транзакции хранилища по ключу аккаунта.
type Ledger struct {
	store           store.Store
	accounts        *repository.AccountRepository
	startingBalance int64
	now             func() time.Time
}

// создает новый реестр; startingBalance <= 0 означает значение по умолчанию
func NewLedger(s store.Store, startingBalance int64) *Ledger {
	if startingBalance <= 0 {
		startingBalance = domain.DefaultStartingBalance
	}
	return &Ledger{
		store:           s,
		accounts:        repository.NewAccountRepository(s),
		startingBalance: startingBalance,
		now:             time.Now,
	}
}

// AccountKey - ключ аккаунта для объявления в транзакции
func (l *Ledger) AccountKey(userID int64) store.Key {
	return l.accounts.Key(userID)
}

// возвращает аккаунт, создавая его с начальным балансом при первом обращении
func (l *Ledger) GetAccount(ctx context.Context, userID int64) (*domain.Account, error) {
	acc, err := l.accounts.Get(ctx, userID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	err = l.store.Update(ctx, []store.Key{l.AccountKey(userID)}, func(tx store.Tx) error {
		acc, err = l.InTx(tx).Account(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// добавляет сумму к балансу
func (l *Ledger) Credit(ctx context.Context, userID, amount int64) (newBalance int64, err error) {
	err = l.update(ctx, userID, func(t *LedgerTx) error {
		newBalance, err = t.Credit(userID, amount)
		return err
	})
	return newBalance, err
}

// списывает сумму с баланса
func (l *Ledger) Debit(ctx context.Context, userID, amount int64) (newBalance int64, err error) {
	err = l.update(ctx, userID, func(t *LedgerTx) error {
		newBalance, err = t.Debit(userID, amount)
		return err
	})
	return newBalance, err
}

// обновляет игровую статистику
func (l *Ledger) RecordGame(ctx context.Context, userID, played, wins int64) error {
	return l.update(ctx, userID, func(t *LedgerTx) error {
		return t.RecordGame(userID, played, wins)
	})
}

// Settle атомарно списывает ставку, начисляет выплату и учитывает игру
func (l *Ledger) Settle(ctx context.Context, userID, stake, payout int64, won bool) (newBalance int64, err error) {
	err = l.update(ctx, userID, func(t *LedgerTx) error {
		if newBalance, err = t.Debit(userID, stake); err != nil {
			return err
		}
		if payout > 0 {
			if newBalance, err = t.Credit(userID, payout); err != nil {
				return err
			}
		}
		return t.RecordGame(userID, 1, boolToInt(won))
	})
	return newBalance, err
}

// Finish завершает игру, ставка которой уже списана: начисляет выплату и учитывает игру
func (l *Ledger) Finish(ctx context.Context, userID, payout int64, won bool) (newBalance int64, err error) {
	err = l.update(ctx, userID, func(t *LedgerTx) error {
		if payout > 0 {
			if newBalance, err = t.Credit(userID, payout); err != nil {
				return err
			}
		} else {
			acc, err := t.Account(userID)
			if err != nil {
				return err
			}
			newBalance = acc.Balance
		}
		return t.RecordGame(userID, 1, boolToInt(won))
	})
	return newBalance, err
}

func (l *Ledger) CanAfford(ctx context.Context, userID, amount int64) (bool, error) {
	acc, err := l.GetAccount(ctx, userID)
	if err != nil {
		return false, err
	}
	return acc.Balance >= amount, nil
}

// Top возвращает аккаунты по убыванию баланса (при равенстве - по id)
func (l *Ledger) Top(ctx context.Context, limit int) ([]*domain.Account, error) {
	all, err := l.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Balance != all[j].Balance {
			return all[i].Balance > all[j].Balance
		}
		return all[i].UserID < all[j].UserID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// AccountIDs - все известные игроки
func (l *Ledger) AccountIDs(ctx context.Context) ([]int64, error) {
	all, err := l.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(all))
	for i, a := range all {
		ids[i] = a.UserID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (l *Ledger) Accounts(ctx context.Context) ([]*domain.Account, error) {
	return l.accounts.List(ctx)
}

func (l *Ledger) update(ctx context.Context, userID int64, fn func(*LedgerTx) error) error {
	return l.store.Update(ctx, []store.Key{l.AccountKey(userID)}, func(tx store.Tx) error {
		return fn(l.InTx(tx))
	})
}

// LedgerTx - операции реестра внутри чужой транзакции хранилища.
// Ключи аккаунтов должны быть объявлены вызывающим.
type LedgerTx struct {
	l  *Ledger
	tx store.Tx
}

func (l *Ledger) InTx(tx store.Tx) *LedgerTx {
	return &LedgerTx{l: l, tx: tx}
}

// Account загружает аккаунт, создавая запись по умолчанию при отсутствии
func (t *LedgerTx) Account(userID int64) (*domain.Account, error) {
	acc, err := t.l.accounts.GetTx(t.tx, userID)
	if err == nil {
		if acc.RedeemedCodes == nil {
			acc.RedeemedCodes = []string{}
		}
		return acc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	acc = domain.NewAccount(userID, t.l.startingBalance, t.l.now())
	if err := t.l.accounts.PutTx(t.tx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (t *LedgerTx) Credit(userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	acc, err := t.Account(userID)
	if err != nil {
		return 0, err
	}
	acc.Balance += amount
	return acc.Balance, t.save(acc)
}

func (t *LedgerTx) Debit(userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	acc, err := t.Account(userID)
	if err != nil {
		return 0, err
	}
	if acc.Balance < amount {
		return 0, domain.ErrInsufficientFunds
	}
	acc.Balance -= amount
	return acc.Balance, t.save(acc)
}

func (t *LedgerTx) RecordGame(userID, played, wins int64) error {
	acc, err := t.Account(userID)
	if err != nil {
		return err
	}
	acc.GamesPlayed += played
	acc.Wins += wins
	return t.save(acc)
}

// AddRedeemedCode отмечает промокод как использованный игроком
func (t *LedgerTx) AddRedeemedCode(userID int64, code string) error {
	acc, err := t.Account(userID)
	if err != nil {
		return err
	}
	if acc.HasRedeemed(code) {
		return domain.ErrAlreadyUsed
	}
	acc.RedeemedCodes = append(acc.RedeemedCodes, code)
	return t.save(acc)
}

func (t *LedgerTx) save(acc *domain.Account) error {
	acc.UpdatedAt = t.l.now()
	return t.l.accounts.PutTx(t.tx, acc)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
