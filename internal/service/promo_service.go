package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/metrics"
	"telegram_casino/internal/repository"
	"telegram_casino/internal/store"
)

// PromoService - реестр промокодов
type PromoService struct {
	store  store.Store
	promos *repository.PromoRepository
	ledger *Ledger
	audit  *AuditService
	now    func() time.Time
}

func NewPromoService(s store.Store, ledger *Ledger, audit *AuditService) *PromoService {
	return &PromoService{
		store:  s,
		promos: repository.NewPromoRepository(s),
		ledger: ledger,
		audit:  audit,
		now:    time.Now,
	}
}

// Create регистрирует новый промокод. Нулевые usesLimit и expiresInDays
// заменяются значениями по умолчанию (100 и 30 дней), срок не больше MaxPromoExpiresDays.
func (s *PromoService) Create(ctx context.Context, code string, reward int64, usesLimit, expiresInDays int) (*domain.PromoCode, error) {
	code = domain.NormalizePromoCode(code)
	if code == "" || reward <= 0 || usesLimit < 0 || expiresInDays < 0 || expiresInDays > domain.MaxPromoExpiresDays {
		return nil, domain.ErrInvalidAmount
	}
	if usesLimit == 0 {
		usesLimit = domain.DefaultPromoUsesLimit
	}
	if expiresInDays == 0 {
		expiresInDays = domain.DefaultPromoExpiresDays
	}

	now := s.now()
	promo := &domain.PromoCode{
		Code:       code,
		Reward:     reward,
		UsesLimit:  usesLimit,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(expiresInDays) * 24 * time.Hour),
		RedeemedBy: []int64{},
	}

	key := s.promos.Key(code)
	err := s.store.Update(ctx, []store.Key{key}, func(tx store.Tx) error {
		if _, err := s.promos.GetTx(tx, code); err == nil {
			return domain.ErrDuplicateID
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return s.promos.PutTx(tx, promo)
	})
	if err != nil {
		return nil, err
	}
	return promo, nil
}

type RedemptionResult struct {
	Code       string `json:"code"`
	Reward     int64  `json:"reward"`
	NewBalance int64  `json:"balance"`
}

// Redeem активирует промокод для игрока. Проверки выполняются в порядке:
// не найден, просрочен, лимит исчерпан, уже использован.
func (s *PromoService) Redeem(ctx context.Context, code string, userID int64) (*RedemptionResult, error) {
	code = domain.NormalizePromoCode(code)
	res := &RedemptionResult{Code: code}

	keys := []store.Key{s.promos.Key(code), s.ledger.AccountKey(userID)}
	err := s.store.Update(ctx, keys, func(tx store.Tx) error {
		promo, err := s.promos.GetTx(tx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if promo.Expired(s.now()) {
			return domain.ErrExpired
		}
		if promo.Exhausted() {
			return domain.ErrLimitReached
		}

		lt := s.ledger.InTx(tx)
		acc, err := lt.Account(userID)
		if err != nil {
			return err
		}
		if promo.RedeemedByUser(userID) || acc.HasRedeemed(code) {
			return domain.ErrAlreadyUsed
		}

		promo.UsesCount++
		promo.RedeemedBy = append(promo.RedeemedBy, userID)
		if err := s.promos.PutTx(tx, promo); err != nil {
			return err
		}
		if err := lt.AddRedeemedCode(userID, code); err != nil {
			return err
		}
		res.Reward = promo.Reward
		res.NewBalance, err = lt.Credit(userID, promo.Reward)
		return err
	})

	metrics.PromoRedemptions.WithLabelValues(metrics.Result(err, domain.ErrorCode)).Inc()
	if err != nil {
		if !domain.IsBusiness(err) {
			logger.Error("promo redeem failed", "code", code, "user_id", userID, "error", err)
			return nil, fmt.Errorf("redeem promo: %w", err)
		}
		return nil, err
	}

	s.audit.LogPromoRedeem(ctx, userID, code, res.Reward)
	return res, nil
}

func (s *PromoService) Get(ctx context.Context, code string) (*domain.PromoCode, error) {
	promo, err := s.promos.Get(ctx, domain.NormalizePromoCode(code))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return promo, err
}

// List возвращает все промокоды, новые первыми
func (s *PromoService) List(ctx context.Context) ([]*domain.PromoCode, error) {
	all, err := s.promos.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}
