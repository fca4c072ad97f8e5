package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/game"
	"telegram_casino/internal/keylock"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/metrics"

	"github.com/google/uuid"
)

const (
	DefaultMinesSessionTTL    = time.Hour
	DefaultMinesSweepInterval = 5 * time.Minute
)

// управляет активными играми в сапёра
type MinesService struct {
	ledger *Ledger
	rand   game.Rand
	locks  *keylock.Locker
	log    *slog.Logger
	now    func() time.Time

	ttl           time.Duration
	sweepInterval time.Duration

	activeGames map[int64]*game.MinesGame // userID -> game
	mu          sync.RWMutex
}

// создает новый сервис; сборщик заброшенных игр запускается через Run
func NewMinesService(ledger *Ledger, r game.Rand, ttl, sweepInterval time.Duration) *MinesService {
	if r == nil {
		r = game.CryptoRand{}
	}
	if ttl <= 0 {
		ttl = DefaultMinesSessionTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultMinesSweepInterval
	}
	return &MinesService{
		ledger:        ledger,
		rand:          r,
		locks:         keylock.New(),
		log:           logger.Component("mines"),
		now:           time.Now,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		activeGames:   make(map[int64]*game.MinesGame),
	}
}

// MinesResult - состояние игры после операции и баланс игрока
type MinesResult struct {
	game.MinesSnapshot
	HitMine bool  `json:"hit_mine"`
	Balance int64 `json:"balance"`
}

func (s *MinesService) lockUser(userID int64) func() {
	return s.locks.Lock("mines:" + strconv.FormatInt(userID, 10))
}

// начинает новую игру, списывая ставку
func (s *MinesService) Start(ctx context.Context, userID int64, bet int64) (*MinesResult, error) {
	if bet <= 0 {
		return nil, domain.ErrInvalidBet
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if s.get(userID) != nil {
		return nil, domain.ErrSessionAlreadyActive
	}

	balance, err := s.ledger.Debit(ctx, userID, bet)
	if err != nil {
		return nil, err
	}

	g := game.NewMinesGame(uuid.New().String()[:8], userID, bet, s.rand, s.now())
	s.put(userID, g)
	s.log.Debug("mines started", "user_id", userID, "game_id", g.ID, "bet", bet)

	return &MinesResult{MinesSnapshot: g.Snapshot(), Balance: balance}, nil
}

// открывает ячейку (row, col от 0) в активной игре пользователя
func (s *MinesService) Open(ctx context.Context, userID int64, row, col int) (*MinesResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	g := s.get(userID)
	if g == nil {
		return nil, domain.ErrNoActiveSession
	}

	hitMine, err := g.Open(row, col, s.now())
	if err != nil {
		return nil, err
	}

	if !hitMine {
		acc, err := s.ledger.GetAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &MinesResult{MinesSnapshot: g.Snapshot(), Balance: acc.Balance}, nil
	}

	// взрыв: ставка уже списана, остается учесть игру.
	// Проигрыш окончателен, поэтому сессия закрывается и при ошибке записи статистики.
	balance, err := s.ledger.Finish(ctx, userID, 0, false)
	s.remove(userID)
	metrics.ObserveGame(string(game.TypeMines), g.Bet, 0, false)
	if err != nil {
		s.log.Error("failed to record lost mines game", "user_id", userID, "game_id", g.ID, "error", err)
		acc, accErr := s.ledger.GetAccount(ctx, userID)
		if accErr != nil {
			return nil, err
		}
		balance = acc.Balance
	}
	s.log.Debug("mines lost", "user_id", userID, "game_id", g.ID, "details", g.ToDetails())
	return &MinesResult{MinesSnapshot: g.Snapshot(), HitMine: true, Balance: balance}, nil
}

// забирает текущий выигрыш
func (s *MinesService) CashOut(ctx context.Context, userID int64) (*MinesResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	g := s.get(userID)
	if g == nil {
		return nil, domain.ErrNoActiveSession
	}
	return s.settle(ctx, userID, g)
}

// выплата проводится до смены статуса игры: при ошибке хранилища сессия остается активной
func (s *MinesService) settle(ctx context.Context, userID int64, g *game.MinesGame) (*MinesResult, error) {
	payout := g.PotentialPayout()
	balance, err := s.ledger.Finish(ctx, userID, payout, true)
	if err != nil {
		s.log.Error("mines cashout failed", "user_id", userID, "game_id", g.ID, "error", err)
		return nil, err
	}

	if _, err := g.CashOut(s.now()); err != nil {
		return nil, err
	}
	s.remove(userID)
	metrics.ObserveGame(string(game.TypeMines), g.Bet, payout, true)
	s.log.Debug("mines cashed out", "user_id", userID, "game_id", g.ID, "details", g.ToDetails())

	return &MinesResult{MinesSnapshot: g.Snapshot(), Balance: balance}, nil
}

// State возвращает снимок активной игры
func (s *MinesService) State(userID int64) (*game.MinesSnapshot, error) {
	g := s.get(userID)
	if g == nil {
		return nil, domain.ErrNoActiveSession
	}
	snap := g.Snapshot()
	return &snap, nil
}

// возвращает количество активных игр
func (s *MinesService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeGames)
}

// Run периодически закрывает заброшенные игры до отмены ctx
func (s *MinesService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep закрывает игры старше ttl, выплачивая текущий выигрыш
func (s *MinesService) Sweep(ctx context.Context) int {
	now := s.now()

	s.mu.RLock()
	var expired []int64
	for userID, g := range s.activeGames {
		if now.Sub(g.CreatedAt) > s.ttl {
			expired = append(expired, userID)
		}
	}
	s.mu.RUnlock()

	settled := 0
	for _, userID := range expired {
		unlock := s.lockUser(userID)
		// игра могла завершиться, пока ждали блокировку
		if g := s.get(userID); g != nil && now.Sub(g.CreatedAt) > s.ttl {
			if _, err := s.settle(ctx, userID, g); err == nil {
				settled++
				s.log.Info("abandoned mines game settled", "user_id", userID, "game_id", g.ID, "win", g.WinAmount)
			}
		}
		unlock()
	}
	return settled
}

func (s *MinesService) get(userID int64) *game.MinesGame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.activeGames[userID]
	if !ok || !g.IsActive() {
		return nil
	}
	return g
}

func (s *MinesService) put(userID int64, g *game.MinesGame) {
	s.mu.Lock()
	s.activeGames[userID] = g
	n := len(s.activeGames)
	s.mu.Unlock()
	metrics.MinesActiveSessions.Set(float64(n))
}

func (s *MinesService) remove(userID int64) {
	s.mu.Lock()
	delete(s.activeGames, userID)
	n := len(s.activeGames)
	s.mu.Unlock()
	metrics.MinesActiveSessions.Set(float64(n))
}
