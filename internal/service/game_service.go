package service

import (
	"context"
	"log/slog"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/game"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/metrics"
)

// обрабатывает бизнес-логику мгновенных игр
type GameService struct {
	ledger *Ledger
	rand   game.Rand
	log    *slog.Logger
}

// создает новый игровой сервис; r == nil - криптографический источник
func NewGameService(ledger *Ledger, r game.Rand) *GameService {
	if r == nil {
		r = game.CryptoRand{}
	}
	return &GameService{
		ledger: ledger,
		rand:   r,
		log:    logger.Component("games"),
	}
}

// GameResult - общая часть результата любой игры
type GameResult struct {
	Game       game.GameType `json:"game"`
	Win        bool          `json:"win"`
	Bet        int64         `json:"bet"`
	Payout     int64         `json:"payout"`
	Multiplier float64       `json:"multiplier"`
	Net        int64         `json:"net"`
	NewBalance int64         `json:"balance"`
}

type CoinFlipResult struct {
	GameResult
	Choice string `json:"choice"`
	Face   string `json:"face"`
}

type SlotsResult struct {
	GameResult
	Reels   [game.SlotsReels]string `json:"reels"`
	Jackpot bool                    `json:"jackpot"`
}

type DiceResult struct {
	GameResult
	Prediction int `json:"prediction"`
	Roll       int `json:"roll"`
}

// проверяет ставку
func (s *GameService) ValidateBet(bet int64) error {
	if bet <= 0 {
		return domain.ErrInvalidBet
	}
	return nil
}

// выполнение монетки
func (s *GameService) PlayCoinFlip(ctx context.Context, userID int64, choice string, bet int64) (*CoinFlipResult, error) {
	if err := s.ValidateBet(bet); err != nil {
		return nil, err
	}
	flip, err := game.FlipCoin(s.rand, choice)
	if err != nil {
		return nil, err
	}

	res, err := s.settle(ctx, userID, game.TypeCoinFlip, bet, flip.Win, flip.Multiplier)
	if err != nil {
		return nil, err
	}
	return &CoinFlipResult{GameResult: *res, Choice: flip.Choice, Face: flip.Face}, nil
}

// выполнение слотов
func (s *GameService) PlaySlots(ctx context.Context, userID int64, bet int64) (*SlotsResult, error) {
	if err := s.ValidateBet(bet); err != nil {
		return nil, err
	}
	spin := game.SpinSlots(s.rand)

	res, err := s.settle(ctx, userID, game.TypeSlots, bet, spin.Win, spin.Multiplier)
	if err != nil {
		return nil, err
	}
	return &SlotsResult{GameResult: *res, Reels: spin.Reels, Jackpot: spin.Jackpot}, nil
}

// выполнение кубика
func (s *GameService) PlayDice(ctx context.Context, userID int64, bet int64, prediction int) (*DiceResult, error) {
	if err := s.ValidateBet(bet); err != nil {
		return nil, err
	}
	roll, err := game.RollDice(s.rand, prediction)
	if err != nil {
		return nil, err
	}

	res, err := s.settle(ctx, userID, game.TypeDice, bet, roll.Win, roll.Multiplier)
	if err != nil {
		return nil, err
	}
	return &DiceResult{GameResult: *res, Prediction: roll.Prediction, Roll: roll.Roll}, nil
}

// исход определяется до транзакции, поэтому повтор транзакции не меняет результат
func (s *GameService) settle(ctx context.Context, userID int64, gt game.GameType, bet int64, win bool, multiplier float64) (*GameResult, error) {
	var payout int64
	if win {
		payout = game.Payout(bet, multiplier)
	}

	balance, err := s.ledger.Settle(ctx, userID, bet, payout, win)
	if err != nil {
		if domain.IsBusiness(err) {
			s.log.Debug("game rejected", "game", gt, "user_id", userID, "error", err)
		} else {
			s.log.Error("game settlement failed", "game", gt, "user_id", userID, "error", err)
		}
		return nil, err
	}

	metrics.ObserveGame(string(gt), bet, payout, win)
	s.log.Debug("game played", "game", gt, "user_id", userID, "bet", bet, "payout", payout)

	return &GameResult{
		Game:       gt,
		Win:        win,
		Bet:        bet,
		Payout:     payout,
		Multiplier: multiplier,
		Net:        payout - bet,
		NewBalance: balance,
	}, nil
}
