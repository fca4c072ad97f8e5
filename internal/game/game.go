package game

import "github.com/shopspring/decimal"

type GameType string

const (
	TypeCoinFlip GameType = "coinflip"
	TypeSlots    GameType = "slots"
	TypeDice     GameType = "dice"
	TypeMines    GameType = "mines"
)

// Payout считает floor(bet * multiplier) без ошибок округления float
func Payout(bet int64, multiplier float64) int64 {
	return decimal.NewFromInt(bet).
		Mul(decimal.NewFromFloat(multiplier)).
		Floor().
		IntPart()
}
