package game

import "telegram_casino/internal/domain"

const (
	DiceMinTarget  = 1
	DiceMaxTarget  = 6
	DiceSides      = 6
	DiceMultiplier = 6.0 // шанс 1/6
)

// представляет один бросок кубика с предсказанием
type DiceResult struct {
	Prediction int     `json:"prediction"`
	Roll       int     `json:"roll"`
	Win        bool    `json:"win"`
	Multiplier float64 `json:"multiplier"`
}

// ValidPrediction проверяет, что предсказание в диапазоне 1-6
func ValidPrediction(p int) bool {
	return p >= DiceMinTarget && p <= DiceMaxTarget
}

// RollDice бросает кубик (1-6); выигрыш при точном совпадении
func RollDice(r Rand, prediction int) (DiceResult, error) {
	if !ValidPrediction(prediction) {
		return DiceResult{}, domain.ErrInvalidPrediction
	}
	res := DiceResult{
		Prediction: prediction,
		Roll:       r.Intn(DiceSides) + 1, // 0-5 в 1-6
	}
	res.Win = res.Roll == prediction
	if res.Win {
		res.Multiplier = DiceMultiplier
	}
	return res, nil
}
