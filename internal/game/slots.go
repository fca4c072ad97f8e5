package game

const (
	SlotsReels             = 3
	SlotsJackpotSymbol     = "7️⃣"
	SlotsJackpotMultiplier = 10.0
	SlotsTripleMultiplier  = 5.0
)

var SlotSymbols = []string{"🍒", "🍋", "🍊", "🍇", "🔔", "💎", "7️⃣"}

type SlotsResult struct {
	Reels      [SlotsReels]string `json:"reels"`
	Win        bool               `json:"win"`
	Jackpot    bool               `json:"jackpot"`
	Multiplier float64            `json:"multiplier"`
}

// SpinSlots крутит три барабана; выигрыш только при трех одинаковых символах
func SpinSlots(r Rand) SlotsResult {
	var res SlotsResult
	for i := range res.Reels {
		res.Reels[i] = SlotSymbols[r.Intn(len(SlotSymbols))]
	}

	if res.Reels[0] == res.Reels[1] && res.Reels[1] == res.Reels[2] {
		res.Win = true
		if res.Reels[0] == SlotsJackpotSymbol {
			res.Jackpot = true
			res.Multiplier = SlotsJackpotMultiplier
		} else {
			res.Multiplier = SlotsTripleMultiplier
		}
	}
	return res
}
