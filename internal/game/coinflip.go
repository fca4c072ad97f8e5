package game

import (
	"strings"

	"telegram_casino/internal/domain"
)

const (
	FaceHeads = "heads"
	FaceTails = "tails"

	CoinFlipMultiplier = 2.0
)

var Faces = []string{FaceHeads, FaceTails}

// ParseFace принимает английские и русские названия сторон
func ParseFace(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FaceHeads, "орел", "орёл":
		return FaceHeads, true
	case FaceTails, "решка":
		return FaceTails, true
	}
	return "", false
}

// результат одного подбрасывания
type CoinFlipResult struct {
	Choice     string  `json:"choice"`
	Face       string  `json:"face"`
	Win        bool    `json:"win"`
	Multiplier float64 `json:"multiplier"`
}

func FlipCoin(r Rand, choice string) (CoinFlipResult, error) {
	face, ok := ParseFace(choice)
	if !ok {
		return CoinFlipResult{}, domain.ErrInvalidChoice
	}
	res := CoinFlipResult{
		Choice: face,
		Face:   Faces[r.Intn(len(Faces))],
	}
	res.Win = res.Face == res.Choice
	if res.Win {
		res.Multiplier = CoinFlipMultiplier
	}
	return res, nil
}
