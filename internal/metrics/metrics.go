package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casino"

// Результаты операций для меток result
const (
	ResultWin  = "win"
	ResultLose = "lose"
	ResultOK   = "ok"
)

var (
	GamesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_total",
		Help:      "Finished games by game type and result.",
	}, []string{"game", "result"})

	WageredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wagered_total",
		Help:      "Sum of stakes debited by game type.",
	}, []string{"game"})

	PaidOutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paid_out_total",
		Help:      "Sum of payouts credited by game type.",
	}, []string{"game"})

	PromoRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promo_redemptions_total",
		Help:      "Promo code redemption attempts by result.",
	}, []string{"result"})

	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Shop purchase attempts by result.",
	}, []string{"result"})

	Transfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Inventory transfer attempts by result.",
	}, []string{"result"})

	MinesActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mines_active_sessions",
		Help:      "Mines sessions currently in progress.",
	})
)

// ObserveGame учитывает завершенную игру
func ObserveGame(game string, bet, payout int64, win bool) {
	result := ResultLose
	if win {
		result = ResultWin
	}
	GamesTotal.WithLabelValues(game, result).Inc()
	WageredTotal.WithLabelValues(game).Add(float64(bet))
	if payout > 0 {
		PaidOutTotal.WithLabelValues(game).Add(float64(payout))
	}
}

// Result превращает ошибку операции в значение метки
func Result(err error, code func(error) string) string {
	if err == nil {
		return ResultOK
	}
	return code(err)
}
