package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/game"
	"telegram_casino/internal/service"
)

func (d *Dispatcher) coinflip(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) == 0 {
		d.setDialog(in.UserID, &dialog{step: stepCoinSide})
		return d.reply(in, "🎯 Выберите сторону монеты: орел или решка")
	}

	side, ok := game.ParseFace(args[0])
	if !ok {
		return d.replyErr(in, "coinflip", domain.ErrInvalidChoice)
	}
	if len(args) == 1 {
		d.setDialog(in.UserID, &dialog{step: stepCoinBet, side: side})
		return d.reply(in, fmt.Sprintf("✅ Выбрана сторона: %s\n📝 Теперь введите ставку:", faceName(side)))
	}

	bet, ok := parseBet(args[1])
	if !ok {
		return d.reply(in, "❌ Неверный формат ставки!")
	}
	return d.playCoinFlip(ctx, in, side, bet)
}

func (d *Dispatcher) coinSideStep(ctx context.Context, in Incoming, dl *dialog, text string) []Reply {
	side, ok := game.ParseFace(text)
	if !ok {
		return d.reply(in, "❌ Введите 'орел' или 'решка'")
	}
	dl.side = side
	dl.step = stepCoinBet
	return d.reply(in, fmt.Sprintf("✅ Выбрана сторона: %s\n📝 Теперь введите ставку:", faceName(side)))
}

func (d *Dispatcher) coinBetStep(ctx context.Context, in Incoming, dl *dialog, text string) []Reply {
	bet, ok := parseBet(text)
	if !ok {
		return d.reply(in, "❌ Неверный формат ставки!")
	}
	d.setDialog(in.UserID, nil)
	return d.playCoinFlip(ctx, in, dl.side, bet)
}

func (d *Dispatcher) playCoinFlip(ctx context.Context, in Incoming, side string, bet int64) []Reply {
	res, err := d.svc.Games.PlayCoinFlip(ctx, in.UserID, side, bet)
	if err != nil {
		return d.replyErr(in, "coinflip", err)
	}
	if res.Win {
		return d.reply(in, fmt.Sprintf("🎉 Поздравляем! Выпал %s\n💰 Вы выиграли: %d монет\n💵 Новый баланс: %d монет", faceName(res.Face), res.Net, res.NewBalance))
	}
	return d.reply(in, fmt.Sprintf("😞 Увы! Выпал %s\n💸 Вы проиграли: %d монет\n💵 Новый баланс: %d монет", faceName(res.Face), res.Bet, res.NewBalance))
}

func (d *Dispatcher) slots(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) == 0 {
		d.setDialog(in.UserID, &dialog{step: stepSlotsBet})
		return d.reply(in, "🎰 Введите ставку для игровых автоматов:\nПример: 50")
	}
	bet, ok := parseBet(args[0])
	if !ok {
		return d.reply(in, "❌ Неверный формат ставки!")
	}
	return d.playSlots(ctx, in, bet)
}

func (d *Dispatcher) slotsBetStep(ctx context.Context, in Incoming, text string) []Reply {
	bet, ok := parseBet(text)
	if !ok {
		return d.reply(in, "❌ Неверный формат ставки!")
	}
	d.setDialog(in.UserID, nil)
	return d.playSlots(ctx, in, bet)
}

func (d *Dispatcher) playSlots(ctx context.Context, in Incoming, bet int64) []Reply {
	res, err := d.svc.Games.PlaySlots(ctx, in.UserID, bet)
	if err != nil {
		return d.replyErr(in, "slots", err)
	}
	reels := strings.Join(res.Reels[:], " | ")
	if !res.Win {
		return d.reply(in, fmt.Sprintf("🎰 %s 🎰\n😞 Повезет в следующий раз!\n💸 Проигрыш: %d монет\n💵 Баланс: %d монет", reels, res.Bet, res.NewBalance))
	}
	title := "🎉 Три в ряд!"
	if res.Jackpot {
		title = "🎉 ДЖЕКПОТ!"
	}
	return d.reply(in, fmt.Sprintf("🎰 %s 🎰\n%s x%g\n💰 Выигрыш: %d монет\n💵 Баланс: %d монет", reels, title, res.Multiplier, res.Payout, res.NewBalance))
}

func (d *Dispatcher) dice(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) == 0 {
		d.setDialog(in.UserID, &dialog{step: stepDiceBet})
		return d.reply(in, "🎲 Введите ставку и предсказание (1-6):\nПример: 100 3")
	}
	return d.playDiceArgs(ctx, in, args)
}

func (d *Dispatcher) diceBetStep(ctx context.Context, in Incoming, text string) []Reply {
	return d.playDiceArgs(ctx, in, strings.Fields(text))
}

func (d *Dispatcher) playDiceArgs(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) != 2 {
		return d.reply(in, "❌ Формат: ставка предсказание\nПример: 100 3")
	}
	bet, ok := parseBet(args[0])
	prediction, err := strconv.Atoi(args[1])
	if !ok || err != nil {
		return d.reply(in, "❌ Неверный формат! Используйте: ставка предсказание\nПример: 100 3")
	}
	d.setDialog(in.UserID, nil)

	res, err := d.svc.Games.PlayDice(ctx, in.UserID, bet, prediction)
	if err != nil {
		return d.replyErr(in, "dice", err)
	}
	if res.Win {
		return d.reply(in, fmt.Sprintf("🎲 Выпало: %d\n🎉 Поздравляем! Угадали!\n💰 Выигрыш: %d монет\n💵 Баланс: %d монет", res.Roll, res.Payout, res.NewBalance))
	}
	return d.reply(in, fmt.Sprintf("🎲 Выпало: %d\n😞 Не угадали!\n💸 Проигрыш: %d монет\n💵 Баланс: %d монет", res.Roll, res.Bet, res.NewBalance))
}

// Сапёр: координаты в командах считаются от 1

func (d *Dispatcher) minesStart(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) != 1 {
		return d.reply(in, "💣 Сапёр 5x5, на поле 3 мины\n\nИспользование: /mines <ставка>\nПример: /mines 100")
	}
	bet, ok := parseBet(args[0])
	if !ok {
		return d.reply(in, "❌ Неверный формат ставки!")
	}

	res, err := d.svc.Mines.Start(ctx, in.UserID, bet)
	if err != nil {
		return d.replyErr(in, "mines_start", err)
	}
	return d.reply(in, "💣 Игра началась!\n\n"+renderMines(res)+"\n\nОткрыть ячейку: /open <строка> <столбец>\nЗабрать выигрыш: /cashout")
}

func (d *Dispatcher) minesOpen(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) != 2 {
		return d.reply(in, "❌ Использование: /open <строка> <столбец>\nПример: /open 2 3")
	}
	row, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return d.reply(in, "❌ Строка и столбец должны быть числами от 1 до 5")
	}

	res, err := d.svc.Mines.Open(ctx, in.UserID, row-1, col-1)
	if err != nil {
		return d.replyErr(in, "mines_open", err)
	}
	if res.HitMine {
		return d.reply(in, fmt.Sprintf("💥 БУМ! Вы попали на мину.\n\n%s\n\n💸 Проигрыш: %d монет", renderMines(res), res.Bet))
	}
	return d.reply(in, "💎 Безопасно!\n\n"+renderMines(res))
}

func (d *Dispatcher) minesCashOut(ctx context.Context, in Incoming) []Reply {
	res, err := d.svc.Mines.CashOut(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "mines_cashout", err)
	}
	return d.reply(in, fmt.Sprintf("💰 Выигрыш забран: %d монет\n\n%s", res.WinAmount, renderMines(res)))
}

func (d *Dispatcher) minesBoard(ctx context.Context, in Incoming) []Reply {
	snap, err := d.svc.Mines.State(in.UserID)
	if err != nil {
		return d.replyErr(in, "mines_board", err)
	}
	acc, err := d.svc.Ledger.GetAccount(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "mines_board", err)
	}
	return d.reply(in, renderMines(&service.MinesResult{MinesSnapshot: *snap, Balance: acc.Balance}))
}

var cellGlyphs = map[game.CellState]string{
	game.CellHidden:   "⬜",
	game.CellSafe:     "💎",
	game.CellMine:     "💣",
	game.CellExploded: "💥",
}

func renderMines(res *service.MinesResult) string {
	var b strings.Builder
	b.WriteString("    1  2  3  4  5\n")
	for r, row := range res.Grid {
		fmt.Fprintf(&b, "%d ", r+1)
		for _, cell := range row {
			b.WriteString(cellGlyphs[cell])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n💵 Ставка: %d монет\n", res.Bet)
	if res.Status == game.MinesStatusActive {
		fmt.Fprintf(&b, "📈 Множитель: x%g (следующий x%g)\n💰 Можно забрать: %d монет\n", res.Multiplier, res.NextMultiplier, res.PotentialPayout)
	}
	fmt.Fprintf(&b, "💳 Баланс: %d монет", res.Balance)
	return b.String()
}

func parseBet(s string) (int64, bool) {
	bet, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return bet, err == nil
}

func faceName(face string) string {
	if face == game.FaceHeads {
		return "🦅 Орел"
	}
	return "🪙 Решка"
}
