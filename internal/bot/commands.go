package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram_casino/internal/domain"
)

const separator = "────────────────────\n"

func (d *Dispatcher) start(ctx context.Context, in Incoming) []Reply {
	acc, err := d.svc.Ledger.GetAccount(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "start", err)
	}
	return d.reply(in, fmt.Sprintf(`🎰 Добро пожаловать в Казино Бот, %s!

💰 Ваш баланс: %d монет

🎮 Доступные игры:
• /coinflip - Орел и решка
• /slots - Игровые автоматы
• /dice - Бросок кубика
• /mines - Сапёр

🛍️ Магазин: /shop
📊 Статистика: /profile
🎫 Промокод: /promo [код]
🔄 Передать NFT: /transfer
🏆 Топ игроков: /top`, displayName(in), acc.Balance))
}

func (d *Dispatcher) help(in Incoming) []Reply {
	var b strings.Builder
	b.WriteString(`📖 Команды

🎮 Игры:
/coinflip [орел|решка] [ставка] - Орел и решка (x2)
/slots [ставка] - Игровые автоматы (x5, 7️⃣ x10)
/dice [ставка] [1-6] - Угадай число (x6)
/mines <ставка> - Сапёр 5x5, 3 мины
/open <строка> <столбец> - Открыть ячейку (1-5)
/cashout - Забрать выигрыш
/board - Текущее поле

👤 Аккаунт:
/profile - Профиль
/top - Топ игроков
/promo <код> - Активировать промокод

🛍️ Магазин:
/shop - Витрина
/inventory - Коллекция
/transfer - Передать предмет
/cancel - Отменить ввод`)

	if d.svc.Admin.IsOperator(in.UserID) {
		b.WriteString(`

⚙️ Админ:
/admin_promo <код> <награда> [лимит] [дни]
/admin_promo_list
/admin_add_item <id> <название> <цена> <кол-во> [описание] [эмодзи]
/admin_shop_list
/admin_stats
/admin_broadcast <текст>`)
	}
	return d.reply(in, b.String())
}

func (d *Dispatcher) profile(ctx context.Context, in Incoming) []Reply {
	acc, err := d.svc.Ledger.GetAccount(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "profile", err)
	}
	items, err := d.svc.Shop.Inventory(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "profile", err)
	}

	return d.reply(in, fmt.Sprintf(`📊 Профиль %s

💰 Баланс: %d монет
🎮 Сыграно игр: %d
🏆 Побед: %d
📈 Процент побед: %.1f%%
🎫 Использовано промокодов: %d
🎒 NFT в коллекции: %d`,
		displayName(in), acc.Balance, acc.GamesPlayed, acc.Wins, acc.WinRate(), len(acc.RedeemedCodes), len(items)))
}

func (d *Dispatcher) top(ctx context.Context, in Incoming) []Reply {
	top, err := d.svc.Ledger.Top(ctx, 10)
	if err != nil {
		return d.replyErr(in, "top", err)
	}
	if len(top) == 0 {
		return d.reply(in, "📊 Пока нет игроков в рейтинге!")
	}

	var b strings.Builder
	b.WriteString("🏆 ТОП ИГРОКОВ:\n\n")
	for i, acc := range top {
		fmt.Fprintf(&b, "%d. Игрок %d - %d монет\n", i+1, acc.UserID, acc.Balance)
	}
	return d.reply(in, b.String())
}

func (d *Dispatcher) promo(ctx context.Context, in Incoming, args []string) []Reply {
	if len(args) < 1 {
		return d.reply(in, "🎫 Система промокодов\n\nИспользование: /promo [код]\nПример: /promo WELCOME500\n\n💡 Промокоды дают бонусные монеты!")
	}

	res, err := d.svc.Promos.Redeem(ctx, args[0], in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return d.reply(in, "❌ Промокод не найден!")
		}
		return d.replyErr(in, "promo", err)
	}
	return d.reply(in, fmt.Sprintf("✅ Промокод %s активирован!\n💰 Получено: %d монет\n💵 Баланс: %d монет", res.Code, res.Reward, res.NewBalance))
}

func (d *Dispatcher) shop(ctx context.Context, in Incoming) []Reply {
	items, err := d.svc.Shop.ListItems(ctx, false)
	if err != nil {
		return d.replyErr(in, "shop", err)
	}
	if len(items) == 0 {
		return d.reply(in, "🛍️ Магазин пуст! Зайдите позже.")
	}

	var b strings.Builder
	b.WriteString("🛍️ МАГАЗИН NFT\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s\n💵 Цена: %d монет\n📦 В наличии: %d шт.\n", item.Glyph, item.Name, item.Price, item.Quantity)
		if item.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", item.Description)
		}
		fmt.Fprintf(&b, "🛒 Купить: /buy_%s\n", item.ID)
		b.WriteString(separator)
	}
	b.WriteString("\n🎒 Посмотреть коллекцию: /inventory")
	return d.reply(in, b.String())
}

func (d *Dispatcher) buy(ctx context.Context, in Incoming, itemID string) []Reply {
	res, err := d.svc.Shop.Buy(ctx, itemID, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return d.reply(in, "❌ Предмет не найден!")
		}
		return d.replyErr(in, "buy", err)
	}
	return d.reply(in, fmt.Sprintf("✅ Вы купили %s %s!\n💸 Списано: %d монет\n💵 Баланс: %d монет\n🎒 Коллекция: /inventory",
		res.Entry.Glyph, res.Entry.Name, res.Price, res.NewBalance))
}

func (d *Dispatcher) inventory(ctx context.Context, in Incoming) []Reply {
	items, err := d.svc.Shop.Inventory(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "inventory", err)
	}
	if len(items) == 0 {
		return d.reply(in, "🎒 Ваша коллекция NFT пуста!\n🛍️ Зайдите в магазин: /shop")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎒 КОЛЛЕКЦИЯ %s\n\n", displayName(in))
	writeEntries(&b, items)
	fmt.Fprintf(&b, "\n📊 Всего предметов: %d\n🔄 Передать предмет: /transfer", len(items))
	return d.reply(in, b.String())
}

func writeEntries(b *strings.Builder, items []domain.InventoryEntry) {
	for i, e := range items {
		fmt.Fprintf(b, "%d. %s %s\n", i+1, e.Glyph, e.Name)
		if e.Description != "" {
			fmt.Fprintf(b, "   📝 %s\n", e.Description)
		}
		b.WriteString(separator)
	}
}

// Передача: номер предмета -> id получателя -> подтверждение.
// Выбранная запись запоминается по уникальному id, а не по позиции.
func (d *Dispatcher) transfer(ctx context.Context, in Incoming) []Reply {
	items, err := d.svc.Shop.Inventory(ctx, in.UserID)
	if err != nil {
		return d.replyErr(in, "transfer", err)
	}
	if len(items) == 0 {
		return d.reply(in, "🎒 Ваша коллекция NFT пуста!\nСначала купите что-нибудь в магазине: /shop")
	}

	d.setDialog(in.UserID, &dialog{step: stepTransferPick, items: items})

	var b strings.Builder
	b.WriteString("🔄 ВЫБЕРИТЕ NFT ДЛЯ ПЕРЕДАЧИ:\n\n")
	writeEntries(&b, items)
	b.WriteString("\n📝 Введите номер предмета для передачи:")
	return d.reply(in, b.String())
}

func (d *Dispatcher) transferPickStep(in Incoming, dl *dialog, text string) []Reply {
	n, err := strconv.Atoi(text)
	if err != nil {
		return d.reply(in, "❌ Пожалуйста, введите число!")
	}
	if n < 1 || n > len(dl.items) {
		return d.reply(in, "❌ Неверный номер предмета!")
	}

	dl.entry = dl.items[n-1]
	dl.step = stepTransferRecipient
	return d.reply(in, fmt.Sprintf("✅ Выбран: %s %s\n\n📝 Теперь введите ID получателя:\nПример: 123456789", dl.entry.Glyph, dl.entry.Name))
}

func (d *Dispatcher) transferRecipientStep(in Incoming, dl *dialog, text string) []Reply {
	if strings.HasPrefix(text, "@") {
		return d.reply(in, "❌ Поиск по username недоступен. Введите ID пользователя.")
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return d.reply(in, "❌ Неверный формат! Введите ID пользователя")
	}
	if id == in.UserID {
		return d.reply(in, "❌ "+upperFirst(domain.ErrSelfTransfer.Error()))
	}

	dl.recipient = id
	dl.step = stepTransferConfirm
	return d.reply(in, fmt.Sprintf(`🎯 Получатель: ID %d
🎁 Предмет: %s %s

⚠️ Внимание: передача необратима!
✅ Для подтверждения введите 'да'
❌ Для отмены введите 'нет'`, id, dl.entry.Glyph, dl.entry.Name))
}

func (d *Dispatcher) transferConfirmStep(ctx context.Context, in Incoming, dl *dialog, text string) []Reply {
	switch strings.ToLower(text) {
	case "да", "д", "yes", "y":
	case "нет", "н", "no", "n":
		d.setDialog(in.UserID, nil)
		return d.reply(in, "❌ Передача отменена.")
	default:
		return d.reply(in, "❌ Введите 'да' для подтверждения или 'нет' для отмены")
	}

	d.setDialog(in.UserID, nil)
	res, err := d.svc.Transfers.Transfer(ctx, in.UserID, dl.recipient, dl.entry.UniqueID)
	if err != nil {
		return d.replyErr(in, "transfer", err)
	}

	from := displayName(in)
	if in.Username != "" {
		from += " (@" + in.Username + ")"
	}
	return []Reply{
		{ChatID: in.ChatID, Text: fmt.Sprintf("✅ %s %s передан пользователю %d\n🎯 Получатель уведомлен о передаче!", res.Entry.Glyph, res.Entry.Name, res.ToUserID)},
		{ChatID: res.ToUserID, Text: fmt.Sprintf("🎁 Вам передали NFT!\n\n%s %s\n📤 От: %s\n\n🎒 Посмотреть коллекцию: /inventory", res.Entry.Glyph, res.Entry.Name, from)},
	}
}
