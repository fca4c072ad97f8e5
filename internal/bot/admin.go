package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/service"
)

const noRights = "❌ Недостаточно прав!"

func (d *Dispatcher) adminPromo(ctx context.Context, in Incoming, args []string) []Reply {
	if !d.svc.Admin.IsOperator(in.UserID) {
		return d.reply(in, noRights)
	}
	usage := "⚙️ Создание промокода (Админ)\n\nИспользование: /admin_promo [код] [награда] [лимит=100] [дни=30]\nПример: /admin_promo NEWYEAR 500 50 7"
	if len(args) < 2 {
		return d.reply(in, usage)
	}

	nums := make([]int64, 0, 3)
	for _, a := range args[1:min(len(args), 4)] {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return d.reply(in, "❌ Награда, лимит и срок должны быть числами!\n\n"+usage)
		}
		nums = append(nums, n)
	}
	reward := nums[0]
	var limit, days int
	if len(nums) > 1 {
		limit = int(nums[1])
	}
	if len(nums) > 2 {
		days = int(nums[2])
	}

	promo, err := d.svc.Admin.CreatePromo(ctx, in.UserID, args[0], reward, limit, days)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateID) {
			return d.reply(in, "❌ Промокод уже существует!")
		}
		return d.replyErr(in, "admin_promo", err)
	}
	return d.reply(in, fmt.Sprintf("✅ Промокод создан!\n\n🎫 Код: %s\n💰 Награда: %d монет\n📊 Лимит: %d использований\n⏰ Срок: %d дней",
		promo.Code, promo.Reward, promo.UsesLimit, promo.DaysLeft(promo.CreatedAt)))
}

func (d *Dispatcher) adminPromoList(ctx context.Context, in Incoming) []Reply {
	promos, err := d.svc.Admin.ListPromos(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return d.reply(in, noRights)
		}
		return d.replyErr(in, "admin_promo_list", err)
	}
	if len(promos) == 0 {
		return d.reply(in, "📭 Нет промокодов")
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString("📋 ПРОМОКОДЫ:\n\n")
	for _, p := range promos {
		status := ""
		switch {
		case p.Expired(now):
			status = " (просрочен)"
		case p.Exhausted():
			status = " (исчерпан)"
		}
		fmt.Fprintf(&b, "🎫 %s%s\n💰 %d монет | 🎯 %d/%d\n⏰ Осталось дней: %d\n", p.Code, status, p.Reward, p.UsesCount, p.UsesLimit, p.DaysLeft(now))
		b.WriteString(separator)
	}
	return d.reply(in, b.String())
}

func (d *Dispatcher) adminAddItem(ctx context.Context, in Incoming, args []string) []Reply {
	if !d.svc.Admin.IsOperator(in.UserID) {
		return d.reply(in, noRights)
	}
	if len(args) < 4 {
		return d.reply(in, `🛍️ Добавление предмета в магазин (Админ)

Использование: /admin_add_item id название цена количество
Дополнительно: описание эмодзи

Пример: /admin_add_item dragon1 Золотой_Дракон 1000 10
Пример с опцией: /admin_add_item sword1 Меч 500 20 Острый_меч ⚔️

💡 Используй подчеркивания _ вместо пробелов`)
	}

	price, err1 := strconv.ParseInt(args[2], 10, 64)
	qty, err2 := strconv.Atoi(args[3])
	if err1 != nil || err2 != nil {
		return d.reply(in, "❌ Ошибка: цена и количество должны быть числами!")
	}

	in2 := service.NewItem{
		ID:       args[0],
		Name:     strings.ReplaceAll(args[1], "_", " "),
		Price:    price,
		Quantity: qty,
	}
	if len(args) > 4 {
		in2.Description = strings.ReplaceAll(args[4], "_", " ")
	}
	if len(args) > 5 {
		in2.Glyph = args[5]
	}

	item, err := d.svc.Admin.AddItem(ctx, in.UserID, in2)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateID) {
			return d.reply(in, "❌ Предмет с таким ID уже существует!")
		}
		return d.replyErr(in, "admin_add_item", err)
	}

	text := fmt.Sprintf("✅ Предмет добавлен в магазин!\n\n%s %s\n💰 Цена: %d монет\n📦 Количество: %d шт.\n🆔 ID: %s",
		item.Glyph, item.Name, item.Price, item.Quantity, item.ID)
	if item.Description != "" {
		text += "\n📝 Описание: " + item.Description
	}
	return d.reply(in, text)
}

func (d *Dispatcher) adminShopList(ctx context.Context, in Incoming) []Reply {
	items, err := d.svc.Admin.ListCatalog(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return d.reply(in, noRights)
		}
		return d.replyErr(in, "admin_shop_list", err)
	}
	if len(items) == 0 {
		return d.reply(in, "🛍️ Магазин пуст")
	}

	var b strings.Builder
	b.WriteString("🛍️ ПРЕДМЕТЫ В МАГАЗИНЕ:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s\n🆔 ID: %s\n💰 Цена: %d монет\n📦 Осталось: %d | Продано: %d\n",
			item.Glyph, item.Name, item.ID, item.Price, item.Quantity, item.Sold)
		if item.Description != "" {
			fmt.Fprintf(&b, "📝 %s\n", item.Description)
		}
		b.WriteString(separator)
	}
	return d.reply(in, b.String())
}

func (d *Dispatcher) adminStats(ctx context.Context, in Incoming) []Reply {
	st, err := d.svc.Admin.Stats(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return d.reply(in, noRights)
		}
		return d.replyErr(in, "admin_stats", err)
	}
	return d.reply(in, fmt.Sprintf(`📊 Статистика

👤 Игроков: %d
💰 Всего монет на балансах: %d
🎮 Сыграно игр: %d
🏆 Побед: %d
💣 Активных игр в сапёра: %d

🎫 Промокодов: %d (активных: %d)
🛍️ Предметов в каталоге: %d
📦 Продано: %d`,
		st.TotalUsers, st.TotalBalance, st.TotalGamesPlayed, st.TotalWins, st.ActiveMinesGames,
		st.Promos, st.ActivePromos, st.Items, st.ItemsSold))
}

// рассылка: по сообщению на каждого известного игрока и итог оператору
func (d *Dispatcher) adminBroadcast(ctx context.Context, in Incoming, text string) []Reply {
	recipients, err := d.svc.Admin.BroadcastRecipients(ctx, in.UserID, text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return d.reply(in, noRights)
		case errors.Is(err, domain.ErrInvalidAmount):
			return d.reply(in, "📢 Использование: /admin_broadcast <текст>")
		}
		return d.replyErr(in, "admin_broadcast", err)
	}
	if len(recipients) == 0 {
		return d.reply(in, "Нет пользователей для рассылки")
	}

	replies := make([]Reply, 0, len(recipients)+1)
	replies = append(replies, Reply{ChatID: in.ChatID, Text: fmt.Sprintf("📢 Начинаю рассылку %d пользователям...", len(recipients))})
	for _, id := range recipients {
		replies = append(replies, Reply{ChatID: id, Text: text, Bulk: true})
	}
	return replies
}

func displayName(in Incoming) string {
	if in.FirstName != "" {
		return in.FirstName
	}
	if in.Username != "" {
		return "@" + in.Username
	}
	return "Игрок " + strconv.FormatInt(in.UserID, 10)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
