package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"telegram_casino/internal/game"
	"telegram_casino/internal/service"
	"telegram_casino/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	operator int64 = 999
	alice    int64 = 1
	bob      int64 = 2
)

type botTest struct {
	t *testing.T
	d *Dispatcher
	s Services
}

// ScriptedRand(0): монета - орел, слоты - 🍒🍒🍒, кубик - 1, мины в (1,1), (1,2), (1,3)
func newBotTest(t *testing.T) *botTest {
	t.Helper()
	st := store.NewMemory()
	t.Cleanup(func() { _ = st.Close() })

	r := game.NewScriptedRand(0)
	ledger := service.NewLedger(st, 1000)
	audit := service.NewAuditService(st)
	promos := service.NewPromoService(st, ledger, audit)
	shop := service.NewShopService(st, ledger, audit)
	mines := service.NewMinesService(ledger, r, time.Hour, time.Minute)
	svc := Services{
		Ledger:    ledger,
		Games:     service.NewGameService(ledger, r),
		Mines:     mines,
		Promos:    promos,
		Shop:      shop,
		Transfers: service.NewTransferService(st, ledger, audit),
		Admin:     service.NewAdminService([]int64{operator}, ledger, promos, shop, mines, audit),
	}
	return &botTest{t: t, d: NewDispatcher(svc), s: svc}
}

func (b *botTest) send(userID int64, text string) []Reply {
	b.t.Helper()
	return b.d.Handle(context.Background(), Incoming{UserID: userID, ChatID: userID, FirstName: "Tester", Text: text})
}

// say ожидает ровно один ответ в чат отправителя
func (b *botTest) say(userID int64, text string) string {
	b.t.Helper()
	replies := b.send(userID, text)
	require.Len(b.t, replies, 1, text)
	assert.Equal(b.t, userID, replies[0].ChatID)
	return replies[0].Text
}

func (b *botTest) balance(userID int64) int64 {
	b.t.Helper()
	acc, err := b.s.Ledger.GetAccount(context.Background(), userID)
	require.NoError(b.t, err)
	return acc.Balance
}

func TestStartAndUnknown(t *testing.T) {
	b := newBotTest(t)

	assert.Contains(t, b.say(alice, "/start"), "1000 монет")
	assert.Contains(t, b.say(alice, "/nope"), "Неизвестная команда")
	assert.Contains(t, b.say(alice, "привет"), "/help")
	assert.Empty(t, b.send(alice, "   "))

	assert.NotContains(t, b.say(alice, "/help"), "/admin_stats")
	assert.Contains(t, b.say(operator, "/help@casino_bot"), "/admin_stats")
}

func TestCoinFlipDialog(t *testing.T) {
	b := newBotTest(t)

	assert.Contains(t, b.say(alice, "/coinflip"), "Выберите сторону")
	assert.Contains(t, b.say(alice, "ребро"), "орел")
	assert.Contains(t, b.say(alice, "Орёл"), "введите ставку")
	assert.Contains(t, b.say(alice, "сто"), "Неверный формат ставки")

	text := b.say(alice, "100")
	assert.Contains(t, text, "Поздравляем")
	assert.Equal(t, int64(1100), b.balance(alice))

	// диалог завершен
	assert.Contains(t, b.say(alice, "100"), "/help")

	assert.Contains(t, b.say(alice, "/coinflip решка 100"), "Увы")
	assert.Equal(t, int64(1000), b.balance(alice))

	assert.Contains(t, b.say(alice, "/coinflip решка 0"), "Ставка должна быть положительной")
	assert.Contains(t, b.say(alice, "/coinflip решка 5000"), "Недостаточно средств")
}

func TestDialogMessagesOfOneUserAreSerialized(t *testing.T) {
	b := newBotTest(t)
	assert.Contains(t, b.say(alice, "/coinflip орел"), "введите ставку")

	const senders = 8
	texts := make([]string, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies := b.d.Handle(context.Background(), Incoming{UserID: alice, ChatID: alice, Text: "100"})
			if len(replies) == 1 {
				texts[i] = replies[0].Text
			}
		}(i)
	}
	wg.Wait()

	played := 0
	for _, text := range texts {
		if strings.Contains(text, "Поздравляем") {
			played++
		} else {
			assert.Contains(t, text, "/help")
		}
	}
	assert.Equal(t, 1, played, "одна ставка на одно приглашение")
	assert.Equal(t, int64(1100), b.balance(alice))

	acc, err := b.s.Ledger.GetAccount(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.GamesPlayed)
}

func TestSlotsAndDice(t *testing.T) {
	b := newBotTest(t)

	text := b.say(alice, "/slots 100")
	assert.Contains(t, text, "🍒 | 🍒 | 🍒")
	assert.Contains(t, text, "Три в ряд")
	assert.Equal(t, int64(1400), b.balance(alice))

	assert.Contains(t, b.say(alice, "/dice"), "предсказание")
	assert.Contains(t, b.say(alice, "100"), "Формат")
	text = b.say(alice, "100 1")
	assert.Contains(t, text, "Угадали")
	assert.Equal(t, int64(1900), b.balance(alice))

	assert.Contains(t, b.say(alice, "/dice 10 7"), "Предсказание должно быть от 1 до 6")
	assert.Equal(t, int64(1900), b.balance(alice))
}

func TestCommandCancelsDialog(t *testing.T) {
	b := newBotTest(t)

	b.say(alice, "/slots")
	assert.Contains(t, b.say(alice, "/cancel"), "Отменено")
	assert.Contains(t, b.say(alice, "100"), "/help")
	assert.Equal(t, int64(1000), b.balance(alice))
}

func TestMines(t *testing.T) {
	b := newBotTest(t)

	assert.Contains(t, b.say(alice, "/board"), "Нет активной игры")
	assert.Contains(t, b.say(alice, "/mines"), "Использование")

	assert.Contains(t, b.say(alice, "/mines 100"), "Игра началась")
	assert.Equal(t, int64(900), b.balance(alice))
	assert.Contains(t, b.say(alice, "/mines 100"), "У вас уже есть активная игра")

	assert.Contains(t, b.say(alice, "/open 0 1"), "Неверная позиция ячейки")
	assert.Contains(t, b.say(alice, "/open 5 5"), "Безопасно")
	assert.Contains(t, b.say(alice, "/open 5 5"), "Ячейка уже открыта")
	assert.Contains(t, b.say(alice, "/board"), "💎")

	assert.Contains(t, b.say(alice, "/cashout"), "Выигрыш забран: 120 монет")
	assert.Equal(t, int64(1020), b.balance(alice))

	b.say(alice, "/mines 100")
	text := b.say(alice, "/open 1 1")
	assert.Contains(t, text, "БУМ")
	assert.Contains(t, text, "💥")
	assert.Equal(t, int64(920), b.balance(alice))
	assert.Contains(t, b.say(alice, "/cashout"), "Нет активной игры")
}

func TestShopAndTransferDialog(t *testing.T) {
	b := newBotTest(t)

	assert.Contains(t, b.say(alice, "/shop"), "Магазин пуст")
	assert.Equal(t, noRights, b.say(alice, "/admin_add_item sword Меч 300 2"))
	assert.Contains(t, b.say(operator, "/admin_add_item sword Острый_меч 300 2 Режет ⚔️"), "Предмет добавлен")
	assert.Contains(t, b.say(operator, "/admin_add_item sword Меч 300 2"), "уже существует")

	assert.Contains(t, b.say(alice, "/shop"), "/buy_sword")
	assert.Contains(t, b.say(alice, "/buy_sword"), "Вы купили ⚔️ Острый меч")
	assert.Equal(t, int64(700), b.balance(alice))
	assert.Contains(t, b.say(alice, "/buy_axe"), "Предмет не найден")

	assert.Contains(t, b.say(bob, "/transfer"), "коллекция NFT пуста")

	assert.Contains(t, b.say(alice, "/transfer"), "1. ⚔️ Острый меч")
	assert.Contains(t, b.say(alice, "abc"), "введите число")
	assert.Contains(t, b.say(alice, "3"), "Неверный номер")
	assert.Contains(t, b.say(alice, "1"), "введите ID получателя")
	assert.Contains(t, b.say(alice, "@bob"), "username недоступен")
	assert.Contains(t, b.say(alice, "1"), "самому себе")
	assert.Contains(t, b.say(alice, "2"), "передача необратима")
	assert.Contains(t, b.say(alice, "может быть"), "'да'")

	replies := b.send(alice, "да")
	require.Len(t, replies, 2)
	assert.Equal(t, alice, replies[0].ChatID)
	assert.Contains(t, replies[0].Text, "передан пользователю 2")
	assert.Equal(t, bob, replies[1].ChatID)
	assert.Contains(t, replies[1].Text, "Вам передали NFT")

	assert.Contains(t, b.say(bob, "/inventory"), "Всего предметов: 1")
	assert.Contains(t, b.say(alice, "/inventory"), "пуста")
	assert.Contains(t, b.say(alice, "/profile"), "NFT в коллекции: 0")
}

func TestTransferCancelled(t *testing.T) {
	b := newBotTest(t)
	b.say(operator, "/admin_add_item gem Камень 10 1")
	b.say(alice, "/buy_gem")

	b.say(alice, "/transfer")
	b.say(alice, "1")
	b.say(alice, "2")
	assert.Contains(t, b.say(alice, "нет"), "Передача отменена")
	assert.Contains(t, b.say(alice, "/inventory"), "Всего предметов: 1")
}

func TestPromoCommands(t *testing.T) {
	b := newBotTest(t)

	assert.Contains(t, b.say(alice, "/promo"), "Использование")
	assert.Contains(t, b.say(alice, "/promo NOPE"), "Промокод не найден")

	assert.Equal(t, noRights, b.say(alice, "/admin_promo BONUS 50"))
	assert.Contains(t, b.say(operator, "/admin_promo"), "Использование")
	assert.Contains(t, b.say(operator, "/admin_promo bonus x"), "должны быть числами")
	text := b.say(operator, "/admin_promo bonus 50 2 7")
	assert.Contains(t, text, "Код: BONUS")
	assert.Contains(t, text, "Срок: 7 дней")
	assert.Contains(t, b.say(operator, "/admin_promo BONUS 10"), "уже существует")

	assert.Contains(t, b.say(alice, "/promo bonus"), "Баланс: 1050 монет")
	assert.Contains(t, b.say(alice, "/promo BONUS"), "Вы уже использовали этот промокод")

	assert.Contains(t, b.say(operator, "/admin_promo_list"), "🎯 1/2")
	assert.Equal(t, noRights, b.say(alice, "/admin_promo_list"))
}

func TestAdminStatsAndBroadcast(t *testing.T) {
	b := newBotTest(t)
	b.say(alice, "/start")
	b.say(bob, "/start")

	assert.Equal(t, noRights, b.say(alice, "/admin_stats"))
	assert.Contains(t, b.say(operator, "/admin_stats"), "Игроков: 2")

	assert.Equal(t, noRights, b.say(alice, "/admin_broadcast привет"))
	assert.Contains(t, b.say(operator, "/admin_broadcast"), "Использование")

	replies := b.send(operator, "/admin_broadcast Всем привет!")
	require.Len(t, replies, 3)
	assert.Equal(t, operator, replies[0].ChatID)
	assert.False(t, replies[0].Bulk)
	for _, r := range replies[1:] {
		assert.True(t, r.Bulk)
		assert.Equal(t, "Всем привет!", r.Text)
	}
	assert.ElementsMatch(t, []int64{alice, bob}, []int64{replies[1].ChatID, replies[2].ChatID})
}
