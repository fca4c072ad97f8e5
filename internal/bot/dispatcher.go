package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/keylock"
	"telegram_casino/internal/logger"
	"telegram_casino/internal/service"
)

// Incoming - сообщение пользователя, уже отвязанное от Telegram
type Incoming struct {
	UserID    int64
	ChatID    int64
	FirstName string
	Username  string
	Text      string
}

// Reply - ответ для отправки в чат
type Reply struct {
	ChatID int64
	Text   string
	// Bulk помечает сообщения рассылки: они отправляются с паузой
	Bulk bool
}

// Services - ядро, которое вызывает диспетчер
type Services struct {
	Ledger    *service.Ledger
	Games     *service.GameService
	Mines     *service.MinesService
	Promos    *service.PromoService
	Shop      *service.ShopService
	Transfers *service.TransferService
	Admin     *service.AdminService
}

// Dispatcher разбирает команды и пошаговые диалоги и вызывает сервисы ядра.
// Ничего не знает о Telegram API, поэтому тестируется без сети.
type Dispatcher struct {
	svc Services
	log *slog.Logger

	// сообщения одного пользователя обрабатываются по очереди
	users *keylock.Locker

	mu      sync.Mutex
	dialogs map[int64]*dialog
}

func NewDispatcher(svc Services) *Dispatcher {
	return &Dispatcher{
		svc:     svc,
		log:     logger.Component("bot_dispatcher"),
		users:   keylock.New(),
		dialogs: make(map[int64]*dialog),
	}
}

type dialogStep int

const (
	stepCoinSide dialogStep = iota + 1
	stepCoinBet
	stepSlotsBet
	stepDiceBet
	stepTransferPick
	stepTransferRecipient
	stepTransferConfirm
)

// dialog - незавершенный многошаговый ввод пользователя
type dialog struct {
	step      dialogStep
	side      string
	items     []domain.InventoryEntry
	entry     domain.InventoryEntry
	recipient int64
}

func (d *Dispatcher) getDialog(userID int64) *dialog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialogs[userID]
}

func (d *Dispatcher) setDialog(userID int64, dl *dialog) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dl == nil {
		delete(d.dialogs, userID)
		return
	}
	d.dialogs[userID] = dl
}

// Handle обрабатывает одно сообщение и возвращает ответы
func (d *Dispatcher) Handle(ctx context.Context, in Incoming) []Reply {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil
	}

	unlock := d.users.Lock(strconv.FormatInt(in.UserID, 10))
	defer unlock()

	if !strings.HasPrefix(text, "/") {
		dl := d.getDialog(in.UserID)
		if dl == nil {
			return d.reply(in, "🤔 Не понимаю. Список команд: /help")
		}
		return d.continueDialog(ctx, in, dl, text)
	}

	cmd, args := parseCommand(text)
	// новая команда прерывает незавершенный диалог
	d.setDialog(in.UserID, nil)

	if strings.HasPrefix(cmd, "buy_") {
		return d.buy(ctx, in, strings.TrimPrefix(cmd, "buy_"))
	}

	switch strings.ToLower(cmd) {
	case "start":
		return d.start(ctx, in)
	case "help":
		return d.help(in)
	case "cancel":
		return d.reply(in, "❌ Отменено.")
	case "profile":
		return d.profile(ctx, in)
	case "top":
		return d.top(ctx, in)
	case "promo":
		return d.promo(ctx, in, args)
	case "shop":
		return d.shop(ctx, in)
	case "inventory":
		return d.inventory(ctx, in)
	case "transfer":
		return d.transfer(ctx, in)
	case "coinflip":
		return d.coinflip(ctx, in, args)
	case "slots":
		return d.slots(ctx, in, args)
	case "dice":
		return d.dice(ctx, in, args)
	case "mines":
		return d.minesStart(ctx, in, args)
	case "open":
		return d.minesOpen(ctx, in, args)
	case "cashout":
		return d.minesCashOut(ctx, in)
	case "board":
		return d.minesBoard(ctx, in)
	case "admin_promo":
		return d.adminPromo(ctx, in, args)
	case "admin_promo_list":
		return d.adminPromoList(ctx, in)
	case "admin_add_item":
		return d.adminAddItem(ctx, in, args)
	case "admin_shop_list":
		return d.adminShopList(ctx, in)
	case "admin_stats":
		return d.adminStats(ctx, in)
	case "admin_broadcast":
		return d.adminBroadcast(ctx, in, strings.TrimSpace(strings.TrimPrefix(text, strings.Fields(text)[0])))
	default:
		return d.reply(in, "❌ Неизвестная команда. Используйте /help для списка команд.")
	}
}

func (d *Dispatcher) continueDialog(ctx context.Context, in Incoming, dl *dialog, text string) []Reply {
	switch dl.step {
	case stepCoinSide:
		return d.coinSideStep(ctx, in, dl, text)
	case stepCoinBet:
		return d.coinBetStep(ctx, in, dl, text)
	case stepSlotsBet:
		return d.slotsBetStep(ctx, in, text)
	case stepDiceBet:
		return d.diceBetStep(ctx, in, text)
	case stepTransferPick:
		return d.transferPickStep(in, dl, text)
	case stepTransferRecipient:
		return d.transferRecipientStep(in, dl, text)
	case stepTransferConfirm:
		return d.transferConfirmStep(ctx, in, dl, text)
	}
	d.setDialog(in.UserID, nil)
	return nil
}

// parseCommand отделяет имя команды (без "/" и "@bot") от аргументов.
// Регистр не меняется: в /buy_<id> он значим.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, fields[1:]
}

func (d *Dispatcher) reply(in Incoming, text string) []Reply {
	return []Reply{{ChatID: in.ChatID, Text: text}}
}

// replyErr показывает ошибку ядра; инфраструктурные ошибки только логируются
func (d *Dispatcher) replyErr(in Incoming, op string, err error) []Reply {
	if !domain.IsBusiness(err) {
		d.log.Error("command failed", "op", op, "user_id", in.UserID, "error", err)
		return d.reply(in, "❌ Произошла ошибка! Попробуйте позже.")
	}
	return d.reply(in, "❌ "+upperFirst(err.Error()))
}
