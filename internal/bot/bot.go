package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"telegram_casino/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	commandTimeout = 30 * time.Second
	stopTimeout    = 10 * time.Second
	// пауза между сообщениями рассылки, чтобы не упереться в лимиты Telegram
	bulkPause = 50 * time.Millisecond
)

// Bot - транспорт Telegram: получает обновления и отправляет ответы диспетчера
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
	stopCh     chan struct{}
	wg         sync.WaitGroup
	log        *slog.Logger
}

// New авторизует бота по токену
func New(token string, dispatcher *Dispatcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.Component("bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
		log:        log,
	}, nil
}

// Start запускает прослушивание обновлений; блокируется до Stop
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handle(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	// Ожидание завершения обработчиков с таймаутом
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(stopTimeout):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) handle(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	replies := b.dispatcher.Handle(ctx, toIncoming(msg))
	b.send(replies)
}

func toIncoming(msg *tgbotapi.Message) Incoming {
	return Incoming{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		FirstName: msg.From.FirstName,
		Username:  msg.From.UserName,
		Text:      msg.Text,
	}
}

func (b *Bot) send(replies []Reply) {
	sent, failed := 0, 0
	for _, r := range replies {
		m := tgbotapi.NewMessage(r.ChatID, r.Text)
		m.DisableWebPagePreview = true

		_, err := b.api.Send(m)
		if r.Bulk {
			if err != nil {
				failed++
			} else {
				sent++
			}
			time.Sleep(bulkPause)
			continue
		}
		if err != nil {
			// получатель мог не начинать диалог с ботом
			b.log.Warn("error sending message", "chat_id", r.ChatID, "error", err)
		}
	}
	if sent+failed > 0 {
		b.log.Info("broadcast completed", "sent", sent, "failed", failed)
	}
}
