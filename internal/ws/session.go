package ws

import (
	"context"
	"encoding/json"
	"errors"

	"telegram_casino/internal/domain"
	"telegram_casino/internal/game"
	"telegram_casino/internal/service"
)

// Message - входящий кадр клиента
type Message struct {
	Op  string `json:"op"` // start | open | cashout | state
	Bet int64  `json:"bet"`
	Row int    `json:"row"`
	Col int    `json:"col"`
}

type stateReply struct {
	Type string `json:"type"`
	game.MinesSnapshot
	HitMine bool  `json:"hit_mine"`
	Balance int64 `json:"balance"`
}

type errorReply struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

var errUnknownOp = errors.New("неизвестная операция")

// Session выполняет команды игры в сапёра, пришедшие по websocket
type Session struct {
	Mines  *service.MinesService
	Ledger *service.Ledger
}

// Handle разбирает кадр и возвращает ответ для отправки клиенту
func (s *Session) Handle(ctx context.Context, userID int64, raw []byte) []byte {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return encodeError("bad_request", "неверный формат сообщения")
	}

	var (
		res *service.MinesResult
		err error
	)
	switch msg.Op {
	case "start":
		res, err = s.Mines.Start(ctx, userID, msg.Bet)
	case "open":
		res, err = s.Mines.Open(ctx, userID, msg.Row, msg.Col)
	case "cashout":
		res, err = s.Mines.CashOut(ctx, userID)
	case "state":
		res, err = s.state(ctx, userID)
	default:
		return encodeError("unknown_op", errUnknownOp.Error())
	}
	if err != nil {
		code := domain.ErrorCode(err)
		if code == "internal" {
			return encodeError(code, "внутренняя ошибка сервера")
		}
		return encodeError(code, err.Error())
	}

	b, _ := json.Marshal(stateReply{
		Type:          "state",
		MinesSnapshot: res.MinesSnapshot,
		HitMine:       res.HitMine,
		Balance:       res.Balance,
	})
	return b
}

func (s *Session) state(ctx context.Context, userID int64) (*service.MinesResult, error) {
	snap, err := s.Mines.State(userID)
	if err != nil {
		return nil, err
	}
	acc, err := s.Ledger.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &service.MinesResult{MinesSnapshot: *snap, Balance: acc.Balance}, nil
}

func encodeError(code, message string) []byte {
	b, _ := json.Marshal(errorReply{Type: "error", Code: code, Error: message})
	return b
}
