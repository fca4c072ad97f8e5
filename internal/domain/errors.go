package domain

import "errors"

// Ошибки бизнес-логики. Все они восстановимые: операция, вернувшая такую
// ошибку, не изменила ни баланс, ни сессию, ни каталог.
var (
	ErrInsufficientFunds    = errors.New("недостаточно средств")
	ErrInvalidBet           = errors.New("ставка должна быть положительной")
	ErrInvalidAmount        = errors.New("неверная сумма")
	ErrInvalidPrediction    = errors.New("предсказание должно быть от 1 до 6")
	ErrInvalidChoice        = errors.New("неверная сторона монеты")
	ErrNotFound             = errors.New("не найдено")
	ErrExpired              = errors.New("промокод просрочен")
	ErrLimitReached         = errors.New("лимит использований промокода исчерпан")
	ErrAlreadyUsed          = errors.New("вы уже использовали этот промокод")
	ErrSoldOut              = errors.New("этот предмет распродан")
	ErrDuplicateID          = errors.New("запись с таким идентификатором уже существует")
	ErrItemNotFound         = errors.New("предмет не найден в вашем инвентаре")
	ErrSelfTransfer         = errors.New("нельзя передать предмет самому себе")
	ErrInvalidCell          = errors.New("неверная позиция ячейки")
	ErrAlreadyOpened        = errors.New("ячейка уже открыта")
	ErrNoActiveSession      = errors.New("нет активной игры")
	ErrSessionAlreadyActive = errors.New("у вас уже есть активная игра")
	ErrUnauthorized         = errors.New("недостаточно прав")
)

// ErrNotActive - синоним ErrNoActiveSession для операций над завершенной сессией
var ErrNotActive = ErrNoActiveSession

var codes = []struct {
	err  error
	code string
}{
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrInvalidBet, "invalid_bet"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInvalidPrediction, "invalid_prediction"},
	{ErrInvalidChoice, "invalid_choice"},
	{ErrNotFound, "not_found"},
	{ErrExpired, "expired"},
	{ErrLimitReached, "limit_reached"},
	{ErrAlreadyUsed, "already_used"},
	{ErrSoldOut, "sold_out"},
	{ErrDuplicateID, "duplicate_id"},
	{ErrItemNotFound, "item_not_found"},
	{ErrSelfTransfer, "self_transfer"},
	{ErrInvalidCell, "invalid_cell"},
	{ErrAlreadyOpened, "already_opened"},
	{ErrNoActiveSession, "no_active_session"},
	{ErrSessionAlreadyActive, "session_already_active"},
	{ErrUnauthorized, "unauthorized"},
}

// ErrorCode возвращает машинный код ошибки; для инфраструктурных ошибок - "internal"
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// IsBusiness сообщает, является ли ошибка одной из ошибок бизнес-логики
func IsBusiness(err error) bool {
	return err != nil && ErrorCode(err) != "internal"
}
