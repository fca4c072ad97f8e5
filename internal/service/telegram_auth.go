package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")

	errNoBotToken  = errors.New("bot token is not configured")
	errNoHash      = errors.New("hash is missing")
	errBadHash     = errors.New("hash mismatch")
	errNoAuthDate  = errors.New("auth_date is missing")
	errStaleLogin  = errors.New("auth_date is too old")
	errFutureLogin = errors.New("auth_date is in the future")
	errNoUser      = errors.New("user is missing")
)

const (
	initDataMaxAge    = time.Hour
	initDataClockSkew = 5 * time.Minute
)

// TelegramUser - игрок из поля user в init_data Mini App
type TelegramUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AuthDate  time.Time `json:"-"`
}

// TelegramAuth проверяет init_data Telegram WebApp перед выдачей токена API
type TelegramAuth struct {
	botToken string
	now      func() time.Time
}

func NewTelegramAuth(botToken string) *TelegramAuth {
	return &TelegramAuth{botToken: botToken, now: time.Now}
}

// Validate возвращает игрока, если подпись верна и вход не старше часа.
// Все ошибки оборачивают ErrInvalidInitData.
func (a *TelegramAuth) Validate(initData string) (*TelegramUser, error) {
	user, err := a.parse(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	return user, nil
}

func (a *TelegramAuth) parse(initData string) (*TelegramUser, error) {
	if a.botToken == "" {
		return nil, errNoBotToken
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	provided, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(provided) == 0 {
		return nil, errNoHash
	}
	values.Del("hash")
	if !hmac.Equal(signInitData(a.botToken, dataCheckString(values)), provided) {
		return nil, errBadHash
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, errNoAuthDate
	}
	issued := time.Unix(authDate, 0)
	now := a.now()
	switch {
	case now.Sub(issued) > initDataMaxAge:
		return nil, errStaleLogin
	case issued.Sub(now) > initDataClockSkew:
		return nil, errFutureLogin
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, errNoUser
	}
	user.AuthDate = issued
	return &user, nil
}

// строки key=value, отсортированные и склеенные через \n
func dataCheckString(values url.Values) string {
	pairs := make([]string, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// ключ подписи: HMAC-SHA256("WebAppData", botToken)
func signInitData(botToken, data string) []byte {
	key := hmac.New(sha256.New, []byte("WebAppData"))
	key.Write([]byte(botToken))
	mac := hmac.New(sha256.New, key.Sum(nil))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
