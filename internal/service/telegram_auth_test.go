package service

import (
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "test-bot-token"

// подписывает поля так же, как это делает клиент Telegram
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	vals := url.Values{}
	for k, v := range fields {
		vals.Set(k, v)
	}
	hash := hex.EncodeToString(signInitData(botToken, dataCheckString(vals)))
	vals.Set("hash", hash)
	return vals.Encode()
}

func fixedAuth(botToken string, now time.Time) *TelegramAuth {
	a := NewTelegramAuth(botToken)
	a.now = func() time.Time { return now }
	return a
}

func TestTelegramAuthValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	initData := buildInitData(t, testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	})

	user, err := fixedAuth(testBotToken, now).Validate(initData)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "u", user.Username)
	assert.Equal(t, now.Add(-10*time.Minute), user.AuthDate)
}

func TestTelegramAuthRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fresh := strconv.FormatInt(now.Unix(), 10)
	valid := buildInitData(t, testBotToken, map[string]string{"auth_date": fresh, "user": `{"id":1}`})

	tests := []struct {
		name     string
		token    string
		initData string
		reason   error
	}{
		{"no bot token", "", valid, errNoBotToken},
		{"tampered", testBotToken, valid + "&x=1", errBadHash},
		{"foreign token", "other", valid, errBadHash},
		{"no hash", testBotToken, "auth_date=" + fresh, errNoHash},
		{
			"expired", testBotToken,
			buildInitData(t, testBotToken, map[string]string{
				"auth_date": strconv.FormatInt(now.Add(-2*time.Hour).Unix(), 10),
				"user":      `{"id":1}`,
			}),
			errStaleLogin,
		},
		{
			"from the future", testBotToken,
			buildInitData(t, testBotToken, map[string]string{
				"auth_date": strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
				"user":      `{"id":1}`,
			}),
			errFutureLogin,
		},
		{"no user", testBotToken, buildInitData(t, testBotToken, map[string]string{"auth_date": fresh}), errNoUser},
		{"no auth date", testBotToken, buildInitData(t, testBotToken, map[string]string{"user": `{"id":1}`}), errNoAuthDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixedAuth(tt.token, now).Validate(tt.initData)
			require.ErrorIs(t, err, ErrInvalidInitData)
			assert.ErrorContains(t, err, tt.reason.Error())
		})
	}
}
