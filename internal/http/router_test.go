package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"telegram_casino/internal/game"
	"telegram_casino/internal/http/handlers"
	"telegram_casino/internal/http/middleware"
	"telegram_casino/internal/service"
	"telegram_casino/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBotToken = "123:test"

	testOperator  int64 = 999
	testPlayer    int64 = 1
	testRecipient int64 = 2
)

type apiTest struct {
	t      *testing.T
	router *gin.Engine
	tokens *service.TokenService
}

// монета всегда выпадает орлом, мины в (0,0), (0,1), (0,2)
func newAPITest(t *testing.T, limiter *middleware.RateLimiter) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemory()
	t.Cleanup(func() { _ = s.Close() })

	r := game.NewScriptedRand(0, 0, 0)
	ledger := service.NewLedger(s, 1000)
	audit := service.NewAuditService(s)
	promos := service.NewPromoService(s, ledger, audit)
	shop := service.NewShopService(s, ledger, audit)
	mines := service.NewMinesService(ledger, r, time.Hour, time.Minute)
	tokens := service.NewTokenService("secret", time.Hour)

	h := &handlers.Handler{
		Ledger:    ledger,
		Games:     service.NewGameService(ledger, r),
		Mines:     mines,
		Promos:    promos,
		Shop:      shop,
		Transfers: service.NewTransferService(s, ledger, audit),
		Admin:     service.NewAdminService([]int64{testOperator}, ledger, promos, shop, mines, audit),
		Tokens:    tokens,
		Auth:      service.NewTelegramAuth(testBotToken),
	}
	return &apiTest{
		t:      t,
		router: NewRouter(Deps{Handler: h, Limiter: limiter, Version: "test"}),
		tokens: tokens,
	}
}

func (a *apiTest) do(method, path string, userID int64, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := a.tokens.Issue(userID)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func signedInitData(userID int64, authDate time.Time) string {
	v := url.Values{}
	v.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	v.Set("user", `{"id":`+strconv.FormatInt(userID, 10)+`,"username":"tester"}`)

	var pairs []string
	for k := range v {
		pairs = append(pairs, k+"="+v.Get(k))
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	v.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return v.Encode()
}

func TestHealthz(t *testing.T) {
	a := newAPITest(t, nil)
	code, body := a.do(nethttp.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestTelegramLogin(t *testing.T) {
	a := newAPITest(t, nil)

	code, body := a.do(nethttp.MethodPost, "/api/auth/telegram", 0, gin.H{"init_data": signedInitData(77, time.Now())})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(1000), body["balance"])

	token, _ := body["token"].(string)
	userID, err := a.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(77), userID)

	code, _ = a.do(nethttp.MethodPost, "/api/auth/telegram", 0, gin.H{"init_data": signedInitData(77, time.Now().Add(-2*time.Hour))})
	assert.Equal(t, nethttp.StatusUnauthorized, code)

	code, body = a.do(nethttp.MethodPost, "/api/auth/telegram", 0, gin.H{})
	assert.Equal(t, nethttp.StatusBadRequest, code)
	assert.Equal(t, "bad_request", body["code"])
}

func TestRequiresToken(t *testing.T) {
	a := newAPITest(t, nil)
	code, body := a.do(nethttp.MethodGet, "/api/profile", 0, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", body["code"])
}

func TestProfileAndGames(t *testing.T) {
	a := newAPITest(t, nil)

	code, body := a.do(nethttp.MethodGet, "/api/profile", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(1000), body["balance"])

	code, body = a.do(nethttp.MethodPost, "/api/games/coinflip", testPlayer, gin.H{"choice": "орел", "bet": 100})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, true, body["win"])
	assert.Equal(t, float64(1100), body["balance"])

	code, body = a.do(nethttp.MethodPost, "/api/games/dice", testPlayer, gin.H{"bet": 10, "prediction": 7})
	assert.Equal(t, nethttp.StatusBadRequest, code)
	assert.Equal(t, "invalid_prediction", body["code"])

	code, body = a.do(nethttp.MethodPost, "/api/games/slots", testPlayer, gin.H{"bet": 5000})
	assert.Equal(t, nethttp.StatusBadRequest, code)
	assert.Equal(t, "insufficient_funds", body["code"])

	code, body = a.do(nethttp.MethodGet, "/api/top", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, body["top"], 1)
}

func TestMinesEndpoints(t *testing.T) {
	a := newAPITest(t, nil)

	code, body := a.do(nethttp.MethodGet, "/api/mines/state", testPlayer, nil)
	assert.Equal(t, nethttp.StatusNotFound, code)
	assert.Equal(t, "no_active_session", body["code"])

	code, body = a.do(nethttp.MethodPost, "/api/mines/start", testPlayer, gin.H{"bet": 100})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(900), body["balance"])

	code, _ = a.do(nethttp.MethodPost, "/api/mines/start", testPlayer, gin.H{"bet": 100})
	assert.Equal(t, nethttp.StatusConflict, code)

	code, _ = a.do(nethttp.MethodPost, "/api/mines/open", testPlayer, gin.H{"row": 3})
	assert.Equal(t, nethttp.StatusBadRequest, code)

	code, body = a.do(nethttp.MethodPost, "/api/mines/open", testPlayer, gin.H{"row": 3, "col": 3})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, false, body["hit_mine"])

	code, body = a.do(nethttp.MethodGet, "/api/mines/state", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(900), body["balance"])

	code, body = a.do(nethttp.MethodPost, "/api/mines/cashout", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(1020), body["balance"])
}

func TestShopPromoAndTransfer(t *testing.T) {
	a := newAPITest(t, nil)

	code, body := a.do(nethttp.MethodPost, "/api/admin/items", testPlayer, gin.H{"id": "sword", "name": "Меч", "price": 300, "quantity": 1})
	assert.Equal(t, nethttp.StatusForbidden, code)
	assert.Equal(t, "unauthorized", body["code"])

	code, _ = a.do(nethttp.MethodPost, "/api/admin/items", testOperator, gin.H{"id": "sword", "name": "Меч", "price": 300, "quantity": 1})
	require.Equal(t, nethttp.StatusCreated, code)

	code, body = a.do(nethttp.MethodGet, "/api/shop", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, body["items"], 1)

	code, body = a.do(nethttp.MethodPost, "/api/shop/buy", testPlayer, gin.H{"item_id": "sword"})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(700), body["balance"])
	entry := body["entry"].(map[string]any)
	uniqueID := entry["unique_id"].(string)

	code, body = a.do(nethttp.MethodPost, "/api/shop/buy", testRecipient, gin.H{"item_id": "sword"})
	assert.Equal(t, nethttp.StatusConflict, code)
	assert.Equal(t, "sold_out", body["code"])

	code, body = a.do(nethttp.MethodGet, "/api/shop", testPlayer, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Empty(t, body["items"])

	code, body = a.do(nethttp.MethodPost, "/api/inventory/transfer", testPlayer, gin.H{"unique_id": uniqueID, "to_user_id": testRecipient})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(1), body["recipient_count"])

	code, body = a.do(nethttp.MethodPost, "/api/inventory/transfer", testPlayer, gin.H{"unique_id": uniqueID, "to_user_id": testRecipient})
	assert.Equal(t, nethttp.StatusNotFound, code)
	assert.Equal(t, "item_not_found", body["code"])

	code, body = a.do(nethttp.MethodGet, "/api/inventory", testRecipient, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, body["items"], 1)

	code, _ = a.do(nethttp.MethodPost, "/api/admin/promos", testOperator, gin.H{"code": "bonus", "reward": 100})
	require.Equal(t, nethttp.StatusCreated, code)

	code, body = a.do(nethttp.MethodPost, "/api/promo/redeem", testPlayer, gin.H{"code": "BONUS"})
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(800), body["balance"])

	code, body = a.do(nethttp.MethodPost, "/api/promo/redeem", testPlayer, gin.H{"code": "bonus"})
	assert.Equal(t, nethttp.StatusConflict, code)
	assert.Equal(t, "already_used", body["code"])

	code, body = a.do(nethttp.MethodGet, "/api/admin/stats", testOperator, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Equal(t, float64(1), body["items_sold"])

	code, body = a.do(nethttp.MethodGet, "/api/admin/audit?user_id=1&action=promo_redeem", testOperator, nil)
	require.Equal(t, nethttp.StatusOK, code)
	assert.Len(t, body["logs"], 1)

	code, _ = a.do(nethttp.MethodGet, "/api/admin/audit?user_id=abc", testOperator, nil)
	assert.Equal(t, nethttp.StatusBadRequest, code)

	code, _ = a.do(nethttp.MethodGet, "/api/admin/audit", testPlayer, nil)
	assert.Equal(t, nethttp.StatusForbidden, code)
}

func TestRateLimit(t *testing.T) {
	a := newAPITest(t, middleware.NewRateLimiter(nil, 2, time.Minute))

	for i := 0; i < 2; i++ {
		code, _ := a.do(nethttp.MethodGet, "/api/profile", testPlayer, nil)
		require.Equal(t, nethttp.StatusOK, code)
	}
	code, body := a.do(nethttp.MethodGet, "/api/profile", testPlayer, nil)
	assert.Equal(t, nethttp.StatusTooManyRequests, code)
	assert.Equal(t, "rate_limited", body["code"])
}
