package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/fxjournal/internal/config"
	"github.com/ksred/fxjournal/internal/database"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DBDriver:       "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "server.db"),
		GormLogLevel:   1,
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		JWTSecret:      "server-test-secret",
		TokenTTL:       time.Hour,
		CronSecret:     "cron-test-secret",
		Timezone:       "Asia/Jakarta",
	}

	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	a, err := newApp(cfg, db)
	require.NoError(t, err)
	return a.router(), cfg
}

func send(t *testing.T, handler http.Handler, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestJournalFlow(t *testing.T) {
	handler, cfg := newTestServer(t)
	creds := map[string]string{"username": "trader", "password": "s3cret"}

	status, _ := send(t, handler, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, env := send(t, handler, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusCreated, status)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	status, _ = send(t, handler, http.MethodGet, "/api/v1/trades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = send(t, handler, http.MethodPut, "/api/v1/equity", login.Token, map[string]float64{"equity": 1000})
	require.Equal(t, http.StatusOK, status)

	for _, trade := range []map[string]interface{}{
		{"pair": "EUR/USD", "type": "Buy", "result": "Profit", "pl": 150, "lotSize": "0.1", "sl": "20"},
		{"pair": "EUR/USD", "type": "Sell", "result": "Loss", "pl": "-50"},
		{"pair": "GBP/USD", "type": "Buy", "result": "Loss", "pl": "-20"},
	} {
		status, _ = send(t, handler, http.MethodPost, "/api/v1/trades", login.Token, trade)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env = send(t, handler, http.MethodGet, "/api/v1/stats/equity", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"equity":1080}`, string(env.Data))

	status, env = send(t, handler, http.MethodGet, "/api/v1/stats/winrate", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"winRate":33.33,"total":3,"wins":1,"losses":2}`, string(env.Data))

	status, env = send(t, handler, http.MethodGet, "/api/v1/stats/totalpl", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"totalPl":80,"status":"Profit"}`, string(env.Data))

	status, _ = send(t, handler, http.MethodGet, "/api/v1/internal/history/cron", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "admin tokens are not cron secrets")

	loc, err := cfg.Location()
	require.NoError(t, err)
	now := time.Now().In(loc)
	firstOfNext := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, loc)

	status, env = send(t, handler, http.MethodPost, "/api/v1/internal/history/cron?date="+firstOfNext.Format("2006-01-02"), cfg.CronSecret, nil)
	require.Equal(t, http.StatusCreated, status)
	var snapshot struct {
		Ran     bool   `json:"ran"`
		Month   string `json:"month"`
		Metrics struct {
			MaxDrawdown  float64 `json:"max_drawdown"`
			RiskPerTrade float64 `json:"risk_per_trade"`
			LastEquity   float64 `json:"last_equity"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.True(t, snapshot.Ran)
	assert.Equal(t, now.Format("2006-01"), snapshot.Month)
	assert.Equal(t, -50.0, snapshot.Metrics.MaxDrawdown)
	assert.Equal(t, 35.0, snapshot.Metrics.RiskPerTrade)
	assert.Equal(t, 1080.0, snapshot.Metrics.LastEquity)

	status, env = send(t, handler, http.MethodGet, "/api/v1/history", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, -50.0, records[0]["max_drawdown"])
	assert.Equal(t, 1080.0, records[0]["last_equity"])
}
