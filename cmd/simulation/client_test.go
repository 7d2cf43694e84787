package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/fxjournal/internal/types"
)

func TestRouteStatsCalculate(t *testing.T) {
	rs := &routeStats{name: "test"}

	min, max, mean, median, p95, p99 := rs.calculate()
	assert.Zero(t, min+max+mean+median+p95+p99)

	for i := 1; i <= 100; i++ {
		rs.addDuration(time.Duration(i)*time.Millisecond, i%10 == 0)
	}

	min, max, mean, median, p95, p99 = rs.calculate()
	assert.Equal(t, time.Millisecond, min)
	assert.Equal(t, 100*time.Millisecond, max)
	assert.Equal(t, 50500*time.Microsecond, mean)
	assert.Equal(t, 51*time.Millisecond, median)
	assert.Equal(t, 95*time.Millisecond, p95)
	assert.Equal(t, 99*time.Millisecond, p99)
	assert.Equal(t, 100, rs.totalCalls)
	assert.Equal(t, 10, rs.failures)
}

func TestRandomTradeAgreesWithResult(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		input := randomTrade(r)
		pl := input.PL.Decimal()
		switch input.Result {
		case types.ResultProfit:
			assert.True(t, pl.IsPositive(), input.PL)
		case types.ResultLoss:
			assert.True(t, pl.IsNegative(), input.PL)
		default:
			assert.True(t, pl.IsZero(), input.PL)
		}
		assert.Contains(t, pairs, input.Pair)
	}
}

func TestSimulationClient(t *testing.T) {
	var limited int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/register":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   map[string]string{"code": "CONFLICT", "message": "username already taken"},
			})
		case "/api/v1/auth/login":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]string{"token": "sim-token", "username": "simulation"},
			})
		case "/api/v1/trades":
			if r.Header.Get("Authorization") != "Bearer sim-token" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
				return
			}
			// First call is throttled once
			if atomic.AddInt32(&limited, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]string{"id": "trade-1", "pair": "EURUSD", "result": "Profit", "pl": "12.5"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   map[string]string{"code": "NOT_FOUND", "message": "not found"},
			})
		}
	}))
	defer server.Close()

	sc := newSimulationClient(server.URL + "/")
	require.NoError(t, sc.authenticate("simulation", "simulation-password"))
	assert.Equal(t, "sim-token", sc.authToken)
	assert.Equal(t, 1, sc.stats["register"].failures)

	trade, err := sc.createTrade(types.TradeInput{Pair: "EURUSD", Result: types.ResultProfit, PL: "12.5"})
	require.NoError(t, err)
	assert.Equal(t, "trade-1", trade.TradeID)
	assert.Equal(t, "12.5", trade.PL.String())
	assert.Equal(t, 2, sc.stats["create"].totalCalls)
	assert.Equal(t, 1, sc.stats["create"].failures)

	err = sc.deleteTrade("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRevise(t *testing.T) {
	trade := &types.Trade{Pair: "GBPUSD", Result: types.ResultLoss, Note: "simulated", PL: "-20"}
	input := revise(trade)
	assert.Equal(t, "simulated (revised)", input.Note)
	assert.Equal(t, "-22", input.PL.String())
	assert.Equal(t, "GBPUSD", input.Pair)
}
