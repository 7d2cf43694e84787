package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ksred/fxjournal/internal/auth"
	"github.com/ksred/fxjournal/internal/types"
)

const maxRetries = 3

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	mu         sync.Mutex
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration, failed bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
	if failed {
		rs.failures++
	}
}

// calculate computes min, max, mean, median, p95 and p99 from recorded durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	sorted := append([]time.Duration(nil), rs.durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	mean = sum / time.Duration(len(sorted))
	median = sorted[len(sorted)/2]

	p95 = sorted[int(math.Ceil(float64(len(sorted))*0.95))-1]
	p99 = sorted[int(math.Ceil(float64(len(sorted))*0.99))-1]
	return
}

// envelope is the response body shared by every endpoint
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// simulationClient handles HTTP communication with the journal API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	stats     map[string]*routeStats
	order     []string
}

func newSimulationClient(baseURL string) *simulationClient {
	sc := &simulationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		stats:   map[string]*routeStats{},
	}
	for _, route := range []struct{ key, name string }{
		{"register", "Register"},
		{"login", "Login"},
		{"seed", "Seed Equity"},
		{"create", "Create Trade"},
		{"update", "Update Trade"},
		{"delete", "Delete Trade"},
		{"list", "List Trades"},
		{"stats", "Stats"},
	} {
		sc.stats[route.key] = &routeStats{name: route.name}
		sc.order = append(sc.order, route.key)
	}
	return sc
}

// do sends a request, retrying rate limited calls, and decodes the data field into out
func (sc *simulationClient) do(route, method, path string, body, out interface{}) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return 0, err
		}
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		status, err := sc.send(method, path, payload, out)
		sc.stats[route].addDuration(time.Since(start), err != nil)

		if status != http.StatusTooManyRequests || attempt == maxRetries {
			return status, err
		}
		log.Debug().Str("route", route).Int("attempt", attempt+1).Msg("Rate limited, backing off")
		time.Sleep(time.Duration(attempt+1) * time.Second)
	}
}

func (sc *simulationClient) send(method, path string, payload []byte, out interface{}) (int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sc.authToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("path", path).Int("status", resp.StatusCode).Str("response", string(respBody)).Msg("API response")

	var result envelope
	if err := json.Unmarshal(respBody, &result); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	if !result.Success {
		if result.Error != nil {
			return resp.StatusCode, fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, result.Error.Message)
		}
		return resp.StatusCode, fmt.Errorf("%s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// authenticate registers the simulation admin when needed and logs in
func (sc *simulationClient) authenticate(username, password string) error {
	creds := auth.Credentials{Username: username, Password: password}

	status, err := sc.do("register", http.MethodPost, "/api/v1/auth/register", creds, nil)
	if err != nil && status != http.StatusConflict {
		return fmt.Errorf("failed to register: %w", err)
	}

	var token auth.TokenResponse
	if _, err := sc.do("login", http.MethodPost, "/api/v1/auth/login", creds, &token); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	if token.Token == "" {
		return fmt.Errorf("no token in login response")
	}
	sc.authToken = token.Token
	return nil
}

func (sc *simulationClient) seedEquity(amount float64) error {
	_, err := sc.do("seed", http.MethodPut, "/api/v1/equity", map[string]float64{"equity": amount}, nil)
	return err
}

func (sc *simulationClient) createTrade(input types.TradeInput) (*types.Trade, error) {
	var trade types.Trade
	if _, err := sc.do("create", http.MethodPost, "/api/v1/trades", input, &trade); err != nil {
		return nil, err
	}
	if trade.TradeID == "" {
		return nil, fmt.Errorf("no trade ID in response")
	}
	return &trade, nil
}

func (sc *simulationClient) updateTrade(id string, input types.TradeInput) (*types.Trade, error) {
	var trade types.Trade
	if _, err := sc.do("update", http.MethodPut, "/api/v1/trades/"+id, input, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

func (sc *simulationClient) deleteTrade(id string) error {
	_, err := sc.do("delete", http.MethodDelete, "/api/v1/trades/"+id, nil, nil)
	return err
}

func (sc *simulationClient) listTrades() ([]types.Trade, error) {
	var trades []types.Trade
	if _, err := sc.do("list", http.MethodGet, "/api/v1/trades", nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// getStats reads one reporting endpoint under /api/v1/stats
func (sc *simulationClient) getStats(path string, out interface{}) error {
	_, err := sc.do("stats", http.MethodGet, "/api/v1/stats"+path, nil, out)
	return err
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\nAPI Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, key := range sc.order {
		stats := sc.stats[key]
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}
