// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/vote-ledger/auth"
	"github.com/danielhkuo/vote-ledger/cliparse"
	"github.com/danielhkuo/vote-ledger/db"
)

// OneStake is the default minimum vote stake, 10^23 base units
const OneStake = "100000000000000000000000"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		AccountSalt:  "test-account-salt",
		MinVoteStake: OneStake,
	}
}

// StepClock is a deterministic clock: every call advances the timestamp by
// 1000 and the block by 1
type StepClock struct {
	mu    sync.Mutex
	ts    uint64
	block uint64
}

func (c *StepClock) Now() (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ts += 1000
	c.block++
	return c.ts, c.block
}

// AccountHeaders returns the headers that authenticate a request as account
func AccountHeaders(cfg cliparse.Config, account string) map[string]string {
	return map[string]string{
		"X-Account-ID":    account,
		"X-Account-Token": auth.GenerateAccountToken(account, cfg.AccountSalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
