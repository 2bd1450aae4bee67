// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/vote-ledger/models"
)

// captureLogs routes the default slog logger into a buffer for one test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// logEntries decodes one JSON record per line
func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("Failed to decode log line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func completed(t *testing.T, entries []map[string]any) map[string]any {
	t.Helper()
	for _, e := range entries {
		if e["msg"] == "request completed" {
			return e
		}
	}
	t.Fatalf("No 'request completed' record in %v", entries)
	return nil
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	testCases := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
	}{
		{
			name: "implicit 200 on body write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			},
			wantCode: http.StatusOK,
		},
		{
			name: "vote accepted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				JSONResponse(w, http.StatusCreated, models.VoteResponse{OK: true, ReceiptID: "r-1"})
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "stake below minimum",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(w, http.StatusPaymentRequired, "insufficient stake: attached 1, at least 10 is required")
			},
			wantCode: http.StatusPaymentRequired,
		},
		{
			name: "voting not running",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(w, http.StatusConflict, "invalid voting state: voting 0 is not running")
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)

			req := httptest.NewRequest("POST", "/votings/current/votes", nil)
			req.Header.Set(HeaderRequestID, "req-"+tc.name)
			w := httptest.NewRecorder()

			WithLogging(tc.handler)(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("Expected response status %d, got %d", tc.wantCode, w.Code)
			}

			entry := completed(t, logEntries(t, logs))
			if status, _ := entry["status"].(float64); int(status) != tc.wantCode {
				t.Errorf("Expected logged status %d, got %v", tc.wantCode, entry["status"])
			}
			if entry["request_id"] != "req-"+tc.name {
				t.Errorf("Expected logged request_id %q, got %v", "req-"+tc.name, entry["request_id"])
			}
			if entry["path"] != "/votings/current/votes" {
				t.Errorf("Expected logged path, got %v", entry["path"])
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("generates an id and logs it", func(t *testing.T) {
		logs := captureLogs(t)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/votings", nil))

		id := w.Header().Get(HeaderRequestID)
		if len(id) != 36 {
			t.Fatalf("Expected a UUID in X-Request-ID, got %q", id)
		}

		entries := logEntries(t, logs)
		if len(entries) != 2 {
			t.Fatalf("Expected start and completion records, got %d", len(entries))
		}
		for _, e := range entries {
			if e["request_id"] != id {
				t.Errorf("Record %v does not carry request_id %q", e["msg"], id)
			}
		}
	})

	t.Run("distinct requests get distinct ids", func(t *testing.T) {
		captureLogs(t)

		w1, w2 := httptest.NewRecorder(), httptest.NewRecorder()
		handler(w1, httptest.NewRequest("GET", "/votings", nil))
		handler(w2, httptest.NewRequest("GET", "/votings", nil))

		if w1.Header().Get(HeaderRequestID) == w2.Header().Get(HeaderRequestID) {
			t.Error("Expected a fresh request id per request")
		}
	})

	t.Run("reuses the caller's id", func(t *testing.T) {
		captureLogs(t)

		req := httptest.NewRequest("GET", "/votings", nil)
		req.Header.Set(HeaderRequestID, "req-42")
		w := httptest.NewRecorder()

		handler(w, req)

		if got := w.Header().Get(HeaderRequestID); got != "req-42" {
			t.Errorf("Expected X-Request-ID 'req-42', got '%s'", got)
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})
}

func TestWithLogging_LogsClientIP(t *testing.T) {
	logs := captureLogs(t)

	req := httptest.NewRequest("GET", "/votings/current", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	WithLogging(func(w http.ResponseWriter, r *http.Request) {})(httptest.NewRecorder(), req)

	entries := logEntries(t, logs)
	if len(entries) == 0 || entries[0]["remote"] != "198.51.100.7" {
		t.Errorf("Expected first record to log remote 198.51.100.7, got %v", entries)
	}
}

// TestErrorResponse_LedgerRejections checks the bodies clients receive for
// each kind of rejected ledger call
func TestErrorResponse_LedgerRejections(t *testing.T) {
	testCases := []struct {
		status    int
		message   string
		wantError string
	}{
		{http.StatusBadRequest, "invalid input: candidate id 5 is out of range", "Bad Request"},
		{http.StatusUnauthorized, "invalid account token", "Unauthorized"},
		{http.StatusPaymentRequired, "insufficient stake: attached 0, at least 100000000000000000000000 is required", "Payment Required"},
		{http.StatusNotFound, "not found: there is no voting", "Not Found"},
		{http.StatusConflict, "duplicate: alice.test has already voted in voting 0", "Conflict"},
		{http.StatusInternalServerError, "Database error", "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.wantError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.status, tc.message)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.wantError || resp.Message != tc.message {
				t.Errorf("Got %+v, want error %q message %q", resp, tc.wantError, tc.message)
			}
		})
	}
}

func TestJSONResponse_Votings(t *testing.T) {
	w := httptest.NewRecorder()

	JSONResponse(w, http.StatusOK, models.VotingUsersResponse{
		VotingID: 3,
		Users:    map[string]int{"alice.test": 1},
	})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	want := `{"voting_id":3,"users":{"alice.test":1}}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("Expected body %s, got %s", want, got)
	}
}

func TestParseJSONBody_CandidateID(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		want    *int
		wantErr bool
	}{
		{"explicit zero", `{"candidate_id":0}`, intPtr(0), false},
		{"positive id", `{"candidate_id":2}`, intPtr(2), false},
		{"missing field", `{}`, nil, false},
		{"string id", `{"candidate_id":"0"}`, nil, true},
		{"empty body", ``, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/votings/current/votes", strings.NewReader(tc.body))

			var parsed models.VoteRequest
			err := ParseJSONBody(req, &parsed)

			if tc.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSONBody() error = %v", err)
			}
			switch {
			case tc.want == nil && parsed.CandidateID != nil:
				t.Errorf("Expected no candidate_id, got %d", *parsed.CandidateID)
			case tc.want != nil && (parsed.CandidateID == nil || *parsed.CandidateID != *tc.want):
				t.Errorf("Expected candidate_id %d, got %v", *tc.want, parsed.CandidateID)
			}
		})
	}
}

func intPtr(i int) *int {
	return &i
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	})
	handler := CORS(next)

	t.Run("preflight stops before the handler", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/votings/current/votes", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.Len() != 0 {
			t.Errorf("Expected empty 200, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected origin echoed, got %q", got)
		}

		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Content-Type", "X-Account-ID", "X-Account-Token", "X-Attached-Deposit", HeaderRequestID} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers %q", h, allowed)
			}
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Unexpected allowed methods %q", got)
		}
	})

	t.Run("no origin falls back to wildcard", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/votings", nil))

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to run")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected '*', got %q", got)
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"first hop of comma chain", "203.0.113.9,10.0.0.1", "", "10.0.0.2:1", "203.0.113.9"},
		{"first hop of comma-space chain", "203.0.113.9, 10.0.0.1", "", "10.0.0.2:1", "203.0.113.9"},
		{"space separated chain", "203.0.113.9 10.0.0.1", "", "10.0.0.2:1", "203.0.113.9"},
		{"forwarded beats real ip", "203.0.113.9", "198.51.100.1", "10.0.0.2:1", "203.0.113.9"},
		{"real ip beats remote addr", "", "198.51.100.1", "10.0.0.2:1", "198.51.100.1"},
		{"remote addr port stripped", "", "", "192.0.2.4:54321", "192.0.2.4"},
		{"remote addr without port", "", "", "192.0.2.4", "192.0.2.4"},
		{"ipv6 remote addr keeps brackets", "", "", "[2001:db8::1]:443", "[2001:db8::1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if got := GetClientIP(req); got != tc.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}
