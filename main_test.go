package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/game/service"
	"github.com/openfour/gameserver/game/session"
	"github.com/openfour/gameserver/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "OpenFour Game Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestNewLogger(t *testing.T) {
	if got := newLogger(false).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", got)
	}
	if got := newLogger(true).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", got)
	}
}

func TestMCPHandlerRejectsGet(t *testing.T) {
	handler := newTestMCPHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestMCPHandlerToolsList(t *testing.T) {
	handler := newTestMCPHandler(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "server_stats") {
		t.Errorf("Expected server_stats in the tool list, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "session_board") {
		t.Errorf("Expected session_board in the tool list, got %s", rec.Body.String())
	}
}

func newTestMCPHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	registry := session.NewRegistry(8, zerolog.Nop())
	svc := service.New(registry, zerolog.Nop())
	return mcpHandler(mcp.NewServer(svc, AppName, Version))
}
