package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openfour/gameserver/api"
	"github.com/openfour/gameserver/game/service"
	"github.com/openfour/gameserver/game/session"
	"github.com/openfour/gameserver/transport/websocket"
)

func newTestServer(t *testing.T, maxSessions int) *httptest.Server {
	t.Helper()
	registry := session.NewRegistry(maxSessions, zerolog.Nop())
	svc := service.New(registry, zerolog.Nop())
	ws := websocket.NewHandler(svc, 16, zerolog.Nop())
	server := httptest.NewServer(api.NewServer(svc, ws, zerolog.Nop()))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func dialWS(t *testing.T, server *httptest.Server) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *gorilla.Conn) service.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var evt service.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("Failed to decode event %s: %v", data, err)
	}
	return evt
}

func sendEvent(t *testing.T, conn *gorilla.Conn, evt service.Event) {
	t.Helper()
	if err := conn.WriteJSON(evt); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

func playEvt(column int) service.Event {
	return service.Event{Type: service.EventPlay, Column: &column}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, 8)

	var body map[string]string
	status := getJSON(t, server.URL+"/healthz", &body)
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestStats(t *testing.T) {
	server := newTestServer(t, 8)

	var stats map[string]int
	status := getJSON(t, server.URL+"/api/stats", &stats)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if stats["active_sessions"] != 0 {
		t.Errorf("Expected 0 active sessions, got %d", stats["active_sessions"])
	}
	if stats["max_sessions"] != 8 {
		t.Errorf("Expected max 8, got %d", stats["max_sessions"])
	}

	conn := dialWS(t, server)
	sendEvent(t, conn, service.Event{Type: service.EventInit})
	readEvent(t, conn)

	status = getJSON(t, server.URL+"/api/stats", &stats)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if stats["active_sessions"] != 1 {
		t.Errorf("Expected 1 active session, got %d", stats["active_sessions"])
	}
}

func TestBoardNotFound(t *testing.T) {
	server := newTestServer(t, 8)

	status := getJSON(t, server.URL+"/api/sessions/never-created/board", nil)
	if status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", status)
	}
}

func TestBoardRender(t *testing.T) {
	server := newTestServer(t, 8)

	conn := dialWS(t, server)
	sendEvent(t, conn, service.Event{Type: service.EventInit})
	init := readEvent(t, conn)

	sendEvent(t, conn, playEvt(0))
	readEvent(t, conn)

	var body map[string]string
	status := getJSON(t, server.URL+"/api/sessions/"+init.GameID+"/board", &body)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if !strings.Contains(body["board"], "R") {
		t.Errorf("Expected the board to show red's piece:\n%s", body["board"])
	}
}

// TestFullGame drives a complete two-player game through the public
// surface: create, join, alternate moves, vertical win for red.
func TestFullGame(t *testing.T) {
	server := newTestServer(t, 8)

	a := dialWS(t, server)
	sendEvent(t, a, service.Event{Type: service.EventInit})
	init := readEvent(t, a)
	if init.Type != service.EventInit || init.GameID == "" {
		t.Fatalf("Bad init response: %+v", init)
	}

	b := dialWS(t, server)
	sendEvent(t, b, service.Event{Type: service.EventInit, GameID: init.GameID})

	expectPlay := func(conn *gorilla.Conn, player string, column, row int) {
		t.Helper()
		evt := readEvent(t, conn)
		if evt.Type != service.EventPlay {
			t.Fatalf("Expected play event, got %+v", evt)
		}
		if string(evt.Player) != player || *evt.Column != column || *evt.Row != row {
			t.Fatalf("Expected %s column %d row %d, got %s column %d row %d",
				player, column, row, evt.Player, *evt.Column, *evt.Row)
		}
	}

	// Red stacks column 0, yellow answers in column 1.
	for i := 0; i < 3; i++ {
		sendEvent(t, a, playEvt(0))
		expectPlay(a, "red", 0, i)
		expectPlay(b, "red", 0, i)

		sendEvent(t, b, playEvt(1))
		expectPlay(a, "yellow", 1, i)
		expectPlay(b, "yellow", 1, i)
	}

	sendEvent(t, a, playEvt(0))
	expectPlay(a, "red", 0, 3)
	expectPlay(b, "red", 0, 3)

	for _, conn := range []*gorilla.Conn{a, b} {
		evt := readEvent(t, conn)
		if evt.Type != service.EventWin {
			t.Fatalf("Expected win event, got %+v", evt)
		}
		if string(evt.Player) != "red" {
			t.Errorf("Expected red to win, got %q", evt.Player)
		}
	}
}

// TestSpectator attaches a watcher mid-game and checks replay plus live
// broadcasts.
func TestSpectator(t *testing.T) {
	server := newTestServer(t, 8)

	a := dialWS(t, server)
	sendEvent(t, a, service.Event{Type: service.EventInit})
	init := readEvent(t, a)

	sendEvent(t, a, playEvt(3))
	readEvent(t, a)

	w := dialWS(t, server)
	sendEvent(t, w, service.Event{Type: service.EventWatch, GameID: init.GameID})

	replayed := readEvent(t, w)
	if replayed.Type != service.EventPlay || *replayed.Column != 3 {
		t.Fatalf("Expected replay of red's move, got %+v", replayed)
	}
}
