// Command openfour-cli is a small terminal client for the game server.
// It creates, joins, or watches a game over the WebSocket protocol and
// submits moves read from stdin (one column number per line).
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/openfour/gameserver/game/service"
)

var (
	addr    = flag.String("addr", "localhost:8001", "game server address")
	joinID  = flag.String("join", "", "join an existing game by id")
	watchID = flag.String("watch", "", "watch an existing game by id")
)

func main() {
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer conn.Close()

	first := service.Event{Type: service.EventInit}
	switch {
	case *watchID != "":
		first = service.Event{Type: service.EventWatch, GameID: *watchID}
	case *joinID != "":
		first.GameID = *joinID
	}
	if err := conn.WriteJSON(first); err != nil {
		fmt.Fprintf(os.Stderr, "failed to send first event: %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		receiveEvents(conn)
	}()

	if *watchID != "" {
		// Spectators only listen.
		<-done
		return
	}

	fmt.Println("Enter a column number (0-6) to play, or \"quit\" to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		column, err := strconv.Atoi(line)
		if err != nil {
			fmt.Printf("not a column number: %q\n", line)
			continue
		}

		evt := service.Event{Type: service.EventPlay, Column: &column}
		if err := conn.WriteJSON(evt); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send move: %v\n", err)
			break
		}
	}

	conn.Close()
	<-done
}

// receiveEvents prints server events until the connection closes.
func receiveEvents(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var evt service.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			fmt.Printf("unreadable event: %s\n", data)
			continue
		}

		switch evt.Type {
		case service.EventInit:
			fmt.Printf("game created: %s\n", evt.GameID)
			fmt.Printf("invite: openfour-cli -join %s | spectate: openfour-cli -watch %s\n", evt.GameID, evt.GameID)
		case service.EventPlay:
			if evt.Column != nil && evt.Row != nil {
				fmt.Printf("%s played column %d (row %d)\n", evt.Player, *evt.Column, *evt.Row)
			}
		case service.EventWin:
			fmt.Printf("%s wins!\n", evt.Player)
		case service.EventError:
			fmt.Printf("error: %s\n", evt.Message)
		default:
			fmt.Printf("unknown event: %s\n", data)
		}
	}
}
