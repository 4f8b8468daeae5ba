// Command pulsetail connects to the Pulse event stream as one or more users
// and prints every event it receives.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"pulse/internal/middleware"
	"pulse/internal/notifications"

	"github.com/gorilla/websocket"
)

// Metrics tracks what the tail saw.
type Metrics struct {
	Connected int64
	Failed    int64
	Received  int64
	Dropped   int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	users := flag.String("users", "1", "Comma-separated user ids to connect as")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "Token signing secret shared with the server")
	duration := flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	flag.Parse()

	ids, err := parseIDs(*users)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *secret == "" {
		log.Fatalf("❌ -secret or JWT_SECRET is required")
	}

	log.Printf("📡 Tailing %s as users %v", *host, ids)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go tail(*host, *secret, id, stopChan, &wg)
	}

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}
	select {
	case <-timeout:
		log.Println("⏱️  Duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted")
	}

	close(stopChan)
	wg.Wait()

	fmt.Printf("\nconnected=%d failed=%d received=%d dropped=%d\n",
		atomic.LoadInt64(&metrics.Connected),
		atomic.LoadInt64(&metrics.Failed),
		atomic.LoadInt64(&metrics.Received),
		atomic.LoadInt64(&metrics.Dropped),
	)
}

func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no user ids given")
	}
	return ids, nil
}

func tail(host, secret string, userID uint, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	token, err := middleware.IssueUserToken(userID, secret)
	if err != nil {
		atomic.AddInt64(&metrics.Failed, 1)
		log.Printf("[user %d] token: %v", userID, err)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: "token=" + url.QueryEscape(token)}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		atomic.AddInt64(&metrics.Failed, 1)
		log.Printf("[user %d] dial: %v", userID, err)
		return
	}
	defer func() { _ = conn.Close() }()
	atomic.AddInt64(&metrics.Connected, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.Received, 1)

			var ev notifications.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				log.Printf("[user %d] %s", userID, raw)
				continue
			}
			if ev.Type == notifications.EventDropped {
				atomic.AddInt64(&metrics.Dropped, 1)
			}
			payload, _ := json.Marshal(ev.Payload)
			log.Printf("[user %d] %s %s", userID, ev.Type, payload)
		}
	}()

	select {
	case <-stopChan:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
		log.Printf("[user %d] connection closed by server", userID)
	}
}
