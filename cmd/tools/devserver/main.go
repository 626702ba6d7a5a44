// Command devserver is a loopback notification server for manual client
// testing. It accepts the same /ws?token= handshake the platform uses,
// answers heartbeat pings, and cycles through sample notification payloads
// so the client's toast, log and broadcast paths can be eyeballed without
// a running backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"main/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"
)

var (
	addr     = flag.String("addr", ":8080", "listen address")
	interval = flag.Duration("interval", 5*time.Second, "delay between sample notifications")
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(*http.Request) bool { return true },
}

var connSeq atomic.Uint64

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(ctx, w, r)
	})

	server := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logs.Infof("devserver listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logs.Errorf("devserver: %+v", err)
		os.Exit(1)
	}
}

func serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logs.Warnf("devserver: upgrade, err: %+v", err)
		return
	}

	id := connSeq.Add(1)
	logs.Infof("devserver: client %d connected, token %q", id, token)

	greeting, _ := json.Marshal(notify.Message{
		Type:    notify.KindConnected,
		Content: "connected",
	})
	_ = conn.WriteMessage(websocket.TextMessage, greeting)

	writes := make(chan []byte, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(payload) == "ping" {
				select {
				case writes <- []byte("pong"):
				default:
				}
				continue
			}
			logs.Infof("devserver: client %d sent %s", id, payload)
		}
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	defer conn.Close()

	samples := sampleMessages()
	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			logs.Infof("devserver: client %d disconnected", id)
			return
		case payload := <-writes:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			msg := samples[next%len(samples)]
			next++
			msg.Timestamp = time.Now().Format(time.RFC3339)
			payload, _ := json.Marshal(msg)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func sampleMessages() []notify.Message {
	return []notify.Message{
		{Type: notify.KindUserOnline, SenderID: 42, SenderName: "alice"},
		{Type: notify.KindNewMessage, Title: "New message", Content: "try the braised pork!", SenderID: 42, SenderName: "alice"},
		{Type: notify.KindNewRecipePending, Title: "Pending review", Content: "Braised Pork Belly", RelatedID: 7},
		{Type: notify.KindNewFollower, Title: "New follower", Content: "bob followed you", SenderID: 43, SenderName: "bob"},
		{Type: notify.KindAdminNewComment, Title: "New comment", Content: "looks delicious", RelatedID: 7},
		{Type: notify.KindUserOffline, SenderID: 42, SenderName: "alice"},
	}
}
