// E2E test: connects two WebSocket clients through a live server (which
// needs a reachable Redis) and verifies a chat line is delivered exactly
// once to each of them.
// Usage: go run ./cmd/e2etest -server ws://localhost:3001/ws
package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var serverURL = flag.String("server", "ws://localhost:3001/ws", "chat server WebSocket URL")

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	room := "e2e-test-room"

	// --- Connect two clients ---
	log.Println(">> Connecting client A...")
	connA, err := dial(*serverURL)
	if err != nil {
		log.Fatal("client A connect:", err)
	}
	defer connA.Close()
	log.Println("   Client A connected ✓")

	log.Println(">> Connecting client B...")
	connB, err := dial(*serverURL)
	if err != nil {
		log.Fatal("client B connect:", err)
	}
	defer connB.Close()
	log.Println("   Client B connected ✓")

	// Drain the welcome notices, then move both into the test room.
	readLine(connA, "welcome A")
	readLine(connB, "welcome B")

	join := `{"type":"join","room":"` + room + `"}`
	send(connA, join, "A join")
	send(connB, join, "B join")
	readLine(connA, "A join notice")
	readLine(connB, "B join notice")

	// --- Client A chats; both clients must see it exactly once ---
	marker := "hello from A " + time.Now().Format("15:04:05.000")
	send(connA, `{"type":"chat","text":"`+marker+`"}`, "A chat")

	gotA := readLine(connA, "A receive")
	gotB := readLine(connB, "B receive")
	if !strings.Contains(gotA, marker) || !strings.Contains(gotB, marker) {
		log.Fatalf("delivery mismatch: A=%q B=%q", gotA, gotB)
	}
	log.Println("   Both clients received the message ✓")

	// No second copy may arrive inside the dedup window.
	_ = connB.SetReadDeadline(time.Now().Add(1500 * time.Millisecond))
	if _, extra, err := connB.ReadMessage(); err == nil && strings.Contains(string(extra), marker) {
		log.Fatalf("duplicate delivery to B: %q", extra)
	}
	log.Println("   No duplicate delivery ✓")

	log.Println("═══════════════════════════════")
	log.Println("  E2E TEST PASSED ✓")
	log.Println("═══════════════════════════════")
	os.Exit(0)
}

func dial(u string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	return conn, err
}

func send(conn *websocket.Conn, payload, what string) {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		log.Fatalf("%s: %v", what, err)
	}
}

func readLine(conn *websocket.Conn, what string) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		log.Fatalf("%s: %v", what, err)
	}
	log.Printf("   %s: %s", what, msg)
	return string(msg)
}
