package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWebSocketLeaderboardFeed(t *testing.T) {
	server := newTestServer(t)
	quiz := createQuiz(t, server)

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=" + quiz.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot first, empty.
	typ, payload := readNext(conn, t, "leaderboard")
	if typ != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", typ)
	}
	if entries, _ := payload["entries"].([]any); len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", entries)
	}

	resp := doJSON(t, server, http.MethodPost, "/api/quizzes/"+quiz.ID+"/results", map[string]any{
		"userName": "Alice", "answers": []int{1, 2}, "timeElapsed": 12,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	_, payload = readNext(conn, t, "leaderboard")
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one entry after submission, got %v", payload["entries"])
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?quizId=missing"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "error")
}

func TestWebSocketRequiresQuizID(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
