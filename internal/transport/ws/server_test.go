package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/comm-hub/chat-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type fakeChatSvc struct {
	names   map[int64]string
	postErr error
}

func (f *fakeChatSvc) Post(_ context.Context, roomKey string, senderID int64, text string, attachment *string) (*domain.ChatMessage, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil, domain.ErrInvalidMessage
	}
	name, ok := f.names[senderID]
	if !ok {
		name = strconv.FormatInt(senderID, 10)
	}
	return &domain.ChatMessage{
		RoomID:     roomKey,
		SenderID:   senderID,
		SenderName: name,
		Content:    text,
		Attachment: attachment,
		CreatedAt:  time.Now(),
	}, nil
}

func startTestServer(t *testing.T, chat ChatSvc) (*httptest.Server, *Server) {
	t.Helper()
	hub := NewHub()
	srv := NewServer(hub, chat)

	r := chi.NewRouter()
	r.Get("/ws/chat/{room}", srv.HandleChat)
	r.Get("/ws/call", srv.HandleCall)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, srv
}

func dial(t *testing.T, ts *httptest.Server, path string, userID int64) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path +
		"?access_token=test&user_id=" + strconv.FormatInt(userID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var out map[string]any
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func TestChatSession_Echo(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{names: map[int64]string{3: "alice", 7: "bob"}})

	// порядок id в маршруте не важен: обе стороны попадают в комнату 3_7
	sender := dial(t, ts, "/ws/chat/3_7", 3)
	receiver := dial(t, ts, "/ws/chat/7_3", 7)
	// дать второй сессии дойти до хаба
	time.Sleep(50 * time.Millisecond)

	if err := sender.WriteJSON(map[string]any{"message": "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{sender, receiver} {
		got := readEvent(t, conn)
		if got["message"] != "hi" || got["sender"] != "alice" {
			t.Fatalf("unexpected event: %v", got)
		}
		if att, present := got["attachment"]; !present || att != nil {
			t.Fatalf("attachment must be present and null, got: %v", got)
		}
	}
}

func TestChatSession_AttachmentForwarded(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{names: map[int64]string{3: "alice"}})

	sender := dial(t, ts, "/ws/chat/3_7", 3)
	if err := sender.WriteJSON(map[string]any{
		"message":    "look",
		"attachment": "/media/attachments/pic.png",
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := readEvent(t, sender)
	if got["attachment"] != "/media/attachments/pic.png" {
		t.Fatalf("unexpected event: %v", got)
	}
}

func TestChatSession_EmptyMessageRejected(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{names: map[int64]string{3: "alice", 7: "bob"}})

	sender := dial(t, ts, "/ws/chat/3_7", 3)
	receiver := dial(t, ts, "/ws/chat/3_7", 7)
	time.Sleep(50 * time.Millisecond)

	if err := sender.WriteJSON(map[string]any{"message": ""}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// отправитель получает уведомление об ошибке, и только он
	got := readEvent(t, sender)
	if got["error"] == nil {
		t.Fatalf("expected error notice, got: %v", got)
	}

	if err := sender.WriteJSON(map[string]any{"message": "real"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// первое, что видит второй участник — валидное сообщение
	got = readEvent(t, receiver)
	if got["message"] != "real" {
		t.Fatalf("receiver must not observe the rejected send, got: %v", got)
	}
}

func TestChatSession_InvalidRoomRejected(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat/3_abc?access_token=test&user_id=3"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure for malformed room name")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 before upgrade, got %v", resp)
	}
}

func TestChatSession_Unauthenticated(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat/3_7?user_id=3"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure without access_token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestChatSession_DisconnectLeavesRoom(t *testing.T) {
	ts, srv := startTestServer(t, &fakeChatSvc{names: map[int64]string{3: "alice", 7: "bob"}})

	a := dial(t, ts, "/ws/chat/3_7", 3)
	dial(t, ts, "/ws/chat/3_7", 7)
	time.Sleep(50 * time.Millisecond)

	if got := srv.hub.GroupSize("3_7"); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}

	_ = a.Close()
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.GroupSize("3_7") != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("leave not observed, group size %d", srv.hub.GroupSize("3_7"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCallChannel_DecisionFanOut(t *testing.T) {
	ts, _ := startTestServer(t, &fakeChatSvc{})

	control := dial(t, ts, "/ws/call", 1)
	listener1 := dial(t, ts, "/ws/call", 2)
	listener2 := dial(t, ts, "/ws/call", 3)
	time.Sleep(50 * time.Millisecond)

	if err := control.WriteJSON(map[string]any{"decision": "accept"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, conn := range []*websocket.Conn{control, listener1, listener2} {
		got := readEvent(t, conn)
		if got["status"] != "accepted" {
			t.Fatalf("expected accepted, got: %v", got)
		}
		if _, present := got["call_id"]; present {
			t.Fatalf("call_id must be omitted when absent in the input: %v", got)
		}
	}

	if err := control.WriteJSON(map[string]any{"decision": "reject", "call_id": "c-42"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readEvent(t, listener1)
	if got["status"] != "rejected" || got["call_id"] != "c-42" {
		t.Fatalf("expected rejected with call_id, got: %v", got)
	}
}
