package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comm-hub/chat-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ChatSvc interface {
	Post(ctx context.Context, roomKey string, senderID int64, text string, attachment *string) (*domain.ChatMessage, error)
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	chatSvc  ChatSvc

	pingEvery   time.Duration
	maxMsgBytes int64
}

func NewServer(hub *Hub, chat ChatSvc) *Server {
	return &Server{
		hub:     hub,
		chatSvc: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:   15 * time.Second,
		maxMsgBytes: 1 << 20,
	}
}

func (s *Server) SetPingInterval(d time.Duration) {
	if d > 0 {
		s.pingEvery = d
	}
}

// Входящее сообщение чата: {"message": "...", "attachment": "url"}.
type chatInbound struct {
	Message    string `json:"message"`
	Attachment string `json:"attachment"`
}

// WS endpoint: GET /ws/chat/{room}?access_token=...&user_id=...
// {room} — составное имя "a_b"; порядок id не важен, ключ канонизируется.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	roomName := chi.URLParam(r, "room")
	a, b, err := domain.ParseRoomKey(roomName)
	if err != nil {
		// невалидная комната отклоняется до upgrade, а не после accept
		http.Error(w, "invalid room name", http.StatusBadRequest)
		return
	}
	key := domain.MakeRoomKey(a, b)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, key, uid)
	s.hub.Add(c)
	// уход из группы и закрытие сокета гарантированы на любом пути выхода
	defer func() {
		s.hub.Remove(c)
		if err := c.Close(); err != nil {
			slog.Debug("ws close failed", "room", key, "user", uid, "err", err)
		}
	}()

	go s.pingLoop(r.Context(), c)
	s.chatReadLoop(r.Context(), c)
}

func (s *Server) chatReadLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(s.maxMsgBytes)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var in chatInbound
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}

		var attachment *string
		if att := strings.TrimSpace(in.Attachment); att != "" {
			attachment = &att
		}

		msg, err := s.chatSvc.Post(ctx, c.groupKey, c.userID, in.Message, attachment)
		if err != nil {
			// несохранённое не рассылается; об ошибке знает только отправитель
			s.reportToSender(c, err)
			continue
		}

		s.hub.Broadcast(c.groupKey, ChatMessage{
			Message:    msg.Content,
			Sender:     msg.SenderName,
			Attachment: msg.Attachment,
		})
	}
}

func (s *Server) reportToSender(c *wsConn, err error) {
	reason := "failed to send message"
	switch {
	case errors.Is(err, domain.ErrInvalidMessage):
		reason = "message is empty"
	case errors.Is(err, domain.ErrRoomNotFound):
		reason = "room not found"
	default:
		slog.Error("ws chat save failed", "room", c.groupKey, "user", c.userID, "err", err)
	}
	if sendErr := c.Send(ErrorNotice{Reason: reason}); sendErr != nil {
		_ = c.Close()
	}
}

func (s *Server) pingLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// Аутентификация как у остального API: токен валидирует внешний
// auth-контур, здесь он только обязан присутствовать.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (int64, bool) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("access_token")) == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return 0, false
	}
	uid, err := strconv.ParseInt(strings.TrimSpace(q.Get("user_id")), 10, 64)
	if err != nil || uid <= 0 {
		http.Error(w, "invalid user_id", http.StatusUnauthorized)
		return 0, false
	}
	return uid, true
}
