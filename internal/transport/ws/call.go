package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Зарезервированный ключ группы решений по звонкам. Ключи комнат чата
// всегда вида "<digits>_<digits>", коллизия исключена.
const callGroupKey = "call"

// Входящее решение: {"decision": "accept"|"reject", "call_id": "..."}.
// call_id опционален и передаётся слушателям как есть.
type callInbound struct {
	Decision string `json:"decision"`
	CallID   string `json:"call_id"`
}

// WS endpoint: GET /ws/call?access_token=...&user_id=...
// Одна общая группа: управляющая сторона шлёт accept/reject, все
// подключённые слушатели получают accepted/rejected.
func (s *Server) HandleCall(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, callGroupKey, uid)
	s.hub.Add(c)
	defer func() {
		s.hub.Remove(c)
		_ = c.Close()
	}()

	go s.pingLoop(r.Context(), c)

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
		var in callInbound
		if err := json.Unmarshal(data, &in); err != nil {
			continue
		}

		switch in.Decision {
		case "accept":
			s.hub.Broadcast(callGroupKey, CallAccepted{CallID: in.CallID})
		case "reject":
			s.hub.Broadcast(callGroupKey, CallRejected{CallID: in.CallID})
		default:
			// неизвестные решения игнорируются
		}
	}
}
