package ws

import (
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn     *websocket.Conn
	groupKey string
	userID   int64
	sendMu   chan struct{}
	closed   chan struct{}
}

func newWsConn(c *websocket.Conn, groupKey string, userID int64) *wsConn {
	return &wsConn{
		conn:     c,
		groupKey: groupKey,
		userID:   userID,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// Send сериализует записи в сокет; gorilla не допускает
// конкурентных writer-ов.
func (c *wsConn) Send(ev Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(encodeEvent(ev))
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() string   { return strconv.FormatInt(c.userID, 10) }
func (c *wsConn) GroupKey() string { return c.groupKey }
