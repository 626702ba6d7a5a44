package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
)

// Conn is one established transport connection.
type Conn interface {
	// ReadMessage blocks until the next text/binary frame or a transport error.
	ReadMessage() ([]byte, error)
	// WriteMessage sends a text frame.
	WriteMessage(payload []byte) error
	// Close tears the transport down. Safe to call more than once.
	Close() error
}

// Dialer establishes transport connections.
type Dialer interface {
	Dial(ctx context.Context, target string) (Conn, error)
}

const defaultHandshakeTimeout = 10 * time.Second

type gorillaDialer struct {
	dialer *websocket.Dialer
}

// NewDialer returns the production gorilla/websocket-backed dialer.
func NewDialer() Dialer {
	return &gorillaDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
	}
}

func (d *gorillaDialer) Dial(ctx context.Context, target string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s, status %d", target, resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "dial %s", target)
	}
	return &gorillaConn{conn: conn}, nil
}

type gorillaConn struct {
	conn *websocket.Conn

	// gorilla allows one concurrent writer; heartbeat and Send share this.
	writeMu sync.Mutex
}

func (c *gorillaConn) ReadMessage() ([]byte, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

func (c *gorillaConn) WriteMessage(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *gorillaConn) Close() error {
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}
