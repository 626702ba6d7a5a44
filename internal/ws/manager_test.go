package ws

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(payload []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	c.mu.Lock()
	c.writes = append(c.writes, append([]byte(nil), payload...))
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	fail    bool
	dialed  chan string
	targets []string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{dialed: make(chan string, 32)}
}

func (d *fakeDialer) Dial(_ context.Context, target string) (Conn, error) {
	d.mu.Lock()
	d.targets = append(d.targets, target)
	fail := d.fail
	d.mu.Unlock()
	d.dialed <- target

	if fail {
		return nil, io.ErrUnexpectedEOF
	}
	conn := newFakeConn()
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.targets)
}

func (d *fakeDialer) lastConn() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func newTestManager(t *testing.T, dialer Dialer, opt Option) *Manager {
	t.Helper()
	opt.dialer = dialer
	if opt.Token == nil {
		opt.Token = func() string { return "token-1" }
	}
	return NewManager(opt)
}

func TestConnectIdempotent(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{})

	m.Connect()
	m.Connect()
	m.Connect()

	waitFor(t, func() bool { return m.State() == StateOpen })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount(), "repeated connect must not dial twice")

	// Still a no-op while open.
	m.Connect()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount())
}

func TestConnectWithoutCredential(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{Token: func() string { return "" }})

	m.Connect()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, dialer.dialCount())
	assert.Equal(t, StateIdle, m.State())
}

func TestTargetURL(t *testing.T) {
	testCases := []struct {
		desc     string
		base     string
		expected string
	}{
		{"http rewritten", "http://example.com", "ws://example.com/ws?token=t1"},
		{"https rewritten", "https://example.com", "wss://example.com/ws?token=t1"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := buildTarget(tc.base, "/ws", "t1")
			if got != tc.expected {
				t.Fatalf("target mismatch! should be %s but got %s", tc.expected, got)
			}
		})
	}
}

func TestPongSwallowedBeforeDispatch(t *testing.T) {
	dialer := newFakeDialer()
	var mu sync.Mutex
	var frames [][]byte
	m := newTestManager(t, dialer, Option{
		OnFrame: func(data []byte) {
			mu.Lock()
			frames = append(frames, data)
			mu.Unlock()
		},
	})

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	conn := dialer.lastConn()
	conn.frames <- []byte("pong")
	conn.frames <- []byte(`{"type":"NEW_FOLLOWER"}`)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	assert.JSONEq(t, `{"type":"NEW_FOLLOWER"}`, string(frames[0]))
}

func TestHeartbeat(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{HeartbeatInterval: 10 * time.Millisecond})

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	conn := dialer.lastConn()
	waitFor(t, func() bool {
		for _, w := range conn.written() {
			if string(w) == "ping" {
				return true
			}
		}
		return false
	})

	// Heartbeat stops with the connection.
	m.Close()
	time.Sleep(30 * time.Millisecond)
	before := len(conn.written())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, len(conn.written()))
}

func TestSendFailsFastWhenNotOpen(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{})

	require.False(t, m.Send("hello"), "send before connect must fail")

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	require.True(t, m.Send("hello"))
	require.True(t, m.Send(map[string]any{"kind": "probe"}))

	conn := dialer.lastConn()
	writes := conn.written()
	require.Len(t, writes, 2)
	assert.Equal(t, "hello", string(writes[0]))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(writes[1], &decoded))
	assert.Equal(t, "probe", decoded["kind"])

	m.Close()
	assert.False(t, m.Send("after close"))
}

func TestReconnectLinearBackoff(t *testing.T) {
	dialer := newFakeDialer()
	dialer.fail = true

	base := 10 * time.Millisecond
	m := newTestManager(t, dialer, Option{
		ReconnectInterval:    base,
		MaxReconnectAttempts: 5,
	})

	var mu sync.Mutex
	var delays []time.Duration
	m.after = func(d time.Duration, fn func()) *time.Timer {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		go fn()
		return time.NewTimer(time.Hour)
	}

	m.Connect()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delays) == 5
	})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delays, 5, "a sixth attempt must never be scheduled")
	for i, d := range delays {
		assert.Equalf(t, time.Duration(i+1)*base, d, "attempt %d delay", i+1)
	}
	// Initial dial + 5 retries.
	assert.Equal(t, 6, dialer.dialCount())
}

func TestReconnectCounterResetsOnOpen(t *testing.T) {
	dialer := newFakeDialer()
	dialer.fail = true

	m := newTestManager(t, dialer, Option{ReconnectInterval: time.Millisecond})

	var mu sync.Mutex
	var delays []time.Duration
	m.after = func(d time.Duration, fn func()) *time.Timer {
		mu.Lock()
		delays = append(delays, d)
		count := len(delays)
		mu.Unlock()
		if count == 2 {
			// Let the third dial succeed.
			dialer.mu.Lock()
			dialer.fail = false
			dialer.mu.Unlock()
		}
		go fn()
		return time.NewTimer(time.Hour)
	}

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	// A fresh failure starts over at the base delay.
	dialer.lastConn().Close()
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delays) >= 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, time.Millisecond, delays[2], "counter must reset after a successful open")
}

func TestManualCloseSuppressesReconnect(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{})

	var mu sync.Mutex
	scheduled := 0
	m.after = func(d time.Duration, fn func()) *time.Timer {
		mu.Lock()
		scheduled++
		mu.Unlock()
		return time.NewTimer(time.Hour)
	}

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	m.Close()
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, scheduled)
	assert.Equal(t, StateClosed, m.State())
	assert.Equal(t, 1, dialer.dialCount())
}

func TestPendingReconnectAbandonedAfterLogout(t *testing.T) {
	dialer := newFakeDialer()

	var tokenMu sync.Mutex
	token := "token-1"
	m := newTestManager(t, dialer, Option{
		Token: func() string {
			tokenMu.Lock()
			defer tokenMu.Unlock()
			return token
		},
	})

	fired := make(chan struct{}, 8)
	m.after = func(d time.Duration, fn func()) *time.Timer {
		go func() {
			fn()
			fired <- struct{}{}
		}()
		return time.NewTimer(time.Hour)
	}

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })

	// Log out, then drop the connection: the pending retry must give up.
	tokenMu.Lock()
	token = ""
	tokenMu.Unlock()
	dialer.lastConn().Close()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect timer never fired")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, dialer.dialCount(), "no dial after logout")
}

func TestConnectAfterManualClose(t *testing.T) {
	dialer := newFakeDialer()
	m := newTestManager(t, dialer, Option{})

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })
	m.Close()

	m.Connect()
	waitFor(t, func() bool { return m.State() == StateOpen })
	assert.Equal(t, 2, dialer.dialCount())
}
