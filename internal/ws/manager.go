package ws

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"main/internal/obs"

	"github.com/yanun0323/logs"
)

const (
	// DefaultBaseURL stands in for the deployment origin when none is configured.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultPath is the realtime endpoint path.
	DefaultPath = "/ws"

	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultReconnectInterval    = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
)

/*
func (m *Manager) Connect()
func (m *Manager) Close()
func (m *Manager) Send(payload any) bool
func (m *Manager) State() State
func (m *Manager) IsConnected() bool
*/

// Option defines the manager runtime configuration.
type Option struct {
	// BaseURL is the http(s) origin of the platform; the scheme is rewritten
	// to ws(s). Optional; default DefaultBaseURL.
	BaseURL string
	// Path is the realtime endpoint path. Optional; default "/ws".
	Path string
	// Token returns the current session credential, or "" when logged out. Required.
	Token func() string
	// OnFrame receives every inbound frame except the heartbeat acknowledgment. Optional.
	OnFrame func(data []byte)
	// HeartbeatInterval is the keep-alive period while open. Optional; default 30s.
	HeartbeatInterval time.Duration
	// ReconnectInterval is the linear backoff base: attempt k waits k×interval.
	// Optional; default 3s.
	ReconnectInterval time.Duration
	// MaxReconnectAttempts caps automatic recovery. Optional; default 5.
	MaxReconnectAttempts int
	// Metrics receives connection counters. Optional.
	Metrics *obs.Metrics

	// dialer is internal and wired by New; tests override it.
	dialer Dialer
}

func (opt *Option) init(dialer Dialer) {
	opt.dialer = dialer
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultBaseURL
	}
	if opt.Path == "" {
		opt.Path = DefaultPath
	}
	if opt.HeartbeatInterval <= 0 {
		opt.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if opt.ReconnectInterval <= 0 {
		opt.ReconnectInterval = DefaultReconnectInterval
	}
	if opt.MaxReconnectAttempts <= 0 {
		opt.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
}

// Manager owns the lifecycle of the single persistent connection:
// connect, heartbeat, failure detection, linear-backoff reconnect, manual close.
type Manager struct {
	opt Option

	mu       sync.Mutex
	state    State
	conn     Conn
	gen      uint64
	attempts int
	manual   bool
	hbStop   chan struct{}

	// after schedules reconnect timers; tests swap it for a synchronous hook.
	after func(d time.Duration, fn func()) *time.Timer
}

// NewManager builds a manager around the production dialer.
func NewManager(option ...Option) *Manager {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	dialer := opt.dialer
	if dialer == nil {
		dialer = NewDialer()
	}
	opt.init(dialer)

	return &Manager{
		opt:   opt,
		state: StateIdle,
		after: time.AfterFunc,
	}
}

// Connect establishes the connection if the session credential is present.
// Calling it while already connecting or open is a no-op, so at most one
// live transport ever exists.
func (m *Manager) Connect() {
	if m == nil || m.opt.Token == nil {
		return
	}
	token := m.opt.Token()
	if token == "" {
		logs.Warn("websocket: not logged in, skip connect")
		return
	}

	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateOpen {
		m.mu.Unlock()
		logs.Warn("websocket: already connected or connecting, skip")
		return
	}
	m.state = StateConnecting
	m.manual = false
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	go m.dial(gen, token)
}

func (m *Manager) dial(gen uint64, token string) {
	target := buildTarget(m.opt.BaseURL, m.opt.Path, token)
	logs.Infof("websocket: connecting to %s", m.opt.BaseURL+m.opt.Path)

	conn, err := m.opt.dialer.Dial(context.Background(), target)

	m.mu.Lock()
	if m.gen != gen || m.manual {
		// A manual close or newer connect superseded this dial.
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.state = StateClosed
		m.mu.Unlock()
		logs.Errorf("websocket: connect failed, err: %+v", err)
		m.scheduleReconnect()
		return
	}

	m.conn = conn
	m.state = StateOpen
	m.attempts = 0
	hbStop := make(chan struct{})
	m.hbStop = hbStop
	m.mu.Unlock()

	logs.Info("websocket: connected")
	m.opt.Metrics.ObserveSessionOpened()

	go m.heartbeat(conn, hbStop)
	go m.readLoop(gen, conn)
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}
		if string(data) == pongFrame {
			logs.Debug("websocket: heartbeat acknowledged")
			m.opt.Metrics.ObservePong()
			continue
		}
		m.opt.Metrics.ObserveFrame()
		if m.opt.OnFrame != nil {
			m.opt.OnFrame(data)
		}
	}
}

func (m *Manager) handleClose(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen {
		// Stale read loop; a newer connection owns the state now.
		m.mu.Unlock()
		return
	}
	m.stopHeartbeatLocked()
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.state = StateClosed
	manual := m.manual
	m.mu.Unlock()

	logs.Infof("websocket: connection closed, err: %+v", err)
	m.opt.Metrics.ObserveSessionClosed()

	if !manual {
		m.scheduleReconnect()
	}
}

// scheduleReconnect arms the next linear-backoff attempt: attempt k waits
// k×ReconnectInterval. Gives up permanently after MaxReconnectAttempts;
// only an external Connect resumes from there.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.attempts >= m.opt.MaxReconnectAttempts {
		m.mu.Unlock()
		logs.Warnf("websocket: gave up after %d reconnect attempts", m.opt.MaxReconnectAttempts)
		return
	}
	m.attempts++
	attempt := m.attempts
	m.mu.Unlock()

	delay := time.Duration(attempt) * m.opt.ReconnectInterval
	logs.Infof("websocket: reconnecting in %s (%d/%d)", delay, attempt, m.opt.MaxReconnectAttempts)
	m.opt.Metrics.ObserveReconnect()

	m.after(delay, func() {
		// The operator may have logged out while this timer was pending.
		if m.opt.Token() == "" {
			return
		}
		m.mu.Lock()
		manual := m.manual
		m.mu.Unlock()
		if manual {
			return
		}
		m.Connect()
	})
}

func (m *Manager) heartbeat(conn Conn, stop chan struct{}) {
	ticker := time.NewTicker(m.opt.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !m.IsConnected() {
				continue
			}
			if err := conn.WriteMessage([]byte(pingFrame)); err != nil {
				logs.Warnf("websocket: heartbeat send failed, err: %+v", err)
				continue
			}
			logs.Debug("websocket: heartbeat sent")
		}
	}
}

func (m *Manager) stopHeartbeatLocked() {
	if m.hbStop != nil {
		close(m.hbStop)
		m.hbStop = nil
	}
}

// Close tears the connection down on operator request and suppresses
// auto-reconnect until the next Connect.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.manual = true
	m.attempts = 0
	m.gen++
	m.stopHeartbeatLocked()
	conn := m.conn
	m.conn = nil
	m.state = StateClosed
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	logs.Info("websocket: closed manually")
}

// Send writes a payload when the connection is open; it reports failure
// instead of queueing. Strings and byte slices pass through verbatim,
// anything else is JSON-encoded.
func (m *Manager) Send(payload any) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	conn := m.conn
	open := m.state == StateOpen
	m.mu.Unlock()

	if !open || conn == nil {
		logs.Warn("websocket: not open, message dropped")
		m.opt.Metrics.ObserveSendFailure()
		return false
	}

	var data []byte
	switch p := payload.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			logs.Errorf("websocket: encode payload, err: %+v", err)
			m.opt.Metrics.ObserveSendFailure()
			return false
		}
		data = encoded
	}

	if err := conn.WriteMessage(data); err != nil {
		logs.Warnf("websocket: send failed, err: %+v", err)
		m.opt.Metrics.ObserveSendFailure()
		return false
	}
	return true
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	if m == nil {
		return StateIdle
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the transport is open.
func (m *Manager) IsConnected() bool {
	return m.State() == StateOpen
}

// buildTarget rewrites the configured http(s) origin to its ws(s)
// equivalent and appends the credential as a query parameter.
func buildTarget(base, path, token string) string {
	target := base
	switch {
	case strings.HasPrefix(target, "https://"):
		target = "wss://" + strings.TrimPrefix(target, "https://")
	case strings.HasPrefix(target, "http://"):
		target = "ws://" + strings.TrimPrefix(target, "http://")
	}
	return target + path + "?token=" + url.QueryEscape(token)
}
