package obs

import "sync/atomic"

// Metrics collects lightweight counters for the realtime client.
type Metrics struct {
	framesReceived  uint64
	pongsReceived   uint64
	parseFailures   uint64
	notifications   uint64
	toastsShown     uint64
	toastsSuppress  uint64
	broadcasts      uint64
	broadcastDrops  uint64
	reconnects      uint64
	sendFailures    uint64
	forcedLogouts   uint64
	sessionsOpened  uint64
	sessionsClosed  uint64
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	FramesReceived   uint64
	PongsReceived    uint64
	ParseFailures    uint64
	Notifications    uint64
	ToastsShown      uint64
	ToastsSuppressed uint64
	Broadcasts       uint64
	BroadcastDrops   uint64
	Reconnects       uint64
	SendFailures     uint64
	ForcedLogouts    uint64
	SessionsOpened   uint64
	SessionsClosed   uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) ObserveFrame() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.framesReceived, 1)
}

func (m *Metrics) ObservePong() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.pongsReceived, 1)
}

func (m *Metrics) ObserveParseFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.parseFailures, 1)
}

func (m *Metrics) ObserveNotification() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.notifications, 1)
}

func (m *Metrics) ObserveToastShown() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.toastsShown, 1)
}

func (m *Metrics) ObserveToastSuppressed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.toastsSuppress, 1)
}

func (m *Metrics) ObserveBroadcast() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.broadcasts, 1)
}

func (m *Metrics) ObserveBroadcastDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.broadcastDrops, 1)
}

func (m *Metrics) ObserveReconnect() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.reconnects, 1)
}

func (m *Metrics) ObserveSendFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sendFailures, 1)
}

func (m *Metrics) ObserveForcedLogout() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.forcedLogouts, 1)
}

func (m *Metrics) ObserveSessionOpened() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sessionsOpened, 1)
}

func (m *Metrics) ObserveSessionClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sessionsClosed, 1)
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		FramesReceived:   atomic.LoadUint64(&m.framesReceived),
		PongsReceived:    atomic.LoadUint64(&m.pongsReceived),
		ParseFailures:    atomic.LoadUint64(&m.parseFailures),
		Notifications:    atomic.LoadUint64(&m.notifications),
		ToastsShown:      atomic.LoadUint64(&m.toastsShown),
		ToastsSuppressed: atomic.LoadUint64(&m.toastsSuppress),
		Broadcasts:       atomic.LoadUint64(&m.broadcasts),
		BroadcastDrops:   atomic.LoadUint64(&m.broadcastDrops),
		Reconnects:       atomic.LoadUint64(&m.reconnects),
		SendFailures:     atomic.LoadUint64(&m.sendFailures),
		ForcedLogouts:    atomic.LoadUint64(&m.forcedLogouts),
		SessionsOpened:   atomic.LoadUint64(&m.sessionsOpened),
		SessionsClosed:   atomic.LoadUint64(&m.sessionsClosed),
	}
}
