package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	m := NewMetrics()
	m.ObserveFrame()
	m.ObserveFrame()
	m.ObservePong()
	m.ObserveNotification()
	m.ObserveToastShown()
	m.ObserveReconnect()

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.FramesReceived)
	assert.Equal(t, uint64(1), snap.PongsReceived)
	assert.Equal(t, uint64(1), snap.Notifications)
	assert.Equal(t, uint64(1), snap.ToastsShown)
	assert.Equal(t, uint64(1), snap.Reconnects)
	assert.Zero(t, snap.ParseFailures)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFrame()
	m.ObservePong()
	m.ObserveParseFailure()
	m.ObserveNotification()
	m.ObserveToastShown()
	m.ObserveToastSuppressed()
	m.ObserveBroadcast()
	m.ObserveBroadcastDrop()
	m.ObserveReconnect()
	m.ObserveSendFailure()
	m.ObserveForcedLogout()
	m.ObserveSessionOpened()
	m.ObserveSessionClosed()
	assert.Zero(t, m.Snapshot())
}
