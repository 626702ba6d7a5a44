package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"main/internal/bus"
	"main/internal/obs"
	"main/pkg/exception"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	// DefaultLogCap bounds the notification log to the newest entries.
	DefaultLogCap = 100
	// DefaultToastDuration is how long a toast stays up unless superseded.
	DefaultToastDuration = 5 * time.Second

	pongFrame = "pong"

	defaultForcedLogoutReason = "Your session was terminated by the server. Please log in again."
	forcedLogoutPromptWait    = 30 * time.Second
)

/*
func (d *Dispatcher) HandleFrame(data []byte)
func (d *Dispatcher) Handle(msg Message)
*/

// SessionController clears local identity/credential state on forced logout.
type SessionController interface {
	Logout()
}

// Prompter surfaces a blocking acknowledgment to the user.
type Prompter interface {
	Alert(ctx context.Context, message string) error
}

// Navigator redirects the user to the login entry point.
type Navigator interface {
	GotoLogin()
}

// Option defines the dispatcher dependencies and tuning.
type Option struct {
	// LogCap bounds the notification log. Optional; default 100.
	LogCap int
	// ToastDuration is the toast auto-dismiss delay. Optional; default 5s.
	ToastDuration time.Duration
	// Session handles forced-logout credential teardown. Optional.
	Session SessionController
	// Prompter shows the forced-logout acknowledgment. Optional.
	Prompter Prompter
	// Navigator redirects to login after forced logout. Optional.
	Navigator Navigator
	// Bus receives presence and moderation fan-out. Optional.
	Bus *bus.Broadcaster
	// Metrics receives dispatch counters. Optional.
	Metrics *obs.Metrics
}

// Dispatcher classifies inbound messages, maintains the bounded notification
// log and toast state, and fans specialized events out to the broadcast bus.
type Dispatcher struct {
	opt Option

	mu             sync.Mutex
	log            []*Notification
	latest         *Notification
	toast          *Notification
	chatPartner    int64
	chatPartnerSet bool

	// now and after are test seams for timestamps and the toast timer.
	now   func() time.Time
	after func(d time.Duration, fn func()) *time.Timer
}

// NewDispatcher builds a dispatcher with its collaborators injected up front,
// so the forced-logout path never has to resolve them lazily.
func NewDispatcher(option ...Option) *Dispatcher {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	if opt.LogCap <= 0 {
		opt.LogCap = DefaultLogCap
	}
	if opt.ToastDuration <= 0 {
		opt.ToastDuration = DefaultToastDuration
	}
	return &Dispatcher{
		opt:   opt,
		now:   time.Now,
		after: time.AfterFunc,
	}
}

// HandleFrame ingests one raw frame from the connection manager.
// A malformed frame is logged and dropped; the connection stays open.
func (d *Dispatcher) HandleFrame(data []byte) {
	if d == nil {
		return
	}
	// The connection layer already swallows and counts the heartbeat
	// acknowledgment; this guard only covers direct callers.
	if string(data) == pongFrame {
		return
	}

	msg, err := parseFrame(data)
	if err != nil {
		logs.Errorf("notify: drop frame, err: %+v", err)
		d.opt.Metrics.ObserveParseFailure()
		return
	}
	d.Handle(msg)
}

// parseFrame decodes one raw frame into the push envelope.
func parseFrame(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, errors.Wrapf(exception.ErrMalformedFrame, "%+v", err)
	}
	return msg, nil
}

// Handle routes one decoded message. Classification order is fixed:
// connected greeting, forced logout, presence, moderation fan-out,
// then the generic log/toast path (also the fallback for unknown kinds).
func (d *Dispatcher) Handle(msg Message) {
	if d == nil {
		return
	}
	switch msg.Type {
	case KindConnected:
		logs.Info("notify: connected to server")
		return

	case KindForcedLogout:
		go d.forceLogout(msg.Content)
		return

	case KindUserOnline:
		d.publish(bus.TopicUserOnline, msg)
		return

	case KindUserOffline:
		d.publish(bus.TopicUserOffline, msg)
		return

	case KindNewRecipePending:
		d.publish(bus.TopicNewRecipePending, msg)

	case KindAdminNewComment:
		d.publish(bus.TopicAdminNewComment, msg)

	case KindRecipeWithdrawn:
		d.publish(bus.TopicRecipeWithdrawn, msg)
	}

	d.record(msg)
}

func (d *Dispatcher) publish(topic bus.Topic, msg Message) {
	if d.opt.Bus == nil {
		return
	}
	d.opt.Bus.Publish(topic, msg)
}

// record wraps a message into a notification, prepends it to the bounded
// log, and evaluates the toast suppression rule.
func (d *Dispatcher) record(msg Message) {
	n := &Notification{
		ID:         uuid.NewString(),
		Message:    msg,
		ReceivedAt: d.now(),
	}

	d.mu.Lock()
	d.log = append([]*Notification{n}, d.log...)
	if len(d.log) > d.opt.LogCap {
		d.log = d.log[:d.opt.LogCap]
	}
	d.latest = n
	suppress := msg.Type == KindNewMessage &&
		d.chatPartnerSet &&
		msg.SenderID == d.chatPartner
	d.mu.Unlock()

	d.opt.Metrics.ObserveNotification()

	if suppress {
		d.opt.Metrics.ObserveToastSuppressed()
		return
	}
	d.showToast(n)
}

func (d *Dispatcher) showToast(n *Notification) {
	d.mu.Lock()
	d.toast = n
	d.mu.Unlock()

	d.opt.Metrics.ObserveToastShown()

	d.after(d.opt.ToastDuration, func() {
		d.mu.Lock()
		// Only dismiss if a newer toast has not replaced this one.
		if d.toast != nil && d.toast.ID == n.ID {
			d.toast = nil
		}
		d.mu.Unlock()
	})
}

// forceLogout tears the session down: credential first, then the blocking
// acknowledgment, then navigation. Each step tolerates a missing
// collaborator so local state is always cleared.
func (d *Dispatcher) forceLogout(reason string) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("notify: forced logout panicked: %+v", r)
		}
	}()

	if reason == "" {
		reason = defaultForcedLogoutReason
	}
	logs.Warnf("notify: forced logout, reason: %s", reason)
	d.opt.Metrics.ObserveForcedLogout()

	if d.opt.Session != nil {
		d.opt.Session.Logout()
	}

	if d.opt.Prompter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), forcedLogoutPromptWait)
		if err := d.opt.Prompter.Alert(ctx, reason); err != nil {
			logs.Warnf("notify: forced logout prompt, err: %+v", err)
		}
		cancel()
	}

	if d.opt.Navigator != nil {
		d.opt.Navigator.GotoLogin()
	}
}
