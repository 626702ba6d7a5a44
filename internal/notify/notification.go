package notify

import "time"

// Notification is a session-lifetime record derived from a loggable message.
type Notification struct {
	ID string
	Message
	Read       bool
	ReceivedAt time.Time
}

// Notifications returns a copy of the log, newest first.
func (d *Dispatcher) Notifications() []*Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Notification(nil), d.log...)
}

// UnreadCount is derived on demand from the unread flags.
func (d *Dispatcher) UnreadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, n := range d.log {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags a single notification as read.
func (d *Dispatcher) MarkRead(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.log {
		if n.ID == id {
			n.Read = true
			return
		}
	}
}

// MarkAllRead flags every notification as read.
func (d *Dispatcher) MarkAllRead() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.log {
		n.Read = true
	}
}

// Remove deletes a single notification from the log.
func (d *Dispatcher) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, n := range d.log {
		if n.ID == id {
			d.log = append(d.log[:i], d.log[i+1:]...)
			return
		}
	}
}

// ClearAll empties the log.
func (d *Dispatcher) ClearAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = nil
}

// ByKind returns the notifications of one kind, newest first.
func (d *Dispatcher) ByKind(kind Kind) []*Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Notification
	for _, n := range d.log {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// Latest returns the most recently logged notification, toasted or not.
func (d *Dispatcher) Latest() *Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Toast returns the currently displayed toast, if any.
func (d *Dispatcher) Toast() *Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.toast
}

// ClearToast dismisses the current toast immediately.
func (d *Dispatcher) ClearToast() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toast = nil
}

// SetChatPartner marks the conversation currently open in the UI; incoming
// chat messages from this sender are logged without a toast.
func (d *Dispatcher) SetChatPartner(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chatPartner = userID
	d.chatPartnerSet = true
}

// ClearChatPartner marks that no conversation is open.
func (d *Dispatcher) ClearChatPartner() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chatPartner = 0
	d.chatPartnerSet = false
}
