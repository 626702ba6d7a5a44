package prompt

import (
	"context"
	"sync"
	"time"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	// DefaultMountWait bounds how long Alert waits for a rich prompter to
	// appear before falling back.
	DefaultMountWait = time.Second
	// DefaultPollInterval is the mount re-check period.
	DefaultPollInterval = 50 * time.Millisecond
)

// Prompter surfaces a message and blocks until the user acknowledges it
// or the context expires.
type Prompter interface {
	Alert(ctx context.Context, message string) error
}

// Registry resolves alerts against an optionally mounted rich prompter.
// A frontend registers itself with Mount once it is ready; until then,
// Alert polls for up to MountWait, then delivers through the fallback and
// reports ErrPrompterTimeout so the caller knows nobody acknowledged
// interactively.
type Registry struct {
	mu      sync.RWMutex
	mounted Prompter

	fallback     Prompter
	mountWait    time.Duration
	pollInterval time.Duration
}

// Option defines registry tuning.
type Option struct {
	// Fallback handles alerts when nothing mounts in time. Optional; default logs and acknowledges.
	Fallback Prompter
	// MountWait bounds the wait for a mounted prompter. Optional; default 1s.
	MountWait time.Duration
	// PollInterval is the mount re-check period. Optional; default 50ms.
	PollInterval time.Duration
}

// NewRegistry builds an empty registry.
func NewRegistry(option ...Option) *Registry {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	if opt.Fallback == nil {
		opt.Fallback = logPrompter{}
	}
	if opt.MountWait <= 0 {
		opt.MountWait = DefaultMountWait
	}
	if opt.PollInterval <= 0 {
		opt.PollInterval = DefaultPollInterval
	}
	return &Registry{
		fallback:     opt.Fallback,
		mountWait:    opt.MountWait,
		pollInterval: opt.PollInterval,
	}
}

// Mount registers the rich prompter.
func (r *Registry) Mount(p Prompter) {
	r.mu.Lock()
	r.mounted = p
	r.mu.Unlock()
}

// Unmount removes the rich prompter.
func (r *Registry) Unmount() {
	r.mu.Lock()
	r.mounted = nil
	r.mu.Unlock()
}

func (r *Registry) current() Prompter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mounted
}

// Alert delivers the message through the mounted prompter, waiting a bounded
// time for one to mount. When the window lapses the message still goes out
// via the fallback, and the returned ErrPrompterTimeout records that no
// interactive acknowledgment happened.
func (r *Registry) Alert(ctx context.Context, message string) error {
	if p := r.current(); p != nil {
		return p.Alert(ctx, message)
	}

	deadline := time.NewTimer(r.mountWait)
	defer deadline.Stop()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			logs.Warn("prompt: no prompt component mounted, using fallback")
			if err := r.fallback.Alert(ctx, message); err != nil {
				return err
			}
			return errors.Wrap(exception.ErrPrompterTimeout, "delivered via fallback")
		case <-ticker.C:
			if p := r.current(); p != nil {
				return p.Alert(ctx, message)
			}
		}
	}
}

// logPrompter acknowledges immediately after logging the message.
type logPrompter struct{}

func (logPrompter) Alert(_ context.Context, message string) error {
	logs.Warnf("prompt: %s", message)
	return nil
}
