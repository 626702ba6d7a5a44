package bus

import (
	"sync"

	"main/internal/obs"
)

// Topic names a broadcast channel any interested listener may subscribe to.
type Topic string

const (
	TopicUserOnline       Topic = "user-online"
	TopicUserOffline      Topic = "user-offline"
	TopicNewRecipePending Topic = "new-recipe-pending"
	TopicAdminNewComment  Topic = "admin-new-comment"
	TopicRecipeWithdrawn  Topic = "recipe-withdrawn"
)

const defaultSubscriberBuffer = 16

// Event is the unit delivered to subscribers.
type Event struct {
	Topic   Topic
	Payload any
}

type subscriber struct {
	ch chan Event
}

// Broadcaster fans events out to per-topic subscribers.
// Publish never blocks; a subscriber that cannot keep up loses events.
type Broadcaster struct {
	mu      sync.Mutex
	subs    map[Topic][]*subscriber
	bufSize int
	metrics *obs.Metrics
}

// Option defines broadcaster configuration.
type Option struct {
	// SubscriberBuffer is the per-subscriber channel capacity. Optional; default 16.
	SubscriberBuffer int
	// Metrics receives fan-out counters. Optional.
	Metrics *obs.Metrics
}

// NewBroadcaster allocates an empty broadcaster.
func NewBroadcaster(option ...Option) *Broadcaster {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	if opt.SubscriberBuffer <= 0 {
		opt.SubscriberBuffer = defaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:    make(map[Topic][]*subscriber),
		bufSize: opt.SubscriberBuffer,
		metrics: opt.Metrics,
	}
}

// Subscribe registers a listener for a topic.
// The returned cancel func removes the subscription and closes the channel.
func (b *Broadcaster) Subscribe(topic Topic) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, b.bufSize)}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			list := b.subs[topic]
			for i, s := range list {
				if s == sub {
					list[i] = list[len(list)-1]
					b.subs[topic] = list[:len(list)-1]
					break
				}
			}
			// Closed under the lock so Publish never writes to a closed channel.
			close(sub.ch)
			b.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish delivers an event to every current subscriber of the topic.
// Delivery is non-blocking; slow subscribers lose events.
func (b *Broadcaster) Publish(topic Topic, payload any) {
	b.metrics.ObserveBroadcast()

	e := Event{Topic: topic, Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- e:
		default:
			b.metrics.ObserveBroadcastDrop()
		}
	}
}

// SubscriberCount reports the current number of subscribers for a topic.
func (b *Broadcaster) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
