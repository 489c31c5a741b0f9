package services

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	EventPostCreated = "created"
	EventPostUpdated = "updated"
	EventPostDeleted = "deleted"

	subjectPrefix = "posts."
)

// Publisher delivers an encoded event to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type PostEvent struct {
	Type   string    `json:"type"`
	PostID string    `json:"postId"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// EventDispatcher publishes post events from a background worker so that a
// slow or absent broker never delays a request.
type EventDispatcher struct {
	pub    Publisher
	queue  chan PostEvent
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

func NewEventDispatcher(pub Publisher, size int) *EventDispatcher {
	if size <= 0 {
		size = 1000
	}
	d := &EventDispatcher{
		pub:   pub,
		queue: make(chan PostEvent, size),
		done:  make(chan struct{}),
	}
	go d.worker()
	return d
}

// Schedule enqueues without blocking; a full queue drops the event.
func (d *EventDispatcher) Schedule(e PostEvent) {
	if d == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- e:
	default:
		zap.L().Warn("event queue full, dropping event",
			zap.String("type", e.Type), zap.String("post_id", e.PostID))
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *EventDispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *EventDispatcher) worker() {
	defer close(d.done)
	for e := range d.queue {
		d.publish(e)
	}
}

func (d *EventDispatcher) publish(e PostEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("event encode failed", zap.Error(err))
		return
	}
	if err := d.pub.Publish(subjectPrefix+e.Type, data); err != nil {
		zap.L().Warn("event publish failed",
			zap.String("type", e.Type), zap.String("post_id", e.PostID), zap.Error(err))
	}
}
