package watcher

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageTypeAuthStatus is the frame type the status page posts.
const MessageTypeAuthStatus = "AUTH_STATUS"

// DefaultTimeout bounds how long a check waits for a frame before settling
// to signed-out.
const DefaultTimeout = 5 * time.Second

// User mirrors the user payload of an auth-status frame.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// Status is the outcome of one auth-status check. The zero value is
// signed-out.
type Status struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

// Message is one frame received from the status page. Origin is the sender
// origin as reported by the transport; RequestID correlates the frame with
// the check that opened the channel.
type Message struct {
	Origin    string
	RequestID string
	Type      string
	Status    Status
}

// StatusWatcher resolves a single auth-status check as an explicit
// request/response exchange. A frame is applied only when its origin matches
// the expected origin exactly and it carries this check's request id; the
// first such frame settles the check, and anything delivered after that is
// dropped. A check with no matching frame settles to signed-out once the
// timeout elapses. Cleanup runs exactly once however the check ends, so
// cancelling an already settled check is a no-op.
type StatusWatcher struct {
	id         string
	origin     string
	timeout    time.Duration
	cleanup    func()
	messages   chan Message
	result     chan Status
	done       chan struct{}
	stop       chan struct{}
	stopOnce   sync.Once
	settleOnce sync.Once
}

// NewStatusWatcher creates a watcher that accepts frames from origin only.
// A non-positive timeout falls back to DefaultTimeout; cleanup may be nil.
func NewStatusWatcher(origin string, timeout time.Duration, cleanup func()) *StatusWatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cleanup == nil {
		cleanup = func() {}
	}
	return &StatusWatcher{
		id:       uuid.New().String(),
		origin:   origin,
		timeout:  timeout,
		cleanup:  cleanup,
		messages: make(chan Message, 4),
		result:   make(chan Status, 1),
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
}

// RequestID returns the correlation id the status page must echo for its
// frame to be applied.
func (w *StatusWatcher) RequestID() string {
	return w.id
}

// Start begins the watch loop
func (w *StatusWatcher) Start() {
	go w.run()
}

// Deliver hands a received frame to the watcher. Frames arriving after the
// check has settled are dropped.
func (w *StatusWatcher) Deliver(msg Message) {
	select {
	case w.messages <- msg:
	case <-w.done:
	}
}

// Result yields the settled status. It receives exactly one value per check.
func (w *StatusWatcher) Result() <-chan Status {
	return w.result
}

// Stop cancels the check. Safe to call any number of times, before or after
// settlement; a cancelled check settles to signed-out.
func (w *StatusWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

func (w *StatusWatcher) run() {
	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-w.messages:
			if !w.accepts(msg) {
				continue
			}
			w.settle(msg.Status)
			return
		case <-timer.C:
			zap.L().Debug("Auth status check timed out", zap.String("origin", w.origin))
			w.settle(Status{})
			return
		case <-w.stop:
			w.settle(Status{})
			return
		}
	}
}

// accepts requires an exact origin match, this check's request id, and the
// auth-status frame type. Anything else is never applied.
func (w *StatusWatcher) accepts(msg Message) bool {
	return msg.Origin == w.origin &&
		msg.RequestID == w.id &&
		msg.Type == MessageTypeAuthStatus
}

func (w *StatusWatcher) settle(status Status) {
	w.settleOnce.Do(func() {
		w.cleanup()
		w.result <- status
		close(w.done)
	})
}
