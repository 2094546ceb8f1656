package chat

import (
	"log/slog"
	"time"
)

// Registry is the single serialization point for all shared chat state. One
// goroutine runs the event loop, and it alone owns the nickname table, the
// main room, and every session's room pointer, so none of it needs locking.
type Registry struct {
	name   string
	events chan Event
	stopCh chan struct{}
	doneCh chan struct{}
	logger *slog.Logger

	// Run-goroutine state. Never touched from outside the loop.
	users map[string]*Session
	main  *chatRoom
	live  map[*Session]struct{}
}

func NewRegistry(name string, buffer int, logger *slog.Logger) *Registry {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		name:   name,
		events: make(chan Event, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
		users:  make(map[string]*Session),
		live:   make(map[*Session]struct{}),
	}
	r.main = newChatRoom(r)
	return r
}

// post delivers ev to the event loop, giving up once Stop has been called so
// reader goroutines never block on a loop that is no longer draining.
func (r *Registry) post(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.stopCh:
		return false
	}
}

// Stop signals the Run loop to exit.
func (r *Registry) Stop() {
	close(r.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (r *Registry) Wait() {
	<-r.doneCh
}

func (r *Registry) Run() {
	defer close(r.doneCh)
	defer r.closeAll()

	for {
		select {
		case ev := <-r.events:
			start := time.Now()
			eventType := ""

			switch ev.Type {
			case EventConnect:
				eventType = "connect"
				r.handleConnect(ev.Session)
			case EventLine:
				eventType = "line"
				r.handleLine(ev.Session, ev.Line)
			case EventDisconnect:
				eventType = "disconnect"
				r.handleDisconnect(ev.Session)
			}

			EventsTotal.WithLabelValues(eventType).Inc()
			EventProcessingDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) handleConnect(s *Session) {
	r.live[s] = struct{}{}
	ConnectedSessions.Set(float64(len(r.live)))
	s.enter(newLoginRoom(r))
}

func (r *Registry) handleLine(s *Session, line string) {
	if s.closed {
		// Lines queued behind a logout are dead; the session already left.
		return
	}
	if s.room.dispatch(s, line) == sessionEnd {
		r.finish(s, true)
	}
}

// handleDisconnect is the transport's close notification. It runs the same
// teardown as logout minus the farewell text, and a repeat notification for
// the same session is a no-op.
func (r *Registry) handleDisconnect(s *Session) {
	r.finish(s, false)
}

// finish drives a session through the terminal logout room exactly once and
// releases its resources. Closing Out stops the writer goroutine after it
// has flushed whatever the logout room queued.
func (r *Registry) finish(s *Session, farewell bool) {
	if s.closed {
		return
	}
	s.closed = true
	s.enter(newLogoutRoom(r, farewell))
	delete(r.live, s)
	ConnectedSessions.Set(float64(len(r.live)))
	close(s.Out)
}

// closeAll tears down every remaining session when the loop exits.
func (r *Registry) closeAll() {
	for s := range r.live {
		s.closed = true
		close(s.Out)
		if s.Conn != nil {
			_ = s.Conn.Close()
		}
	}
	r.live = make(map[*Session]struct{})
	ConnectedSessions.Set(0)
}

// checkName reports whether a nickname may be claimed right now.
func (r *Registry) checkName(name string) error {
	if name == "" {
		return ErrNicknameEmpty
	}
	if _, taken := r.users[name]; taken {
		return ErrNicknameTaken
	}
	return nil
}

// sendLine queues one line on the session's outbound queue. The send never
// blocks the event loop: when the queue is full the line is dropped and
// counted, which is the documented fate of a stalled reader.
func (r *Registry) sendLine(s *Session, line string) {
	select {
	case s.Out <- line:
	default:
		DroppedLines.Inc()
		r.logger.Warn("dropped outbound line", "name", s.name)
	}
}
