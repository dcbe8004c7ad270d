package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-client/internal/view"
)

// ControllerFactory builds the view controller of a new browser session.
type ControllerFactory func() (*view.Controller, error)

// Session is one browser's view of the game.
type Session struct {
	ID         string
	Controller *view.Controller

	mu       sync.Mutex
	conns    map[*wsConn]struct{}
	lastSeen time.Time
}

func (that *Session) subscribe(conn *wsConn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[conn] = struct{}{}
}

func (that *Session) unsubscribe(conn *wsConn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, conn)
}

func (that *Session) subscribers() []*wsConn {
	that.mu.Lock()
	defer that.mu.Unlock()

	conns := make([]*wsConn, 0, len(that.conns))
	for conn := range that.conns {
		conns = append(conns, conn)
	}

	return conns
}

func (that *Session) touch(now time.Time) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.lastSeen = now
}

func (that *Session) idleSince(now time.Time) time.Duration {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.conns) > 0 {
		return 0
	}

	return now.Sub(that.lastSeen)
}

// Sessions keeps one view controller per browser session.
type Sessions struct {
	logger  *slog.Logger
	factory ControllerFactory
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

func NewSessions(logger *slog.Logger, factory ControllerFactory, ttl time.Duration) *Sessions {
	return &Sessions{
		logger:  logger.With("component", "sessions"),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*Session),
	}
}

// Get - returns the session and marks it as seen.
func (that *Sessions) Get(id string) (*Session, bool) {
	that.mu.Lock()
	session, ok := that.items[id]
	that.mu.Unlock()

	if !ok {
		return nil, false
	}

	session.touch(that.now())

	return session, true
}

func (that *Sessions) Create() (*Session, error) {
	controller, err := that.factory()
	if err != nil {
		return nil, fmt.Errorf("could not create view controller: %w", err)
	}

	session := &Session{
		ID:         uuid.NewString(),
		Controller: controller,
		conns:      make(map[*wsConn]struct{}),
		lastSeen:   that.now(),
	}
	controller.OnChange(func(board view.Board) {
		broadcast(that.logger, session, board)
	})

	that.mu.Lock()
	that.items[session.ID] = session
	that.mu.Unlock()

	that.logger.Info("session created", "session", session.ID)

	return session, nil
}

func (that *Sessions) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.items)
}

// Sweep - unmounts and drops sessions idle longer than the ttl.
func (that *Sessions) Sweep() int {
	now := that.now()

	var expired []*Session

	that.mu.Lock()
	for id, session := range that.items {
		if session.idleSince(now) > that.ttl {
			expired = append(expired, session)
			delete(that.items, id)
		}
	}
	that.mu.Unlock()

	for _, session := range expired {
		session.Controller.Unmount()
		that.logger.Info("session expired", "session", session.ID)
	}

	return len(expired)
}

// Run - sweeps idle sessions until ctx is done.
func (that *Sessions) Run(ctx context.Context) {
	interval := that.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.Sweep()
		}
	}
}
