package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type gameServer interface {
	NewGame(ctx context.Context) (*entity.GameState, error)
	Play(ctx context.Context, x, y int) (*entity.GameState, error)
	Undo(ctx context.Context) (*entity.GameState, error)
}

// Controller owns the client-side GameState. The state is only ever replaced by server responses.
type Controller struct {
	logger *slog.Logger
	server gameServer

	initialized atomic.Bool

	mu        sync.RWMutex
	state     entity.GameState
	unmounted bool
	onChange  func(Board)

	// notifyMu keeps listener calls in the order the responses were applied.
	notifyMu sync.Mutex
}

func NewController(logger *slog.Logger, server gameServer) *Controller {
	return &Controller{
		logger: logger.With("component", "view"),
		server: server,
		state:  entity.GameState{Cells: []entity.Cell{}},
	}
}

// OnChange - registers a listener called with the fresh board after each applied response.
// The listener must not call back into the controller's mutating operations synchronously.
func (that *Controller) OnChange(listener func(Board)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onChange = listener
}

// Mount - first-render hook. Only the first call starts a game.
func (that *Controller) Mount(ctx context.Context) error {
	if !that.initialized.CompareAndSwap(false, true) {
		return nil
	}

	return that.StartNewGame(ctx)
}

// Unmount - discards the held state; responses still in flight are dropped.
func (that *Controller) Unmount() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.unmounted = true
	that.onChange = nil
	that.state = entity.GameState{Cells: []entity.Cell{}}
}

func (that *Controller) StartNewGame(ctx context.Context) error {
	log := that.logger.With("method", "StartNewGame")

	state, err := that.server.NewGame(ctx)
	if err != nil {
		log.Error("new game request failed", "error", err)
		return fmt.Errorf("failed to start new game: %w", err)
	}

	that.apply(state, false)

	return nil
}

// AttemptMove - sends the move as is; legality is the server's call.
func (that *Controller) AttemptMove(ctx context.Context, x, y int) error {
	log := that.logger.With("method", "AttemptMove", "x", x, "y", y)

	state, err := that.server.Play(ctx, x, y)
	if err != nil {
		log.Error("move request failed", "error", err)
		return fmt.Errorf("failed to play: %w", err)
	}

	that.apply(state, false)

	return nil
}

// UndoLastMove - replaces cells and current player. A winner already shown stays.
func (that *Controller) UndoLastMove(ctx context.Context) error {
	log := that.logger.With("method", "UndoLastMove")

	state, err := that.server.Undo(ctx)
	if err != nil {
		log.Error("undo request failed", "error", err)
		return fmt.Errorf("failed to undo: %w", err)
	}

	that.apply(state, true)

	return nil
}

func (that *Controller) State() entity.GameState {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.state.Clone()
}

func (that *Controller) Render() Board {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return NewBoard(that.state)
}

func (that *Controller) IsInitialized() bool {
	return that.initialized.Load()
}

func (that *Controller) apply(response *entity.GameState, keepWinner bool) {
	that.mu.Lock()

	if that.unmounted {
		that.mu.Unlock()
		that.logger.Debug("dropping response after unmount")
		return
	}

	next := response.Clone()
	if keepWinner {
		next.Winner = that.state.Winner
	}
	that.state = next

	board := NewBoard(next)
	listener := that.onChange

	that.notifyMu.Lock()
	that.mu.Unlock()
	defer that.notifyMu.Unlock()

	if listener != nil {
		listener(board)
	}
}
