package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-client/internal/view"
)

type command int

const (
	cmdNone command = iota
	cmdLeft
	cmdRight
	cmdUp
	cmdDown
	cmdPlay
	cmdNewGame
	cmdUndo
	cmdQuit
)

type UI struct {
	logger     *slog.Logger
	controller *view.Controller

	mu     sync.Mutex
	cursor int

	// dispatch runs server calls off the event loop so the screen stays responsive.
	dispatch func(func())
}

func New(logger *slog.Logger, controller *view.Controller) *UI {
	return &UI{
		logger:     logger.With("component", "terminal"),
		controller: controller,
		dispatch: func(fn func()) {
			go fn()
		},
	}
}

// Run - takes over the terminal until the user quits or ctx is canceled.
func (that *UI) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer termbox.Close()

	defer that.controller.Unmount()

	redraw := make(chan struct{}, 1)
	that.controller.OnChange(func(view.Board) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})

	that.dispatch(func() {
		if err := that.controller.Mount(ctx); err != nil {
			that.logger.Error("failed to mount", "error", err)
		}
	})

	events := make(chan termbox.Event)
	done := make(chan struct{})
	go pollEvents(termbox.PollEvent, events, done)

	// the reader is the only interrupt consumer; it must be woken before the terminal closes.
	defer func() {
		close(done)
		termbox.Interrupt()
	}()

	for {
		if err := that.draw(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
		case ev := <-events:
			if ev.Type == termbox.EventError {
				return fmt.Errorf("terminal event error: %w", ev.Err)
			}

			if that.handle(ctx, commandFor(ev)) {
				return nil
			}
		}
	}
}

// pollEvents - feeds terminal events to the loop. Once done is closed it keeps polling
// until the closing interrupt arrives, so that interrupt never blocks.
func pollEvents(poll func() termbox.Event, events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := poll()

		select {
		case <-done:
			if ev.Type == termbox.EventInterrupt {
				return
			}
			continue
		default:
		}

		select {
		case events <- ev:
		case <-done:
		}
	}
}

// handle - applies one command; reports whether the UI should quit.
func (that *UI) handle(ctx context.Context, cmd command) bool {
	board := that.controller.Render()

	that.mu.Lock()
	defer that.mu.Unlock()

	switch cmd {
	case cmdLeft:
		that.cursor = MoveCursor(board, that.cursor, -1, 0)
	case cmdRight:
		that.cursor = MoveCursor(board, that.cursor, 1, 0)
	case cmdUp:
		that.cursor = MoveCursor(board, that.cursor, 0, -1)
	case cmdDown:
		that.cursor = MoveCursor(board, that.cursor, 0, 1)
	case cmdPlay:
		if !board.Clickable(that.cursor) {
			return false
		}
		cell := board.Cells[that.cursor]
		that.dispatch(func() {
			if err := that.controller.AttemptMove(ctx, cell.X, cell.Y); err != nil {
				that.logger.Error("move failed", "error", err)
			}
		})
	case cmdNewGame:
		that.dispatch(func() {
			if err := that.controller.StartNewGame(ctx); err != nil {
				that.logger.Error("new game failed", "error", err)
			}
		})
	case cmdUndo:
		if board.UndoDisabled {
			return false
		}
		that.dispatch(func() {
			if err := that.controller.UndoLastMove(ctx); err != nil {
				that.logger.Error("undo failed", "error", err)
			}
		})
	case cmdQuit:
		return true
	case cmdNone:
	}

	return false
}

func (that *UI) draw() error {
	that.mu.Lock()
	cursor := that.cursor
	that.mu.Unlock()

	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("failed to clear terminal: %w", err)
	}

	for y, line := range Frame(that.controller.Render(), cursor) {
		x := 0
		for _, r := range line {
			termbox.SetCell(x, y, r, termbox.ColorDefault, termbox.ColorDefault)
			x += runewidth.RuneWidth(r)
		}
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("failed to flush terminal: %w", err)
	}

	return nil
}

func commandFor(ev termbox.Event) command {
	if ev.Type != termbox.EventKey {
		return cmdNone
	}

	switch ev.Key {
	case termbox.KeyArrowLeft:
		return cmdLeft
	case termbox.KeyArrowRight:
		return cmdRight
	case termbox.KeyArrowUp:
		return cmdUp
	case termbox.KeyArrowDown:
		return cmdDown
	case termbox.KeyEnter, termbox.KeySpace:
		return cmdPlay
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return cmdQuit
	}

	switch ev.Ch {
	case 'h':
		return cmdLeft
	case 'l':
		return cmdRight
	case 'k':
		return cmdUp
	case 'j':
		return cmdDown
	case 'n':
		return cmdNewGame
	case 'u':
		return cmdUndo
	case 'q':
		return cmdQuit
	}

	return cmdNone
}
