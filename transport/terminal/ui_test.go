package terminal

import (
	"testing"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/gameclient"
	"github.com/rocketscienceinc/tictactoe-client/internal/view"
	"github.com/rocketscienceinc/tictactoe-client/testing/suite"
)

func newTestUI(t *testing.T, st *suite.Suite) *UI {
	t.Helper()

	client, err := gameclient.New(st.GameServer.URL, time.Second)
	require.NoError(t, err)

	ui := New(st.Logger, view.NewController(st.Logger, client))
	ui.dispatch = func(fn func()) { fn() }

	return ui
}

func TestCommandFor(t *testing.T) {
	tests := []struct {
		name string
		ev   termbox.Event
		want command
	}{
		{name: "arrow left", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowLeft}, want: cmdLeft},
		{name: "arrow down", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowDown}, want: cmdDown},
		{name: "enter", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEnter}, want: cmdPlay},
		{name: "space", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeySpace}, want: cmdPlay},
		{name: "l", ev: termbox.Event{Type: termbox.EventKey, Ch: 'l'}, want: cmdRight},
		{name: "k", ev: termbox.Event{Type: termbox.EventKey, Ch: 'k'}, want: cmdUp},
		{name: "n", ev: termbox.Event{Type: termbox.EventKey, Ch: 'n'}, want: cmdNewGame},
		{name: "u", ev: termbox.Event{Type: termbox.EventKey, Ch: 'u'}, want: cmdUndo},
		{name: "q", ev: termbox.Event{Type: termbox.EventKey, Ch: 'q'}, want: cmdQuit},
		{name: "esc", ev: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}, want: cmdQuit},
		{name: "other key", ev: termbox.Event{Type: termbox.EventKey, Ch: 'z'}, want: cmdNone},
		{name: "resize", ev: termbox.Event{Type: termbox.EventResize}, want: cmdNone},
		{name: "interrupt", ev: termbox.Event{Type: termbox.EventInterrupt}, want: cmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandFor(tt.ev))
		})
	}
}

func TestUI_Handle(t *testing.T) {
	t.Run("Enter on a playable cell sends one move with its coordinates", func(t *testing.T) {
		// Given: a mounted board, cursor moved to the centre
		ctx, st := suite.New(t)
		ui := newTestUI(t, st)
		require.NoError(t, ui.controller.Mount(ctx))

		ui.handle(ctx, cmdDown)
		ui.handle(ctx, cmdRight)

		moved := suite.WithMove(suite.NewBoard(entity.PlayerX), 1, 1, entity.PlayerX, entity.PlayerO)
		st.GameServer.Enqueue(suite.PathPlay, moved)

		// When: enter is pressed
		quit := ui.handle(ctx, cmdPlay)

		// Then: exactly one move for (1, 1) went out
		assert.False(t, quit)
		assert.Equal(t, 1, st.GameServer.Count(suite.PathPlay))
		assert.Equal(t, suite.Request{Path: suite.PathPlay, X: "1", Y: "1"}, st.GameServer.Requests()[1])
		assert.Equal(t, entity.PlayerO, ui.controller.Render().CurrentPlayer)

		// When: enter is pressed again on the now locked cell
		ui.handle(ctx, cmdPlay)

		// Then: nothing is sent
		assert.Equal(t, 1, st.GameServer.Count(suite.PathPlay))
	})

	t.Run("Undo is ignored while a winner is shown", func(t *testing.T) {
		ctx, st := suite.New(t)
		ui := newTestUI(t, st)

		won := suite.NewBoard("")
		won.Winner = entity.PlayerO
		st.GameServer.Enqueue(suite.PathNewGame, won)
		require.NoError(t, ui.controller.Mount(ctx))

		ui.handle(ctx, cmdUndo)

		assert.Equal(t, 0, st.GameServer.Count(suite.PathUndo))
	})

	t.Run("Undo and new game are forwarded", func(t *testing.T) {
		ctx, st := suite.New(t)
		ui := newTestUI(t, st)
		require.NoError(t, ui.controller.Mount(ctx))

		ui.handle(ctx, cmdUndo)
		ui.handle(ctx, cmdNewGame)

		assert.Equal(t, 1, st.GameServer.Count(suite.PathUndo))
		assert.Equal(t, 2, st.GameServer.Count(suite.PathNewGame))
	})

	t.Run("Quit", func(t *testing.T) {
		ctx, st := suite.New(t)
		ui := newTestUI(t, st)

		assert.True(t, ui.handle(ctx, cmdQuit))
	})
}

func TestPollEvents(t *testing.T) {
	t.Run("Forwards events until done", func(t *testing.T) {
		// Given: a reader over a scripted terminal
		input := make(chan termbox.Event)
		events := make(chan termbox.Event)
		done := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			pollEvents(func() termbox.Event { return <-input }, events, done)
		}()

		// When: a key is pressed
		input <- termbox.Event{Type: termbox.EventKey, Ch: 'n'}

		// Then: the loop receives it
		assert.Equal(t, 'n', (<-events).Ch)

		// When: the loop is gone and only the closing interrupt is delivered
		close(done)
		input <- termbox.Event{Type: termbox.EventInterrupt}

		// Then: the reader returns
		require.Eventually(t, func() bool {
			select {
			case <-stopped:
				return true
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Keeps polling after done until the interrupt arrives", func(t *testing.T) {
		// Given: a reader blocked handing a key to a loop that already quit
		input := make(chan termbox.Event)
		events := make(chan termbox.Event)
		done := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			pollEvents(func() termbox.Event { return <-input }, events, done)
		}()
		input <- termbox.Event{Type: termbox.EventKey, Ch: 'q'}

		// When: done closes and a late key arrives before the interrupt
		close(done)
		input <- termbox.Event{Type: termbox.EventKey, Ch: 'z'}

		// Then: the interrupt is still consumed, so it never blocks
		select {
		case input <- termbox.Event{Type: termbox.EventInterrupt}:
		case <-time.After(time.Second):
			t.Fatal("closing interrupt was not consumed")
		}
		<-stopped
	})
}
