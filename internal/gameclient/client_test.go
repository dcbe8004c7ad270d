package gameclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/testing/suite"
)

func newClient(t *testing.T, st *suite.Suite) *Client {
	t.Helper()

	client, err := New(st.GameServer.URL, time.Second)
	require.NoError(t, err)

	return client
}

func TestNew(t *testing.T) {
	t.Run("Rejects a url without host", func(t *testing.T) {
		_, err := New("/relative", time.Second)

		require.Error(t, err)
	})

	t.Run("Accepts a trailing slash", func(t *testing.T) {
		client, err := New("http://localhost:8080/", time.Second)

		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/newgame", client.baseURL.JoinPath(pathNewGame).String())
	})
}

func TestClient_NewGame(t *testing.T) {
	ctx, st := suite.New(t)
	client := newClient(t, st)

	// Given: the server answers with a fresh board
	fresh := suite.NewBoard(entity.PlayerX)
	st.GameServer.Enqueue(suite.PathNewGame, fresh)

	// When: a new game is requested
	state, err := client.NewGame(ctx)

	// Then: the response is decoded verbatim
	require.NoError(t, err)
	assert.Equal(t, fresh, *state)
	assert.Equal(t, 1, st.GameServer.Count(suite.PathNewGame))
}

func TestClient_Play(t *testing.T) {
	ctx, st := suite.New(t)
	client := newClient(t, st)

	// Given: the server accepts the move at (1, 2)
	moved := suite.WithMove(suite.NewBoard(entity.PlayerX), 1, 2, entity.PlayerX, entity.PlayerO)
	st.GameServer.Enqueue(suite.PathPlay, moved)

	// When: the move is sent
	state, err := client.Play(ctx, 1, 2)

	// Then: the coordinates travel as query params and the new state comes back
	require.NoError(t, err)
	assert.Equal(t, moved, *state)

	requests := st.GameServer.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, suite.Request{Path: suite.PathPlay, X: "1", Y: "2"}, requests[0])
}

func TestClient_Undo(t *testing.T) {
	ctx, st := suite.New(t)
	client := newClient(t, st)

	// Given: the server reverts to a fresh board
	st.GameServer.Enqueue(suite.PathUndo, suite.NewBoard(entity.PlayerX))

	// When: undo is sent
	state, err := client.Undo(ctx)

	// Then: the reverted state is returned
	require.NoError(t, err)
	assert.Len(t, state.Cells, 9)
	assert.Equal(t, entity.PlayerX, state.CurrentPlayer)
	assert.Equal(t, 1, st.GameServer.Count(suite.PathUndo))
}

func TestClient_Errors(t *testing.T) {
	t.Run("Non-2xx status", func(t *testing.T) {
		ctx, st := suite.New(t)
		client := newClient(t, st)

		// Given: the server fails
		st.GameServer.EnqueueRaw(suite.PathNewGame, http.StatusInternalServerError, "boom")

		// When: a new game is requested
		state, err := client.NewGame(ctx)

		// Then: ErrUnexpectedStatus is returned
		require.ErrorIs(t, err, apperror.ErrUnexpectedStatus)
		assert.Nil(t, state)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		ctx, st := suite.New(t)
		client := newClient(t, st)

		// Given: the server answers with garbage
		st.GameServer.EnqueueRaw(suite.PathPlay, http.StatusOK, "{not json")

		// When: a move is sent
		_, err := client.Play(ctx, 0, 0)

		// Then: ErrMalformedState is returned
		require.ErrorIs(t, err, apperror.ErrMalformedState)
	})

	t.Run("Missing cells decode as an empty board", func(t *testing.T) {
		ctx, st := suite.New(t)
		client := newClient(t, st)

		st.GameServer.EnqueueRaw(suite.PathUndo, http.StatusOK, `{"currentPlayer":"O","winner":""}`)

		state, err := client.Undo(ctx)

		require.NoError(t, err)
		assert.NotNil(t, state.Cells)
		assert.Empty(t, state.Cells)
		assert.Equal(t, entity.PlayerO, state.CurrentPlayer)
	})

	t.Run("Context cancellation", func(t *testing.T) {
		ctx, st := suite.New(t)
		client := newClient(t, st)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.NewGame(cancelled)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_KeepsCookies(t *testing.T) {
	ctx, st := suite.New(t)
	client := newClient(t, st)

	// Given: a server that sets a session cookie on new game and echoes it back on undo
	st.GameServer.Handle(suite.PathNewGame, func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "game", Value: "abc", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cells":[],"currentPlayer":"X","winner":""}`))
	})
	st.GameServer.Handle(suite.PathUndo, func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("game")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"cells":[],"currentPlayer":"X","winner":""}`))
	})

	// When: new game then undo are called
	_, err := client.NewGame(ctx)
	require.NoError(t, err)

	_, err = client.Undo(ctx)

	// Then: the cookie set by the first response is sent with the second
	require.NoError(t, err)
}
