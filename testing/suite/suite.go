package suite

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const maxWaitDuration = 30 * time.Second

const (
	PathNewGame = "/newgame"
	PathPlay    = "/play"
	PathUndo    = "/undo"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	GameServer *GameServer
}

// Request is a call recorded by the fake game server.
type Request struct {
	Path string
	X    string
	Y    string
}

type reply struct {
	status int
	body   []byte
}

// GameServer is a scripted stand-in for the external game server.
// Replies are queued per path; when a queue runs dry the last state is served again.
type GameServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	queues    map[string][]reply
	overrides map[string]http.HandlerFunc
	last      entity.GameState
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	gameServer := &GameServer{
		queues:    make(map[string][]reply),
		overrides: make(map[string]http.HandlerFunc),
		last:      NewBoard(entity.PlayerX),
	}
	gameServer.Server = httptest.NewServer(http.HandlerFunc(gameServer.serveHTTP))

	t.Cleanup(func() {
		gameServer.Close()
	})

	return ctx, &Suite{
		T:          t,
		Logger:     logger,
		GameServer: gameServer,
	}
}

// NewBoard - a fresh 3x3 board, every cell empty and playable.
func NewBoard(currentPlayer string) entity.GameState {
	cells := make([]entity.Cell, 0, 9)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			cells = append(cells, entity.Cell{X: x, Y: y, Value: entity.EmptyCell, Playable: true})
		}
	}

	return entity.GameState{Cells: cells, CurrentPlayer: currentPlayer}
}

// WithMove - returns a copy of state with mark placed at (x, y) and that cell locked.
func WithMove(state entity.GameState, x, y int, mark, next string) entity.GameState {
	moved := state.Clone()
	for i := range moved.Cells {
		if moved.Cells[i].X == x && moved.Cells[i].Y == y {
			moved.Cells[i].Value = mark
			moved.Cells[i].Playable = false
		}
	}
	moved.CurrentPlayer = next

	return moved
}

// Enqueue - the next call to path answers with state.
func (that *GameServer) Enqueue(path string, state entity.GameState) {
	body, err := json.Marshal(state)
	if err != nil {
		panic(err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.queues[path] = append(that.queues[path], reply{status: http.StatusOK, body: body})
}

// EnqueueRaw - the next call to path answers with the given status and body.
func (that *GameServer) EnqueueRaw(path string, status int, body string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.queues[path] = append(that.queues[path], reply{status: status, body: []byte(body)})
}

// Handle - replaces the scripted behavior of path with handler.
func (that *GameServer) Handle(path string, handler http.HandlerFunc) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.overrides[path] = handler
}

func (that *GameServer) Requests() []Request {
	that.mu.Lock()
	defer that.mu.Unlock()

	requests := make([]Request, len(that.requests))
	copy(requests, that.requests)

	return requests
}

func (that *GameServer) Count(path string) int {
	count := 0
	for _, req := range that.Requests() {
		if req.Path == path {
			count++
		}
	}

	return count
}

func (that *GameServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	that.mu.Lock()
	that.requests = append(that.requests, Request{
		Path: r.URL.Path,
		X:    r.URL.Query().Get("x"),
		Y:    r.URL.Query().Get("y"),
	})
	override, ok := that.overrides[r.URL.Path]
	that.mu.Unlock()

	if ok {
		override(w, r)
		return
	}

	that.mu.Lock()
	queue := that.queues[r.URL.Path]

	var next reply
	if len(queue) > 0 {
		next = queue[0]
		that.queues[r.URL.Path] = queue[1:]
	} else {
		body, err := json.Marshal(that.last)
		if err != nil {
			that.mu.Unlock()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		next = reply{status: http.StatusOK, body: body}
	}

	if next.status == http.StatusOK {
		var state entity.GameState
		if err := json.Unmarshal(next.body, &state); err == nil {
			that.last = state
		}
	}
	that.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(next.status)
	_, _ = w.Write(next.body)
}
