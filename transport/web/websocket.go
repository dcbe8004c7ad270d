package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/view"
)

type wsHandler func(ctx context.Context, session *Session, conn *wsConn, msg *Message) error

func (that *Server) registerWSHandlers() {
	that.wsHandlers = map[string]wsHandler{
		actionConnect: that.wsConnect,
		actionNewGame: that.wsNewGame,
		actionTurn:    that.wsTurn,
		actionUndo:    that.wsUndo,
	}
}

// serveWS - upgrades the connection and processes actions until the browser goes away.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	session, err := that.sessionFor(w, r)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// the session cookie set above has to travel with the handshake response
	ws, err := that.upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &wsConn{conn: ws}
	session.subscribe(conn)

	log = log.With("session", session.ID)
	log.Info("WebSocket connection established")

	ctx, cancel := context.WithCancel(r.Context())

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		session.unsubscribe(conn)
		ws.Close()
		log.Info("WebSocket connection closed")
	}()

	for {
		var msg Message
		if err = ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		that.sessions.Get(session.ID)

		handler, ok := that.wsHandlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			that.sendError(log, conn, msg.Action, fmt.Errorf("%w: %s", apperror.ErrUnknownAction, msg.Action))
			continue
		}

		// actions overlap like clicks in a browser; the controller applies responses in arrival order.
		wg.Add(1)
		go func(msg Message) {
			defer wg.Done()

			if err := handler(ctx, session, conn, &msg); err != nil {
				log.Error("error processing message", "action", msg.Action, "error", err)
				that.sendError(log, conn, msg.Action, err)
			}
		}(msg)
	}
}

func (that *Server) wsConnect(ctx context.Context, session *Session, conn *wsConn, _ *Message) error {
	// the socket is already subscribed, so a first mount reaches it through the session broadcast
	if !session.Controller.IsInitialized() {
		return session.Controller.Mount(context.WithoutCancel(ctx))
	}

	return conn.send(actionState, session.Controller.Render())
}

func (that *Server) wsNewGame(ctx context.Context, session *Session, _ *wsConn, _ *Message) error {
	return session.Controller.StartNewGame(ctx)
}

func (that *Server) wsTurn(ctx context.Context, session *Session, _ *wsConn, msg *Message) error {
	var payload TurnPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidCoords, err)
	}

	if payload.X == nil || payload.Y == nil {
		return fmt.Errorf("%w: x and y are required", apperror.ErrInvalidCoords)
	}

	return session.Controller.AttemptMove(ctx, *payload.X, *payload.Y)
}

func (that *Server) wsUndo(ctx context.Context, session *Session, _ *wsConn, _ *Message) error {
	return session.Controller.UndoLastMove(ctx)
}

func (that *Server) sendError(log *slog.Logger, conn *wsConn, action string, cause error) {
	if err := conn.send(actionError, ErrorPayload{Action: action, Error: cause.Error()}); err != nil {
		log.Error("failed to send error", "error", err)
	}
}

// broadcast pushes a freshly applied board to every socket of the session.
func broadcast(logger *slog.Logger, session *Session, board view.Board) {
	for _, conn := range session.subscribers() {
		if err := conn.send(actionState, board); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			logger.Error("failed to push board", "session", session.ID, "error", err)
		}
	}
}
