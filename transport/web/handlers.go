package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/view"
)

const sessionCookie = "session_id"

type pageData struct {
	Board view.Board
}

// sessionFor - resolves the browser's session from its cookie, creating one when missing or expired.
func (that *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if session, ok := that.sessions.Get(cookie.Value); ok {
			return session, nil
		}
	}

	session, err := that.sessions.Create()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return session, nil
}

func (that *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleIndex")

	session, err := that.sessionFor(w, r)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// the first fetch runs once per session, so an aborted page load must not cancel it.
	// A failed fetch still renders the (empty) page.
	if err = session.Controller.Mount(context.WithoutCancel(r.Context())); err != nil {
		log.Error("failed to mount view", "session", session.ID, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = that.page.Execute(w, pageData{Board: session.Controller.Render()}); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	that.runAction(w, r, "handleNewGame", func(session *Session) error {
		return session.Controller.StartNewGame(r.Context())
	})
}

func (that *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	x, y, err := parseCoords(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	that.runAction(w, r, "handlePlay", func(session *Session) error {
		return session.Controller.AttemptMove(r.Context(), x, y)
	})
}

func (that *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	that.runAction(w, r, "handleUndo", func(session *Session) error {
		return session.Controller.UndoLastMove(r.Context())
	})
}

func (that *Server) handleState(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleState")

	session, err := that.sessionFor(w, r)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(session.Controller.Render()); err != nil {
		log.Error("failed to encode board", "error", err)
	}
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// runAction - performs a view action for the session and sends the browser back to the board.
func (that *Server) runAction(w http.ResponseWriter, r *http.Request, method string, action func(session *Session) error) {
	log := that.logger.With("method", method)

	session, err := that.sessionFor(w, r)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err = action(session); err != nil {
		log.Error("action failed", "session", session.ID, "error", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseCoords(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	x, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: x=%q", apperror.ErrInvalidCoords, query.Get("x"))
	}

	y, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: y=%q", apperror.ErrInvalidCoords, query.Get("y"))
	}

	return x, y, nil
}
