package gameclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	pathNewGame = "/newgame"
	pathPlay    = "/play"
	pathUndo    = "/undo"

	maxBodySize = 1 << 20
)

// Client talks to the external game server. Every call returns the full game state.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New - creates a client with its own cookie jar, so the server sees it as a separate browser session.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid game server url: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid game server url %q: scheme and host are required", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}

	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (that *Client) NewGame(ctx context.Context) (*entity.GameState, error) {
	return that.get(ctx, pathNewGame, nil)
}

func (that *Client) Play(ctx context.Context, x, y int) (*entity.GameState, error) {
	query := url.Values{}
	query.Set("x", strconv.Itoa(x))
	query.Set("y", strconv.Itoa(y))

	return that.get(ctx, pathPlay, query)
}

func (that *Client) Undo(ctx context.Context) (*entity.GameState, error) {
	return that.get(ctx, pathUndo, nil)
}

func (that *Client) get(ctx context.Context, path string, query url.Values) (*entity.GameState, error) {
	endpoint := that.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %d", apperror.ErrUnexpectedStatus, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("could not read %s response: %w", path, err)
	}

	var state entity.GameState
	if err = json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperror.ErrMalformedState, path, err)
	}

	if state.Cells == nil {
		state.Cells = []entity.Cell{}
	}

	return &state, nil
}
