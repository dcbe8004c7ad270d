package view

import "github.com/rocketscienceinc/tictactoe-client/internal/entity"

// CellView is a cell as the front ends draw it. Clickable cells carry the move affordance.
type CellView struct {
	Index     int    `json:"index"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Value     string `json:"value"`
	Clickable bool   `json:"clickable"`
}

// Board is the render model of a GameState.
type Board struct {
	Cells         []CellView `json:"cells"`
	Side          int        `json:"side"`
	CurrentPlayer string     `json:"currentPlayer"`
	Winner        string     `json:"winner"`
	Playable      int        `json:"playable"`
	ShowWinner    bool       `json:"showWinner"`
	UndoDisabled  bool       `json:"undoDisabled"`
}

// NewBoard - applies the rendering policy to state.
func NewBoard(state entity.GameState) Board {
	cells := make([]CellView, 0, len(state.Cells))
	for i, cell := range state.Cells {
		cells = append(cells, CellView{
			Index:     i,
			X:         cell.X,
			Y:         cell.Y,
			Value:     cell.Value,
			Clickable: cell.Playable,
		})
	}

	return Board{
		Cells:         cells,
		Side:          sideOf(len(cells)),
		CurrentPlayer: state.CurrentPlayer,
		Winner:        state.Winner,
		Playable:      len(state.PlayableCells()),
		ShowWinner:    state.HasWinner(),
		UndoDisabled:  state.HasWinner(),
	}
}

// Rows - splits the cells into rows of Side cells, keeping the server's order.
func (that Board) Rows() [][]CellView {
	if len(that.Cells) == 0 || that.Side == 0 {
		return nil
	}

	rows := make([][]CellView, 0, (len(that.Cells)+that.Side-1)/that.Side)
	for start := 0; start < len(that.Cells); start += that.Side {
		end := min(start+that.Side, len(that.Cells))
		rows = append(rows, that.Cells[start:end])
	}

	return rows
}

// Clickable - reports whether the cell at index has a move affordance.
func (that Board) Clickable(index int) bool {
	if index < 0 || index >= len(that.Cells) {
		return false
	}

	return that.Cells[index].Clickable
}

// sideOf returns the width of a square board, or n when n is not a perfect square.
func sideOf(n int) int {
	for side := 1; side*side <= n; side++ {
		if side*side == n {
			return side
		}
	}

	return n
}
