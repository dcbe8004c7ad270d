package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rocketscienceinc/tictactoe-client/internal/view"
)

const (
	cellWidth = 3
	title     = "Tic-Tac-Toe"
)

// Frame - lays the board out as text lines, marking the cell under the cursor.
func Frame(board view.Board, cursor int) []string {
	lines := []string{title, "", banner(board), ""}

	for _, row := range board.Rows() {
		lines = append(lines, separator(len(row)))

		var b strings.Builder
		b.WriteString("|")
		for _, cell := range row {
			b.WriteString(cellText(cell, cell.Index == cursor))
			b.WriteString("|")
		}
		lines = append(lines, b.String())
	}

	if rows := board.Rows(); len(rows) > 0 {
		lines = append(lines, separator(len(rows[len(rows)-1])))
	}

	lines = append(lines, "", help(board))

	return lines
}

func banner(board view.Board) string {
	if board.ShowWinner {
		return "Winner: " + board.Winner
	}

	return "Current Turn: " + board.CurrentPlayer
}

func help(board view.Board) string {
	undo := "u undo"
	if board.UndoDisabled {
		undo = "u undo (disabled)"
	}

	return "arrows/hjkl move  enter play  n new game  " + undo + "  q quit"
}

func separator(cells int) string {
	return "+" + strings.Repeat(strings.Repeat("-", cellWidth)+"+", cells)
}

// cellText centres the value; a clickable cell under the cursor is bracketed, any other one under it is braced.
func cellText(cell view.CellView, selected bool) string {
	value := runewidth.Truncate(cell.Value, cellWidth-2, "")
	if value == "" {
		value = " "
	}

	left, right := " ", " "
	if selected {
		left, right = "{", "}"
		if cell.Clickable {
			left, right = "[", "]"
		}
	}

	return left + runewidth.FillRight(value, cellWidth-2) + right
}

// MoveCursor - moves the cursor by dx columns and dy rows, clamped to the board.
func MoveCursor(board view.Board, cursor, dx, dy int) int {
	if len(board.Cells) == 0 || board.Side == 0 {
		return 0
	}

	row, col := cursor/board.Side, cursor%board.Side
	rows := (len(board.Cells) + board.Side - 1) / board.Side

	row = clamp(row+dy, 0, rows-1)
	col = clamp(col+dx, 0, board.Side-1)

	return min(row*board.Side+col, len(board.Cells)-1)
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
