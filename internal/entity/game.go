package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// Cell is one board square as reported by the game server.
type Cell struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Value    string `json:"value"`
	Playable bool   `json:"playable"`
}

// GameState is the client's copy of the last server response.
type GameState struct {
	Cells         []Cell `json:"cells"`
	CurrentPlayer string `json:"currentPlayer"`
	Winner        string `json:"winner"`
}

func (that GameState) HasWinner() bool {
	return that.Winner != ""
}

func (that GameState) IsEmpty() bool {
	return len(that.Cells) == 0 && that.CurrentPlayer == "" && that.Winner == ""
}

// Clone - returns a deep copy so callers never share the cell slice.
func (that GameState) Clone() GameState {
	cells := make([]Cell, len(that.Cells))
	copy(cells, that.Cells)

	return GameState{
		Cells:         cells,
		CurrentPlayer: that.CurrentPlayer,
		Winner:        that.Winner,
	}
}

func (that GameState) PlayableCells() []Cell {
	playable := make([]Cell, 0, len(that.Cells))
	for _, cell := range that.Cells {
		if cell.Playable {
			playable = append(playable, cell)
		}
	}

	return playable
}
