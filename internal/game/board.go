package game

import "errors"

// Mark represents the state of a single board cell.
type Mark uint8

const (
	Empty Mark = 0
	P1    Mark = 1
	P2    Mark = 2
)

// Board boundaries and win condition.
const (
	BoardSize    = 10
	WinningCount = 5
)

var (
	ErrOutOfRange   = errors.New("coordinates out of range")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Board is the 10x10 grid, indexed [y][x].
type Board [BoardSize][BoardSize]Mark

// InRange reports whether (x, y) lies on the board.
func InRange(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// Apply places mark at (x, y). The board is only ever mutated here: a cell
// goes Empty -> mark and never back.
func (b *Board) Apply(x, y int, mark Mark) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	if b[y][x] != Empty {
		return ErrCellOccupied
	}
	b[y][x] = mark
	return nil
}

// Other returns the opposing mark.
func Other(mark Mark) Mark {
	if mark == P1 {
		return P2
	}
	return P1
}

// directions through a cell: horizontal, vertical and both diagonals.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// CheckWin reports whether the mark just placed at (x, y) completes a run of
// five or more. Only lines through the anchor are scanned; a win can only be
// created by the move that completes it, so a full-board scan is unnecessary.
func CheckWin(b Board, x, y int, mark Mark) bool {
	for _, d := range directions {
		dx, dy := d[0], d[1]
		count := 1
		for i := 1; i < WinningCount; i++ {
			cx, cy := x+dx*i, y+dy*i
			if !InRange(cx, cy) || b[cy][cx] != mark {
				break
			}
			count++
		}
		for i := 1; i < WinningCount; i++ {
			cx, cy := x-dx*i, y-dy*i
			if !InRange(cx, cy) || b[cy][cx] != mark {
				break
			}
			count++
		}
		if count >= WinningCount {
			return true
		}
	}
	return false
}
