package game

import (
	"testing"
)

// place is a helper for building boards in tests.
func place(b *Board, mark Mark, cells ...[2]int) {
	for _, c := range cells {
		b[c[1]][c[0]] = mark
	}
}

func TestCheckWin(t *testing.T) {
	tests := []struct {
		name   string
		cells  [][2]int
		anchor [2]int
		want   bool
	}{
		{
			name:   "single stone",
			cells:  [][2]int{{4, 4}},
			anchor: [2]int{4, 4},
			want:   false,
		},
		{
			name:   "horizontal five, anchor at end",
			cells:  [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}},
			anchor: [2]int{4, 0},
			want:   true,
		},
		{
			name:   "horizontal five, anchor in middle",
			cells:  [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}},
			anchor: [2]int{2, 0},
			want:   true,
		},
		{
			name:   "horizontal four only",
			cells:  [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
			anchor: [2]int{3, 0},
			want:   false,
		},
		{
			name:   "vertical five",
			cells:  [][2]int{{7, 2}, {7, 3}, {7, 4}, {7, 5}, {7, 6}},
			anchor: [2]int{7, 4},
			want:   true,
		},
		{
			name:   "diagonal down-right five",
			cells:  [][2]int{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}},
			anchor: [2]int{5, 5},
			want:   true,
		},
		{
			name:   "diagonal up-right five",
			cells:  [][2]int{{0, 9}, {1, 8}, {2, 7}, {3, 6}, {4, 5}},
			anchor: [2]int{0, 9},
			want:   true,
		},
		{
			name:   "six in a row still wins",
			cells:  [][2]int{{2, 5}, {3, 5}, {4, 5}, {5, 5}, {6, 5}, {7, 5}},
			anchor: [2]int{4, 5},
			want:   true,
		},
		{
			name:   "run broken by edge",
			cells:  [][2]int{{6, 0}, {7, 0}, {8, 0}, {9, 0}},
			anchor: [2]int{9, 0},
			want:   false,
		},
		{
			name:   "four through anchor in every direction",
			cells:  [][2]int{{4, 4}, {3, 4}, {5, 4}, {6, 4}, {4, 3}, {4, 5}, {3, 3}, {5, 5}, {5, 3}, {3, 5}},
			anchor: [2]int{4, 4},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			place(&b, P1, tt.cells...)
			if got := CheckWin(b, tt.anchor[0], tt.anchor[1], P1); got != tt.want {
				t.Errorf("CheckWin() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckWinIgnoresOpponentStones(t *testing.T) {
	var b Board
	place(&b, P1, [2]int{0, 0}, [2]int{1, 0}, [2]int{3, 0}, [2]int{4, 0})
	place(&b, P2, [2]int{2, 0})

	if CheckWin(b, 4, 0, P1) {
		t.Errorf("CheckWin() = true for a run interrupted by the opponent")
	}
}

func TestApply(t *testing.T) {
	var b Board

	if err := b.Apply(3, 7, P1); err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if b[7][3] != P1 {
		t.Errorf("Apply() did not set cell, got %v", b[7][3])
	}

	if err := b.Apply(3, 7, P2); err != ErrCellOccupied {
		t.Errorf("Apply() on occupied cell: got %v, want ErrCellOccupied", err)
	}
	if b[7][3] != P1 {
		t.Errorf("rejected Apply() mutated the cell to %v", b[7][3])
	}

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {BoardSize, 0}, {0, BoardSize}} {
		if err := b.Apply(c[0], c[1], P1); err != ErrOutOfRange {
			t.Errorf("Apply(%d, %d): got %v, want ErrOutOfRange", c[0], c[1], err)
		}
	}
}

func TestOther(t *testing.T) {
	if Other(P1) != P2 || Other(P2) != P1 {
		t.Errorf("Other() does not swap marks")
	}
}
