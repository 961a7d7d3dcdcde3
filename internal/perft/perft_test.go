package perft

import (
	"testing"

	"github.com/nullmove/chesscore/internal/board"
)

func TestCountStartingPosition(t *testing.T) {
	pos := board.NewPosition()

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Count(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Count(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestCountKiwipete exercises the Kiwipete reference position, known for
// exercising castling, en passant and promotion edge cases together.
func TestCountKiwipete(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Count(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Count(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func TestDivideSumsToCount(t *testing.T) {
	pos := board.NewPosition()
	const depth = 3

	results := Divide(pos, depth)
	var total uint64
	for _, n := range results {
		total += n
	}

	if want := Count(pos, depth); total != want {
		t.Errorf("divide total = %d, want %d", total, want)
	}
	if len(results) != 20 {
		t.Errorf("expected 20 distinct root moves from the starting position, got %d", len(results))
	}
}
