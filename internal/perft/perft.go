// Package perft counts leaf nodes of the legal-move tree, the standard
// correctness check for a move generator: every legal move generated, no
// illegal move generated, make/unmake symmetric.
package perft

import "github.com/nullmove/chesscore/internal/board"

// Count returns the number of leaf positions reachable from pos in
// exactly depth plies.
func Count(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += Count(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// Divide breaks a perft count down by root move, for isolating which
// branch diverges from a reference count.
func Divide(pos *board.Position, depth int) map[string]uint64 {
	results := make(map[string]uint64)
	if depth <= 0 {
		return results
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		results[m.String()] = Count(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return results
}
