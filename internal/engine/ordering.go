package engine

import (
	"github.com/nullmove/chesscore/internal/board"
)

// Ordering score bands. Each band sits well clear of its neighbors so that
// history/capture-history bonuses layered on top never cross into the band
// above or below.
const (
	ttMoveBonus      = 10_000_000
	goodCaptureBonus = 1_000_000
	killerBonus1     = 900_000
	killerBonus2     = 800_000
	badCaptureBonus  = -100_000

	historySaturation = 400_000 // clamp point for every history-style table
)

// mvvLva scores captures by (victim value, attacker value): strongly
// favor taking the most valuable piece with the least valuable one.
// Indexed [victim][attacker]; the king row is unused (a king is never a
// capture victim), and the king column ranks a king capture below every
// other attacker.
var mvvLva = [6][6]int{
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer accumulates the ordering heuristics a search builds up as it
// explores a tree: killer moves and four flavors of history table, all
// scoped to one search instance so concurrent Engines never share state.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move

	history            [64][64]int             // [from][to]
	counterMoves       [12][64]board.Move       // [piece][to]
	captureHistory     [12][64][6]int           // [attackerPiece][to][victimType]
	countermoveHistory [12][64][12][64]int      // [prevPiece][prevTo][piece][to]
}

func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear ages every table for a fresh search: killers and counter-moves are
// wiped outright since they're only meaningful within the line that
// produced them, while the history tables are halved rather than zeroed so
// that long-lived patterns survive across searches on the same position
// tree (Searcher.Reset calls Clear at the start of every search).
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.counterMoves {
		for j := range mo.counterMoves[i] {
			mo.counterMoves[i][j] = board.NoMove
		}
	}

	halveHistory(&mo.history)
	halveCaptureHistory(&mo.captureHistory)
	halveCountermoveHistory(&mo.countermoveHistory)
}

func halveHistory(h *[64][64]int) {
	for i := range h {
		for j := range h[i] {
			h[i][j] /= 2
		}
	}
}

func halveCaptureHistory(h *[12][64][6]int) {
	for i := range h {
		for j := range h[i] {
			for k := range h[i][j] {
				h[i][j][k] /= 2
			}
		}
	}
}

func halveCountermoveHistory(h *[12][64][12][64]int) {
	for i := range h {
		for j := range h[i] {
			for k := range h[i][j] {
				for l := range h[i][j][k] {
					h[i][j][k][l] /= 2
				}
			}
		}
	}
}

// clampedAdjust applies a depth-scaled bonus or malus to v, saturating at
// +/- historySaturation so no table entry can grow without bound across a
// long search.
func clampedAdjust(v, depth int, isGood bool) int {
	bonus := depth * depth
	if isGood {
		v += bonus
		if v > historySaturation {
			v = historySaturation
		}
		return v
	}
	v -= bonus
	if v < -historySaturation {
		v = -historySaturation
	}
	return v
}

// ScoreMoves assigns an ordering score to every move in the list.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, ttMove)
	}
	return scores
}

// ScoreMovesWithCounter is ScoreMoves plus a counter-move bonus and a
// countermove-history bonus for quiet moves, both keyed off prevMove.
func (mo *MoveOrderer) ScoreMovesWithCounter(pos *board.Position, moves *board.MoveList, ply int, ttMove, prevMove board.Move) []int {
	scores := make([]int, moves.Len())
	counterMove := mo.GetCounterMove(prevMove, pos)

	var prevPiece board.Piece = board.NoPiece
	if prevMove != board.NoMove {
		prevPiece = pos.PieceAt(prevMove.To())
	}

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		scores[i] = mo.scoreMove(pos, move, ply, ttMove)

		if move == counterMove && scores[i] < killerBonus2 {
			scores[i] = killerBonus2 - 10000
		}

		if !move.IsCapture(pos) && !move.IsPromotion() && move != ttMove {
			movePiece := pos.PieceAt(move.From())
			cmh := mo.GetCountermoveHistoryScore(prevMove, prevPiece, movePiece, move.To())
			scores[i] += cmh / 2
		}
	}

	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return ttMoveBonus
	}

	from, to := m.From(), m.To()

	if m.IsCapture(pos) {
		return mo.scoreCapture(pos, m, from, to)
	}

	if m.IsPromotion() {
		return goodCaptureBonus - 1000 + int(m.Promotion())*100
	}

	if m == mo.killers[ply][0] {
		return killerBonus1
	}
	if m == mo.killers[ply][1] {
		return killerBonus2
	}

	return mo.history[from][to]
}

func (mo *MoveOrderer) scoreCapture(pos *board.Position, m board.Move, from, to board.Square) int {
	attackerPiece := pos.PieceAt(from)
	if attackerPiece == board.NoPiece {
		return goodCaptureBonus
	}
	attacker := attackerPiece.Type()

	var victim board.PieceType
	if m.IsEnPassant() {
		victim = board.Pawn
	} else {
		capturedPiece := pos.PieceAt(to)
		if capturedPiece == board.NoPiece {
			return goodCaptureBonus
		}
		victim = capturedPiece.Type()
	}

	if victim >= board.King || attacker > board.King {
		return goodCaptureBonus
	}

	score := goodCaptureBonus + mvvLva[victim][attacker]*1000
	score += mo.GetCaptureHistoryScore(attackerPiece, to, victim) / 4

	if pieceValues[attacker] < pieceValues[victim] {
		score += 10000
	}

	return score
}

// SortMoves sorts moves by descending score in place. Selection sort is
// fine at the branching factors a chess move list reaches (rarely above
// ~50).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove moves the best-scoring remaining move (from index onward) into
// index, so callers can sort lazily: only as many moves as get searched
// ever get fully selected.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, isGood bool) {
	from, to := m.From(), m.To()
	mo.history[from][to] = clampedAdjust(mo.history[from][to], depth, isGood)
}

func (mo *MoveOrderer) UpdateCounterMove(prevMove, counterMove board.Move, pos *board.Position) {
	if prevMove == board.NoMove {
		return
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return
	}
	mo.counterMoves[piece][prevMove.To()] = counterMove
}

func (mo *MoveOrderer) GetCounterMove(prevMove board.Move, pos *board.Position) board.Move {
	if prevMove == board.NoMove {
		return board.NoMove
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return board.NoMove
	}
	return mo.counterMoves[piece][prevMove.To()]
}

// GetHistoryScore is used by the search for history-based pruning
// decisions (late-move/history pruning), not just move ordering.
func (mo *MoveOrderer) GetHistoryScore(m board.Move) int {
	return mo.history[m.From()][m.To()]
}

func (mo *MoveOrderer) UpdateCaptureHistory(attackerPiece board.Piece, toSq board.Square, capturedType board.PieceType, depth int, isGood bool) {
	if attackerPiece == board.NoPiece || capturedType >= board.King {
		return
	}
	mo.captureHistory[attackerPiece][toSq][capturedType] = clampedAdjust(mo.captureHistory[attackerPiece][toSq][capturedType], depth, isGood)
}

func (mo *MoveOrderer) GetCaptureHistoryScore(attackerPiece board.Piece, toSq board.Square, capturedType board.PieceType) int {
	if attackerPiece == board.NoPiece || capturedType >= board.King {
		return 0
	}
	return mo.captureHistory[attackerPiece][toSq][capturedType]
}

func (mo *MoveOrderer) UpdateCountermoveHistory(prevMove, goodMove board.Move, prevPiece, movePiece board.Piece, depth int, isGood bool) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return
	}
	prevTo, moveTo := prevMove.To(), goodMove.To()
	mo.countermoveHistory[prevPiece][prevTo][movePiece][moveTo] = clampedAdjust(mo.countermoveHistory[prevPiece][prevTo][movePiece][moveTo], depth, isGood)
}

func (mo *MoveOrderer) GetCountermoveHistoryScore(prevMove board.Move, prevPiece, movePiece board.Piece, moveTo board.Square) int {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return 0
	}
	return mo.countermoveHistory[prevPiece][prevMove.To()][movePiece][moveTo]
}
