package engine

import (
	"math"
	"sync/atomic"

	"github.com/nullmove/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// lmrReductions is a precomputed logarithmic reduction table for late move
// reductions, in the style of Stockfish's search.cpp initialization.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46*math.Log(float64(d))) * int(21.46*math.Log(float64(m))) / 1024
		}
	}
}

// lmpThreshold bounds how many quiet moves are tried at shallow depths
// before late move pruning skips the rest (index by remaining depth).
var lmpThreshold = [8]int{0, 5, 8, 13, 20, 28, 38, 50}

const historyPruningThreshold = -2000

// PVTable stores the principal variation for each ply of one search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// searchStackEntry carries per-ply state needed by pruning and move
// ordering heuristics that look one or two plies backward.
type searchStackEntry struct {
	currentMove board.Move
	movedPiece  board.Piece
	staticEval  int
}

// Searcher performs a single, independent alpha-beta/PVS search. Every
// concurrent search (e.g. one per analysis request) owns its own Searcher,
// its own position copy, and its own move-ordering tables. It probes the
// TranspositionTable and PawnTable passed to NewSearcher; neither table
// does any locking of its own.
type Searcher struct {
	pos       *board.Position
	tt        *TranspositionTable
	pawnTable *PawnTable
	orderer   *MoveOrderer

	nodes    uint64
	stopFlag atomic.Bool
	deadline Deadline

	pv    PVTable
	stack [MaxPly]searchStackEntry

	undoStack [MaxPly]board.UndoInfo

	rootDelta int

	// restrictRoot, if non-empty, limits the root move loop to this set
	// (spec §6.3's "restrict-to-moves"); excludeRoot removes moves from
	// consideration at the root (used for Multi-PV's successive searches).
	restrictRoot []board.Move
	excludeRoot  []board.Move
}

// SetRootMoveFilter configures the root-level move restriction/exclusion
// for the next search. Either may be nil.
func (s *Searcher) SetRootMoveFilter(restrict, exclude []board.Move) {
	s.restrictRoot = restrict
	s.excludeRoot = exclude
}

func (s *Searcher) rootMoveAllowed(m board.Move) bool {
	if len(s.restrictRoot) > 0 {
		ok := false
		for _, r := range s.restrictRoot {
			if r == m {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, e := range s.excludeRoot {
		if e == m {
			return false
		}
	}
	return true
}

// NewSearcher creates a new searcher bound to shared hash tables.
func NewSearcher(tt *TranspositionTable, pawnTable *PawnTable) *Searcher {
	return &Searcher{
		tt:        tt,
		pawnTable: pawnTable,
		orderer:   NewMoveOrderer(),
	}
}

// Stop signals the search to abandon its current iteration.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset prepares the searcher for a new, unrelated search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// GetPV returns the principal variation found at the root.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// IterativeDeepen runs iterative deepening up to maxDepth or until the
// deadline elapses, widening an aspiration window around each iteration's
// previous score. It reports intermediate results via onDepth (may be nil).
func (s *Searcher) IterativeDeepen(pos *board.Position, maxDepth int, deadline Deadline, onDepth func(depth, score int, pv []board.Move, nodes uint64)) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.deadline = deadline
	s.tt.NewSearch()

	var bestMove board.Move
	score := 0

	// widenAspiration steps the window half-width from Δ to 2Δ, then 5Δ,
	// then the full window.
	const aspirationDelta = 16
	widenAspiration := func(d int) int {
		switch d {
		case aspirationDelta:
			return 2 * aspirationDelta
		case 2 * aspirationDelta:
			return 5 * aspirationDelta
		}
		return Infinity
	}

	for depth := 1; depth <= maxDepth; depth++ {
		alpha, beta := -Infinity, Infinity
		delta := aspirationDelta
		if depth > 4 {
			alpha = max(score-delta, -Infinity)
			beta = min(score+delta, Infinity)
		}
		s.rootDelta = beta - alpha

		var iterScore int
		aborted := false
		for {
			iterScore = s.negamax(depth, 0, alpha, beta, board.NoMove, 0, false, false)
			if s.stopFlag.Load() || deadline.Expired() {
				aborted = true
				break
			}
			if iterScore <= alpha && alpha > -Infinity {
				delta = widenAspiration(delta)
				alpha = max(iterScore-delta, -Infinity)
				beta = (alpha + beta) / 2
			} else if iterScore >= beta && beta < Infinity {
				delta = widenAspiration(delta)
				beta = min(iterScore+delta, Infinity)
			} else {
				break
			}
		}
		if aborted {
			break
		}

		score = iterScore
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}
		if onDepth != nil {
			onDepth(depth, score, s.GetPV(), s.nodes)
		}
	}

	if bestMove == board.NoMove {
		moves := s.pos.GenerateLegalMoves()
		if moves.Len() > 0 {
			bestMove = moves.Get(0)
		}
	}

	return bestMove, score
}

// Search runs IterativeDeepen up to depth with no per-depth callback.
func (s *Searcher) Search(pos *board.Position, depth int, deadline Deadline) (board.Move, int) {
	return s.IterativeDeepen(pos, depth, deadline, nil)
}

func (s *Searcher) checkTime() bool {
	return s.stopFlag.Load() || s.deadline.Expired()
}

// negamax implements PVS (principal variation search) with the standard
// complement of alpha-beta pruning heuristics: null-move pruning, reverse
// futility pruning, razoring, futility pruning, late move reductions and
// late move pruning, backed by a shared transposition table.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, prevMove board.Move, prevCaptureSq board.Square, prevWasCapture bool, cutNode bool) int {
	if ply >= MaxPly-1 {
		return Evaluate(s.pos, s.pawnTable, alpha, beta)
	}

	if s.checkTime() {
		return 0
	}
	s.nodes++

	s.pv.length[ply] = ply
	isPVNode := alpha < beta-1

	inCheck := s.pos.InCheck()
	var pregenMoves *board.MoveList

	if ply > 0 {
		// Checkmate takes precedence over any draw claim: a mate delivered
		// on the very move that reaches the fifty-move count (or a
		// repeated position) is still a mate, not a draw.
		if inCheck {
			pregenMoves = s.pos.GenerateLegalMoves()
			if pregenMoves.Len() == 0 {
				return -MateScore + ply
			}
		}
		if s.pos.HalfMoveClock >= 100 || s.pos.IsInsufficientMaterial() || s.pos.HasRepeated(2) {
			return 0
		}
		// Mate distance pruning: a shorter path to mate can't matter once
		// the window no longer reaches it.
		matedScore := -MateScore + ply
		if matedScore > alpha {
			alpha = matedScore
			if alpha >= beta {
				return alpha
			}
		}
		mateInScore := MateScore - ply
		if mateInScore < beta {
			beta = mateInScore
			if alpha >= beta {
				return beta
			}
		}
	}

	var ttMove board.Move
	ttPV := false
	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		pm, moved, captured := ttEntry.BestMove.Unpack()
		_ = moved
		_ = captured
		ttMove = pm
		ttPV = ttEntry.IsPV
		if ttMove != board.NoMove && !s.pos.IsLegalSoft(ttMove) {
			ttMove = board.NoMove
		}
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, 0, alpha, beta)
	}

	// Internal iterative reduction: without a TT move to anchor ordering,
	// shave depth instead of doing a full recursive probe.
	if depth >= 4 && ttMove == board.NoMove && !inCheck {
		depth -= 2
	}

	staticEval := Evaluate(s.pos, s.pawnTable, -Infinity, Infinity)
	s.stack[ply].staticEval = staticEval

	improving := false
	if ply >= 2 && !inCheck {
		improving = staticEval > s.stack[ply-2].staticEval
	}

	if !inCheck && ply > 0 && !ttPV {
		// Reverse futility pruning.
		if depth <= 6 {
			margin := 80 * depth
			if !improving {
				margin -= 20
			}
			if staticEval-margin >= beta {
				return beta
			}
		}

		// Razoring: if we're far below alpha, trust quiescence to confirm.
		if depth <= 5 {
			razorMargin := 485 + 281*depth*depth
			if staticEval+razorMargin <= alpha {
				score := s.quiescence(ply, 0, alpha, beta)
				if score <= alpha {
					return score
				}
			}
		}

		// Null-move pruning, guarded against zugzwang positions.
		if depth >= 3 && s.pos.HasNonPawnMaterial() {
			r := 3 + depth/4
			if staticEval-beta > 0 {
				r++
			}
			if r > depth-1 {
				r = depth - 1
			}
			if r >= 1 {
				nullUndo := s.pos.MakeNullMove()
				nullScore := -s.negamax(depth-1-r, ply+1, -beta, -beta+1, board.NoMove, 0, false, !cutNode)
				s.pos.UnmakeNullMove(nullUndo)
				if s.stopFlag.Load() || s.deadline.Expired() {
					return 0
				}
				if nullScore >= beta {
					return nullScore
				}
			}
		}
	}

	pruneQuietMoves := false
	if !inCheck && depth <= 5 && ply > 0 {
		futilityMargin := [6]int{0, 200, 300, 500, 700, 900}
		if staticEval+futilityMargin[depth] <= alpha {
			pruneQuietMoves = true
		}
	}

	moves := pregenMoves
	if moves == nil {
		moves = s.pos.GenerateLegalMoves()
	}
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := s.orderer.ScoreMovesWithCounter(s.pos, moves, ply, ttMove, prevMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	movesSearched := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if ply == 0 && !s.rootMoveAllowed(move) {
			continue
		}

		isCapture := move.IsCapture(s.pos)
		isPromotion := move.IsPromotion()

		if pruneQuietMoves && !isCapture && !isPromotion && bestMove != board.NoMove {
			continue
		}

		if isCapture && depth <= 7 && !inCheck && movesSearched > 0 {
			if SEE(s.pos, move) < -20*depth {
				continue
			}
		}

		if depth <= 7 && !inCheck && movesSearched > 0 && !isCapture && !isPromotion && move != ttMove {
			threshold := lmpThreshold[min(depth, 7)]
			if !improving {
				threshold = threshold * 2 / 3
			}
			if movesSearched >= threshold {
				continue
			}
		}

		if depth <= 3 && !inCheck && movesSearched > 0 && !isCapture && !isPromotion && move != ttMove {
			if s.orderer.GetHistoryScore(move) < historyPruningThreshold {
				continue
			}
		}

		movingPiece := s.pos.PieceAt(move.From())
		moveTo := move.To()

		extension := 0
		if inCheck {
			extension = 1
		} else if prevWasCapture && moveTo == prevCaptureSq && isCapture {
			// Recapture extension: the previous move captured on this
			// square and this move recaptures there.
			extension = 1
		}

		childPrevCaptureSq := board.Square(0)
		if isCapture {
			childPrevCaptureSq = moveTo
		}

		s.undoStack[ply] = s.pos.MakeMove(move)
		if !s.undoStack[ply].Valid {
			s.pos.UnmakeMove(move, s.undoStack[ply])
			continue
		}
		movesSearched++
		s.stack[ply].currentMove = move
		s.stack[ply].movedPiece = movingPiece

		newDepth := depth - 1 + extension

		var score int
		if movesSearched > 4 && depth >= 3 && !inCheck && !isCapture && !isPromotion {
			d := min(depth, 63)
			m := min(movesSearched, 63)
			reduction := lmrReductions[d][m]

			if s.rootDelta > 0 && s.rootDelta < Infinity {
				reduction -= (beta - alpha) * 608 / s.rootDelta
			}
			if !improving {
				reduction++
			}
			if move == ttMove {
				reduction -= 2
			}
			if ttPV {
				reduction--
			}
			if cutNode {
				reduction += 3
			}
			if reduction < 1 {
				reduction = 1
			}

			reducedDepth := max(newDepth-reduction, 1)
			score = -s.negamax(reducedDepth, ply+1, -alpha-1, -alpha, move, childPrevCaptureSq, isCapture, !cutNode)
			if score > alpha && reducedDepth < newDepth {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, move, childPrevCaptureSq, isCapture, false)
			}
		} else if movesSearched == 1 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha, move, childPrevCaptureSq, isCapture, false)
		} else {
			score = -s.negamax(newDepth, ply+1, -alpha-1, -alpha, move, childPrevCaptureSq, isCapture, !cutNode)
			if score > alpha && score < beta {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, move, childPrevCaptureSq, isCapture, false)
			}
		}

		s.pos.UnmakeMove(move, s.undoStack[ply])

		if s.stopFlag.Load() || s.deadline.Expired() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			if ply == 0 {
				s.pv.moves[0][0] = bestMove
				s.pv.length[0] = 1
			}

			packed := Pack(bestMove, s.pos)
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, packed, isPVNode)

			if isCapture {
				attacker := s.pos.PieceAt(move.From())
				var capturedType board.PieceType
				if move.IsEnPassant() {
					capturedType = board.Pawn
				} else if cp := s.pos.PieceAt(move.To()); cp != board.NoPiece {
					capturedType = cp.Type()
				}
				s.orderer.UpdateCaptureHistory(attacker, move.To(), capturedType, depth, true)
			} else {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
				s.orderer.UpdateCounterMove(prevMove, move, s.pos)
				if prevMove != board.NoMove {
					prevPiece := s.pos.PieceAt(prevMove.To())
					s.orderer.UpdateCountermoveHistory(prevMove, move, prevPiece, movingPiece, depth, true)
				}
			}

			return score
		}
	}

	if bestMove == board.NoMove && moves.Len() > 0 {
		bestMove = moves.Get(0)
		if bestScore == -Infinity {
			bestScore = alpha
		}
	}

	packed := Pack(bestMove, s.pos)
	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, packed, isPVNode)

	return bestScore
}

// quiescence searches captures (and, while in check, every evasion) to
// resolve tactical sequences before trusting the static evaluation.
func (s *Searcher) quiescence(ply, qPly int, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly-1 || qPly > maxQuiescencePly {
		return Evaluate(s.pos, s.pawnTable, alpha, beta)
	}
	if s.checkTime() {
		return 0
	}
	s.nodes++

	originalAlpha := alpha
	inCheck := s.pos.InCheck()

	var standPat, bestValue int
	var bestMove board.Move

	if inCheck {
		bestValue = -MateScore + ply
		standPat = bestValue
	} else {
		standPat = Evaluate(s.pos, s.pawnTable, alpha, beta)
		bestValue = standPat

		if standPat >= beta {
			s.tt.Store(s.pos.Hash, 0, AdjustScoreToTT(standPat, ply), TTLowerBound, board.PackedMove(0), false)
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat+QueenValue < alpha {
			return alpha
		}
	}

	var moves *board.MoveList
	if inCheck {
		moves = s.pos.GenerateLegalMoves()
	} else {
		moves = s.pos.GenerateCaptures()
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !inCheck && move.IsCapture(s.pos) {
			captureValue := qsCaptureValue(s.pos, move)
			if standPat+captureValue+200 < alpha && !move.IsPromotion() {
				continue
			}
			if SEE(s.pos, move) < 0 {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			s.pos.UnmakeMove(move, undo)
			continue
		}

		score := -s.quiescence(ply+1, qPly+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if score > bestValue {
			bestValue = score
			bestMove = move
			if score > alpha {
				alpha = score
				if score >= beta {
					break
				}
			}
		}
	}

	if inCheck && bestValue == -MateScore+ply && moves.Len() == 0 {
		return -MateScore + ply
	}

	var ttFlag TTFlag
	switch {
	case bestValue >= beta:
		ttFlag = TTLowerBound
	case bestValue > originalAlpha:
		ttFlag = TTExact
	default:
		ttFlag = TTUpperBound
	}
	s.tt.Store(s.pos.Hash, 0, AdjustScoreToTT(bestValue, ply), ttFlag, Pack(bestMove, s.pos), false)

	return bestValue
}

// qsCaptureValue returns the material value gained by a capture, used for
// delta pruning in quiescence search.
func qsCaptureValue(pos *board.Position, move board.Move) int {
	var value int
	if move.IsEnPassant() {
		value = PawnValue
	} else if captured := pos.PieceAt(move.To()); captured != board.NoPiece {
		value = pieceValues[captured.Type()]
	}
	if move.IsPromotion() {
		value += pieceValues[move.Promotion()] - PawnValue
	}
	return value
}

// Pack converts a live move plus the position it was generated in into its
// transposition-table-safe packed form. Packing board.NoMove yields the
// zero PackedMove, which Probe never matches against a stored best move.
func Pack(m board.Move, pos *board.Position) board.PackedMove {
	if m == board.NoMove {
		return board.PackedMove(0)
	}
	moved := pos.PieceAt(m.From())
	var captured board.Piece
	if m.IsEnPassant() {
		captured = board.NewPiece(board.Pawn, pos.SideToMove.Other())
	} else {
		captured = pos.PieceAt(m.To())
	}
	return board.Pack(m, moved, captured)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
