package engine

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/nullmove/chesscore/internal/board"
)

// SearchInfo reports progress of an in-flight or completed search,
// published to Engine.OnInfo at the end of every completed depth (spec
// §6.3's "the search publishes status updates ... on every completed
// depth").
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	PVSAN    string // PV rendered in Standard Algebraic Notation, for logging
	HashFull int    // permille of hash table used
}

// SearchLimits specifies constraints on a search. Depth, Nodes and
// MoveTime are independent stopping conditions. Depth and MoveTime stop
// the search as soon as they are reached; Nodes is compared with the node
// count only when a depth completes, so the search stops after the first
// completed iteration that reaches it.
type SearchLimits struct {
	Depth           int           // maximum depth (0 = MaxPly)
	Nodes           uint64        // maximum nodes (0 = unlimited)
	MoveTime        time.Duration // wall-clock budget for this move (0 = unlimited)
	RestrictToMoves []board.Move  // if non-empty, only these root moves are considered
}

// SearchResult is the outcome of one principal-variation search.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
	Depth int
}

// Difficulty maps a coarse strength setting onto concrete search limits.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps a Difficulty to the SearchLimits it applies.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 7, MoveTime: 1 * time.Second},
	Hard:   {Depth: 40, MoveTime: 3 * time.Second},
}

// Engine drives a single independent search (spec §5: one Position, one
// move/state stack, one killer/history table, one TT/ET/PT set per
// search instance). NewEngine builds each Engine's own tables, so separate
// Engines share no mutable state; the tables themselves do no locking.
type Engine struct {
	tt        *TranspositionTable
	pawnTable *PawnTable
	evalTable *EvalTable
	searcher  *Searcher

	difficulty Difficulty
	interrupt  atomic.Bool

	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with hash tables sized from the given
// memory budgets (spec §5 resource policy: "hash tables are sized
// up-front from a memory budget; they never grow").
func NewEngine(ttSizeMB, pawnTableSizeMB, evalTableSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	pawnTable := NewPawnTable(pawnTableSizeMB)
	e := &Engine{
		tt:         tt,
		pawnTable:  pawnTable,
		evalTable:  NewEvalTable(evalTableSizeMB),
		difficulty: Medium,
	}
	e.searcher = NewSearcher(tt, pawnTable)
	return e
}

// SetDifficulty sets the engine's default difficulty, used by Search.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Search finds the best move for pos using the engine's current
// difficulty setting.
func (e *Engine) Search(pos *board.Position) board.Move {
	result := e.SearchWithLimits(pos, DifficultySettings[e.difficulty])
	return result.Move
}

// SearchWithLimits runs iterative deepening under the given limits and
// returns the deepest completed result. The deadline is checked at every
// node (spec §4.6.4) and the node limit after each completed depth; on
// cancellation the best move from the last fully completed iteration is
// returned.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) SearchResult {
	e.interrupt.Store(false)

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = time.Now().Add(limits.MoveTime)
	}
	dl := NewDeadline(deadline, &e.interrupt)

	e.searcher.SetRootMoveFilter(limits.RestrictToMoves, nil)

	startTime := time.Now()
	var result SearchResult

	move, score := e.searcher.IterativeDeepen(pos, maxDepth, dl, func(depth, sc int, pv []board.Move, nodes uint64) {
		result = SearchResult{Move: pv0(pv), Score: sc, PV: pv, Depth: depth}
		if limits.Nodes > 0 && nodes >= limits.Nodes {
			e.interrupt.Store(true)
		}
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    sc,
				Nodes:    nodes,
				Time:     time.Since(startTime),
				PV:       pv,
				PVSAN:    formatPVSAN(pos, pv),
				HashFull: e.tt.HashFull(),
			})
		}
	})

	if result.Move == board.NoMove {
		result = SearchResult{Move: move, Score: score, PV: e.searcher.GetPV(), Depth: maxDepth}
	}
	return result
}

// formatPVSAN renders a principal variation in Standard Algebraic
// Notation against the position it was found from, for human-readable
// search logging.
func formatPVSAN(pos *board.Position, pv []board.Move) string {
	if len(pv) == 0 {
		return ""
	}
	return strings.Join(board.MovesToSAN(pos, pv), " ")
}

func pv0(pv []board.Move) board.Move {
	if len(pv) == 0 {
		return board.NoMove
	}
	return pv[0]
}

// SearchMultiPV finds the numPV best distinct root moves, by running
// successive searches that exclude previously-found best moves.
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits, numPV int) []SearchResult {
	if numPV <= 0 {
		numPV = 1
	}

	results := make([]SearchResult, 0, numPV)
	var excluded []board.Move

	for i := 0; i < numPV; i++ {
		e.interrupt.Store(false)

		maxDepth := limits.Depth
		if maxDepth <= 0 || maxDepth > MaxPly {
			maxDepth = MaxPly
		}
		var deadline time.Time
		if limits.MoveTime > 0 {
			deadline = time.Now().Add(limits.MoveTime)
		}
		dl := NewDeadline(deadline, &e.interrupt)
		e.searcher.SetRootMoveFilter(limits.RestrictToMoves, excluded)

		move, score := e.searcher.IterativeDeepen(pos, maxDepth, dl, nil)
		if move == board.NoMove {
			break
		}

		results = append(results, SearchResult{
			Move:  move,
			Score: score,
			PV:    e.searcher.GetPV(),
			Depth: maxDepth,
		})
		excluded = append(excluded, move)
	}

	for i := 0; i < len(results)-1; i++ {
		best := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[best].Score {
				best = j
			}
		}
		if best != i {
			results[i], results[best] = results[best], results[i]
		}
	}

	return results
}

// SaveSnapshot persists the engine's transposition table into store under
// name, for resuming a warmed-up hash table in a later process.
func (e *Engine) SaveSnapshot(store *SnapshotStore, name string) error {
	return store.Save(name, e.tt)
}

// LoadSnapshot restores the engine's transposition table from a
// previously saved image and returns the number of slots restored.
func (e *Engine) LoadSnapshot(store *SnapshotStore, name string) (int, error) {
	return store.Load(name, e.tt)
}

// Stop interrupts any search in progress on this engine.
func (e *Engine) Stop() {
	e.interrupt.Store(true)
	e.searcher.Stop()
}

// Clear resets the transposition table, pawn table, eval table and move
// ordering state, as if the engine had just been constructed.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.pawnTable.Clear()
	e.evalTable.Clear()
	e.searcher.orderer = NewMoveOrderer()
}

// Perft counts leaf nodes at the given depth (spec §4.7), used to
// validate move generation against published reference counts.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position from the side to
// move's perspective, using the engine's pawn-structure cache.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos, e.pawnTable, -Infinity, Infinity)
}

// ScoreToString renders a search score for display: "Mate in N" or
// "Mated in N" (N in moves) for mate scores, otherwise the score in pawns
// with two decimals, e.g. "-1.05".
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	frac := itoa(centipawns)
	if centipawns < 10 {
		frac = "0" + frac
	}
	return sign + itoa(pawns) + "." + frac
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
