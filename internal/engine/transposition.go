package engine

import (
	"github.com/nullmove/chesscore/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry represents an entry in the transposition table. BestMove is
// stored in its position-independent packed form (spec §6.4) so the slot
// never holds a dangling reference to a promotion/en-passant encoding from
// a different position that happened to collide on the index.
type TTEntry struct {
	Key      uint32          // Upper 32 bits of Zobrist hash for verification
	BestMove board.PackedMove
	Score    int16
	Depth    int8
	Flag     TTFlag
	Age      uint8
	IsPV     bool // was this entry produced by a PV (non-null-window) search
}

// TranspositionTable is a hash table for storing search results.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	mask    uint64
	age     uint8

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	entrySize := uint64(16)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up a position in the transposition table.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++

	idx := hash & tt.mask
	entry := tt.entries[idx]

	if entry.Key == uint32(hash>>32) && entry.Depth > 0 {
		tt.hits++
		return entry, true
	}

	return TTEntry{}, false
}

// Store saves a position in the transposition table. Replacement favors a
// deeper result from the current search generation; an entry from a
// stale generation is always replaced regardless of its recorded depth.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.PackedMove, isPV bool) {
	idx := hash & tt.mask
	entry := &tt.entries[idx]

	if entry.Age != tt.age || depth >= int(entry.Depth) || flag == TTExact {
		if bestMove != 0 || entry.Key != uint32(hash>>32) {
			entry.BestMove = bestMove
		}
		entry.Key = uint32(hash >> 32)
		entry.Score = int16(score)
		entry.Depth = int8(depth)
		entry.Flag = flag
		entry.Age = tt.age
		entry.IsPV = isPV
	}
}

// NewSearch increments the age counter for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == tt.age {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// ForEach visits every occupied slot in index order, stopping early if fn
// returns false. Used by SnapshotStore to serialize the table.
func (tt *TranspositionTable) ForEach(fn func(idx uint64, e TTEntry) bool) {
	for i, e := range tt.entries {
		if e.Depth == 0 {
			continue
		}
		if !fn(uint64(i), e) {
			return
		}
	}
}

// RestoreEntry writes e directly into slot idx, bypassing the usual
// replacement policy. Used by SnapshotStore when reloading a saved image;
// idx values outside the table's current size are ignored, since a
// snapshot taken with a different size budget doesn't map cleanly onto
// this table.
func (tt *TranspositionTable) RestoreEntry(idx uint64, e TTEntry) {
	if idx >= tt.size {
		return
	}
	tt.entries[idx] = e
}

// AdjustScoreFromTT adjusts a mate score read from the table back to the
// current ply's distance-to-root convention.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a mate score for storage so that it is
// meaningful regardless of which ply re-probes it later.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
