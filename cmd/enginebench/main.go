// Command enginebench runs the search on a fixed set of positions and
// reports nodes searched and nodes/second, the quickest way to notice a
// search or evaluation regression between changes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/nullmove/chesscore/internal/board"
	"github.com/nullmove/chesscore/internal/engine"
)

var benchPositions = []string{
	board.StartFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", // Italian Game
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",  // Kiwipete
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",                            // en passant stress
	"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",                                  // KP endgame
}

func main() {
	depth := flag.Int("depth", 9, "fixed search depth")
	ttMB := flag.Int("tt", 64, "transposition table size in MB")
	cpuprofile := flag.String("cpuprofile", "", "write CPU profile to file")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewEngine(*ttMB, 4, 4)

	var totalNodes, posNodes uint64
	eng.OnInfo = func(info engine.SearchInfo) {
		posNodes = info.Nodes
	}

	start := time.Now()

	for i, fen := range benchPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			log.Fatalf("position %d: invalid FEN %q: %v", i, fen, err)
		}

		eng.Clear()
		posNodes = 0
		posStart := time.Now()
		result := eng.SearchWithLimits(pos, engine.SearchLimits{Depth: *depth})
		elapsed := time.Since(posStart)
		totalNodes += posNodes

		fmt.Printf("position %d: depth %d, move %s, score %s, %s\n",
			i, result.Depth, result.Move.String(), engine.ScoreToString(result.Score), elapsed)
	}

	elapsed := time.Since(start)
	fmt.Printf("\n%d positions in %s, %d nodes (%.0f nps)\n",
		len(benchPositions), elapsed, totalNodes, float64(totalNodes)/elapsed.Seconds())
}
