// Command perft validates move generation by counting leaf nodes of the
// legal-move tree from a given position, optionally broken down by root
// move (-divide) to isolate a divergence from a reference count.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nullmove/chesscore/internal/board"
	"github.com/nullmove/chesscore/internal/perft"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN of the position to search from")
	depth := flag.Int("depth", 5, "perft depth")
	divide := flag.Bool("divide", false, "break the count down by root move")
	flag.Parse()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("invalid FEN: %v", err)
	}

	start := time.Now()

	if *divide {
		results := perft.Divide(pos, *depth)
		var total uint64
		for move, nodes := range results {
			fmt.Printf("%s: %d\n", move, nodes)
			total += nodes
		}
		elapsed := time.Since(start)
		fmt.Printf("\nTotal: %d nodes in %s (%s)\n", total, elapsed, nps(total, elapsed))
		return
	}

	nodes := perft.Count(pos, *depth)
	elapsed := time.Since(start)
	fmt.Printf("%d nodes in %s (%s)\n", nodes, elapsed, nps(nodes, elapsed))
}

func nps(nodes uint64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f nps", float64(nodes)/elapsed.Seconds())
}
