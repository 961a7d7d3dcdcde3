package engine

import (
	"testing"

	"github.com/nullmove/chesscore/internal/board"
)

func TestSnapshotStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenSnapshotStore(dir)
	if err != nil {
		t.Fatalf("OpenSnapshotStore: %v", err)
	}
	defer store.Close()

	pos := board.NewPosition()
	eng := NewEngine(4, 1, 1)
	eng.SetDifficulty(Easy)
	if move := eng.Search(pos); move == board.NoMove {
		t.Fatal("Search returned NoMove for starting position")
	}

	if err := eng.SaveSnapshot(store, "startpos"); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	fresh := NewEngine(4, 1, 1)
	restored, err := fresh.LoadSnapshot(store, "startpos")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if restored == 0 {
		t.Error("expected at least one entry restored")
	}

	entry, found := fresh.tt.Probe(pos.Hash)
	if !found {
		t.Error("expected root position to be present after restore")
	}
	if entry.Depth == 0 {
		t.Error("restored entry has zero depth")
	}
}
