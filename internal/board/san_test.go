package board

import "testing"

func TestToSANBasic(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		move Move
		want string
	}{
		{NewMove(E2, E4), "e4"},
		{NewMove(G1, F3), "Nf3"},
	}

	for _, tc := range tests {
		got := tc.move.ToSAN(pos)
		if got != tc.want {
			t.Errorf("ToSAN(%s) = %q, want %q", tc.move, got, tc.want)
		}
	}
}

func TestToSANDisambiguation(t *testing.T) {
	// Two white knights, both able to reach b3.
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/N1N1K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	san := NewMove(A1, B3).ToSAN(pos)
	if san != "Nab3" {
		t.Errorf("disambiguated ToSAN = %q, want %q", san, "Nab3")
	}
}

func TestToSANCheckmate(t *testing.T) {
	// Fool's mate: 1. f3 e5 2. g4 Qh4#
	pos, err := ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	san := NewMove(D8, H4).ToSAN(pos)
	if san != "Qh4#" {
		t.Errorf("ToSAN = %q, want %q", san, "Qh4#")
	}
}

func TestParseSANRoundTrip(t *testing.T) {
	pos := NewPosition()

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		san := m.ToSAN(pos)

		parsed, err := ParseSAN(san, pos)
		if err != nil {
			t.Errorf("ParseSAN(%q): %v", san, err)
			continue
		}
		if parsed != m {
			t.Errorf("ParseSAN(%q) = %s, want %s", san, parsed, m)
		}
	}
}

func TestParseSANCastling(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	m, err := ParseSAN("O-O", pos)
	if err != nil {
		t.Fatalf("ParseSAN: %v", err)
	}
	if !m.IsCastling() || m.To() != G1 {
		t.Errorf("ParseSAN(O-O) = %s, want kingside castle", m)
	}
}

func TestMovesToSAN(t *testing.T) {
	pos := NewPosition()
	pv := []Move{NewMove(E2, E4), NewMove(E7, E5), NewMove(G1, F3)}

	got := MovesToSAN(pos, pv)
	want := []string{"e4", "e5", "Nf3"}

	if len(got) != len(want) {
		t.Fatalf("MovesToSAN returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovesToSAN[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
