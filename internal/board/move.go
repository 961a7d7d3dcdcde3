package board

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-13: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
// bits 14-15: flags (0=normal, 1=promotion, 2=en passant, 3=castling)
type Move uint16

// Move flags
const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	// promo: Knight=0, Bishop=1, Rook=2, Queen=3
	promoIdx := promo - Knight
	return Move(from) | Move(to)<<6 | Move(promoIdx)<<12 | Move(FlagPromotion)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling creates a castling move (king's movement).
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion returns the promotion piece type (only valid if IsPromotion() is true).
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := []byte{'n', 'b', 'r', 'q'}
		s += string(promoChars[m.Promotion()-Knight])
	}

	return s
}

// ParseMove parses a UCI/PACN format move string against pos, which supplies
// the context (piece occupancy, en-passant square) needed to disambiguate
// castling and en-passant from an otherwise-plain from/to pair.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, &ParseError{Field: "move", Value: s, Reason: "must be at least 4 characters"}
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	// Check for promotion
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, &ParseError{Field: "move", Value: s, Reason: "unrecognized promotion piece letter"}
		}
		return NewPromotion(from, to, promo), nil
	}

	// Detect special moves
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, &ParseError{Field: "move", Value: s, Reason: "no piece on origin square"}
	}

	pt := piece.Type()

	// Castling
	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to), nil
	}

	// En passant
	if pt == Pawn && to == pos.EnPassant {
		return NewEnPassant(from, to), nil
	}

	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// PackedMove is the 32-bit hash-table move representation: bits [0:6) from,
// [6:12) to, [12:16) move type, [16:20) moved piece, [20:24) captured piece.
// It is independent of a live Position (unlike Move's promotion encoding,
// which only makes sense alongside the position that produced it), so it is
// what transposition/pawn/eval table entries store.
type PackedMove uint32

// moveType values for PackedMove's type nibble. These are distinct from
// Move's 2-bit Flag encoding because PackedMove also needs to name which
// piece a promotion produces without consulting a Position.
const (
	mtNormal uint32 = iota
	mtEnPassant
	mtCastling
	mtPromoKnight
	mtPromoBishop
	mtPromoRook
	mtPromoQueen
)

// Pack converts a live Move plus the moving/captured piece into the
// position-independent 32-bit hash-table form.
func Pack(m Move, moved, captured Piece) PackedMove {
	var mt uint32
	switch {
	case m.IsEnPassant():
		mt = mtEnPassant
	case m.IsCastling():
		mt = mtCastling
	case m.IsPromotion():
		mt = mtPromoKnight + uint32(m.Promotion()-Knight)
	default:
		mt = mtNormal
	}
	return PackedMove(uint32(m.From()) |
		uint32(m.To())<<6 |
		mt<<12 |
		uint32(moved)<<16 |
		uint32(captured)<<20)
}

// Unpack recovers a Move from its packed form. The moved/captured piece
// nibbles are not needed to reconstruct Move itself (Move only encodes
// from/to/flag/promotion) but are returned for callers that want to
// pseudo-legality-check a TT move without touching the board first.
func (pm PackedMove) Unpack() (m Move, moved, captured Piece) {
	from := Square(pm & 0x3F)
	to := Square((pm >> 6) & 0x3F)
	mt := uint32(pm>>12) & 0xF
	moved = Piece((pm >> 16) & 0xF)
	captured = Piece((pm >> 20) & 0xF)

	switch mt {
	case mtEnPassant:
		m = NewEnPassant(from, to)
	case mtCastling:
		m = NewCastling(from, to)
	case mtPromoKnight, mtPromoBishop, mtPromoRook, mtPromoQueen:
		m = NewPromotion(from, to, Knight+PieceType(mt-mtPromoKnight))
	default:
		m = NewMove(from, to)
	}
	return m, moved, captured
}

// UndoInfo stores the state MakeMove saves so UnmakeMove can restore it:
// the captured piece, castling rights, en-passant square, half-move clock,
// hash keys and checkers. UnmakeMove moves the pieces back itself; the
// KingSquare, Pieces, Occupied and AllOccupied fields are left zero by
// MakeMove and are not read by UnmakeMove.
type UndoInfo struct {
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	PawnKey        uint64
	Checkers       Bitboard
	KingSquare     [2]Square     // not filled by MakeMove
	Pieces         [2][6]Bitboard // not filled by MakeMove
	Occupied       [2]Bitboard   // not filled by MakeMove
	AllOccupied    Bitboard      // not filled by MakeMove
	Valid          bool          // True if move was actually applied
}
