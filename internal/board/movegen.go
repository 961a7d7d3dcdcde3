package board

// GenerateLegalMoves generates all legal moves for the position: pin-aware
// generation when not in check, and dedicated check-evasion generation
// (single check: king moves, capture-the-checker, interpose; double check:
// king moves only) when the side to move is in check.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	if p.Checkers != 0 {
		p.generateEvasions(ml)
		return ml
	}
	pinned := p.ComputePinned()
	p.generateAllMoves(ml, pinned)
	return ml
}

// GeneratePseudoLegalMoves generates moves without pin filtering, so a
// pawn or piece move may leave the king in check. King moves are still
// filtered against attacked squares, and castling moves are included.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml, 0)
	return ml
}

// GenerateMaterialMoves generates captures and promotions only (the
// material-changing subset used to drive quiescence search).
func (p *Position) GenerateMaterialMoves() *MoveList {
	ml := NewMoveList()
	if p.Checkers != 0 {
		p.generateEvasions(ml)
		return ml
	}
	pinned := p.ComputePinned()
	p.generateCaptures(ml, pinned)
	return ml
}

// GenerateCaptures is a legacy alias for GenerateMaterialMoves.
func (p *Position) GenerateCaptures() *MoveList {
	return p.GenerateMaterialMoves()
}

// GenerateNonMaterialMoves generates every legal move that is neither a
// capture nor a promotion (quiet moves), the complement of
// GenerateMaterialMoves among GenerateLegalMoves.
func (p *Position) GenerateNonMaterialMoves() *MoveList {
	all := p.GenerateLegalMoves()
	ml := NewMoveList()
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if !m.IsCapture(p) && !m.IsPromotion() {
			ml.Add(m)
		}
	}
	return ml
}

// pinRay returns the ray (inclusive of the sniper, exclusive of the king)
// that pins sq to the king of color us, or 0 if sq is not pinned. A pinned
// piece may only move along this ray.
func (p *Position) pinRay(sq Square, us Color) Bitboard {
	ksq := p.KingSquare[us]
	them := us.Other()

	if RookAttacks(ksq, 0)&SquareBB(sq) != 0 {
		snipers := RookAttacks(ksq, p.AllOccupied&^SquareBB(sq)) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		for snipers != 0 {
			sniperSq := snipers.PopLSB()
			ray := Between(sniperSq, ksq) | SquareBB(sniperSq)
			if ray&SquareBB(sq) != 0 {
				return ray
			}
		}
	}
	if BishopAttacks(ksq, 0)&SquareBB(sq) != 0 {
		snipers := BishopAttacks(ksq, p.AllOccupied&^SquareBB(sq)) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
		for snipers != 0 {
			sniperSq := snipers.PopLSB()
			ray := Between(sniperSq, ksq) | SquareBB(sniperSq)
			if ray&SquareBB(sq) != 0 {
				return ray
			}
		}
	}
	return 0
}

// generateAllMoves generates the pawn and piece moves whose destination
// respects each piece's pin ray (pinned restricts the set of legal
// destinations to the ray; unpinned pieces get the full mask), king moves
// filtered against the king-absent attack test, and castling moves (via
// generateCastlingMoves, which does its own transit-square checks).
func (p *Position) generateAllMoves(ml *MoveList, pinned Bitboard) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied, pinned)

	knights := p.Pieces[us][Knight] &^ pinned // a pinned knight can never move
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) &^ p.Occupied[us]
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) &^ p.Occupied[us]
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) &^ p.Occupied[us]
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) &^ p.Occupied[us]
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	p.generateKingMoves(ml, us)
	p.generateCastlingMoves(ml, us)
}

// generatePawnMoves generates pawn pushes, captures, promotions, and en
// passant, restricting pinned pawns to their pin ray. En passant additionally
// re-validates with the horizontal-pin edge case (§4.4: removing both the
// capturing and captured pawn can expose the king to a rook/queen along the
// fifth/fourth rank), which cannot be expressed as a simple ray restriction.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard, pinned Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addIfLegal := func(from, to Square) bool {
		if pinned.IsSet(from) {
			return p.pinRay(from, us).IsSet(to)
		}
		return true
	}

	nonPromo := push1 & ^promotionRank
	for nonPromo != 0 {
		to := nonPromo.PopLSB()
		from := Square(int(to) - pushDir)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	for push2 != 0 {
		to := push2.PopLSB()
		from := Square(int(to) - 2*pushDir)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			if p.enPassantLegal(from, p.EnPassant, us) {
				ml.Add(NewEnPassant(from, p.EnPassant))
			}
		}
	}
}

// enPassantLegal performs the full make/unmake-equivalent check for the
// en-passant discovered-check edge case: removing the capturing pawn from
// its square AND the captured pawn from its square can open a rank for an
// enemy rook/queen onto our king, something no single pin ray precomputed
// before the move can capture. Resolving spec's open question: we test
// this directly rather than approximating it.
func (p *Position) enPassantLegal(from, capSq Square, us Color) bool {
	them := us.Other()
	ksq := p.KingSquare[us]

	var capturedPawnSq Square
	if us == White {
		capturedPawnSq = capSq - 8
	} else {
		capturedPawnSq = capSq + 8
	}

	occAfter := p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedPawnSq) | SquareBB(capSq)
	attackers := RookAttacks(ksq, occAfter) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
	attackers |= BishopAttacks(ksq, occAfter) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
	return attackers == 0
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// generateKingMoves generates king moves (non-castling), filtering out any
// destination attacked with the king itself removed from the occupancy (so
// a king cannot "escape" along the checking ray by stepping back onto it).
func (p *Position) generateKingMoves(ml *MoveList, us Color) {
	from := p.KingSquare[us]
	them := us.Other()
	occWithoutKing := p.AllOccupied &^ SquareBB(from)

	attacks := KingAttacks(from) &^ p.Occupied[us]
	for attacks != 0 {
		to := attacks.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(NewMove(from, to))
		}
	}
}

// generateCastlingMoves generates castling moves.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	if p.Checkers != 0 {
		return
	}

	if us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			if p.AllOccupied&((1<<F1)|(1<<G1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
					ml.Add(NewCastling(E1, G1))
				}
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B1)|(1<<C1)|(1<<D1)) == 0 {
				if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
					ml.Add(NewCastling(E1, C1))
				}
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			if p.AllOccupied&((1<<F8)|(1<<G8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
					ml.Add(NewCastling(E8, G8))
				}
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			if p.AllOccupied&((1<<B8)|(1<<C8)|(1<<D8)) == 0 {
				if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
					ml.Add(NewCastling(E8, C8))
				}
			}
		}
	}
}

// generateCaptures generates capture and promotion moves only, pin-aware.
func (p *Position) generateCaptures(ml *MoveList, pinned Bitboard) {
	us := p.SideToMove
	them := us.Other()
	enemies := p.Occupied[them]
	occupied := p.AllOccupied

	pawns := p.Pieces[us][Pawn]
	var attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addIfLegal := func(from, to Square) bool {
		if pinned.IsSet(from) {
			return p.pinRay(from, us).IsSet(to)
		}
		return true
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addIfLegal(from, to) {
			ml.Add(NewMove(from, to))
		}
	}

	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	empty := ^occupied
	var push1 Bitboard
	if us == White {
		push1 = pawns.North() & empty & Rank8
	} else {
		push1 = pawns.South() & empty & Rank1
	}
	for push1 != 0 {
		to := push1.PopLSB()
		from := Square(int(to) - pushDir)
		if addIfLegal(from, to) {
			addPromotions(ml, from, to)
		}
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			if p.enPassantLegal(from, p.EnPassant, us) {
				ml.Add(NewEnPassant(from, p.EnPassant))
			}
		}
	}

	knights := p.Pieces[us][Knight] &^ pinned
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & enemies
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & enemies
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & enemies
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & enemies
		if pinned.IsSet(from) {
			attacks &= p.pinRay(from, us)
		}
		for attacks != 0 {
			ml.Add(NewMove(from, attacks.PopLSB()))
		}
	}

	from := p.KingSquare[us]
	occWithoutKing := occupied &^ SquareBB(from)
	attacks := KingAttacks(from) & enemies
	for attacks != 0 {
		to := attacks.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(NewMove(from, to))
		}
	}
}

// generateEvasions generates the legal move set while in check: king moves
// (tested against the king-absent attack map so the king cannot step back
// along the checking ray), plus — only when exactly one piece gives check —
// captures of the checking piece and interpositions along the checking ray,
// both restricted away from pinned pieces.
func (p *Position) generateEvasions(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	occWithoutKing := p.AllOccupied &^ SquareBB(ksq)

	// King moves are always legal evasions to consider, check count aside.
	kingAttacks := KingAttacks(ksq) &^ p.Occupied[us]
	for kingAttacks != 0 {
		to := kingAttacks.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(NewMove(ksq, to))
		}
	}

	if p.Checkers.PopCount() > 1 {
		// Double check: only the king can move.
		return
	}

	checkerSq := p.Checkers.LSB()
	target := SquareBB(checkerSq)
	if isSlider(p.PieceAt(checkerSq).Type()) {
		target |= Between(checkerSq, ksq)
	}

	pinned := p.ComputePinned()
	restrict := func(from Square, dest Bitboard) Bitboard {
		dest &= target
		if pinned.IsSet(from) {
			dest &= p.pinRay(from, us)
		}
		return dest
	}

	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		dest := restrict(from, KnightAttacks(from)&^p.Occupied[us])
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		dest := restrict(from, BishopAttacks(from, occupied)&^p.Occupied[us])
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		dest := restrict(from, RookAttacks(from, occupied)&^p.Occupied[us])
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		dest := restrict(from, QueenAttacks(from, occupied)&^p.Occupied[us])
		for dest != 0 {
			ml.Add(NewMove(from, dest.PopLSB()))
		}
	}

	// Pawn evasions: pushes/captures that land on the interpose-or-capture
	// target, plus the en-passant special case (capturing a checking pawn
	// off the board even though its square is not "target" once it has
	// moved — handled because target includes the checker's own square).
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied
	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addPush := func(to Square, dist int) {
		from := Square(int(to) - dist)
		if !target.IsSet(to) {
			return
		}
		if pinned.IsSet(from) && !p.pinRay(from, us).IsSet(to) {
			return
		}
		if promotionRank.IsSet(to) {
			addPromotions(ml, from, to)
		} else {
			ml.Add(NewMove(from, to))
		}
	}
	for bb := push1; bb != 0; {
		to := bb.PopLSB()
		addPush(to, pushDir)
	}
	for bb := push2; bb != 0; {
		to := bb.PopLSB()
		addPush(to, 2*pushDir)
	}
	for bb := attackL; bb != 0; {
		to := bb.PopLSB()
		addPush(to, pushDir-1)
	}
	for bb := attackR; bb != 0; {
		to := bb.PopLSB()
		addPush(to, pushDir+1)
	}

	if p.EnPassant != NoSquare {
		var capturedPawnSq Square
		if us == White {
			capturedPawnSq = p.EnPassant - 8
		} else {
			capturedPawnSq = p.EnPassant + 8
		}
		if capturedPawnSq == checkerSq {
			epBB := SquareBB(p.EnPassant)
			var epAttackers Bitboard
			if us == White {
				epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
			} else {
				epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
			}
			for epAttackers != 0 {
				from := epAttackers.PopLSB()
				if (!pinned.IsSet(from) || p.pinRay(from, us).IsSet(p.EnPassant)) &&
					p.enPassantLegal(from, p.EnPassant, us) {
					ml.Add(NewEnPassant(from, p.EnPassant))
				}
			}
		}
	}
}

func isSlider(pt PieceType) bool {
	return pt == Bishop || pt == Rook || pt == Queen
}

// IsLegal returns true if the move is legal in the current position. Kept
// as a make/unmake-based cross-check (spec §8's invariant testing ground)
// even though GenerateLegalMoves no longer calls it on its hot path.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			return true
		}
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	attacked := p.IsSquareAttacked(ksq, them)
	p.UnmakeMove(m, undo)
	return !attacked
}

// IsLegalSoft reports whether m is legal in the current position without
// assuming m came from this position's own generator — used to validate a
// stale move pulled from the transposition/killer tables before trusting
// it. It is always a subset of what GenerateLegalMoves would produce:
// first checks m is pseudo-legal (the moving piece exists, belongs to the
// side to move, and the destination is reachable for its type), then
// defers to IsLegal for the check-safety test.
func (p *Position) IsLegalSoft(m Move) bool {
	if m == NoMove {
		return false
	}
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return false
	}
	if p.Occupied[p.SideToMove].IsSet(to) {
		return false
	}

	pt := piece.Type()
	switch {
	case m.IsCastling():
		if pt != King {
			return false
		}
		castles := NewMoveList()
		p.generateCastlingMoves(castles, p.SideToMove)
		return castles.Contains(m)
	case m.IsEnPassant():
		if pt != Pawn || to != p.EnPassant || !p.pawnPseudoTargets(from).IsSet(to) {
			return false
		}
	case m.IsPromotion():
		if pt != Pawn || !(to.Rank() == 0 || to.Rank() == 7) || !p.pawnPseudoTargets(from).IsSet(to) {
			return false
		}
	default:
		var reach Bitboard
		switch pt {
		case Pawn:
			if to.Rank() == 0 || to.Rank() == 7 || to == p.EnPassant {
				return false
			}
			reach = p.pawnPseudoTargets(from)
		case Knight:
			reach = KnightAttacks(from)
		case Bishop:
			reach = BishopAttacks(from, p.AllOccupied)
		case Rook:
			reach = RookAttacks(from, p.AllOccupied)
		case Queen:
			reach = QueenAttacks(from, p.AllOccupied)
		case King:
			reach = KingAttacks(from)
		}
		if !reach.IsSet(to) {
			return false
		}
	}

	return p.IsLegal(m)
}

// pawnPseudoTargets returns every square a pawn on from could move to
// (pushes and captures), ignoring check/pin legality.
func (p *Position) pawnPseudoTargets(from Square) Bitboard {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]
	empty := ^p.AllOccupied
	fromBB := SquareBB(from)

	var push1, push2, attacks Bitboard
	if us == White {
		push1 = fromBB.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attacks = (fromBB.NorthWest() | fromBB.NorthEast()) & enemies
	} else {
		push1 = fromBB.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attacks = (fromBB.SouthWest() | fromBB.SouthEast()) & enemies
	}
	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		if us == White {
			attacks |= (fromBB.NorthWest() | fromBB.NorthEast()) & epBB
		} else {
			attacks |= (fromBB.SouthWest() | fromBB.SouthEast()) & epBB
		}
	}
	return push1 | push2 | attacks
}

// GivesCheck reports whether making m would put the opponent's king in
// check, without making it: direct checks are read from the attack tables
// at the destination square, and discovered checks from the sliders that
// see the opponent's king once from is vacated.
func (p *Position) GivesCheck(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return false
	}
	pt := piece.Type()
	if m.IsPromotion() {
		pt = m.Promotion()
	}
	theirKing := p.KingSquare[them]

	occAfter := (p.AllOccupied &^ SquareBB(from)) | SquareBB(to)
	var direct Bitboard
	switch pt {
	case Pawn:
		direct = PawnAttacks(to, us) & SquareBB(theirKing)
	case Knight:
		direct = KnightAttacks(to) & SquareBB(theirKing)
	case Bishop:
		direct = BishopAttacks(to, occAfter) & SquareBB(theirKing)
	case Rook:
		direct = RookAttacks(to, occAfter) & SquareBB(theirKing)
	case Queen:
		direct = QueenAttacks(to, occAfter) & SquareBB(theirKing)
	}
	if direct != 0 {
		return true
	}

	// Discovered check: moving from's piece away from the king's line of
	// sight unmasks a slider. Equivalent to asking whether `from` lies on
	// a pin ray of the opponent's king with respect to our own sliders.
	if RookAttacks(theirKing, 0)&SquareBB(from) != 0 {
		snipers := RookAttacks(theirKing, occAfter) & (p.Pieces[us][Rook] | p.Pieces[us][Queen])
		if snipers != 0 {
			return true
		}
	}
	if BishopAttacks(theirKing, 0)&SquareBB(from) != 0 {
		snipers := BishopAttacks(theirKing, occAfter) & (p.Pieces[us][Bishop] | p.Pieces[us][Queen])
		if snipers != 0 {
			return true
		}
	}

	if m.IsCastling() {
		var rookTo Square
		if to > from {
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookTo = NewSquare(3, from.Rank())
		}
		if RookAttacks(rookTo, occAfter)&SquareBB(theirKing) != 0 {
			return true
		}
	}

	return false
}

// MakeMove applies a move to the position and returns undo information.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		PawnKey:        p.PawnKey,
		Checkers:       p.Checkers,
		Valid:          false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}

	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	irreversible := pt == Pawn

	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
		p.PawnKey ^= zobristPiece[them][Pawn][capturedSq]
		irreversible = true
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
		if captured.Type() == Pawn {
			p.PawnKey ^= zobristPiece[them][Pawn][to]
		}
		irreversible = true
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]
	if pt == Pawn {
		p.PawnKey ^= zobristPiece[us][Pawn][from]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
		p.PawnKey ^= zobristPiece[us][Pawn][to]
	}

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
		irreversible = true
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	if p.CastlingRights != undo.CastlingRights {
		irreversible = true
	}

	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if irreversible {
		p.HalfMoveClock = 0
		p.ResetKeyHistory()
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()
	_ = p.PushKey()

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.PopKey()

	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.Checkers = undo.Checkers
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		var rookFrom, rookTo Square
		if to > from {
			rookFrom = NewSquare(7, from.Rank())
			rookTo = NewSquare(5, from.Rank())
		} else {
			rookFrom = NewSquare(0, from.Rank())
			rookTo = NewSquare(3, from.Rank())
		}
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is drawn by rule: stalemate, the
// fifty-move rule, insufficient material, or a claimable threefold
// repetition. Checkmate takes precedence over the fifty-move rule: a
// checkmated position is never reported as drawn.
func (p *Position) IsDraw() bool {
	if p.InCheck() && !p.HasLegalMoves() {
		return false
	}
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	if p.HasRepeated(3) {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
