package chesscore

import "fmt"

type Move struct {
	From, To   Square
	Promotion  PieceType
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(m.Promotion.letter())
	}
	return s
}

// ParseUCI parses a long-algebraic move token such as "e2e4" or "e7e8q". It
// does not validate legality against any position; callers check that via
// Position.IsLegal.
func ParseUCI(tok string) (Move, error) {
	if len(tok) != 4 && len(tok) != 5 {
		return Move{}, fmt.Errorf("chesscore: malformed move %q", tok)
	}
	from, err := ParseSquare(tok[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(tok[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(tok) == 5 {
		pt := pieceTypeFromLetter(tok[4])
		if pt == NoPieceType || pt == King || pt == Pawn {
			return Move{}, fmt.Errorf("chesscore: bad promotion piece in %q", tok)
		}
		m.Promotion = pt
	}
	return m, nil
}

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingOffsets = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	// pawns
	dir := -1
	if by == White {
		dir = 1
	}
	for _, df := range [2]int{-1, 1} {
		src := NewSquare(sq.File()+df, sq.Rank()-dir)
		if src.Valid() {
			pc := p.at(src)
			if pc.Type == Pawn && pc.Color == by {
				return true
			}
		}
	}
	for _, off := range knightOffsets {
		src := NewSquare(sq.File()+off[0], sq.Rank()+off[1])
		if src.Valid() {
			pc := p.at(src)
			if pc.Type == Knight && pc.Color == by {
				return true
			}
		}
	}
	for _, off := range kingOffsets {
		src := NewSquare(sq.File()+off[0], sq.Rank()+off[1])
		if src.Valid() {
			pc := p.at(src)
			if pc.Type == King && pc.Color == by {
				return true
			}
		}
	}
	for _, dirs := range [2][4][2]int{bishopDirs, rookDirs} {
		wantDiag := dirs == bishopDirs
		for _, off := range dirs {
			f, r := sq.File()+off[0], sq.Rank()+off[1]
			for {
				cur := NewSquare(f, r)
				if !cur.Valid() {
					break
				}
				pc := p.at(cur)
				if !pc.isEmpty() {
					if pc.Color == by && (pc.Type == Queen || (wantDiag && pc.Type == Bishop) || (!wantDiag && pc.Type == Rook)) {
						return true
					}
					break
				}
				f += off[0]
				r += off[1]
			}
		}
	}
	return false
}

func (p *Position) InCheck(c Color) bool {
	var king Square = noSquare
	for s := Square(0); s < 64; s++ {
		pc := p.at(s)
		if pc.Type == King && pc.Color == c {
			king = s
			break
		}
	}
	if king == noSquare {
		return false
	}
	return p.IsAttacked(king, c.Other())
}

// LegalMoves returns every move for the side to move that does not leave its
// own king in check.
func (p *Position) LegalMoves() []Move {
	pseudo := p.pseudoLegalMoves()
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		cp := p.Clone()
		if cp.applyUnchecked(m) == nil && !cp.InCheck(p.Turn) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (p *Position) IsLegal(m Move) bool {
	for _, lm := range p.LegalMoves() {
		if lm.From == m.From && lm.To == m.To && lm.Promotion == m.Promotion {
			return true
		}
	}
	return false
}

// Play validates m against LegalMoves and applies it, mutating p.
func (p *Position) Play(m Move) error {
	if !p.IsLegal(m) {
		return fmt.Errorf("chesscore: illegal move %s in %s", m, p.FEN())
	}
	return p.applyUnchecked(m)
}

func (p *Position) pseudoLegalMoves() []Move {
	var moves []Move
	color := p.Turn
	for s := Square(0); s < 64; s++ {
		pc := p.at(s)
		if pc.isEmpty() || pc.Color != color {
			continue
		}
		switch pc.Type {
		case Pawn:
			moves = append(moves, p.pawnMoves(s, color)...)
		case Knight:
			for _, off := range knightOffsets {
				to := NewSquare(s.File()+off[0], s.Rank()+off[1])
				if to.Valid() && (p.at(to).isEmpty() || p.at(to).Color != color) {
					moves = append(moves, Move{From: s, To: to})
				}
			}
		case King:
			for _, off := range kingOffsets {
				to := NewSquare(s.File()+off[0], s.Rank()+off[1])
				if to.Valid() && (p.at(to).isEmpty() || p.at(to).Color != color) {
					moves = append(moves, Move{From: s, To: to})
				}
			}
			moves = append(moves, p.castlingMoves(s, color)...)
		case Bishop, Rook, Queen:
			moves = append(moves, p.slidingMoves(s, color, pc.Type)...)
		}
	}
	return moves
}

func (p *Position) slidingMoves(from Square, color Color, pt PieceType) []Move {
	var dirs [][2]int
	switch pt {
	case Bishop:
		dirs = bishopDirs[:]
	case Rook:
		dirs = rookDirs[:]
	case Queen:
		dirs = append(append([][2]int{}, bishopDirs[:]...), rookDirs[:]...)
	}
	var moves []Move
	for _, off := range dirs {
		f, r := from.File()+off[0], from.Rank()+off[1]
		for {
			to := NewSquare(f, r)
			if !to.Valid() {
				break
			}
			pc := p.at(to)
			if pc.isEmpty() {
				moves = append(moves, Move{From: from, To: to})
			} else {
				if pc.Color != color {
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
			f += off[0]
			r += off[1]
		}
	}
	return moves
}

func (p *Position) pawnMoves(from Square, color Color) []Move {
	var moves []Move
	dir, startRank, promoRank := 1, 1, 7
	if color == Black {
		dir, startRank, promoRank = -1, 6, 0
	}
	one := NewSquare(from.File(), from.Rank()+dir)
	addPawn := func(to Square) {
		if to.Rank() == promoRank {
			for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
				moves = append(moves, Move{From: from, To: to, Promotion: pt})
			}
		} else {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	if one.Valid() && p.at(one).isEmpty() {
		addPawn(one)
		if from.Rank() == startRank {
			two := NewSquare(from.File(), from.Rank()+2*dir)
			if two.Valid() && p.at(two).isEmpty() {
				moves = append(moves, Move{From: from, To: two})
			}
		}
	}
	for _, df := range [2]int{-1, 1} {
		to := NewSquare(from.File()+df, from.Rank()+dir)
		if !to.Valid() {
			continue
		}
		pc := p.at(to)
		if !pc.isEmpty() && pc.Color != color {
			addPawn(to)
		} else if to == p.EnPassant {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (p *Position) castlingMoves(king Square, color Color) []Move {
	var moves []Move
	rank := 0
	if color == Black {
		rank = 7
	}
	if king != NewSquare(4, rank) {
		return moves
	}
	if p.InCheck(color) {
		return moves
	}
	kingside := p.Castling.WhiteKing
	queenside := p.Castling.WhiteQueen
	if color == Black {
		kingside = p.Castling.BlackKing
		queenside = p.Castling.BlackQueen
	}
	empty := func(files ...int) bool {
		for _, f := range files {
			if !p.at(NewSquare(f, rank)).isEmpty() {
				return false
			}
		}
		return true
	}
	safe := func(files ...int) bool {
		for _, f := range files {
			if p.IsAttacked(NewSquare(f, rank), color.Other()) {
				return false
			}
		}
		return true
	}
	if kingside && empty(5, 6) && safe(4, 5, 6) {
		moves = append(moves, Move{From: king, To: NewSquare(6, rank)})
	}
	if queenside && empty(1, 2, 3) && safe(2, 3, 4) {
		moves = append(moves, Move{From: king, To: NewSquare(2, rank)})
	}
	return moves
}

// applyUnchecked applies m without re-validating legality; used internally by
// LegalMoves' check-simulation and by Play after IsLegal has already confirmed it.
func (p *Position) applyUnchecked(m Move) error {
	moving := p.at(m.From)
	if moving.isEmpty() {
		return fmt.Errorf("chesscore: no piece on %s", m.From)
	}
	color := moving.Color
	rank := 0
	if color == Black {
		rank = 7
	}
	isPawn := moving.Type == Pawn
	isCastle := moving.Type == King && m.From == NewSquare(4, rank) && (m.To == NewSquare(6, rank) || m.To == NewSquare(2, rank))
	isEnPassant := isPawn && m.To == p.EnPassant && m.From.File() != m.To.File()
	capture := !p.at(m.To).isEmpty() || isEnPassant

	p.set(m.From, Piece{})
	placed := moving
	if m.Promotion != NoPieceType {
		placed = Piece{Type: m.Promotion, Color: color}
	}
	p.set(m.To, placed)

	if isEnPassant {
		p.set(NewSquare(m.To.File(), m.From.Rank()), Piece{})
	}
	if isCastle {
		if m.To.File() == 6 {
			p.set(NewSquare(5, rank), p.at(NewSquare(7, rank)))
			p.set(NewSquare(7, rank), Piece{})
		} else {
			p.set(NewSquare(3, rank), p.at(NewSquare(0, rank)))
			p.set(NewSquare(0, rank), Piece{})
		}
	}

	p.updateCastlingRights(m, moving)

	if isPawn && (m.To.Rank()-m.From.Rank() == 2 || m.From.Rank()-m.To.Rank() == 2) {
		p.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	} else {
		p.EnPassant = noSquare
	}

	if isPawn || capture {
		p.Halfmove = 0
	} else {
		p.Halfmove++
	}
	if color == Black {
		p.Fullmove++
	}
	p.Turn = color.Other()
	return nil
}

func (p *Position) updateCastlingRights(m Move, moving Piece) {
	clear := func(sq Square) {
		switch sq {
		case NewSquare(4, 0):
			p.Castling.WhiteKing, p.Castling.WhiteQueen = false, false
		case NewSquare(4, 7):
			p.Castling.BlackKing, p.Castling.BlackQueen = false, false
		case NewSquare(7, 0):
			p.Castling.WhiteKing = false
		case NewSquare(0, 0):
			p.Castling.WhiteQueen = false
		case NewSquare(7, 7):
			p.Castling.BlackKing = false
		case NewSquare(0, 7):
			p.Castling.BlackQueen = false
		}
	}
	clear(m.From)
	clear(m.To)
}

// Chess960UCI renders m the way providers expect castling to appear: as the
// king moving to its own rook's square, rather than the standard two-square hop.
func (p *Position) Chess960UCI(m Move) string {
	moving := p.at(m.From)
	rank := 0
	if moving.Color == Black {
		rank = 7
	}
	if moving.Type == King && m.From == NewSquare(4, rank) {
		if m.To == NewSquare(6, rank) {
			return Move{From: m.From, To: NewSquare(7, rank)}.String()
		}
		if m.To == NewSquare(2, rank) {
			return Move{From: m.From, To: NewSquare(0, rank)}.String()
		}
	}
	return m.String()
}
