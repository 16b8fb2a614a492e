package chesscore

import (
	"fmt"
	"strconv"
	"strings"
)

// Castling rights, keyed by color and side.
type Castling struct {
	WhiteKing, WhiteQueen bool
	BlackKing, BlackQueen bool
}

type Position struct {
	board     [64]Piece
	Turn      Color
	Castling  Castling
	EnPassant Square
	Halfmove  int
	Fullmove  int
}

func emptyPosition() *Position {
	return &Position{EnPassant: noSquare, Fullmove: 1}
}

func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}

func (p *Position) at(s Square) Piece { return p.board[s] }

func (p *Position) set(s Square, pc Piece) { p.board[s] = pc }

// ParseFEN parses standard Forsyth-Edwards Notation. The castling field
// accepts the usual KQkq letters; Shredder/Chess960 file-letter castling
// notation is not accepted since no starting position in this system is
// actually shuffled — only the emitted move notation uses Chess960 style.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return nil, fmt.Errorf("chesscore: malformed fen %q", fen)
	}
	p := emptyPosition()

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("chesscore: fen needs 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range rankStr {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			default:
				pt := pieceTypeFromLetter(byte(lowerRune(c)))
				if pt == NoPieceType || file > 7 {
					return nil, fmt.Errorf("chesscore: bad fen piece placement %q", fen)
				}
				color := White
				if c >= 'a' && c <= 'z' {
					color = Black
				}
				sq := NewSquare(file, rank)
				p.set(sq, Piece{Type: pt, Color: color})
				file++
			}
		}
		if file != 8 {
			return nil, fmt.Errorf("chesscore: bad fen rank length %q", fen)
		}
	}

	switch fields[1] {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return nil, fmt.Errorf("chesscore: bad fen side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				p.Castling.WhiteKing = true
			case 'Q':
				p.Castling.WhiteQueen = true
			case 'k':
				p.Castling.BlackKing = true
			case 'q':
				p.Castling.BlackQueen = true
			default:
				return nil, fmt.Errorf("chesscore: bad fen castling rights %q", fields[2])
			}
		}
	}

	if fields[3] == "-" {
		p.EnPassant = noSquare
	} else {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("chesscore: bad fen en passant square: %w", err)
		}
		p.EnPassant = sq
	}

	if len(fields) > 4 {
		hm, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("chesscore: bad fen halfmove clock %q", fields[4])
		}
		p.Halfmove = hm
	}
	if len(fields) > 5 {
		fm, err := strconv.Atoi(fields[5])
		if err != nil || fm < 1 {
			return nil, fmt.Errorf("chesscore: bad fen fullmove number %q", fields[5])
		}
		p.Fullmove = fm
	}

	if !p.structurallyLegal() {
		return nil, fmt.Errorf("chesscore: illegal position %q", fen)
	}
	return p, nil
}

func lowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// structurallyLegal checks the invariants this broker cares about: exactly one
// king per side, and the side not to move is not currently in check.
func (p *Position) structurallyLegal() bool {
	var wk, bk int
	for s := Square(0); s < 64; s++ {
		pc := p.at(s)
		if pc.Type == King {
			if pc.Color == White {
				wk++
			} else {
				bk++
			}
		}
	}
	if wk != 1 || bk != 1 {
		return false
	}
	opponent := p.Turn.Other()
	return !p.InCheck(opponent)
}

func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.at(NewSquare(file, rank))
			if pc.isEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.fenByte())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if p.Turn == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	rights := ""
	if p.Castling.WhiteKing {
		rights += "K"
	}
	if p.Castling.WhiteQueen {
		rights += "Q"
	}
	if p.Castling.BlackKing {
		rights += "k"
	}
	if p.Castling.BlackQueen {
		rights += "q"
	}
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.Halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.Fullmove))
	return sb.String()
}
