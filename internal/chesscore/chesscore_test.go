package chesscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ============================================================================
// FEN PARSING / ROUND-TRIP
// ============================================================================

func TestParseFEN_StartingPosition(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	require.NoError(t, err)
	assert.Equal(t, White, pos.Turn)
	assert.True(t, pos.Castling.WhiteKing)
	assert.True(t, pos.Castling.WhiteQueen)
	assert.True(t, pos.Castling.BlackKing)
	assert.True(t, pos.Castling.BlackQueen)
	assert.Equal(t, 0, pos.Halfmove)
	assert.Equal(t, 1, pos.Fullmove)
	assert.Equal(t, startFEN, pos.FEN())
}

func TestParseFEN_RoundTripsMidgamePosition(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	pos, err := ParseFEN(fen)
	require.NoError(t, err)
	assert.Equal(t, fen, pos.FEN())
}

func TestParseFEN_NoCastlingRightsRendersDash(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/4K3 w - - 5 10"
	pos, err := ParseFEN(fen)
	require.NoError(t, err)
	assert.Equal(t, fen, pos.FEN())
}

func TestParseFEN_RejectsMalformedField(t *testing.T) {
	_, err := ParseFEN("not a fen")
	assert.Error(t, err)
}

func TestParseFEN_RejectsWrongRankCount(t *testing.T) {
	_, err := ParseFEN("8/8/8/8/8/8/8 w - - 0 1")
	assert.Error(t, err)
}

func TestParseFEN_RejectsMissingKing(t *testing.T) {
	_, err := ParseFEN("8/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.Error(t, err)
}

func TestParseFEN_RejectsOpponentAlreadyInCheck(t *testing.T) {
	// White to move, but black king sits in check from a white rook: illegal,
	// since the side not to move can never be left in check.
	_, err := ParseFEN("R3k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.Error(t, err)
}

// ============================================================================
// SQUARE
// ============================================================================

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("e4")
	require.NoError(t, err)
	assert.Equal(t, 4, sq.File())
	assert.Equal(t, 3, sq.Rank())
	assert.Equal(t, "e4", sq.String())
}

func TestParseSquare_RejectsOutOfRange(t *testing.T) {
	_, err := ParseSquare("i9")
	assert.Error(t, err)
}

// ============================================================================
// MOVE GENERATION / LEGALITY
// ============================================================================

func TestLegalMoves_StartingPositionHas20Moves(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	require.NoError(t, err)
	assert.Len(t, pos.LegalMoves(), 20)
}

func TestPlay_PawnDoubleStepSetsEnPassantSquare(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	require.NoError(t, err)
	m, err := ParseUCI("e2e4")
	require.NoError(t, err)
	require.True(t, pos.IsLegal(m))
	require.NoError(t, pos.Play(m))
	assert.Equal(t, "e3", pos.EnPassant.String())
	assert.Equal(t, Black, pos.Turn)
}

func TestPlay_EnPassantCapture(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	require.NoError(t, err)
	m, err := ParseUCI("e5d6")
	require.NoError(t, err)
	require.True(t, pos.IsLegal(m))
	require.NoError(t, pos.Play(m))
	assert.True(t, pos.at(NewSquare(3, 4)).isEmpty(), "captured pawn should be removed from d5")
}

func TestPlay_IllegalMoveLeavingKingInCheckRejected(t *testing.T) {
	// White knight on e2 is pinned to the king on e1 by a black rook on e8;
	// moving the only blocker off the e-file is not legal.
	pos, err := ParseFEN("4r1k1/8/8/8/8/8/4N3/4K3 w - - 0 1")
	require.NoError(t, err)
	m := Move{From: NewSquare(4, 1), To: NewSquare(5, 3)} // Ne2-f4, abandons the pin
	assert.False(t, pos.IsLegal(m))
	assert.Error(t, pos.Play(m))
}

func TestPlay_KingsideCastling(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	m, err := ParseUCI("e1g1")
	require.NoError(t, err)
	require.True(t, pos.IsLegal(m))
	require.NoError(t, pos.Play(m))
	assert.Equal(t, King, pos.at(NewSquare(6, 0)).Type)
	assert.Equal(t, Rook, pos.at(NewSquare(5, 0)).Type)
	assert.False(t, pos.Castling.WhiteKing)
	assert.False(t, pos.Castling.WhiteQueen)
}

func TestCastlingMoves_BlockedThroughCheckRejected(t *testing.T) {
	// Black rook on f7 attacks f1, the square the king must pass through.
	pos, err := ParseFEN("4k3/5r2/8/8/8/8/8/R3K2R w KQ - 0 1")
	require.NoError(t, err)
	m := Move{From: NewSquare(4, 0), To: NewSquare(6, 0)}
	assert.False(t, pos.IsLegal(m))
}

func TestPromotion_GeneratesAllFourPieceTypes(t *testing.T) {
	pos, err := ParseFEN("8/P7/8/8/8/8/8/k1K5 w - - 0 1")
	require.NoError(t, err)
	var promos []PieceType
	for _, m := range pos.LegalMoves() {
		if m.From == NewSquare(0, 6) && m.To == NewSquare(0, 7) {
			promos = append(promos, m.Promotion)
		}
	}
	assert.ElementsMatch(t, []PieceType{Queen, Rook, Bishop, Knight}, promos)
}

func TestChess960UCI_RendersCastlingAsKingCapturesRook(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	m := Move{From: NewSquare(4, 0), To: NewSquare(6, 0)}
	assert.Equal(t, "e1h1", pos.Chess960UCI(m))

	m = Move{From: NewSquare(4, 0), To: NewSquare(2, 0)}
	assert.Equal(t, "e1a1", pos.Chess960UCI(m))
}

func TestChess960UCI_NonCastlingMoveUnchanged(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	require.NoError(t, err)
	m, err := ParseUCI("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2e4", pos.Chess960UCI(m))
}

func TestInCheck(t *testing.T) {
	pos, err := ParseFEN("R3k3/8/8/8/8/8/8/4K3 b - - 0 1")
	require.NoError(t, err)
	assert.True(t, pos.InCheck(Black))
	assert.False(t, pos.InCheck(White))
}
