// Package uci parses the subset of Universal Chess Interface output lines
// this broker cares about: bestmove and info. A line whose leading token is
// neither is silently ignored, matching the tolerant style real UCI consumers
// use since engines routinely emit id/option/readyok/copyprotection chatter
// nobody downstream needs. Once a line commits to "bestmove" or "info",
// though, its body must be well-formed: any other malformed token is a
// ParseError, surfaced by the broker as a Protocol error that terminates the
// submit stream.
package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ocx/engine-broker/internal/chesscore"
)

// ParseError reports a malformed bestmove/info line.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func errUnexpectedToken(tok string) error {
	return &ParseError{Msg: fmt.Sprintf("uci: unexpected token %q", tok)}
}

func errUnexpectedEndOfLine() error {
	return &ParseError{Msg: "uci: unexpected end of line"}
}

func errUnexpectedLineBreak() error {
	return &ParseError{Msg: "uci: unexpected line break"}
}

func errInvalidInteger(field, v string, cause error) error {
	return &ParseError{Msg: fmt.Sprintf("uci: invalid integer for %s: %q: %v", field, v, cause)}
}

func errInvalidMove(v string, cause error) error {
	return &ParseError{Msg: fmt.Sprintf("uci: invalid move %q: %v", v, cause)}
}

// read consumes the next whitespace-separated token from s, returning the
// token and the remainder (with leading whitespace of the remainder trimmed
// away by the caller's next read, not here).
func read(s string) (tok string, rest string) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", ""
	}
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// readUntil consumes tokens from s until stop(token) is true, returning the
// consumed tokens joined by single spaces, and everything else (including the
// stopping token) verbatim as rest. If stop never matches, all of s is
// consumed and rest is "".
func readUntil(s string, stop func(string) bool) (consumed string, rest string) {
	var parts []string
	remaining := s
	for {
		trimmed := strings.TrimLeft(remaining, " \t")
		if trimmed == "" {
			return strings.Join(parts, " "), ""
		}
		tok, after := read(trimmed)
		if stop(tok) {
			return strings.Join(parts, " "), trimmed
		}
		parts = append(parts, tok)
		remaining = after
	}
}

type Eval struct {
	// exactly one of these is meaningful; Mate takes precedence when both
	// are somehow set, which never happens from a well-formed parse.
	Cp     int64
	Mate   int32
	IsMate bool
}

func (e Eval) Negate() Eval {
	if e.IsMate {
		return Eval{Mate: -e.Mate, IsMate: true}
	}
	return Eval{Cp: -e.Cp}
}

func (e Eval) String() string {
	if e.IsMate {
		return "mate " + strconv.FormatInt(int64(e.Mate), 10)
	}
	return "cp " + strconv.FormatInt(e.Cp, 10)
}

type Score struct {
	Eval       Eval
	Lowerbound bool
	Upperbound bool
}

// Bestmove is the terminal line of an analysis; Ponder is empty when absent.
type Bestmove struct {
	Move   string
	Ponder string
}

// Info is a single "info ..." line, with every field left at its zero value
// when the engine didn't report it. HasMultiPv, HasDepth and HasPv track
// whether those three fields actually appeared so callers (the emit
// aggregator) can distinguish absent from zero; the other fields carry no
// such flag.
// Refutation and Currline are keyed maps (by the refuted move, and by CPU
// number, respectively), not flat lists — losing that key would conflate
// independent lines from a multi-line SMP engine.
type Info struct {
	MultiPv        int
	Depth          int
	Seldepth       int
	Time           time.Duration
	Nodes          int64
	Score          *Score
	Currmove       string
	Currmovenumber int
	Hashfull       int
	Nps            int64
	Tbhits         int64
	Sbhits         int64
	Cpuload        int
	Refutation     map[string][]string
	Currline       map[int][]string
	Pv             []string
	Str            string

	HasMultiPv bool
	HasDepth   bool
	HasPv      bool
}

// Out is the parsed result of one UCI line: exactly one of Bestmove or Info
// is non-nil, or both are nil for an ignored line.
type Out struct {
	Bestmove *Bestmove
	Info     *Info
}

func isMoveToken(tok string) bool {
	_, err := chesscore.ParseUCI(tok)
	return err == nil
}

// ParseLine tokenizes and interprets one line of provider stdout. A line
// whose leading token is neither "bestmove" nor "info" is ignored: (nil, nil).
// A malformed bestmove/info body returns a non-nil error.
func ParseLine(line string) (*Out, error) {
	if strings.ContainsAny(line, "\r\n") {
		return nil, errUnexpectedLineBreak()
	}
	tok, rest := read(line)
	switch tok {
	case "bestmove":
		bm, err := parseBestmove(rest)
		if err != nil {
			return nil, err
		}
		return &Out{Bestmove: bm}, nil
	case "info":
		info, err := parseInfo(rest)
		if err != nil {
			return nil, err
		}
		return &Out{Info: info}, nil
	default:
		return nil, nil
	}
}

func parseBestmove(rest string) (*Bestmove, error) {
	moveTok, rest := read(rest)
	if moveTok == "" || moveTok == "(none)" {
		return &Bestmove{}, nil
	}
	bm := &Bestmove{Move: moveTok}
	kw, rest := read(rest)
	switch kw {
	case "":
		return bm, nil
	case "ponder":
		ponderTok, rest := read(rest)
		if ponderTok == "" {
			return nil, errUnexpectedEndOfLine()
		}
		if ponderTok != "(none)" {
			bm.Ponder = ponderTok
		}
		if extra, _ := read(rest); extra != "" {
			return nil, errUnexpectedToken(extra)
		}
		return bm, nil
	default:
		return nil, errUnexpectedToken(kw)
	}
}

func parseInfo(rest string) (*Info, error) {
	info := &Info{}
	for {
		tok, after := read(rest)
		if tok == "" {
			break
		}
		rest = after
		var err error
		switch tok {
		case "multipv":
			var v string
			v, rest, err = readToken(rest, "multipv")
			if err == nil {
				info.MultiPv, err = parseIntField("multipv", v)
				info.HasMultiPv = err == nil
			}
		case "depth":
			var v string
			v, rest, err = readToken(rest, "depth")
			if err == nil {
				info.Depth, err = parseIntField("depth", v)
				info.HasDepth = err == nil
			}
		case "seldepth":
			var v string
			v, rest, err = readToken(rest, "seldepth")
			if err == nil {
				info.Seldepth, err = parseIntField("seldepth", v)
			}
		case "time":
			var v string
			var n int64
			v, rest, err = readToken(rest, "time")
			if err == nil {
				n, err = parseInt64Field("time", v)
				info.Time = time.Duration(n) * time.Millisecond
			}
		case "nodes":
			var v string
			v, rest, err = readToken(rest, "nodes")
			if err == nil {
				info.Nodes, err = parseInt64Field("nodes", v)
			}
		case "score":
			info.Score, rest, err = parseScore(rest)
		case "currmove":
			var v string
			v, rest, err = readToken(rest, "currmove")
			if err == nil {
				if _, perr := chesscore.ParseUCI(v); perr != nil {
					err = errInvalidMove(v, perr)
				} else {
					info.Currmove = v
				}
			}
		case "currmovenumber":
			var v string
			v, rest, err = readToken(rest, "currmovenumber")
			if err == nil {
				info.Currmovenumber, err = parseIntField("currmovenumber", v)
			}
		case "hashfull":
			var v string
			v, rest, err = readToken(rest, "hashfull")
			if err == nil {
				info.Hashfull, err = parseIntField("hashfull", v)
			}
		case "nps":
			var v string
			v, rest, err = readToken(rest, "nps")
			if err == nil {
				info.Nps, err = parseInt64Field("nps", v)
			}
		case "tbhits":
			var v string
			v, rest, err = readToken(rest, "tbhits")
			if err == nil {
				info.Tbhits, err = parseInt64Field("tbhits", v)
			}
		case "sbhits":
			var v string
			v, rest, err = readToken(rest, "sbhits")
			if err == nil {
				info.Sbhits, err = parseInt64Field("sbhits", v)
			}
		case "cpuload":
			var v string
			v, rest, err = readToken(rest, "cpuload")
			if err == nil {
				info.Cpuload, err = parseIntField("cpuload", v)
			}
		case "refutation":
			var refuted string
			refuted, rest, err = readToken(rest, "refutation")
			if err == nil {
				if _, perr := chesscore.ParseUCI(refuted); perr != nil {
					err = errInvalidMove(refuted, perr)
				} else {
					var moves string
					moves, rest = readUntil(rest, func(t string) bool { return !isMoveToken(t) })
					if info.Refutation == nil {
						info.Refutation = make(map[string][]string)
					}
					if moves == "" {
						info.Refutation[refuted] = nil
					} else {
						info.Refutation[refuted] = strings.Split(moves, " ")
					}
				}
			}
		case "currline":
			var cpunrTok string
			cpunrTok, rest, err = readToken(rest, "currline")
			if err == nil {
				var cpunr int
				cpunr, err = parseIntField("currline", cpunrTok)
				if err == nil {
					var moves string
					moves, rest = readUntil(rest, func(t string) bool { return !isMoveToken(t) })
					if info.Currline == nil {
						info.Currline = make(map[int][]string)
					}
					if moves == "" {
						info.Currline[cpunr] = nil
					} else {
						info.Currline[cpunr] = strings.Split(moves, " ")
					}
				}
			}
		case "pv":
			var moves string
			moves, rest = readUntil(rest, func(t string) bool { return !isMoveToken(t) })
			if moves != "" {
				info.Pv = strings.Split(moves, " ")
			}
			info.HasPv = true
		case "string":
			info.Str = rest
			rest = ""
		default:
			err = errUnexpectedToken(tok)
		}
		if err != nil {
			return nil, err
		}
		if rest == "" {
			break
		}
	}
	if !info.HasMultiPv {
		info.MultiPv = 1
	}
	return info, nil
}

// readToken reads the next token as the value for field, erroring if the
// line ends before a value appears.
func readToken(rest, field string) (string, string, error) {
	v, r := read(rest)
	if v == "" {
		return "", "", errUnexpectedEndOfLine()
	}
	return v, r, nil
}

func parseIntField(field, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errInvalidInteger(field, v, err)
	}
	return n, nil
}

func parseInt64Field(field, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errInvalidInteger(field, v, err)
	}
	return n, nil
}

func parseScore(rest string) (*Score, string, error) {
	sc := &Score{}
	tok, after := read(rest)
	switch tok {
	case "cp":
		v, r, err := readToken(after, "score cp")
		if err != nil {
			return nil, "", err
		}
		n, err := parseInt64Field("score cp", v)
		if err != nil {
			return nil, "", err
		}
		sc.Eval = Eval{Cp: n}
		rest = r
	case "mate":
		v, r, err := readToken(after, "score mate")
		if err != nil {
			return nil, "", err
		}
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, "", errInvalidInteger("score mate", v, err)
		}
		sc.Eval = Eval{Mate: int32(n), IsMate: true}
		rest = r
	case "":
		return nil, "", errUnexpectedEndOfLine()
	default:
		return nil, "", errUnexpectedToken(tok)
	}
	for {
		kw, after := read(rest)
		switch kw {
		case "lowerbound":
			sc.Lowerbound = true
			rest = after
		case "upperbound":
			sc.Upperbound = true
			rest = after
		default:
			return sc, rest, nil
		}
		if rest == "" {
			return sc, rest, nil
		}
	}
}
