package uci

import (
	"strconv"
	"strings"
)

// String renders o back into UCI wire form. Round-tripping through
// ParseLine(o.String()) reproduces an equivalent Out, except that Refutation
// and Currline are maps and so only compare equal up to map iteration order.
func (o *Out) String() string {
	if o == nil {
		return ""
	}
	if o.Bestmove != nil {
		s := "bestmove " + o.Bestmove.Move
		if o.Bestmove.Ponder != "" {
			s += " ponder " + o.Bestmove.Ponder
		}
		return s
	}
	if o.Info != nil {
		return "info " + o.Info.String()
	}
	return ""
}

func (i *Info) String() string {
	var parts []string
	if i.HasMultiPv {
		parts = append(parts, "multipv", strconv.Itoa(i.MultiPv))
	}
	if i.HasDepth {
		parts = append(parts, "depth", strconv.Itoa(i.Depth))
	}
	if i.Seldepth != 0 {
		parts = append(parts, "seldepth", strconv.Itoa(i.Seldepth))
	}
	if i.Time != 0 {
		parts = append(parts, "time", strconv.FormatInt(i.Time.Milliseconds(), 10))
	}
	if i.Nodes != 0 {
		parts = append(parts, "nodes", strconv.FormatInt(i.Nodes, 10))
	}
	if i.Score != nil {
		parts = append(parts, "score", i.Score.String())
	}
	if i.Currmove != "" {
		parts = append(parts, "currmove", i.Currmove)
	}
	if i.Currmovenumber != 0 {
		parts = append(parts, "currmovenumber", strconv.Itoa(i.Currmovenumber))
	}
	if i.Hashfull != 0 {
		parts = append(parts, "hashfull", strconv.Itoa(i.Hashfull))
	}
	if i.Nps != 0 {
		parts = append(parts, "nps", strconv.FormatInt(i.Nps, 10))
	}
	if i.Tbhits != 0 {
		parts = append(parts, "tbhits", strconv.FormatInt(i.Tbhits, 10))
	}
	if i.Sbhits != 0 {
		parts = append(parts, "sbhits", strconv.FormatInt(i.Sbhits, 10))
	}
	if i.Cpuload != 0 {
		parts = append(parts, "cpuload", strconv.Itoa(i.Cpuload))
	}
	for refuted, by := range i.Refutation {
		entry := append([]string{refuted}, by...)
		parts = append(parts, "refutation", strings.Join(entry, " "))
	}
	for cpunr, moves := range i.Currline {
		entry := append([]string{strconv.Itoa(cpunr)}, moves...)
		parts = append(parts, "currline", strings.Join(entry, " "))
	}
	if i.HasPv {
		parts = append(parts, "pv", strings.Join(i.Pv, " "))
	}
	if i.Str != "" {
		parts = append(parts, "string", i.Str)
	}
	return strings.Join(parts, " ")
}

func (sc *Score) String() string {
	s := sc.Eval.String()
	if sc.Lowerbound {
		s += " lowerbound"
	}
	if sc.Upperbound {
		s += " upperbound"
	}
	return s
}
