package depgraph

import "strings"

// Kind is the namespace a name lives in.
type Kind string

const (
	KindData   Kind = "data"
	KindSignal Kind = "signal"
	KindScale  Kind = "scale"
	KindMark   Kind = "mark"
)

// Ref is a reference to a named part of a graph.
type Ref struct {
	Kind Kind
	Name string
}

func (r Ref) String() string { return string(r.Kind) + ":" + r.Name }

// Functions whose first argument names a dataset.
var dataFuncs = map[string]bool{
	"data":               true,
	"indata":             true,
	"modify":             true,
	"vlSelectionTest":    true,
	"vlSelectionResolve": true,
	"fieldvaluesforkey":  true,
}

// Functions whose first argument names a scale.
var scaleFuncs = map[string]bool{
	"scale":     true,
	"invert":    true,
	"bandwidth": true,
	"domain":    true,
	"range":     true,
	"copy":      true,
	"gradient":  true,
}

// reserved identifiers are never signals.
var reserved = map[string]bool{
	"datum": true, "event": true, "item": true, "parent": true, "this": true,
	"true": true, "false": true, "null": true, "undefined": true,
	"NaN": true, "Infinity": true,
	"PI": true, "E": true, "LN2": true, "LN10": true, "LOG2E": true, "LOG10E": true,
	"SQRT1_2": true, "SQRT2": true, "MIN_VALUE": true, "MAX_VALUE": true,
}

// Expression returns the references of an expression in order of first
// appearance. Signals are bare identifiers that are not reserved words,
// member names, function names or object literal keys.
func Expression(expr string) []Ref {
	s := &scanner{src: expr}
	seen := map[Ref]bool{}
	var out []Ref
	add := func(r Ref) {
		if r.Name != "" && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	for {
		tok := s.next()
		if tok.kind == tokEOF {
			return out
		}
		if tok.kind != tokIdent {
			continue
		}
		prev := s.prevSignificant(tok.start)
		if prev == '.' {
			continue
		}
		follow := s.peekSignificant()
		switch {
		case follow == '(':
			kind := Kind("")
			if dataFuncs[tok.text] {
				kind = KindData
			} else if scaleFuncs[tok.text] {
				kind = KindScale
			}
			if kind == "" {
				continue
			}
			s.skipSpace()
			s.pos++ // (
			if q := s.peekSignificant(); q != '\'' && q != '"' {
				continue
			}
			add(Ref{Kind: kind, Name: s.next().text})
		case follow == ':' && (prev == '{' || prev == ','):
			// object literal key
		case reserved[tok.text]:
		default:
			add(Ref{Kind: KindSignal, Name: tok.text})
		}
	}
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokOther
)

type token struct {
	kind  tokKind
	text  string
	start int
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) next() token {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return token{kind: tokEOF}
	}
	start := s.pos
	c := s.src[s.pos]
	switch {
	case c == '\'' || c == '"':
		var b strings.Builder
		s.pos++
		for s.pos < len(s.src) && s.src[s.pos] != c {
			if s.src[s.pos] == '\\' && s.pos+1 < len(s.src) {
				s.pos++
			}
			b.WriteByte(s.src[s.pos])
			s.pos++
		}
		s.pos++
		return token{kind: tokString, text: b.String(), start: start}
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokIdent, text: s.src[start:s.pos], start: start}
	case isDigit(c):
		// Numbers, including exponents like 1e-3.
		for s.pos < len(s.src) {
			d := s.src[s.pos]
			if isIdentPart(d) || d == '.' {
				s.pos++
				continue
			}
			if (d == '-' || d == '+') && (s.src[s.pos-1] == 'e' || s.src[s.pos-1] == 'E') {
				s.pos++
				continue
			}
			break
		}
		return token{kind: tokOther, start: start}
	}
	s.pos++
	return token{kind: tokOther, text: string(c), start: start}
}

func (s *scanner) prevSignificant(before int) byte {
	for i := before - 1; i >= 0; i-- {
		if !isSpace(s.src[i]) {
			return s.src[i]
		}
	}
	return 0
}

func (s *scanner) peekSignificant() byte {
	for i := s.pos; i < len(s.src); i++ {
		if !isSpace(s.src[i]) {
			return s.src[i]
		}
	}
	return 0
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
