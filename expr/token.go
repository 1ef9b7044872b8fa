package expr

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokBool
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokEq
	tokNe
	tokLt
	tokGt
	tokLe
	tokGe
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
	pos  int

	num  float64
	flag bool
}

/**
 * lexer turns a rule line into tokens. Anything outside the accepted
 * alphabet is rejected: no dots, brackets, assignment or other
 * characters an expression has no business containing.
 */
type lexer struct {
	src string
	pos int
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	tokens := make([]token, 0, 16)
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, errors.Trace(err)
		}
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) next() (token, error) {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, pos: lx.pos}, nil
	}

	start := lx.pos
	ch := lx.src[lx.pos]

	switch {
	case isIdentStart(ch):
		return lx.scanIdent(start), nil
	case isDigit(ch) || ch == '.' && lx.pos+1 < len(lx.src) && isDigit(lx.src[lx.pos+1]):
		return lx.scanNumber(start)
	case ch == '\'' || ch == '"':
		return lx.scanString(start, ch)
	}

	lx.pos++
	switch ch {
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case ',':
		return token{kind: tokComma, text: ",", pos: start}, nil
	case '+':
		return token{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		return token{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		return token{kind: tokSlash, text: "/", pos: start}, nil
	case '%':
		return token{kind: tokPercent, text: "%", pos: start}, nil
	case '=':
		if lx.eat('=') {
			return token{kind: tokEq, text: "==", pos: start}, nil
		}
		return token{}, errors.Errorf("position %d: single '=' is not allowed, use '=='", start)
	case '!':
		if lx.eat('=') {
			return token{kind: tokNe, text: "!=", pos: start}, nil
		}
		return token{kind: tokNot, text: "!", pos: start}, nil
	case '<':
		if lx.eat('=') {
			return token{kind: tokLe, text: "<=", pos: start}, nil
		}
		return token{kind: tokLt, text: "<", pos: start}, nil
	case '>':
		if lx.eat('=') {
			return token{kind: tokGe, text: ">=", pos: start}, nil
		}
		return token{kind: tokGt, text: ">", pos: start}, nil
	case '&':
		if lx.eat('&') {
			return token{kind: tokAnd, text: "&&", pos: start}, nil
		}
	case '|':
		if lx.eat('|') {
			return token{kind: tokOr, text: "||", pos: start}, nil
		}
	}
	return token{}, errors.Errorf("position %d: unexpected character %q", start, string(ch))
}

func (lx *lexer) eat(ch byte) bool {
	if lx.pos < len(lx.src) && lx.src[lx.pos] == ch {
		lx.pos++
		return true
	}
	return false
}

func (lx *lexer) scanIdent(start int) token {
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.pos++
	}
	text := lx.src[start:lx.pos]

	// keywords and boolean literals are matched case insensitively, the
	// builder emits Python style True/False
	switch strings.ToLower(text) {
	case "and":
		return token{kind: tokAnd, text: text, pos: start}
	case "or":
		return token{kind: tokOr, text: text, pos: start}
	case "not":
		return token{kind: tokNot, text: text, pos: start}
	case "true":
		return token{kind: tokBool, text: text, pos: start, flag: true}
	case "false":
		return token{kind: tokBool, text: text, pos: start, flag: false}
	}
	return token{kind: tokIdent, text: text, pos: start}
}

func (lx *lexer) scanNumber(start int) (token, error) {
	seenDot := false
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		if isDigit(ch) {
			lx.pos++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			lx.pos++
			continue
		}
		if (ch == 'e' || ch == 'E') && lx.pos > start {
			mark := lx.pos
			lx.pos++
			if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
				lx.pos++
			}
			if lx.pos >= len(lx.src) || !isDigit(lx.src[lx.pos]) {
				lx.pos = mark
				break
			}
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
		break
	}
	text := lx.src[start:lx.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, errors.Errorf("position %d: bad number %q", start, text)
	}
	return token{kind: tokNumber, text: text, pos: start, num: num}, nil
}

func (lx *lexer) scanString(start int, quote byte) (token, error) {
	lx.pos++
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch ch {
		case quote:
			lx.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			lx.pos++
			if lx.pos >= len(lx.src) {
				return token{}, errors.Errorf("position %d: unterminated string", start)
			}
			esc := lx.src[lx.pos]
			switch esc {
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return token{}, errors.Errorf("position %d: unsupported escape \\%s", lx.pos, string(esc))
			}
			lx.pos++
		default:
			sb.WriteByte(ch)
			lx.pos++
		}
	}
	return token{}, errors.Errorf("position %d: unterminated string", start)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
