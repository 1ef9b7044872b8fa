package expr

import (
	"github.com/juju/errors"
)

/**
 * Program is a compiled rule line. Compile once at workflow load, then
 * bind and evaluate per row. The grammar is deliberately small:
 *
 *   identifiers, number/string/boolean literals
 *   comparisons  ==  !=  <  >  <=  >=
 *   boolean      and or not (also && || !)
 *   arithmetic   +  -  *  /  %  and unary minus
 *   calls to the builtin functions abs, min, max, round, len
 *
 * Everything else fails to compile. There is no attribute access, no
 * indexing, no assignment and no way to name anything outside the
 * bound row scope.
 */
type Program struct {
	source string
	root   node
	idents []string
}

// Compile parses source into an evaluable Program.
func Compile(source string) (*Program, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, errors.Annotatef(err, "compile %q", source)
	}

	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, errors.Annotatef(err, "compile %q", source)
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, errors.Errorf("compile %q: position %d: unexpected %q", source, tok.pos, tok.text)
	}

	return &Program{source: source, root: root, idents: p.idents}, nil
}

func (p *Program) Source() string {
	return p.source
}

/**
 * Identifiers returns the variable names the expression references, in
 * first appearance order. Function names are not included, every one of
 * these must resolve to a row column when the program is bound.
 */
func (p *Program) Identifiers() []string {
	return append([]string(nil), p.idents...)
}

type parser struct {
	tokens []token
	pos    int

	idents []string
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, errors.Errorf("position %d: expected %s, got %q", tok.pos, what, tok.text)
	}
	return p.advance(), nil
}

func (p *parser) recordIdent(name string) {
	for _, have := range p.idents {
		if have == name {
			return
		}
	}
	p.idents = append(p.idents, name)
}

func (p *parser) parseExpr() (node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, errors.Trace(err)
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, errors.Trace(err)
		}
		left = &binaryNode{op: tokOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, errors.Trace(err)
	}
	for p.peek().kind == tokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, errors.Trace(err)
		}
		left = &binaryNode{op: tokAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind == tokNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &unaryNode{op: tokNot, operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, errors.Trace(err)
	}
	switch op := p.peek().kind; op {
	case tokEq, tokNe, tokLt, tokGt, tokLe, tokGe:
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, errors.Trace(err)
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, errors.Trace(err)
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, errors.Trace(err)
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokPercent {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, errors.Trace(err)
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &unaryNode{op: tokMinus, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.advance()
		return &literalNode{value: tok.num}, nil

	case tokString:
		p.advance()
		return &literalNode{value: tok.text}, nil

	case tokBool:
		p.advance()
		return &literalNode{value: tok.flag}, nil

	case tokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, errors.Trace(err)
		}
		return inner, nil

	case tokIdent:
		p.advance()
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		p.recordIdent(tok.text)
		return &identNode{name: tok.text}, nil
	}
	return nil, errors.Errorf("position %d: unexpected %q", tok.pos, tok.text)
}

func (p *parser) parseCall(name token) (node, error) {
	if _, known := builtins[name.text]; !known {
		return nil, errors.Errorf("position %d: unknown function %q", name.pos, name.text)
	}
	p.advance()

	args := make([]node, 0, 2)
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, errors.Trace(err)
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, errors.Trace(err)
	}
	return &callNode{name: name.text, args: args}, nil
}
