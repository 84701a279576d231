package expr

import "strconv"

// parser is a hand-rolled Pratt (precedence-climbing) parser over the
// lexer's token stream. Precedence, highest to lowest: not (4), comparison
// operators (3), and (2), or (1).
type parser struct {
	lex  *lexer
	tok  Token
	peek *Token
}

var cmpPrecedence = map[TokenKind]int{
	TokEq: 3, TokNe: 3, TokGe: 3, TokGt: 3, TokLe: 3, TokLt: 3,
	TokAnd: 2,
	TokOr:  1,
}

var cmpOpLit = map[TokenKind]string{
	TokEq: "==", TokNe: "!=", TokGe: ">=", TokGt: ">", TokLe: "<=", TokLt: "<",
}

// Parse compiles a condition string into an AST. An empty or all-whitespace
// expression is always an ErrEmptyExpression, never a default outcome.
func Parse(src string) (Node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind == TokEOF {
		return nil, newError(ErrEmptyExpression, 0, "expression is empty")
	}
	node, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, newError(ErrTrailingInput, p.tok.Offset, "unexpected trailing input %q", p.tok.Lit)
	}
	return node, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseExpr(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := cmpPrecedence[p.tok.Kind]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = combine(opTok, left, right)
	}
}

func combine(opTok Token, left, right Node) Node {
	switch opTok.Kind {
	case TokAnd:
		return &And{Left: left, Right: right, Offset: opTok.Offset}
	case TokOr:
		return &Or{Left: left, Right: right, Offset: opTok.Offset}
	default:
		return &Cmp{Op: cmpOpLit[opTok.Kind], Left: left, Right: right, Offset: opTok.Offset}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.tok.Kind == TokNot {
		offset := p.tok.Offset
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x, Offset: offset}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.tok
	switch tok.Kind {
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TokRParen {
			return nil, newError(ErrUnclosedParen, tok.Offset, "'(' opened here was never closed")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case TokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Value: true, Offset: tok.Offset}, nil
	case TokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLit{Value: false, Offset: tok.Offset}, nil
	case TokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NullLit{Offset: tok.Offset}, nil
	case TokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parseNumLit(tok)
	case TokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StrLit{Value: tok.Lit, Offset: tok.Offset}, nil
	case TokField:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FieldRef{Path: tok.Lit, Offset: tok.Offset}, nil
	default:
		return nil, newError(ErrUnexpectedToken, tok.Offset, "unexpected token %s", describeTok(tok))
	}
}

func describeTok(tok Token) string {
	if tok.Kind == TokEOF {
		return "end of expression"
	}
	if tok.Lit != "" {
		return strconv.Quote(tok.Lit)
	}
	return tok.Kind.String()
}

func parseNumLit(tok Token) (Node, error) {
	if i, err := strconv.ParseInt(tok.Lit, 10, 64); err == nil {
		return &NumLit{Int: true, IVal: i, Offset: tok.Offset}, nil
	}
	f, err := strconv.ParseFloat(tok.Lit, 64)
	if err != nil {
		return nil, newError(ErrInvalidNumber, tok.Offset, "invalid numeric literal %q", tok.Lit)
	}
	return &NumLit{Int: false, RVal: f, Offset: tok.Offset}, nil
}
