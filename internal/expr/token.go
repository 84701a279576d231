package expr

import "fmt"

// TokenKind enumerates the lexical token classes of the boolean condition
// language used in a rule node's "when" field.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokLParen
	TokRParen
	TokNot
	TokAnd
	TokOr
	TokEq
	TokNe
	TokGe
	TokGt
	TokLe
	TokLt
	TokTrue
	TokFalse
	TokNull
	TokNumber
	TokString
	TokField
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	case TokNot:
		return "not"
	case TokAnd:
		return "and"
	case TokOr:
		return "or"
	case TokEq:
		return "=="
	case TokNe:
		return "!="
	case TokGe:
		return ">="
	case TokGt:
		return ">"
	case TokLe:
		return "<="
	case TokLt:
		return "<"
	case TokTrue:
		return "true"
	case TokFalse:
		return "false"
	case TokNull:
		return "null"
	case TokNumber:
		return "number"
	case TokString:
		return "string"
	case TokField:
		return "field"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexeme with its byte offset in the source expression.
type Token struct {
	Kind   TokenKind
	Lit    string
	Offset int
}

// keywords maps reserved identifiers to their token kind. Anything else
// lexed as an identifier is a field reference.
var keywords = map[string]TokenKind{
	"not":   TokNot,
	"and":   TokAnd,
	"or":    TokOr,
	"true":  TokTrue,
	"false": TokFalse,
	"null":  TokNull,
}
