package token

import (
	"paw/internal/source"
)

// Kind enumerates token kinds.
type Kind uint8

const (
	EOF Kind = iota
	Invalid

	Ident
	IntLit
	FloatLit
	CharLit
	StringLit

	// Keywords.
	KwFn
	KwLet
	KwMut
	KwStruct
	KwEnum
	KwImport
	KwPub
	KwAsync
	KwIf
	KwElse
	KwLoop
	KwIn
	KwBreak
	KwContinue
	KwReturn
	KwTrue
	KwFalse
	KwSelf

	// Punctuation and operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	EqEq
	Bang
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	Colon
	ColonColon
	Semicolon
	Comma
	Dot
	DotDot
	DotDotEq
	Arrow
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"mut":      KwMut,
	"struct":   KwStruct,
	"enum":     KwEnum,
	"import":   KwImport,
	"pub":      KwPub,
	"async":    KwAsync,
	"if":       KwIf,
	"else":     KwElse,
	"loop":     KwLoop,
	"in":       KwIn,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"true":     KwTrue,
	"false":    KwFalse,
	"self":     KwSelf,
}

// LookupKeyword classifies an identifier's text, returning Ident when the
// text is not a keyword.
func LookupKeyword(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Ident
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Invalid:
		return "invalid"
	case Ident:
		return "identifier"
	case IntLit:
		return "integer literal"
	case FloatLit:
		return "float literal"
	case CharLit:
		return "char literal"
	case StringLit:
		return "string literal"
	case KwFn:
		return "fn"
	case KwLet:
		return "let"
	case KwMut:
		return "mut"
	case KwStruct:
		return "struct"
	case KwEnum:
		return "enum"
	case KwImport:
		return "import"
	case KwPub:
		return "pub"
	case KwAsync:
		return "async"
	case KwIf:
		return "if"
	case KwElse:
		return "else"
	case KwLoop:
		return "loop"
	case KwIn:
		return "in"
	case KwBreak:
		return "break"
	case KwContinue:
		return "continue"
	case KwReturn:
		return "return"
	case KwTrue:
		return "true"
	case KwFalse:
		return "false"
	case KwSelf:
		return "self"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Percent:
		return "%"
	case Assign:
		return "="
	case PlusAssign:
		return "+="
	case MinusAssign:
		return "-="
	case StarAssign:
		return "*="
	case SlashAssign:
		return "/="
	case EqEq:
		return "=="
	case Bang:
		return "!"
	case BangEq:
		return "!="
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	case AndAnd:
		return "&&"
	case OrOr:
		return "||"
	case Colon:
		return ":"
	case ColonColon:
		return "::"
	case Semicolon:
		return ";"
	case Comma:
		return ","
	case Dot:
		return "."
	case DotDot:
		return ".."
	case DotDotEq:
		return "..="
	case Arrow:
		return "->"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	default:
		return "?"
	}
}
