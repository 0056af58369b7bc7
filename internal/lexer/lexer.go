// Package lexer turns .paw source text into a token stream.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"paw/internal/diag"
	"paw/internal/source"
	"paw/internal/token"
)

// Lexer scans one file. Diagnostics for malformed input go to the reporter;
// the scanner always makes progress and never panics on bad bytes.
type Lexer struct {
	file     *source.File
	src      string
	offset   int
	reporter diag.Reporter

	peeked  bool
	pending token.Token
}

// New returns a lexer over file. reporter receives lexical diagnostics.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{file: file, src: string(file.Content), reporter: reporter}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if !lx.peeked {
		lx.pending = lx.scan()
		lx.peeked = true
	}
	return lx.pending
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() token.Token {
	if lx.peeked {
		lx.peeked = false
		return lx.pending
	}
	return lx.scan()
}

// Tokens scans the whole file up to and including EOF.
func Tokens(file *source.File, reporter diag.Reporter) []token.Token {
	lx := New(file, reporter)
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()
	start := lx.offset
	if lx.offset >= len(lx.src) {
		return lx.make(token.EOF, start)
	}

	ch := lx.src[lx.offset]
	switch {
	case isIdentStart(ch):
		return lx.scanIdent(start)
	case ch >= utf8.RuneSelf && startsUnicodeIdent(lx.src[lx.offset:]):
		return lx.scanIdent(start)
	case ch >= '0' && ch <= '9':
		return lx.scanNumber(start)
	case ch == '"':
		return lx.scanString(start)
	case ch == '\'':
		return lx.scanChar(start)
	}
	return lx.scanOperator(start)
}

func (lx *Lexer) skipTrivia() {
	for lx.offset < len(lx.src) {
		ch := lx.src[lx.offset]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.offset++
		case ch == '/' && lx.offset+1 < len(lx.src) && lx.src[lx.offset+1] == '/':
			for lx.offset < len(lx.src) && lx.src[lx.offset] != '\n' {
				lx.offset++
			}
		case ch == '/' && lx.offset+1 < len(lx.src) && lx.src[lx.offset+1] == '*':
			lx.skipBlockComment()
		default:
			return
		}
	}
}

func (lx *Lexer) skipBlockComment() {
	start := lx.offset
	lx.offset += 2
	depth := 1
	for lx.offset < len(lx.src) {
		if lx.offset+1 < len(lx.src) {
			if lx.src[lx.offset] == '/' && lx.src[lx.offset+1] == '*' {
				depth++
				lx.offset += 2
				continue
			}
			if lx.src[lx.offset] == '*' && lx.src[lx.offset+1] == '/' {
				depth--
				lx.offset += 2
				if depth == 0 {
					return
				}
				continue
			}
		}
		lx.offset++
	}
	diag.Error(lx.reporter, diag.LexUnterminatedComment, lx.span(start), "unterminated block comment")
}

func (lx *Lexer) scanIdent(start int) token.Token {
	ascii := true
	for lx.offset < len(lx.src) {
		ch := lx.src[lx.offset]
		if isIdentPart(ch) {
			lx.offset++
			continue
		}
		if ch < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		ascii = false
		lx.offset += size
	}
	tok := lx.make(token.Ident, start)
	if !ascii {
		// Both encodings of an accented name must intern to one symbol.
		tok.Text = norm.NFC.String(tok.Text)
	}
	tok.Kind = token.LookupKeyword(tok.Text)
	return tok
}

func (lx *Lexer) scanNumber(start int) token.Token {
	kind := token.IntLit
	for lx.offset < len(lx.src) && isDigit(lx.src[lx.offset]) {
		lx.offset++
	}
	// A dot only makes this a float when followed by a digit; "0..3" must
	// keep the int before the range operator.
	if lx.offset+1 < len(lx.src) && lx.src[lx.offset] == '.' && isDigit(lx.src[lx.offset+1]) {
		kind = token.FloatLit
		lx.offset++
		for lx.offset < len(lx.src) && isDigit(lx.src[lx.offset]) {
			lx.offset++
		}
	}
	if lx.offset < len(lx.src) && isIdentStart(lx.src[lx.offset]) {
		bad := lx.offset
		for lx.offset < len(lx.src) && isIdentPart(lx.src[lx.offset]) {
			lx.offset++
		}
		diag.Error(lx.reporter, diag.LexBadNumber, lx.span(start),
			fmt.Sprintf("invalid suffix %q on numeric literal", lx.src[bad:lx.offset]))
	}
	return lx.make(kind, start)
}

func (lx *Lexer) scanString(start int) token.Token {
	lx.offset++ // opening quote
	for lx.offset < len(lx.src) {
		ch := lx.src[lx.offset]
		if ch == '"' {
			lx.offset++
			return lx.make(token.StringLit, start)
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' && lx.offset+1 < len(lx.src) {
			lx.offset++
		}
		lx.offset++
	}
	diag.Error(lx.reporter, diag.LexUnterminatedString, lx.span(start), "unterminated string literal")
	return lx.make(token.StringLit, start)
}

func (lx *Lexer) scanChar(start int) token.Token {
	lx.offset++ // opening quote
	if lx.offset < len(lx.src) && lx.src[lx.offset] == '\\' {
		lx.offset++
		if lx.offset < len(lx.src) {
			lx.offset++
		}
	} else if lx.offset < len(lx.src) && lx.src[lx.offset] != '\'' {
		_, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
		lx.offset += size
	}
	if lx.offset < len(lx.src) && lx.src[lx.offset] == '\'' {
		lx.offset++
		return lx.make(token.CharLit, start)
	}
	diag.Error(lx.reporter, diag.LexUnterminatedChar, lx.span(start), "malformed char literal")
	return lx.make(token.CharLit, start)
}

func (lx *Lexer) scanOperator(start int) token.Token {
	two := ""
	if lx.offset+1 < len(lx.src) {
		two = lx.src[lx.offset : lx.offset+2]
	}
	three := ""
	if lx.offset+2 < len(lx.src) {
		three = lx.src[lx.offset : lx.offset+3]
	}

	if three == "..=" {
		lx.offset += 3
		return lx.make(token.DotDotEq, start)
	}

	var kind token.Kind
	switch two {
	case "+=":
		kind = token.PlusAssign
	case "-=":
		kind = token.MinusAssign
	case "*=":
		kind = token.StarAssign
	case "/=":
		kind = token.SlashAssign
	case "==":
		kind = token.EqEq
	case "!=":
		kind = token.BangEq
	case "<=":
		kind = token.LtEq
	case ">=":
		kind = token.GtEq
	case "&&":
		kind = token.AndAnd
	case "||":
		kind = token.OrOr
	case "::":
		kind = token.ColonColon
	case "..":
		kind = token.DotDot
	case "->":
		kind = token.Arrow
	}
	if kind != token.EOF {
		lx.offset += 2
		return lx.make(kind, start)
	}

	switch lx.src[lx.offset] {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '=':
		kind = token.Assign
	case '!':
		kind = token.Bang
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	default:
		r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
		lx.offset += size
		diag.Error(lx.reporter, diag.LexUnknownChar, lx.span(start),
			fmt.Sprintf("unexpected character %q", r))
		return lx.make(token.Invalid, start)
	}
	lx.offset++
	return lx.make(kind, start)
}

func (lx *Lexer) make(kind token.Kind, start int) token.Token {
	return token.Token{
		Kind: kind,
		Span: lx.span(start),
		Text: lx.src[start:lx.offset],
	}
}

func (lx *Lexer) span(start int) source.Span {
	return source.Span{File: lx.file.ID, Start: uint32(start), End: uint32(lx.offset)}
}

func startsUnicodeIdent(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
