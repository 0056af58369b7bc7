package lexer_test

import (
	"testing"

	"paw/internal/diag"
	"paw/internal/lexer"
	"paw/internal/source"
	"paw/internal/token"
)

func scan(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.paw", []byte(src), source.FileVirtual)
	file, _ := fs.Get(id)
	bag := diag.NewBag(16)
	toks := lexer.Tokens(file, &diag.BagReporter{Bag: bag})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func expectKinds(t *testing.T, got, want []token.Kind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			"keywords_and_idents",
			"fn main let mut x",
			[]token.Kind{token.KwFn, token.Ident, token.KwLet, token.KwMut, token.Ident, token.EOF},
		},
		{
			"range_exclusive",
			"0..3",
			[]token.Kind{token.IntLit, token.DotDot, token.IntLit, token.EOF},
		},
		{
			"range_inclusive",
			"0..=3",
			[]token.Kind{token.IntLit, token.DotDotEq, token.IntLit, token.EOF},
		},
		{
			"float_literal",
			"3.14",
			[]token.Kind{token.FloatLit, token.EOF},
		},
		{
			"qualified_call",
			"Vec<i32>::new()",
			[]token.Kind{token.Ident, token.Lt, token.Ident, token.Gt, token.ColonColon, token.Ident, token.LParen, token.RParen, token.EOF},
		},
		{
			"nested_close_angles",
			"Vec<Vec<i32>>",
			[]token.Kind{token.Ident, token.Lt, token.Ident, token.Lt, token.Ident, token.Gt, token.Gt, token.EOF},
		},
		{
			"compound_assign",
			"x += 1; y -= 2;",
			[]token.Kind{token.Ident, token.PlusAssign, token.IntLit, token.Semicolon, token.Ident, token.MinusAssign, token.IntLit, token.Semicolon, token.EOF},
		},
		{
			"comparisons",
			"a == b != c <= d >= e",
			[]token.Kind{token.Ident, token.EqEq, token.Ident, token.BangEq, token.Ident, token.LtEq, token.Ident, token.GtEq, token.Ident, token.EOF},
		},
		{
			"arrow_and_logic",
			"-> && ||",
			[]token.Kind{token.Arrow, token.AndAnd, token.OrOr, token.EOF},
		},
		{
			"line_comment",
			"a // trailing\nb",
			[]token.Kind{token.Ident, token.Ident, token.EOF},
		},
		{
			"nested_block_comment",
			"a /* outer /* inner */ still outer */ b",
			[]token.Kind{token.Ident, token.Ident, token.EOF},
		},
		{
			"literals",
			`'x' "hello" true false`,
			[]token.Kind{token.CharLit, token.StringLit, token.KwTrue, token.KwFalse, token.EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := scan(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Items())
			}
			expectKinds(t, kinds(toks), tt.want)
		})
	}
}

func TestTokens_Text(t *testing.T) {
	toks, bag := scan(t, "let count = 42;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if toks[1].Text != "count" {
		t.Errorf("ident text = %q, want %q", toks[1].Text, "count")
	}
	if toks[3].Text != "42" {
		t.Errorf("int text = %q, want %q", toks[3].Text, "42")
	}
}

func TestTokens_Spans(t *testing.T) {
	toks, _ := scan(t, "ab cd")
	if toks[0].Span.Start != 0 || toks[0].Span.End != 2 {
		t.Errorf("first span = [%d, %d)", toks[0].Span.Start, toks[0].Span.End)
	}
	if toks[1].Span.Start != 3 || toks[1].Span.End != 5 {
		t.Errorf("second span = [%d, %d)", toks[1].Span.Start, toks[1].Span.End)
	}
}

func TestTokens_UnicodeIdents(t *testing.T) {
	// "café" spelled with a combining accent must lex as one identifier
	// and normalize to the precomposed form.
	composed := "café"
	combining := "café"

	toks, bag := scan(t, combining)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	expectKinds(t, kinds(toks), []token.Kind{token.Ident, token.EOF})
	if toks[0].Text != composed {
		t.Errorf("ident text = %q, want %q", toks[0].Text, composed)
	}

	toks, _ = scan(t, composed)
	if toks[0].Text != composed {
		t.Errorf("precomposed ident text = %q, want %q", toks[0].Text, composed)
	}
}

func TestTokens_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unknown_char", "let @ = 1;", diag.LexUnknownChar},
		{"unterminated_string", `"oops`, diag.LexUnterminatedString},
		{"unterminated_comment", "/* never closed", diag.LexUnterminatedComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := scan(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected a lex error")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("no %s diagnostic in %v", tt.code, bag.Items())
			}
		})
	}
}
