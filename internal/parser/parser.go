// Package parser builds the AST for one .paw file.
//
// The grammar is parsed by recursive descent over a pre-scanned token
// slice. Buffering the tokens keeps backtracking cheap, which the
// `Ident<...>` forms need: `v < n` and `Vec<i32>::new()` start the same
// way and only the tail decides.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/lexer"
	"paw/internal/source"
	"paw/internal/token"
)

// Parser consumes one file's token stream.
type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	reporter diag.Reporter

	// noStructLit suppresses `Ident { ... }` struct literals while an
	// if/loop condition is being parsed, so the brace starts the body.
	noStructLit bool
}

// ParseFile scans and parses file, reporting problems to reporter.
func ParseFile(file *source.File, reporter diag.Reporter) *ast.Program {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	p := &Parser{
		file:     file,
		toks:     lexer.Tokens(file, reporter),
		reporter: reporter,
	}
	return p.parseProgram()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(k token.Kind) bool { return p.toks[p.pos].Kind == k }

func (p *Parser) next() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.next(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.next()
	}
	tok := p.cur()
	diag.Error(p.reporter, diag.SynUnexpectedToken, tok.Span,
		fmt.Sprintf("expected %s, found %s", k, describe(tok)))
	return token.Token{Kind: k, Span: tok.Span}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.FloatLit, token.CharLit, token.StringLit:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].Span
	}
	return start.Cover(end)
}

// sync skips tokens until a plausible top-level start, so one bad
// declaration does not cascade.
func (p *Parser) sync() {
	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwFn, token.KwStruct, token.KwEnum, token.KwImport, token.KwPub:
			return
		}
		p.next()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		before := p.pos
		decl, ok := p.parseDecl()
		if ok {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.pos == before {
			p.next()
			p.sync()
		}
	}
	return prog
}

func (p *Parser) parseDecl() (ast.Decl, bool) {
	start := p.cur().Span
	isPub := false
	if _, ok := p.accept(token.KwPub); ok {
		isPub = true
	}
	switch p.cur().Kind {
	case token.KwFn, token.KwAsync:
		fn := p.parseFn(isPub)
		return ast.Decl{Kind: ast.DeclFn, Span: fn.Span, Fn: fn}, true
	case token.KwStruct:
		st := p.parseStruct(isPub)
		return ast.Decl{Kind: ast.DeclStruct, Span: st.Span, Struct: st}, true
	case token.KwEnum:
		en := p.parseEnum(isPub)
		return ast.Decl{Kind: ast.DeclEnum, Span: en.Span, Enum: en}, true
	case token.KwImport:
		imp := p.parseImport()
		return ast.Decl{Kind: ast.DeclImport, Span: imp.Span, Import: imp}, true
	}
	diag.Error(p.reporter, diag.SynUnexpectedToken, start,
		fmt.Sprintf("expected declaration, found %s", describe(p.cur())))
	return ast.Decl{}, false
}

func (p *Parser) parseImport() *ast.ImportDecl {
	start := p.expect(token.KwImport).Span
	var parts []string
	parts = append(parts, p.expect(token.Ident).Text)
	for {
		if _, ok := p.accept(token.ColonColon); !ok {
			break
		}
		parts = append(parts, p.expect(token.Ident).Text)
	}
	p.expect(token.Semicolon)
	return &ast.ImportDecl{Path: strings.Join(parts, "::"), Span: p.spanFrom(start)}
}

func (p *Parser) parseFn(isPub bool) *ast.FnDecl {
	start := p.cur().Span
	isAsync := false
	if _, ok := p.accept(token.KwAsync); ok {
		isAsync = true
	}
	p.expect(token.KwFn)
	name := p.expect(token.Ident).Text

	fn := &ast.FnDecl{Name: name, IsPublic: isPub, IsAsync: isAsync}
	if p.at(token.Lt) {
		fn.TypeParams = p.parseTypeParams()
	}
	fn.Params = p.parseParams()
	if _, ok := p.accept(token.Arrow); ok {
		fn.Result = p.parseType()
	}
	fn.Body = p.parseBlock()
	fn.Span = p.spanFrom(start)
	return fn
}

func (p *Parser) parseTypeParams() []string {
	p.expect(token.Lt)
	var names []string
	for !p.at(token.Gt) && !p.at(token.EOF) {
		names = append(names, p.expect(token.Ident).Text)
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.Gt)
	return names
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LParen)
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		start := p.cur().Span
		if tok, ok := p.accept(token.KwSelf); ok {
			params = append(params, ast.Param{Name: tok.Text, IsSelf: true, Span: tok.Span})
		} else {
			name := p.expect(token.Ident).Text
			p.expect(token.Colon)
			typ := p.parseType()
			params = append(params, ast.Param{Name: name, Type: typ, Span: p.spanFrom(start)})
		}
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseStruct(isPub bool) *ast.StructDecl {
	start := p.expect(token.KwStruct).Span
	st := &ast.StructDecl{Name: p.expect(token.Ident).Text, IsPublic: isPub}
	if p.at(token.Lt) {
		st.TypeParams = p.parseTypeParams()
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwFn, token.KwAsync, token.KwPub:
			methodPub := false
			if _, ok := p.accept(token.KwPub); ok {
				methodPub = true
			}
			st.Methods = append(st.Methods, p.parseFn(methodPub))
		case token.Ident:
			fieldStart := p.cur().Span
			name := p.next().Text
			p.expect(token.Colon)
			typ := p.parseType()
			st.Fields = append(st.Fields, ast.FieldDecl{Name: name, Type: typ, Span: p.spanFrom(fieldStart)})
			p.accept(token.Comma)
		default:
			diag.Error(p.reporter, diag.SynUnexpectedToken, p.cur().Span,
				fmt.Sprintf("expected field or method, found %s", describe(p.cur())))
			p.next()
		}
	}
	p.expect(token.RBrace)
	st.Span = p.spanFrom(start)
	return st
}

func (p *Parser) parseEnum(isPub bool) *ast.EnumDecl {
	start := p.expect(token.KwEnum).Span
	en := &ast.EnumDecl{Name: p.expect(token.Ident).Text, IsPublic: isPub}
	if p.at(token.Lt) {
		en.TypeParams = p.parseTypeParams()
	}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwFn, token.KwAsync, token.KwPub:
			methodPub := false
			if _, ok := p.accept(token.KwPub); ok {
				methodPub = true
			}
			en.Methods = append(en.Methods, p.parseFn(methodPub))
		case token.Ident:
			variantStart := p.cur().Span
			v := ast.VariantDecl{Name: p.next().Text}
			if _, ok := p.accept(token.LParen); ok {
				for !p.at(token.RParen) && !p.at(token.EOF) {
					v.Payload = append(v.Payload, p.parseType())
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
				p.expect(token.RParen)
			}
			v.Span = p.spanFrom(variantStart)
			en.Variants = append(en.Variants, v)
			p.accept(token.Comma)
		default:
			diag.Error(p.reporter, diag.SynUnexpectedToken, p.cur().Span,
				fmt.Sprintf("expected variant or method, found %s", describe(p.cur())))
			p.next()
		}
	}
	p.expect(token.RBrace)
	en.Span = p.spanFrom(start)
	return en
}

// Types

func (p *Parser) parseType() *ast.TypeExpr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.Star:
		p.next()
		elem := p.parseType()
		return &ast.TypeExpr{Kind: ast.TypePointer, Span: p.spanFrom(start), Elem: elem}
	case token.LBracket:
		p.next()
		elem := p.parseType()
		count := ast.ArrayNoLength
		if _, ok := p.accept(token.Semicolon); ok {
			tok := p.expect(token.IntLit)
			if n, err := strconv.ParseUint(tok.Text, 10, 32); err == nil {
				count = uint32(n)
			} else {
				diag.Error(p.reporter, diag.SynExpectType, tok.Span,
					fmt.Sprintf("array length %q out of range", tok.Text))
			}
		}
		p.expect(token.RBracket)
		return &ast.TypeExpr{Kind: ast.TypeArray, Span: p.spanFrom(start), Elem: elem, Count: count}
	case token.Ident:
		name := p.next().Text
		if p.at(token.Lt) {
			p.next()
			inst := &ast.TypeExpr{Kind: ast.TypeInstance, Name: name}
			for !p.at(token.Gt) && !p.at(token.EOF) {
				inst.Args = append(inst.Args, p.parseType())
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			p.expect(token.Gt)
			inst.Span = p.spanFrom(start)
			return inst
		}
		return &ast.TypeExpr{Kind: ast.TypeName, Span: p.spanFrom(start), Name: name}
	}
	diag.Error(p.reporter, diag.SynExpectType, p.cur().Span,
		fmt.Sprintf("expected type, found %s", describe(p.cur())))
	return &ast.TypeExpr{Kind: ast.TypeName, Span: p.cur().Span, Name: "<error>"}
}

// tryTypeArgs speculatively parses `<T, U, ...>` starting at `<`. It
// returns nil and rewinds unless the whole list parses cleanly.
func (p *Parser) tryTypeArgs() []*ast.TypeExpr {
	save := p.pos
	p.next() // consume <
	var args []*ast.TypeExpr
	for {
		if !p.typeAhead() {
			p.pos = save
			return nil
		}
		args = append(args, p.parseType())
		if _, ok := p.accept(token.Comma); ok {
			continue
		}
		break
	}
	if _, ok := p.accept(token.Gt); !ok {
		p.pos = save
		return nil
	}
	if len(args) == 0 {
		p.pos = save
		return nil
	}
	return args
}

func (p *Parser) typeAhead() bool {
	switch p.cur().Kind {
	case token.Ident, token.Star, token.LBracket:
		return true
	default:
		return false
	}
}

// Statements

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBrace).Span
	block := &ast.Block{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		block.Stmts = append(block.Stmts, p.parseStmt())
		if p.pos == before {
			p.next()
		}
	}
	p.expect(token.RBrace)
	block.Span = p.spanFrom(start)
	return block
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwReturn:
		p.next()
		data := ast.ReturnData{}
		if !p.at(token.Semicolon) {
			data.Value = p.parseExpr()
		}
		p.expect(token.Semicolon)
		return ast.Stmt{Kind: ast.StmtReturn, Span: p.spanFrom(start), Data: data}
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwLoop:
		return p.parseLoop()
	case token.KwBreak:
		p.next()
		p.expect(token.Semicolon)
		return ast.Stmt{Kind: ast.StmtBreak, Span: p.spanFrom(start), Data: ast.BreakData{}}
	case token.KwContinue:
		p.next()
		p.expect(token.Semicolon)
		return ast.Stmt{Kind: ast.StmtContinue, Span: p.spanFrom(start), Data: ast.ContinueData{}}
	case token.LBrace:
		block := p.parseBlock()
		return ast.Stmt{Kind: ast.StmtBlock, Span: block.Span, Data: ast.BlockStmtData{Block: block}}
	}

	expr := p.parseExpr()
	if op, ok := p.assignOp(); ok {
		value := p.parseExpr()
		p.expect(token.Semicolon)
		return ast.Stmt{
			Kind: ast.StmtAssign,
			Span: p.spanFrom(start),
			Data: ast.AssignData{Target: expr, Op: op, Value: value},
		}
	}
	p.expect(token.Semicolon)
	return ast.Stmt{Kind: ast.StmtExpr, Span: p.spanFrom(start), Data: ast.ExprStmtData{Expr: expr}}
}

func (p *Parser) assignOp() (ast.AssignOp, bool) {
	var op ast.AssignOp
	switch p.cur().Kind {
	case token.Assign:
		op = ast.AssignSet
	case token.PlusAssign:
		op = ast.AssignAdd
	case token.MinusAssign:
		op = ast.AssignSub
	case token.StarAssign:
		op = ast.AssignMul
	case token.SlashAssign:
		op = ast.AssignDiv
	default:
		return 0, false
	}
	p.next()
	return op, true
}

func (p *Parser) parseLet() ast.Stmt {
	start := p.expect(token.KwLet).Span
	data := ast.LetData{}
	if _, ok := p.accept(token.KwMut); ok {
		data.Mutable = true
	}
	data.Name = p.expect(token.Ident).Text
	if _, ok := p.accept(token.Colon); ok {
		data.Type = p.parseType()
	}
	p.expect(token.Assign)
	data.Value = p.parseExpr()
	p.expect(token.Semicolon)
	return ast.Stmt{Kind: ast.StmtLet, Span: p.spanFrom(start), Data: data}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.expect(token.KwIf).Span
	cond := p.parseCondExpr()
	then := p.parseBlock()
	data := ast.IfStmtData{Cond: cond, Then: then}
	if _, ok := p.accept(token.KwElse); ok {
		if p.at(token.KwIf) {
			nested := p.parseIfStmt()
			data.Else = &ast.Block{Span: nested.Span, Stmts: []ast.Stmt{nested}}
		} else {
			data.Else = p.parseBlock()
		}
	}
	return ast.Stmt{Kind: ast.StmtIf, Span: p.spanFrom(start), Data: data}
}

func (p *Parser) parseLoop() ast.Stmt {
	start := p.expect(token.KwLoop).Span
	data := ast.LoopData{}

	switch {
	case p.at(token.LBrace):
		data.Kind = ast.LoopInfinite
	case p.at(token.Ident) && p.toks[p.pos+1].Kind == token.KwIn:
		data.Kind = ast.LoopRange
		data.Var = p.next().Text
		p.next() // in
		data.Start = p.parseCondExpr()
		switch p.cur().Kind {
		case token.DotDot:
			p.next()
		case token.DotDotEq:
			p.next()
			data.Inclusive = true
		default:
			diag.Error(p.reporter, diag.SynBadLoopHeader, p.cur().Span,
				fmt.Sprintf("expected %q or %q in range loop, found %s", "..", "..=", describe(p.cur())))
		}
		data.End = p.parseCondExpr()
	default:
		data.Kind = ast.LoopCond
		data.Cond = p.parseCondExpr()
	}
	data.Body = p.parseBlock()
	return ast.Stmt{Kind: ast.StmtLoop, Span: p.spanFrom(start), Data: data}
}

// parseCondExpr parses an expression where `{` must start the following
// block rather than a struct literal.
func (p *Parser) parseCondExpr() *ast.Expr {
	saved := p.noStructLit
	p.noStructLit = true
	expr := p.parseExpr()
	p.noStructLit = saved
	return expr
}

// Expressions, by descending precedence:
// || < && < comparison < + - < * / % < unary < postfix < primary.

func (p *Parser) parseExpr() *ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() *ast.Expr {
	left := p.parseAnd()
	for p.at(token.OrOr) {
		p.next()
		right := p.parseAnd()
		left = binary(ast.BinOr, left, right)
	}
	return left
}

func (p *Parser) parseAnd() *ast.Expr {
	left := p.parseComparison()
	for p.at(token.AndAnd) {
		p.next()
		right := p.parseComparison()
		left = binary(ast.BinAnd, left, right)
	}
	return left
}

func (p *Parser) parseComparison() *ast.Expr {
	left := p.parseAdditive()
	for {
		var op ast.ExprBinaryOp
		switch p.cur().Kind {
		case token.EqEq:
			op = ast.BinEq
		case token.BangEq:
			op = ast.BinNe
		case token.Lt:
			op = ast.BinLt
		case token.LtEq:
			op = ast.BinLe
		case token.Gt:
			op = ast.BinGt
		case token.GtEq:
			op = ast.BinGe
		default:
			return left
		}
		p.next()
		right := p.parseAdditive()
		left = binary(op, left, right)
	}
}

func (p *Parser) parseAdditive() *ast.Expr {
	left := p.parseMultiplicative()
	for {
		var op ast.ExprBinaryOp
		switch p.cur().Kind {
		case token.Plus:
			op = ast.BinAdd
		case token.Minus:
			op = ast.BinSub
		default:
			return left
		}
		p.next()
		right := p.parseMultiplicative()
		left = binary(op, left, right)
	}
}

func (p *Parser) parseMultiplicative() *ast.Expr {
	left := p.parseUnary()
	for {
		var op ast.ExprBinaryOp
		switch p.cur().Kind {
		case token.Star:
			op = ast.BinMul
		case token.Slash:
			op = ast.BinDiv
		case token.Percent:
			op = ast.BinMod
		default:
			return left
		}
		p.next()
		right := p.parseUnary()
		left = binary(op, left, right)
	}
}

func binary(op ast.ExprBinaryOp, left, right *ast.Expr) *ast.Expr {
	return &ast.Expr{
		Kind: ast.ExprBinary,
		Span: left.Span.Cover(right.Span),
		Data: ast.BinaryData{Op: op, Left: left, Right: right},
	}
}

func (p *Parser) parseUnary() *ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.Minus:
		p.next()
		operand := p.parseUnary()
		return &ast.Expr{
			Kind: ast.ExprUnary,
			Span: p.spanFrom(start),
			Data: ast.UnaryData{Op: ast.UnaryNeg, Operand: operand},
		}
	case token.Bang:
		p.next()
		operand := p.parseUnary()
		return &ast.Expr{
			Kind: ast.ExprUnary,
			Span: p.spanFrom(start),
			Data: ast.UnaryData{Op: ast.UnaryNot, Operand: operand},
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() *ast.Expr {
	expr := p.parsePrimary()
	for {
		start := expr.Span
		switch p.cur().Kind {
		case token.Dot:
			p.next()
			name := p.expect(token.Ident).Text
			if p.at(token.LParen) {
				args := p.parseArgs()
				expr = &ast.Expr{
					Kind: ast.ExprMethodCall,
					Span: p.spanFrom(start),
					Data: ast.MethodCallData{Recv: expr, Method: name, Args: args},
				}
			} else {
				expr = &ast.Expr{
					Kind: ast.ExprField,
					Span: p.spanFrom(start),
					Data: ast.FieldData{Object: expr, Name: name},
				}
			}
		case token.LBracket:
			p.next()
			index := p.parseExpr()
			p.expect(token.RBracket)
			expr = &ast.Expr{
				Kind: ast.ExprIndex,
				Span: p.spanFrom(start),
				Data: ast.IndexData{Object: expr, Index: index},
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []*ast.Expr {
	p.expect(token.LParen)
	var args []*ast.Expr
	saved := p.noStructLit
	p.noStructLit = false
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.noStructLit = saved
	p.expect(token.RParen)
	return args
}

func (p *Parser) parsePrimary() *ast.Expr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.IntLit:
		tok := p.next()
		value, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			diag.Error(p.reporter, diag.SynUnexpectedToken, tok.Span,
				fmt.Sprintf("integer literal %q out of range", tok.Text))
		}
		return &ast.Expr{Kind: ast.ExprIntLit, Span: tok.Span, Data: ast.IntLitData{Value: value, Text: tok.Text}}
	case token.FloatLit:
		tok := p.next()
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			diag.Error(p.reporter, diag.SynUnexpectedToken, tok.Span,
				fmt.Sprintf("float literal %q out of range", tok.Text))
		}
		return &ast.Expr{Kind: ast.ExprFloatLit, Span: tok.Span, Data: ast.FloatLitData{Value: value, Text: tok.Text}}
	case token.KwTrue:
		tok := p.next()
		return &ast.Expr{Kind: ast.ExprBoolLit, Span: tok.Span, Data: ast.BoolLitData{Value: true}}
	case token.KwFalse:
		tok := p.next()
		return &ast.Expr{Kind: ast.ExprBoolLit, Span: tok.Span, Data: ast.BoolLitData{Value: false}}
	case token.CharLit:
		tok := p.next()
		return &ast.Expr{Kind: ast.ExprCharLit, Span: tok.Span, Data: ast.CharLitData{Value: charValue(tok.Text)}}
	case token.StringLit:
		tok := p.next()
		return &ast.Expr{Kind: ast.ExprStringLit, Span: tok.Span, Data: ast.StringLitData{Value: stringValue(tok.Text)}}
	case token.KwSelf:
		tok := p.next()
		return &ast.Expr{Kind: ast.ExprIdent, Span: tok.Span, Data: ast.IdentData{Name: tok.Text}}
	case token.KwIf:
		return p.parseIfExpr()
	case token.LParen:
		p.next()
		saved := p.noStructLit
		p.noStructLit = false
		expr := p.parseExpr()
		p.noStructLit = saved
		p.expect(token.RParen)
		return expr
	case token.LBracket:
		p.next()
		var elems []*ast.Expr
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			elems = append(elems, p.parseExpr())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RBracket)
		return &ast.Expr{Kind: ast.ExprArrayLit, Span: p.spanFrom(start), Data: ast.ArrayLitData{Elems: elems}}
	case token.Ident:
		return p.parseIdentExpr()
	}
	tok := p.next()
	diag.Error(p.reporter, diag.SynUnexpectedToken, tok.Span,
		fmt.Sprintf("expected expression, found %s", describe(tok)))
	return &ast.Expr{Kind: ast.ExprIntLit, Span: tok.Span, Data: ast.IntLitData{Value: 0, Text: "0"}}
}

func (p *Parser) parseIfExpr() *ast.Expr {
	start := p.expect(token.KwIf).Span
	cond := p.parseCondExpr()
	p.expect(token.LBrace)
	then := p.parseExpr()
	p.expect(token.RBrace)
	data := ast.IfExprData{Cond: cond, Then: then}
	if _, ok := p.accept(token.KwElse); ok {
		if p.at(token.KwIf) {
			data.Else = p.parseIfExpr()
		} else {
			p.expect(token.LBrace)
			data.Else = p.parseExpr()
			p.expect(token.RBrace)
		}
	}
	return &ast.Expr{Kind: ast.ExprIf, Span: p.spanFrom(start), Data: data}
}

// parseIdentExpr handles every form starting with an identifier: a bare
// reference, a call, a generic call, a qualified Type::method call, and
// a struct literal.
func (p *Parser) parseIdentExpr() *ast.Expr {
	start := p.cur().Span
	name := p.next().Text

	var typeArgs []*ast.TypeExpr
	beforeArgs := p.pos
	if p.at(token.Lt) {
		typeArgs = p.tryTypeArgs()
	}

	switch {
	case p.at(token.ColonColon):
		p.next()
		method := p.expect(token.Ident).Text
		args := p.parseArgs()
		return &ast.Expr{
			Kind: ast.ExprQualifiedCall,
			Span: p.spanFrom(start),
			Data: ast.QualifiedCallData{TypeName: name, TypeArgs: typeArgs, Method: method, Args: args},
		}
	case p.at(token.LParen):
		args := p.parseArgs()
		return &ast.Expr{
			Kind: ast.ExprCall,
			Span: p.spanFrom(start),
			Data: ast.CallData{Callee: name, TypeArgs: typeArgs, Args: args},
		}
	case p.at(token.LBrace) && !p.noStructLit:
		return p.parseStructLit(start, name, typeArgs)
	}

	// `v < n` looked like type arguments for a moment; rewind so the
	// comparison operators reparse from the `<`.
	if typeArgs != nil {
		p.pos = beforeArgs
	}
	return &ast.Expr{Kind: ast.ExprIdent, Span: start, Data: ast.IdentData{Name: name}}
}

func (p *Parser) parseStructLit(start source.Span, name string, typeArgs []*ast.TypeExpr) *ast.Expr {
	p.expect(token.LBrace)
	data := ast.StructLitData{TypeName: name, TypeArgs: typeArgs}
	saved := p.noStructLit
	p.noStructLit = false
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fieldName := p.expect(token.Ident).Text
		p.expect(token.Colon)
		value := p.parseExpr()
		data.Fields = append(data.Fields, ast.StructLitField{Name: fieldName, Value: value})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.noStructLit = saved
	p.expect(token.RBrace)
	return &ast.Expr{Kind: ast.ExprStructLit, Span: p.spanFrom(start), Data: data}
}

func charValue(text string) rune {
	body := strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
	if strings.HasPrefix(body, `\`) && len(body) >= 2 {
		switch body[1] {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case 'r':
			return '\r'
		case '0':
			return 0
		case '\\':
			return '\\'
		case '\'':
			return '\''
		}
	}
	for _, r := range body {
		return r
	}
	return 0
}

func stringValue(text string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte(body[i])
			}
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}
