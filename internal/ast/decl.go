package ast

import (
	"paw/internal/source"
)

// Program is an ordered list of top-level declarations.
type Program struct {
	Decls []Decl
}

// DeclKind enumerates top-level declaration kinds.
type DeclKind uint8

const (
	// DeclFn is a free function.
	DeclFn DeclKind = iota
	// DeclStruct is a struct type with fields and nested methods.
	DeclStruct
	// DeclEnum is an enum type with variants and nested methods.
	DeclEnum
	// DeclImport is an import of another module.
	DeclImport
)

// Decl is a top-level declaration.
type Decl struct {
	Kind   DeclKind
	Span   source.Span
	Fn     *FnDecl
	Struct *StructDecl
	Enum   *EnumDecl
	Import *ImportDecl
}

// Param is one function parameter. IsSelf marks the method receiver.
type Param struct {
	Name   string
	Type   *TypeExpr // nil for self
	IsSelf bool
	Span   source.Span
}

// FnDecl is a function or method declaration.
type FnDecl struct {
	Name       string
	TypeParams []string
	Params     []Param
	Result     *TypeExpr // nil means void
	Body       *Block
	IsPublic   bool
	IsAsync    bool
	Span       source.Span
}

// IsGeneric reports whether the function declares type parameters.
func (f *FnDecl) IsGeneric() bool {
	return f != nil && len(f.TypeParams) > 0
}

// IsMethod reports whether the first parameter is a receiver.
func (f *FnDecl) IsMethod() bool {
	return f != nil && len(f.Params) > 0 && f.Params[0].IsSelf
}

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type *TypeExpr
	Span source.Span
}

// StructDecl is a struct declaration with nested methods.
type StructDecl struct {
	Name       string
	TypeParams []string
	Fields     []FieldDecl
	Methods    []*FnDecl
	IsPublic   bool
	Span       source.Span
}

// IsGeneric reports whether the struct declares type parameters.
func (s *StructDecl) IsGeneric() bool {
	return s != nil && len(s.TypeParams) > 0
}

// VariantDecl is one enum variant with optional payload types.
type VariantDecl struct {
	Name    string
	Payload []*TypeExpr
	Span    source.Span
}

// EnumDecl is an enum declaration with nested methods.
type EnumDecl struct {
	Name       string
	TypeParams []string
	Variants   []VariantDecl
	Methods    []*FnDecl
	IsPublic   bool
	Span       source.Span
}

// IsGeneric reports whether the enum declares type parameters.
func (e *EnumDecl) IsGeneric() bool {
	return e != nil && len(e.TypeParams) > 0
}

// ImportDecl names an imported module path.
type ImportDecl struct {
	Path string
	Span source.Span
}
