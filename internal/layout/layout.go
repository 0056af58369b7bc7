// Package layout computes sizes, alignments, and field offsets for the
// native code generator. Aggregates follow C-style rules: each field is
// aligned to its own alignment, the struct to its widest field.
package layout

import (
	"paw/internal/ast"
	"paw/internal/mono"
	"paw/internal/types"
	"paw/internal/unify"
)

const (
	pointerSize = 8
	// Strings lower to a pointer plus a length word.
	stringSize = 16
)

// FieldLayout places one struct field.
type FieldLayout struct {
	Name   string
	Type   types.TypeID
	Index  uint32
	Offset uint32
}

// Layout describes one resolved type.
type Layout struct {
	Size   uint32
	Align  uint32
	Fields []FieldLayout
}

// DeclSource resolves type names to their declarations.
// *mono.Resolver satisfies it.
type DeclSource interface {
	Struct(name string) (*ast.StructDecl, bool)
	Enum(name string) (*ast.EnumDecl, bool)
}

// Table caches layouts per TypeID for the compilation unit.
type Table struct {
	types   *types.Interner
	decls   DeclSource
	cache   map[types.TypeID]*Layout
	visited map[types.TypeID]bool
}

// NewTable builds a layout table over in; decls resolves field types of
// named structs and generic instances.
func NewTable(in *types.Interner, decls DeclSource) *Table {
	return &Table{
		types:   in,
		decls:   decls,
		cache:   make(map[types.TypeID]*Layout),
		visited: make(map[types.TypeID]bool),
	}
}

// Of computes (and caches) the layout of id. A struct that recursively
// contains itself by value has no finite layout and reports false.
func (t *Table) Of(id types.TypeID) (*Layout, bool) {
	if l, ok := t.cache[id]; ok {
		return l, l != nil
	}
	if t.visited[id] {
		t.cache[id] = nil
		return nil, false
	}
	t.visited[id] = true
	l, ok := t.compute(id)
	delete(t.visited, id)
	if !ok {
		t.cache[id] = nil
		return nil, false
	}
	t.cache[id] = l
	return l, true
}

// SizeOf returns the byte size of id, 0 when the layout is unknown.
func (t *Table) SizeOf(id types.TypeID) uint32 {
	if l, ok := t.Of(id); ok {
		return l.Size
	}
	return 0
}

// AlignOf returns the alignment of id, 1 when unknown.
func (t *Table) AlignOf(id types.TypeID) uint32 {
	if l, ok := t.Of(id); ok && l.Align > 0 {
		return l.Align
	}
	return 1
}

// Field resolves a named field of a struct or instance type.
func (t *Table) Field(id types.TypeID, name string) (FieldLayout, bool) {
	l, ok := t.Of(id)
	if !ok {
		return FieldLayout{}, false
	}
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

func (t *Table) compute(id types.TypeID) (*Layout, bool) {
	tt, ok := t.types.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case types.KindVoid:
		return &Layout{Size: 0, Align: 1}, true
	case types.KindBool:
		return &Layout{Size: 1, Align: 1}, true
	case types.KindChar:
		return &Layout{Size: 4, Align: 4}, true
	case types.KindString:
		return &Layout{Size: stringSize, Align: pointerSize}, true
	case types.KindInt, types.KindUint, types.KindFloat:
		n := uint32(tt.Width) / 8
		return &Layout{Size: n, Align: n}, true
	case types.KindPointer:
		return &Layout{Size: pointerSize, Align: pointerSize}, true
	case types.KindArray:
		elem, ok := t.Of(tt.Elem)
		if !ok {
			return nil, false
		}
		if tt.Count == types.ArrayDynamicLength {
			// Unsized arrays lower like strings: pointer plus length.
			return &Layout{Size: stringSize, Align: pointerSize}, true
		}
		return &Layout{Size: elem.Size * tt.Count, Align: elem.Align}, true
	case types.KindNamed:
		info, ok := t.types.NamedInfo(id)
		if !ok {
			return nil, false
		}
		return t.structLayout(t.types.Strings.MustLookup(info.Name), nil)
	case types.KindInstance:
		info, ok := t.types.InstanceInfo(id)
		if !ok {
			return nil, false
		}
		return t.structLayout(t.types.Strings.MustLookup(info.Name), info.Args)
	default:
		return nil, false
	}
}

func (t *Table) structLayout(name string, args []types.TypeID) (*Layout, bool) {
	st, ok := t.decls.Struct(name)
	if !ok {
		return t.enumLayout(name, args)
	}
	scope := mono.NewTypeScope(t.types, st.TypeParams)
	var s unify.Subst
	if len(args) > 0 {
		s = make(unify.Subst, len(st.TypeParams))
		for i, tp := range st.TypeParams {
			if i < len(args) {
				s[tp] = args[i]
			}
		}
	}

	l := &Layout{Align: 1}
	offset := uint32(0)
	for i, f := range st.Fields {
		fieldType := scope.Lower(f.Type)
		if s != nil {
			fieldType = unify.Apply(t.types, fieldType, s)
		}
		fl, ok := t.Of(fieldType)
		if !ok {
			return nil, false
		}
		offset = alignUp(offset, fl.Align)
		l.Fields = append(l.Fields, FieldLayout{
			Name:   f.Name,
			Type:   fieldType,
			Index:  uint32(i),
			Offset: offset,
		})
		offset += fl.Size
		if fl.Align > l.Align {
			l.Align = fl.Align
		}
	}
	l.Size = alignUp(offset, l.Align)
	return l, true
}

// enumLayout lays an enum out as a tagged union: a 4-byte discriminant
// followed by the widest variant payload.
func (t *Table) enumLayout(name string, args []types.TypeID) (*Layout, bool) {
	en, ok := t.decls.Enum(name)
	if !ok {
		return nil, false
	}
	scope := mono.NewTypeScope(t.types, en.TypeParams)
	var s unify.Subst
	if len(args) > 0 {
		s = make(unify.Subst, len(en.TypeParams))
		for i, tp := range en.TypeParams {
			if i < len(args) {
				s[tp] = args[i]
			}
		}
	}

	align := uint32(4)
	payload := uint32(0)
	for _, v := range en.Variants {
		offset := uint32(0)
		for _, pt := range v.Payload {
			payloadType := scope.Lower(pt)
			if s != nil {
				payloadType = unify.Apply(t.types, payloadType, s)
			}
			pl, ok := t.Of(payloadType)
			if !ok {
				return nil, false
			}
			offset = alignUp(offset, pl.Align) + pl.Size
			if pl.Align > align {
				align = pl.Align
			}
		}
		if offset > payload {
			payload = offset
		}
	}
	size := alignUp(alignUp(4, align)+payload, align)
	return &Layout{Size: size, Align: align}, true
}

func alignUp(n, align uint32) uint32 {
	if align == 0 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}
