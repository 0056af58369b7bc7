package layout_test

import (
	"testing"

	"paw/internal/diag"
	"paw/internal/layout"
	"paw/internal/mono"
	"paw/internal/parser"
	"paw/internal/source"
	"paw/internal/types"
)

func buildTable(t *testing.T, src string) (*types.Interner, *layout.Table) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.paw", []byte(src), source.FileVirtual)
	file, _ := fs.Get(id)

	bag := diag.NewBag(32)
	prog := parser.ParseFile(file, &diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	in := types.NewInterner(source.NewInterner())
	res := mono.NewResolver(in, mono.NewTable(in), nil)
	res.Run(prog)
	return in, layout.NewTable(in, res)
}

func TestPrimitiveLayouts(t *testing.T) {
	in, tab := buildTable(t, "")
	b := in.Builtins()

	tests := []struct {
		name  string
		id    types.TypeID
		size  uint32
		align uint32
	}{
		{"bool", b.Bool, 1, 1},
		{"char", b.Char, 4, 4},
		{"i8", b.I8, 1, 1},
		{"i16", b.I16, 2, 2},
		{"i32", b.I32, 4, 4},
		{"i64", b.I64, 8, 8},
		{"f64", b.F64, 8, 8},
		{"string", b.String, 16, 8},
		{"pointer", in.Intern(types.MakePointer(b.I32)), 8, 8},
		{"sized_array", in.Intern(types.MakeArray(b.I32, 4)), 16, 4},
		{"dynamic_array", in.Intern(types.MakeArray(b.I64, types.ArrayDynamicLength)), 16, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := tab.Of(tt.id)
			if !ok {
				t.Fatal("no layout")
			}
			if l.Size != tt.size || l.Align != tt.align {
				t.Errorf("layout = (%d, %d), want (%d, %d)", l.Size, l.Align, tt.size, tt.align)
			}
		})
	}
}

func TestStructFieldOffsets(t *testing.T) {
	in, tab := buildTable(t, `
struct Mixed {
    flag: bool,
    big: i64,
    small: i16,
}
`)
	id := in.RegisterNamed(in.Strings.Intern("Mixed"), source.Span{})
	l, ok := tab.Of(id)
	if !ok {
		t.Fatal("no layout for Mixed")
	}
	// bool at 0, i64 aligned up to 8, i16 at 16; size rounds to 24.
	wantOffsets := []uint32{0, 8, 16}
	for i, f := range l.Fields {
		if f.Offset != wantOffsets[i] {
			t.Errorf("field %s offset = %d, want %d", f.Name, f.Offset, wantOffsets[i])
		}
		if f.Index != uint32(i) {
			t.Errorf("field %s index = %d, want %d", f.Name, f.Index, i)
		}
	}
	if l.Size != 24 || l.Align != 8 {
		t.Errorf("layout = (%d, %d), want (24, 8)", l.Size, l.Align)
	}
}

func TestGenericInstanceLayout(t *testing.T) {
	in, tab := buildTable(t, `
struct Pair<A, B> {
    first: A,
    second: B,
}
`)
	b := in.Builtins()
	id := in.RegisterInstance(in.Strings.Intern("Pair"), []types.TypeID{b.I16, b.I64})
	l, ok := tab.Of(id)
	if !ok {
		t.Fatal("no layout for Pair<i16, i64>")
	}
	if len(l.Fields) != 2 {
		t.Fatalf("field count = %d", len(l.Fields))
	}
	if l.Fields[0].Type != b.I16 || l.Fields[1].Type != b.I64 {
		t.Errorf("field types = %v, %v", l.Fields[0].Type, l.Fields[1].Type)
	}
	if l.Fields[1].Offset != 8 {
		t.Errorf("second offset = %d, want 8", l.Fields[1].Offset)
	}
	if l.Size != 16 {
		t.Errorf("size = %d, want 16", l.Size)
	}

	f, ok := tab.Field(id, "second")
	if !ok || f.Index != 1 {
		t.Errorf("Field(second) = %+v, %v", f, ok)
	}
}

func TestNestedStructLayout(t *testing.T) {
	in, tab := buildTable(t, `
struct Inner {
    a: i32,
    b: i32,
}

struct Outer {
    tag: bool,
    inner: Inner,
}
`)
	id := in.RegisterNamed(in.Strings.Intern("Outer"), source.Span{})
	l, ok := tab.Of(id)
	if !ok {
		t.Fatal("no layout for Outer")
	}
	if l.Fields[1].Offset != 4 {
		t.Errorf("inner offset = %d, want 4", l.Fields[1].Offset)
	}
	if l.Size != 12 || l.Align != 4 {
		t.Errorf("layout = (%d, %d), want (12, 4)", l.Size, l.Align)
	}
}

func TestRecursiveStructHasNoLayout(t *testing.T) {
	in, tab := buildTable(t, `
struct Node {
    next: Node,
}
`)
	id := in.RegisterNamed(in.Strings.Intern("Node"), source.Span{})
	if _, ok := tab.Of(id); ok {
		t.Error("recursive by-value struct must not have a finite layout")
	}

	// Indirection through a pointer breaks the cycle.
	in2, tab2 := buildTable(t, `
struct List {
    head: i32,
    next: *List,
}
`)
	id2 := in2.RegisterNamed(in2.Strings.Intern("List"), source.Span{})
	l, ok := tab2.Of(id2)
	if !ok {
		t.Fatal("pointer-linked struct must have a layout")
	}
	if l.Size != 16 || l.Align != 8 {
		t.Errorf("layout = (%d, %d), want (16, 8)", l.Size, l.Align)
	}
}

func TestEnumTaggedUnionLayout(t *testing.T) {
	in, tab := buildTable(t, `
enum Shape {
    Point,
    Circle(f64),
    Rect(f64, f64),
}
`)
	id := in.RegisterNamed(in.Strings.Intern("Shape"), source.Span{})
	l, ok := tab.Of(id)
	if !ok {
		t.Fatal("no layout for Shape")
	}
	// Discriminant rounds up to the f64 alignment, then the widest
	// variant (two f64 fields) follows.
	if l.Size != 24 || l.Align != 8 {
		t.Errorf("layout = (%d, %d), want (24, 8)", l.Size, l.Align)
	}

	in2, tab2 := buildTable(t, `
enum Flag {
    Off,
    On,
}
`)
	id2 := in2.RegisterNamed(in2.Strings.Intern("Flag"), source.Span{})
	l2, ok := tab2.Of(id2)
	if !ok {
		t.Fatal("no layout for Flag")
	}
	if l2.Size != 4 || l2.Align != 4 {
		t.Errorf("layout = (%d, %d), want (4, 4)", l2.Size, l2.Align)
	}
}
