package mono

import (
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"paw/internal/source"
	"paw/internal/types"
)

// InstanceKind tags what an instantiation record describes.
type InstanceKind uint8

const (
	// InstanceFn is a free generic function instance.
	InstanceFn InstanceKind = iota
	// InstanceStruct is a generic struct instance.
	InstanceStruct
	// InstanceMethod is a method on a generic struct instance.
	InstanceMethod
)

func (k InstanceKind) String() string {
	switch k {
	case InstanceFn:
		return "fn"
	case InstanceStruct:
		return "struct"
	case InstanceMethod:
		return "method"
	default:
		return "unknown"
	}
}

// InstanceID is a handle into the table, stable for the compilation unit.
type InstanceID uint32

// NoInstanceID is the zero handle; valid handles start at 1.
const NoInstanceID InstanceID = 0

// Instance is one monomorphization record: a generic entity pinned to
// concrete type arguments, plus the derived linkage name.
type Instance struct {
	ID      InstanceID
	Kind    InstanceKind
	Base    string
	Method  string // InstanceMethod only
	Args    []types.TypeID
	Mangled source.StringID
}

type instanceTag struct {
	kind   InstanceKind
	base   string
	method string
	args   string
}

// Table is the instantiation cache. One tagged key (kind, base, method,
// args) maps to at most one record; recording the same key twice
// returns the first record unchanged.
type Table struct {
	types     *types.Interner
	instances []Instance
	index     map[instanceTag]InstanceID
	byName    map[source.StringID]InstanceID
}

// NewTable returns an empty instantiation table backed by in.
func NewTable(in *types.Interner) *Table {
	return &Table{
		types:  in,
		index:  make(map[instanceTag]InstanceID),
		byName: make(map[source.StringID]InstanceID),
	}
}

// RecordFn records a generic function instantiation and returns its
// mangled name. Idempotent per (base, args).
func (t *Table) RecordFn(base string, args []types.TypeID) (string, InstanceID) {
	return t.record(InstanceFn, base, "", args)
}

// RecordStruct records a generic struct instantiation.
func (t *Table) RecordStruct(base string, args []types.TypeID) (string, InstanceID) {
	return t.record(InstanceStruct, base, "", args)
}

// RecordMethod records one method of a generic struct instantiation.
// The mangled name composes the owner's mangled name with the method.
func (t *Table) RecordMethod(owner string, args []types.TypeID, method string) (string, InstanceID) {
	return t.record(InstanceMethod, owner, method, args)
}

func (t *Table) record(kind InstanceKind, base, method string, args []types.TypeID) (string, InstanceID) {
	tag := instanceTag{kind: kind, base: base, method: method, args: tagArgs(args)}
	if id, ok := t.index[tag]; ok {
		inst := t.instances[id-1]
		return t.types.Strings.MustLookup(inst.Mangled), id
	}

	mangled := Mangle(t.types, base, args)
	if kind == InstanceMethod {
		mangled += "_" + method
	}
	nameID := t.types.Strings.Intern(mangled)

	id := InstanceID(safecast.MustConvert[uint32](len(t.instances) + 1))
	t.instances = append(t.instances, Instance{
		ID:      id,
		Kind:    kind,
		Base:    base,
		Method:  method,
		Args:    append([]types.TypeID(nil), args...),
		Mangled: nameID,
	})
	t.index[tag] = id
	t.byName[nameID] = id
	return mangled, id
}

// Lookup finds a record by mangled name.
func (t *Table) Lookup(mangled string) (Instance, bool) {
	nameID, ok := t.types.Strings.Find(mangled)
	if !ok {
		return Instance{}, false
	}
	id, ok := t.byName[nameID]
	if !ok {
		return Instance{}, false
	}
	return t.instances[id-1], true
}

// Get resolves a handle.
func (t *Table) Get(id InstanceID) (Instance, bool) {
	if id == NoInstanceID || int(id) > len(t.instances) {
		return Instance{}, false
	}
	return t.instances[id-1], true
}

// Len reports how many distinct instantiations were recorded.
func (t *Table) Len() int { return len(t.instances) }

// MangledName resolves a record's mangled name to its string form.
func (t *Table) MangledName(inst Instance) string {
	return t.types.Strings.MustLookup(inst.Mangled)
}

// Instances returns all records in insertion order.
func (t *Table) Instances() []Instance {
	return t.instances
}

// Sorted returns the records ordered by mangled name, for stable dumps.
func (t *Table) Sorted() []Instance {
	out := append([]Instance(nil), t.instances...)
	sort.Slice(out, func(i, j int) bool {
		return t.MangledName(out[i]) < t.MangledName(out[j])
	})
	return out
}

func tagArgs(args []types.TypeID) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte('#')
		}
		sb.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return sb.String()
}
