package mir

import (
	"paw/internal/source"
	"paw/internal/types"
)

// Local is one storage slot: a parameter, a let binding, or an
// induction variable.
type Local struct {
	Name string
	Type types.TypeID
}

// Func is one generated function as a basic-block graph.
type Func struct {
	Name   string // linkage (mangled) name
	Span   source.Span
	Params []LocalID
	Result types.TypeID

	Locals []Local
	Blocks []Block
	Entry  BlockID

	// NumValues is one past the highest ValueID used in the body.
	NumValues ValueID
}

// Block resolves a BlockID, nil when out of range.
func (f *Func) Block(id BlockID) *Block {
	if int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// Module is the generated compilation unit.
type Module struct {
	Name  string
	Funcs []*Func

	byName map[string]*Func
}

// AddFunc appends f and indexes it by linkage name.
func (m *Module) AddFunc(f *Func) {
	if m.byName == nil {
		m.byName = make(map[string]*Func)
	}
	m.Funcs = append(m.Funcs, f)
	m.byName[f.Name] = f
}

// Func finds a function by linkage name.
func (m *Module) Func(name string) (*Func, bool) {
	f, ok := m.byName[name]
	return f, ok
}
