package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"paw/internal/source"
)

// Field describes a single field inside a struct-like type.
type Field struct {
	Name source.StringID
	Type TypeID
}

// NamedInfo stores metadata for a non-generic named type (struct or enum).
type NamedInfo struct {
	Name   source.StringID
	Decl   source.Span
	Fields []Field
}

// InstanceInfo stores metadata for one generic instance: the base name and
// the ordered concrete type arguments it was instantiated with.
type InstanceInfo struct {
	Name   source.StringID
	Args   []TypeID
	Fields []Field
}

type instanceKey struct {
	Name source.StringID
	Args string
}

// RegisterNamed interns the named type, allocating its slot on first use.
func (in *Interner) RegisterNamed(name source.StringID, decl source.Span) TypeID {
	if id, ok := in.namedIdx[name]; ok {
		return id
	}
	slot := in.appendNamedInfo(NamedInfo{Name: name, Decl: decl})
	id := in.internRaw(Type{Kind: KindNamed, Payload: slot})
	in.namedIdx[name] = id
	return id
}

// FindNamed returns the TypeID for a previously registered named type.
func (in *Interner) FindNamed(name source.StringID) (TypeID, bool) {
	id, ok := in.namedIdx[name]
	return id, ok
}

// SetNamedFields stores the resolved field descriptors for a named type.
func (in *Interner) SetNamedFields(typeID TypeID, fields []Field) {
	info := in.namedInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// NamedInfo returns metadata for the provided named TypeID.
func (in *Interner) NamedInfo(typeID TypeID) (*NamedInfo, bool) {
	info := in.namedInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// RegisterInstance interns a generic instance type for (name, args).
// Repeated registration with equal arguments yields the same TypeID.
func (in *Interner) RegisterInstance(name source.StringID, args []TypeID) TypeID {
	key := instanceKey{Name: name, Args: argsKey(args)}
	if id, ok := in.instIdx[key]; ok {
		return id
	}
	slot := in.appendInstanceInfo(InstanceInfo{Name: name, Args: slices.Clone(args)})
	id := in.internRaw(Type{Kind: KindInstance, Payload: slot})
	in.instIdx[key] = id
	return id
}

// FindInstance returns a previously interned instance for (name, args).
func (in *Interner) FindInstance(name source.StringID, args []TypeID) (TypeID, bool) {
	id, ok := in.instIdx[instanceKey{Name: name, Args: argsKey(args)}]
	return id, ok
}

// SetInstanceFields stores substituted field descriptors for an instance.
func (in *Interner) SetInstanceFields(typeID TypeID, fields []Field) {
	info := in.instanceInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// InstanceInfo returns metadata for the provided instance TypeID.
func (in *Interner) InstanceInfo(typeID TypeID) (*InstanceInfo, bool) {
	info := in.instanceInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// FieldsOf returns the declared fields for named or instance types.
func (in *Interner) FieldsOf(typeID TypeID) []Field {
	if info := in.namedInfo(typeID); info != nil {
		return info.Fields
	}
	if info := in.instanceInfo(typeID); info != nil {
		return info.Fields
	}
	return nil
}

func (in *Interner) namedInfo(typeID TypeID) *NamedInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindNamed {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.named) {
		return nil
	}
	return &in.named[tt.Payload]
}

func (in *Interner) instanceInfo(typeID TypeID) *InstanceInfo {
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindInstance {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.insts) {
		return nil
	}
	return &in.insts[tt.Payload]
}

func (in *Interner) appendNamedInfo(info NamedInfo) uint32 {
	in.named = append(in.named, info)
	slot, err := safecast.Conv[uint32](len(in.named) - 1)
	if err != nil {
		panic(fmt.Errorf("types: named info overflow: %w", err))
	}
	return slot
}

func (in *Interner) appendInstanceInfo(info InstanceInfo) uint32 {
	in.insts = append(in.insts, info)
	slot, err := safecast.Conv[uint32](len(in.insts) - 1)
	if err != nil {
		panic(fmt.Errorf("types: instance info overflow: %w", err))
	}
	return slot
}

func argsKey(args []TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}
