package types

import (
	"fmt"

	"fortio.org/safecast"

	"paw/internal/source"
)

// ParamInfo stores metadata about a generic type parameter.
type ParamInfo struct {
	Name source.StringID
}

// RegisterParam interns a generic parameter descriptor by name. The same
// name always yields the same TypeID; unification and substitution key
// parameters by name, so sharing descriptors across declarations is safe.
func (in *Interner) RegisterParam(name source.StringID) TypeID {
	if id, ok := in.paramIdx[name]; ok {
		return id
	}
	slot := in.appendParamInfo(ParamInfo{Name: name})
	id := in.internRaw(Type{Kind: KindGenericParam, Payload: slot})
	in.paramIdx[name] = id
	return id
}

// ParamInfo returns metadata for the provided generic parameter.
func (in *Interner) ParamInfo(id TypeID) (*ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindGenericParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

// ParamName resolves a generic parameter's name, or "" for other kinds.
func (in *Interner) ParamName(id TypeID) string {
	info, ok := in.ParamInfo(id)
	if !ok {
		return ""
	}
	name, _ := in.Strings.Lookup(info.Name)
	return name
}

// ContainsParams reports whether the type mentions any generic parameter,
// recursing through pointer, array and instance constructors.
func (in *Interner) ContainsParams(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindGenericParam:
		return true
	case KindPointer, KindArray:
		return in.ContainsParams(tt.Elem)
	case KindInstance:
		info, ok := in.InstanceInfo(id)
		if !ok {
			return false
		}
		for _, arg := range info.Args {
			if in.ContainsParams(arg) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (in *Interner) appendParamInfo(info ParamInfo) uint32 {
	in.params = append(in.params, info)
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("types: param info overflow: %w", err))
	}
	return slot
}
