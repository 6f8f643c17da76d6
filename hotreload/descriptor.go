package hotreload

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// FieldKind is the value type of a component field.
type FieldKind string

const (
	FieldBool   FieldKind = "bool"
	FieldInt    FieldKind = "int"
	FieldFloat  FieldKind = "float"
	FieldString FieldKind = "string"
	FieldVec2   FieldKind = "vec2"
)

// Valid reports whether k is a known field kind.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldBool, FieldInt, FieldFloat, FieldString, FieldVec2:
		return true
	}
	return false
}

// Field is one entry of a component's shape.
//
// Default is nil or holds the Go type for Kind: bool, int64, float64,
// string, or []float64 of length 2 for vec2.
type Field struct {
	Name    string    `msgpack:"name"`
	Kind    FieldKind `msgpack:"kind"`
	Default any       `msgpack:"default,omitempty"`
}

// Descriptor describes one component kind exposed by a code unit. ID is
// assigned by the engineer who writes the component and stays stable
// across reloads.
type Descriptor struct {
	ID     uuid.UUID
	Name   string
	Fields []Field
}

// Field returns the named field.
func (d Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ManifestVersion is the manifest layout produced by EncodeManifest.
const ManifestVersion = 1

type manifest struct {
	Version    int              `msgpack:"version"`
	Components []wireDescriptor `msgpack:"components"`
}

type wireDescriptor struct {
	ID     string  `msgpack:"id"`
	Name   string  `msgpack:"name"`
	Fields []Field `msgpack:"fields,omitempty"`
}

// EncodeManifest serializes descriptors in the format a unit's entry point
// returns.
func EncodeManifest(descs []Descriptor) ([]byte, error) {
	m := manifest{
		Version:    ManifestVersion,
		Components: make([]wireDescriptor, 0, len(descs)),
	}
	for _, d := range descs {
		m.Components = append(m.Components, wireDescriptor{
			ID:     d.ID.String(),
			Name:   d.Name,
			Fields: d.Fields,
		})
	}
	return msgpack.Marshal(&m)
}

// DecodeManifest parses and validates a manifest. Every descriptor needs a
// non-nil identifier, a name, and named fields of known kinds. Two
// descriptors with the same identifier reject the whole manifest.
func DecodeManifest(data []byte) ([]Descriptor, error) {
	var m manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, &Error{Phase: PhaseScan, Kind: KindMalformed, Detail: "decode manifest", Cause: err}
	}
	if m.Version != ManifestVersion {
		return nil, scanError("unsupported manifest version %d", m.Version)
	}

	descs := make([]Descriptor, 0, len(m.Components))
	seen := make(map[uuid.UUID]string, len(m.Components))
	for i, w := range m.Components {
		if w.Name == "" {
			return nil, scanError("component %d has no name", i)
		}
		id, err := uuid.Parse(w.ID)
		if err != nil {
			return nil, &Error{
				Phase:  PhaseScan,
				Kind:   KindMalformed,
				Detail: fmt.Sprintf("component %q has an invalid id %q", w.Name, w.ID),
				Cause:  err,
			}
		}
		if id == uuid.Nil {
			return nil, scanError("component %q has a nil id", w.Name)
		}
		if prev, dup := seen[id]; dup {
			return nil, &Error{
				Phase:  PhaseScan,
				Kind:   KindDuplicateID,
				Detail: fmt.Sprintf("components %q and %q share id %s", prev, w.Name, id),
			}
		}
		seen[id] = w.Name

		for i, f := range w.Fields {
			if f.Name == "" {
				return nil, scanError("component %q has an unnamed field", w.Name)
			}
			if !f.Kind.Valid() {
				return nil, scanError("component %q field %q has unknown kind %q", w.Name, f.Name, f.Kind)
			}
			def, ok := normalizeDefault(f.Kind, f.Default)
			if !ok {
				return nil, scanError("component %q field %q has a %T default for kind %q", w.Name, f.Name, f.Default, f.Kind)
			}
			w.Fields[i].Default = def
		}
		descs = append(descs, Descriptor{ID: id, Name: w.Name, Fields: w.Fields})
	}
	return descs, nil
}

func scanError(format string, args ...any) *Error {
	return &Error{Phase: PhaseScan, Kind: KindMalformed, Detail: fmt.Sprintf(format, args...)}
}

// normalizeDefault converts a decoded default to the Go type for kind.
// msgpack hands back the narrowest numeric type and []any for arrays.
func normalizeDefault(kind FieldKind, v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch kind {
	case FieldBool:
		b, ok := v.(bool)
		return b, ok
	case FieldInt:
		return toInt64(v)
	case FieldFloat:
		return toFloat64(v)
	case FieldString:
		s, ok := v.(string)
		return s, ok
	case FieldVec2:
		var elems []any
		switch v := v.(type) {
		case []any:
			elems = v
		case []float64:
			elems = make([]any, len(v))
			for i, f := range v {
				elems[i] = f
			}
		default:
			return nil, false
		}
		if len(elems) != 2 {
			return nil, false
		}
		out := make([]float64, 2)
		for i, e := range elems {
			f, ok := toFloat64(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
