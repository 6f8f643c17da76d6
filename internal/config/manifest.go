package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/phanxgames/hearth/hotreload"
)

// hclManifest is the source form of a unit's component list:
//
//	component "Player" {
//	  id = "6f1c..."
//	  field "speed" {
//	    kind    = "float"
//	    default = 2.5
//	  }
//	}
type hclManifest struct {
	Components []*hclComponent `hcl:"component,block"`
}

type hclComponent struct {
	Name   string      `hcl:"name,label"`
	ID     string      `hcl:"id"`
	Fields []*hclField `hcl:"field,block"`
}

type hclField struct {
	Name    string         `hcl:"name,label"`
	Kind    string         `hcl:"kind"`
	Default hcl.Expression `hcl:"default,optional"`
}

// LoadManifest reads component declarations from an HCL file.
func LoadManifest(path string) ([]hotreload.Descriptor, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}
	return decodeManifest(f, path)
}

// ParseManifest decodes component declarations from src.
func ParseManifest(src []byte, filename string) ([]hotreload.Descriptor, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}
	return decodeManifest(f, filename)
}

func decodeManifest(f *hcl.File, filename string) ([]hotreload.Descriptor, error) {
	var raw hclManifest
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	descs := make([]hotreload.Descriptor, 0, len(raw.Components))
	seen := make(map[uuid.UUID]string, len(raw.Components))
	for _, c := range raw.Components {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: component %q: invalid id: %w", filename, c.Name, err)
		}
		if id == uuid.Nil {
			return nil, fmt.Errorf("%s: component %q: id must not be nil", filename, c.Name)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: components %q and %q share id %s", filename, prev, c.Name, id)
		}
		seen[id] = c.Name

		d := hotreload.Descriptor{ID: id, Name: c.Name}
		for _, hf := range c.Fields {
			field, err := decodeField(hf)
			if err != nil {
				return nil, fmt.Errorf("%s: component %q: %w", filename, c.Name, err)
			}
			d.Fields = append(d.Fields, field)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func decodeField(hf *hclField) (hotreload.Field, error) {
	kind := hotreload.FieldKind(hf.Kind)
	if !kind.Valid() {
		return hotreload.Field{}, fmt.Errorf("field %q: unknown kind %q", hf.Name, hf.Kind)
	}
	field := hotreload.Field{Name: hf.Name, Kind: kind}

	if hf.Default == nil {
		return field, nil
	}
	val, diags := hf.Default.Value(nil)
	if diags.HasErrors() {
		return hotreload.Field{}, fmt.Errorf("field %q: default: %w", hf.Name, diags)
	}
	if val.IsNull() {
		return field, nil
	}

	def, err := defaultValue(kind, val)
	if err != nil {
		return hotreload.Field{}, fmt.Errorf("field %q: default: %w", hf.Name, err)
	}
	field.Default = def
	return field, nil
}

// defaultValue converts an HCL value to the Go type stored for kind.
func defaultValue(kind hotreload.FieldKind, val cty.Value) (any, error) {
	switch kind {
	case hotreload.FieldBool:
		return convertTo[bool](val, cty.Bool)
	case hotreload.FieldInt:
		return convertTo[int64](val, cty.Number)
	case hotreload.FieldFloat:
		return convertTo[float64](val, cty.Number)
	case hotreload.FieldString:
		return convertTo[string](val, cty.String)
	case hotreload.FieldVec2:
		v, err := convertTo[[]float64](val, cty.List(cty.Number))
		if err != nil {
			return nil, err
		}
		if len(v) != 2 {
			return nil, fmt.Errorf("vec2 needs 2 elements, got %d", len(v))
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

func convertTo[T any](val cty.Value, ty cty.Type) (T, error) {
	var out T
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return out, err
	}
	err = gocty.FromCtyValue(converted, &out)
	return out, err
}
