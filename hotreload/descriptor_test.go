package hotreload

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestManifestRoundTrip(t *testing.T) {
	descs := []Descriptor{
		descriptor("Player",
			Field{Name: "speed", Kind: FieldFloat, Default: 2.5},
			Field{Name: "name", Kind: FieldString, Default: "hero"},
			Field{Name: "alive", Kind: FieldBool, Default: true}),
		descriptor("Marker"),
	}

	data, err := EncodeManifest(descs)
	require.NoError(t, err)
	got, err := DecodeManifest(data)
	require.NoError(t, err)

	if diff := cmp.Diff(descs, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptorField(t *testing.T) {
	d := descriptor("Player", Field{Name: "speed", Kind: FieldFloat})

	f, ok := d.Field("speed")
	require.True(t, ok)
	assert.Equal(t, FieldFloat, f.Kind)

	_, ok = d.Field("missing")
	assert.False(t, ok)
}

func TestDecodeManifestRejects(t *testing.T) {
	id := uuid.New().String()
	tests := []struct {
		name string
		m    manifest
		kind Kind
	}{
		{
			name: "wrong version",
			m:    manifest{Version: 2},
			kind: KindMalformed,
		},
		{
			name: "missing name",
			m:    manifest{Version: 1, Components: []wireDescriptor{{ID: id}}},
			kind: KindMalformed,
		},
		{
			name: "bad id",
			m:    manifest{Version: 1, Components: []wireDescriptor{{ID: "not-a-uuid", Name: "A"}}},
			kind: KindMalformed,
		},
		{
			name: "nil id",
			m:    manifest{Version: 1, Components: []wireDescriptor{{ID: uuid.Nil.String(), Name: "A"}}},
			kind: KindMalformed,
		},
		{
			name: "duplicate id",
			m:    manifest{Version: 1, Components: []wireDescriptor{{ID: id, Name: "A"}, {ID: id, Name: "B"}}},
			kind: KindDuplicateID,
		},
		{
			name: "unnamed field",
			m: manifest{Version: 1, Components: []wireDescriptor{
				{ID: id, Name: "A", Fields: []Field{{Kind: FieldInt}}},
			}},
			kind: KindMalformed,
		},
		{
			name: "unknown field kind",
			m: manifest{Version: 1, Components: []wireDescriptor{
				{ID: id, Name: "A", Fields: []Field{{Name: "x", Kind: "matrix"}}},
			}},
			kind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := msgpack.Marshal(&tt.m)
			require.NoError(t, err)

			_, err = DecodeManifest(data)
			require.Error(t, err)
			var herr *Error
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.kind, herr.Kind)
			assert.Equal(t, PhaseScan, herr.Phase)
		})
	}
}

func TestDecodeManifestGarbage(t *testing.T) {
	_, err := DecodeManifest([]byte{0xc1})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeManifestEmpty(t *testing.T) {
	data, err := EncodeManifest(nil)
	require.NoError(t, err)
	descs, err := DecodeManifest(data)
	require.NoError(t, err)
	assert.Empty(t, descs)
}

func TestManifestDefaultsKeepTheirKindTypes(t *testing.T) {
	descs := []Descriptor{descriptor("Player",
		Field{Name: "alive", Kind: FieldBool, Default: true},
		Field{Name: "hp", Kind: FieldInt, Default: int64(5)},
		Field{Name: "big", Kind: FieldInt, Default: int64(1) << 40},
		Field{Name: "spin", Kind: FieldFloat, Default: 4.0},
		Field{Name: "name", Kind: FieldString, Default: "hero"},
		Field{Name: "at", Kind: FieldVec2, Default: []float64{1, 2}},
		Field{Name: "target", Kind: FieldVec2},
	)}

	data, err := EncodeManifest(descs)
	require.NoError(t, err)
	got, err := DecodeManifest(data)
	require.NoError(t, err)

	if diff := cmp.Diff(descs, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	at, ok := got[0].Fields[5].Default.([]float64)
	require.True(t, ok, "vec2 default is %T", got[0].Fields[5].Default)
	assert.Equal(t, []float64{1, 2}, at)
}

func TestDecodeManifestWidensNumericDefaults(t *testing.T) {
	id := uuid.New()
	m := manifest{Version: 1, Components: []wireDescriptor{{
		ID:   id.String(),
		Name: "A",
		Fields: []Field{
			{Name: "small", Kind: FieldInt, Default: int8(3)},
			{Name: "whole", Kind: FieldFloat, Default: uint16(7)},
			{Name: "at", Kind: FieldVec2, Default: []any{int8(1), 2.5}},
		},
	}}}
	data, err := msgpack.Marshal(&m)
	require.NoError(t, err)

	got, err := DecodeManifest(data)
	require.NoError(t, err)
	fields := got[0].Fields
	assert.Equal(t, int64(3), fields[0].Default)
	assert.Equal(t, float64(7), fields[1].Default)
	assert.Equal(t, []float64{1, 2.5}, fields[2].Default)
}

func TestDecodeManifestRejectsMismatchedDefaults(t *testing.T) {
	tests := []struct {
		name  string
		field Field
	}{
		{name: "string for int", field: Field{Name: "x", Kind: FieldInt, Default: "five"}},
		{name: "float for int", field: Field{Name: "x", Kind: FieldInt, Default: 1.5}},
		{name: "int for bool", field: Field{Name: "x", Kind: FieldBool, Default: 1}},
		{name: "bool for float", field: Field{Name: "x", Kind: FieldFloat, Default: true}},
		{name: "int for string", field: Field{Name: "x", Kind: FieldString, Default: 3}},
		{name: "short vec2", field: Field{Name: "x", Kind: FieldVec2, Default: []float64{1}}},
		{name: "vec2 of strings", field: Field{Name: "x", Kind: FieldVec2, Default: []string{"a", "b"}}},
		{name: "scalar vec2", field: Field{Name: "x", Kind: FieldVec2, Default: 2.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeManifest([]Descriptor{descriptor("A", tt.field)})
			require.NoError(t, err)

			_, err = DecodeManifest(data)
			require.Error(t, err)
			var herr *Error
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, KindMalformed, herr.Kind)
			assert.Equal(t, PhaseScan, herr.Phase)
		})
	}
}
