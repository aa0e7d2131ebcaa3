package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxsql/schema/field"
)

func TestType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", field.TypeString.String())
	assert.Equal(t, "uint32", field.TypeUint32.String())
	assert.Equal(t, "set", field.TypeSet.String())
	assert.Equal(t, "invalid", field.TypeInvalid.String())
	assert.Equal(t, "invalid", field.Type(250).String())
}

func TestType_Categories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ                                             field.Type
		valid, numeric, integer, float, textual, enumer bool
		temporal                                        bool
	}{
		{typ: field.TypeInvalid},
		{typ: field.TypeBool, valid: true},
		{typ: field.TypeString, valid: true, textual: true},
		{typ: field.TypeBytes, valid: true, textual: true},
		{typ: field.TypeEnum, valid: true, enumer: true},
		{typ: field.TypeSet, valid: true, enumer: true},
		{typ: field.TypeTime, valid: true, temporal: true},
		{typ: field.TypeJSON, valid: true},
		{typ: field.TypeInt8, valid: true, numeric: true, integer: true},
		{typ: field.TypeUint64, valid: true, numeric: true, integer: true},
		{typ: field.TypeFloat32, valid: true, numeric: true, float: true},
		{typ: field.TypeFloat64, valid: true, numeric: true, float: true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.typ.Valid())
			assert.Equal(t, tt.numeric, tt.typ.Numeric())
			assert.Equal(t, tt.integer, tt.typ.Integer())
			assert.Equal(t, tt.float, tt.typ.Float())
			assert.Equal(t, tt.textual, tt.typ.Textual())
			assert.Equal(t, tt.enumer, tt.typ.Enumerated())
			assert.Equal(t, tt.temporal, tt.typ.Temporal())
		})
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for _, typ := range []field.Type{field.TypeBool, field.TypeTime, field.TypeInt, field.TypeUint64, field.TypeFloat64, field.TypeEnum} {
		got, err := field.ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := field.ParseType("invalid")
	require.Error(t, err)
	_, err = field.ParseType("varchar")
	require.Error(t, err)
}

func TestType_Text(t *testing.T) {
	t.Parallel()

	b, err := field.TypeUint32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "uint32", string(b))

	var typ field.Type
	require.NoError(t, typ.UnmarshalText([]byte("time.Time")))
	assert.Equal(t, field.TypeTime, typ)
	require.Error(t, typ.UnmarshalText([]byte("date")))
	assert.Equal(t, field.TypeTime, typ)
}
