package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStringList(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{"json string", `["go","backend"]`, []string{"go", "backend"}},
		{"decoded list", []interface{}{"go", "backend"}, []string{"go", "backend"}},
		{"string slice", []string{"go", "backend"}, []string{"go", "backend"}},
		{"absent", nil, []string{}},
		{"empty string", "  ", []string{}},
		{"json null", "null", []string{}},
		{"numbers are stringified", []interface{}{"a", float64(2)}, []string{"a", "2"}},
		{"unsupported type", 17, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStringList(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeStringList_EncodedAndLiteralAgree(t *testing.T) {
	encoded, err := NormalizeStringList(`["Step one", "Step two", "Step three"]`)
	require.NoError(t, err)
	literal, err := NormalizeStringList([]interface{}{"Step one", "Step two", "Step three"})
	require.NoError(t, err)

	assert.Equal(t, encoded, literal)
}

func TestNormalizeStringList_Errors(t *testing.T) {
	_, err := NormalizeStringList(`["unterminated"`)
	assert.Error(t, err)

	_, err = NormalizeStringList(`not json`)
	assert.Error(t, err)

	_, err = NormalizeStringList([]interface{}{map[string]interface{}{"a": 1}})
	assert.Error(t, err)
}
