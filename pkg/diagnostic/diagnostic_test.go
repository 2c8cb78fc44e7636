package diagnostic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/hamlint/pkg/diagnostic"
	"github.com/walteh/hamlint/pkg/sourcemap"
)

func TestRemap(t *testing.T) {
	m := sourcemap.New()
	m.Add(5) // synthetic 1
	m.Add(6) // synthetic 2
	m.Add(5) // synthetic 3

	diags := []diagnostic.Diagnostic{
		{Message: "useless assignment", Line: 2, Rule: "Lint/UselessAssignment", Severity: diagnostic.Warning},
		{Message: "syntax error", Line: 1, Severity: diagnostic.Error},
	}

	remapped, err := diagnostic.Remap(diags, m)
	require.NoError(t, err)
	require.Len(t, remapped, 2)
	assert.Equal(t, 6, remapped[0].Line)
	assert.Equal(t, 5, remapped[1].Line)

	// Input is untouched.
	assert.Equal(t, 2, diags[0].Line)
}

func TestRemap_UnmappedLine(t *testing.T) {
	m := sourcemap.New()
	m.Add(1)

	_, err := diagnostic.Remap([]diagnostic.Diagnostic{{Message: "x", Line: 9}}, m)
	require.Error(t, err)

	_, err = diagnostic.Remap(nil, nil)
	require.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	f := diagnostic.NewJSONFormatter()

	out, err := f.Format(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))

	out, err = f.Format([]diagnostic.Diagnostic{
		{Message: "m", Line: 3, Rule: "r", Severity: diagnostic.Info},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"message":"m","line":3,"rule":"r","severity":"info"}]`, string(out))
}
