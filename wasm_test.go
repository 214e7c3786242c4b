package wasminspect

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
)

func TestInspect(t *testing.T) {
	data, err := os.ReadFile("testdata/add.wasm")
	require.NoError(t, err)

	res, err := Inspect(data)
	require.NoError(t, err)
	assert.True(t, res.Report.Valid())
	assert.NoError(t, res.Err())
	assert.Len(t, res.Module.Exports, 2)

	_, err = Inspect(data[:20])
	assert.ErrorIs(t, err, wasm.ErrUnexpectedEOF)
}

func TestInspectFile(t *testing.T) {
	res, err := InspectFile("testdata/badlimits.wasm")
	require.NoError(t, err)
	assert.Equal(t, "testdata/badlimits.wasm", res.Path)
	assert.ErrorIs(t, res.Err(), wasm.ErrInvalidLimits)

	res, err = InspectFile("testdata/badlimits.wasm", wasm.WithoutRules("limits")...)
	require.NoError(t, err)
	assert.True(t, res.Report.Valid())

	_, err = InspectFile("testdata/missing.wasm")
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.PhaseLoad, e.Phase)
}

func TestInspectFiles(t *testing.T) {
	paths := []string{"testdata/add.wasm", "testdata/badlimits.wasm", "testdata/add.wasm"}
	results, err := InspectFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
	}
	assert.True(t, results[0].Report.Valid())
	assert.False(t, results[1].Report.Valid())

	_, err = InspectFiles(context.Background(), append(paths, "testdata/missing.wasm"), 0)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = InspectFiles(ctx, paths, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
