// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModel(t *testing.T) {
	m, err := LoadModel("testdata/tiny.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tiny", m.Name)
	assert.Equal(t, 3, m.Input)
	assert.Equal(t, 2, m.Output())
	assert.Equal(t, []string{"open", "fist"}, m.Labels)
	assert.Equal(t, (3+2)*8, ArenaBytes(m))

	_, err = LoadModel("testdata/missing.yaml")
	assert.ErrorIs(t, err, ErrInit)
}

func TestParseModel_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":         "layers: [",
		"no layers":        "input: 3\nlayers: []\n",
		"zero input":       "input: 0\nlayers:\n  - weights: [[1]]\n    bias: [0]\n",
		"row width":        "input: 2\nlayers:\n  - weights: [[1, 2, 3]]\n    bias: [0]\n",
		"bias count":       "input: 1\nlayers:\n  - weights: [[1], [2]]\n    bias: [0]\n",
		"bad activation":   "input: 1\nlayers:\n  - weights: [[1]]\n    bias: [0]\n    activation: swish\n",
		"label count":      "input: 1\nlabels: [a, b]\nlayers:\n  - weights: [[1]]\n    bias: [0]\n",
		"non-finite":       "input: 1\nlayers:\n  - weights: [[.nan]]\n    bias: [0]\n",
		"chained mismatch": "input: 2\nlayers:\n  - weights: [[1, 1], [1, 1]]\n    bias: [0, 0]\n  - weights: [[1, 1, 1]]\n    bias: [0]\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseModel([]byte(src))
			assert.ErrorIs(t, err, ErrInit)
		})
	}
}

func TestMLP_Linear(t *testing.T) {
	m, err := LoadModel("testdata/tiny.yaml")
	require.NoError(t, err)

	c, err := NewMLP(m, ArenaBytes(m))
	require.NoError(t, err)
	assert.Equal(t, 3, c.InputLen())
	assert.Equal(t, 2, c.OutputLen())

	out := make([]float32, 2)
	require.NoError(t, c.Invoke([]float32{1, 1, 1}, out))
	assert.Equal(t, []float32{6.5, -1}, out)

	// Buffers are reused internally; a second call must not see stale data.
	require.NoError(t, c.Invoke([]float32{0, 2, 0}, out))
	assert.Equal(t, []float32{4.5, -2}, out)
}

func TestMLP_Activations(t *testing.T) {
	src := `
input: 1
layers:
  - weights: [[1], [-1]]
    bias: [0, 0]
    activation: relu
  - weights: [[1, 0], [0, 1]]
    bias: [0, 0]
    activation: softmax
`
	m, err := ParseModel([]byte(src))
	require.NoError(t, err)
	c, err := NewMLP(m, 16384)
	require.NoError(t, err)

	out := make([]float32, 2)
	require.NoError(t, c.Invoke([]float32{0}, out))
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, out, 1e-6)

	// relu(2) = 2, relu(-2) = 0; softmax([2, 0]).
	require.NoError(t, c.Invoke([]float32{2}, out))
	e2 := math.Exp(2)
	assert.InDelta(t, e2/(e2+1), out[0], 1e-6)
	assert.InDelta(t, 1/(e2+1), out[1], 1e-6)
}

func TestMLP_SigmoidTanh(t *testing.T) {
	src := `
input: 1
layers:
  - weights: [[1]]
    bias: [0]
    activation: sigmoid
  - weights: [[2]]
    bias: [-1]
    activation: tanh
`
	m, err := ParseModel([]byte(src))
	require.NoError(t, err)
	c, err := NewMLP(m, 2000)
	require.NoError(t, err)

	out := make([]float32, 1)
	require.NoError(t, c.Invoke([]float32{0}, out))
	// sigmoid(0) = 0.5, tanh(2*0.5 - 1) = 0.
	assert.InDelta(t, 0, out[0], 1e-9)
}

func TestNewMLP_ArenaTooSmall(t *testing.T) {
	m, err := LoadModel("testdata/tiny.yaml")
	require.NoError(t, err)

	_, err = NewMLP(m, ArenaBytes(m)-1)
	assert.ErrorIs(t, err, ErrInit)
}

func TestMLP_BufferSizes(t *testing.T) {
	m, err := LoadModel("testdata/tiny.yaml")
	require.NoError(t, err)
	c, err := NewMLP(m, 2000)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Invoke(make([]float32, 2), make([]float32, 2)), ErrInvoke)
	assert.ErrorIs(t, c.Invoke(make([]float32, 3), make([]float32, 3)), ErrInvoke)
}

func TestMLP_NonFiniteOutput(t *testing.T) {
	src := "input: 1\nlayers:\n  - weights: [[1e308]]\n    bias: [0]\n"
	m, err := ParseModel([]byte(src))
	require.NoError(t, err)
	c, err := NewMLP(m, 2000)
	require.NoError(t, err)

	err = c.Invoke([]float32{1e30}, make([]float32, 1))
	assert.ErrorIs(t, err, ErrInvoke)
}

func TestStatic(t *testing.T) {
	s := NewStatic(28, 0.1, 0.8, 0.05, 0.05)
	assert.Equal(t, 28, s.InputLen())
	assert.Equal(t, 4, s.OutputLen())

	out := make([]float32, 4)
	require.NoError(t, s.Invoke(make([]float32, 28), out))
	assert.Equal(t, []float32{0.1, 0.8, 0.05, 0.05}, out)

	assert.ErrorIs(t, s.Invoke(make([]float32, 27), out), ErrInvoke)
}
