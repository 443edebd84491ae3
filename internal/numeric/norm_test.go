// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNorm(t *testing.T) {
	v := []float64{3, -4, 0}

	assert.InDelta(t, 5.0, EuclideanNorm(v), 1e-12)
	assert.InDelta(t, 7.0, PNorm(v, 1), 1e-12)
	assert.InDelta(t, 4.0, PNorm(v, math.Inf(1)), 1e-12)
	assert.Equal(t, 2.0, PNorm(v, 0))
	assert.Equal(t, 0.0, PNorm(nil, 2))
}

func TestNormalize(t *testing.T) {
	v := []float64{3, -4}
	require.NoError(t, Normalize(v, 2))
	assert.InDeltaSlice(t, []float64{0.6, -0.8}, v, 1e-12)
	assert.InDelta(t, 1.0, EuclideanNorm(v), 1e-12)

	assert.ErrorIs(t, Normalize([]float64{0, 0, 0}, 2), ErrZeroNorm)
}
