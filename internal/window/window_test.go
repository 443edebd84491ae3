// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleN(i int) Sample {
	base := float32(i * 10)
	return Sample{
		Accel:     [3]float32{base + 1, base + 2, base + 3},
		Gyro:      [3]float32{base + 4, base + 5, base + 6},
		FlexAngle: base + 7,
	}
}

func TestBuilder_FieldOrder(t *testing.T) {
	var b Builder
	for i := 0; i < Samples; i++ {
		require.False(t, b.Complete())
		require.NoError(t, b.Add(sampleN(i)))
	}
	require.True(t, b.Complete())

	v, err := b.Vector()
	require.NoError(t, err)
	require.Len(t, v, 28)

	for i := 0; i < Samples; i++ {
		base := float32(i * 10)
		slot := v[i*FieldsPerSample : (i+1)*FieldsPerSample]
		assert.Equal(t, []float32{base + 1, base + 2, base + 3, base + 4, base + 5, base + 6, base + 7}, slot, "slot %d", i)
	}
}

func TestBuilder_IncompleteRejected(t *testing.T) {
	var b Builder
	_, err := b.Vector()
	assert.ErrorIs(t, err, ErrIncomplete)

	for i := 0; i < Samples-1; i++ {
		require.NoError(t, b.Add(sampleN(i)))
		_, err := b.Vector()
		assert.ErrorIs(t, err, ErrIncomplete)
	}
}

func TestBuilder_FullAndReset(t *testing.T) {
	var b Builder
	for i := 0; i < Samples; i++ {
		require.NoError(t, b.Add(sampleN(i)))
	}
	assert.ErrorIs(t, b.Add(sampleN(9)), ErrWindowFull)

	v1, err := b.Vector()
	require.NoError(t, err)

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.Complete())

	// A vector handed out earlier is not affected by later writes.
	require.NoError(t, b.Add(sampleN(5)))
	assert.Equal(t, float32(1), v1[0])
}
