// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgmax(t *testing.T) {
	tests := map[string]struct {
		scores []float32
		index  int
		score  float32
	}{
		"first maximum wins": {scores: []float32{0.2, 0.9, 0.9, 0.1}, index: 1, score: 0.9},
		"all equal":          {scores: []float32{0.1, 0.1, 0.1, 0.1}, index: 0, score: 0.1},
		"last":               {scores: []float32{-3, -2, -1, 0}, index: 3, score: 0},
		"single":             {scores: []float32{7}, index: 0, score: 7},
		"logits":             {scores: []float32{-1.5, 2.25, -0.5, 2.0}, index: 1, score: 2.25},
		"nan is never max":   {scores: []float32{0.3, float32(math.NaN()), 0.2}, index: 0, score: 0.3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			idx, score, err := Argmax(tt.scores)
			require.NoError(t, err)
			assert.Equal(t, tt.index, idx)
			assert.Equal(t, tt.score, score)
		})
	}
}

func TestArgmax_Empty(t *testing.T) {
	_, _, err := Argmax(nil)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestDecide(t *testing.T) {
	g, err := Decide([]float32{0.1, 0.8, 0.05, 0.05}, DefaultLabels)
	require.NoError(t, err)
	assert.Equal(t, Gesture{Index: 1, Label: "left", Score: 0.8}, g)

	_, err = Decide([]float32{0.1, 0.8}, DefaultLabels)
	assert.ErrorIs(t, err, ErrLabelMismatch)
}

func TestParseLabels(t *testing.T) {
	labels, err := ParseLabels(" left, right ,up,down")
	require.NoError(t, err)
	assert.Equal(t, LabelTable{"left", "right", "up", "down"}, labels)
	assert.Equal(t, "left,right,up,down", labels.String())

	_, err = ParseLabels("left,,up")
	assert.Error(t, err)

	_, err = ParseLabels("left,up,left")
	assert.Error(t, err)
}
