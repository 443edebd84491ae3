// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package decision

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoScores      = errors.New("decision: empty score array")
	ErrLabelMismatch = errors.New("decision: score count does not match label table")
)

// DefaultLabels is the training order of the shipped models.
var DefaultLabels = LabelTable{"right", "left", "up", "down"}

// LabelTable maps classifier output positions to gesture names.
type LabelTable []string

// ParseLabels reads a comma separated label list, e.g. "right,left,up,down".
func ParseLabels(s string) (LabelTable, error) {
	parts := strings.Split(s, ",")
	labels := make(LabelTable, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty label in %q", s)
		}
		if seen[p] {
			return nil, fmt.Errorf("duplicate label %q in %q", p, s)
		}
		seen[p] = true
		labels = append(labels, p)
	}
	return labels, nil
}

func (t LabelTable) String() string { return strings.Join(t, ",") }

// Gesture is the final decision of one cycle.
type Gesture struct {
	Index int     `json:"index"`
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

// Argmax returns the index and value of the largest score. The scan only
// moves on a strictly greater value, so the lowest index wins ties.
func Argmax(scores []float32) (int, float32, error) {
	if len(scores) == 0 {
		return 0, 0, ErrNoScores
	}
	best, top := 0, scores[0]
	for i := 1; i < len(scores); i++ {
		if scores[i] > top {
			best, top = i, scores[i]
		}
	}
	return best, top, nil
}

// Decide picks the winning label for scores.
func Decide(scores []float32, labels LabelTable) (Gesture, error) {
	if len(scores) != len(labels) {
		return Gesture{}, fmt.Errorf("%w: %d scores, %d labels", ErrLabelMismatch, len(scores), len(labels))
	}
	idx, score, err := Argmax(scores)
	if err != nil {
		return Gesture{}, err
	}
	return Gesture{Index: idx, Label: labels[idx], Score: score}, nil
}
