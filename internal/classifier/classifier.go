// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package classifier defines the fixed-size inference contract and the
// implementations the binaries ship with.
package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrInit is fatal: the classifier cannot be brought up.
	ErrInit = errors.New("classifier init fault")
	// ErrInvoke fails a single inference; the caller may continue.
	ErrInvoke = errors.New("classifier invoke fault")
)

// Classifier reads a fully populated input buffer once and writes the whole
// output buffer once. Calls are synchronous.
type Classifier interface {
	InputLen() int
	OutputLen() int
	Invoke(input, output []float32) error
}

func checkBuffers(c Classifier, input, output []float32) error {
	if len(input) != c.InputLen() {
		return fmt.Errorf("%w: input has %d values, want %d", ErrInvoke, len(input), c.InputLen())
	}
	if len(output) != c.OutputLen() {
		return fmt.Errorf("%w: output has %d slots, want %d", ErrInvoke, len(output), c.OutputLen())
	}
	return nil
}

// Static always produces the same scores.
type Static struct {
	in     int
	scores []float32
}

// NewStatic returns a Static classifier accepting inputLen values.
func NewStatic(inputLen int, scores ...float32) *Static {
	return &Static{in: inputLen, scores: append([]float32(nil), scores...)}
}

func (s *Static) InputLen() int  { return s.in }
func (s *Static) OutputLen() int { return len(s.scores) }

func (s *Static) Invoke(input, output []float32) error {
	if err := checkBuffers(s, input, output); err != nil {
		return err
	}
	copy(output, s.scores)
	return nil
}
