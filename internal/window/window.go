// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package window accumulates timed samples into the fixed-shape feature
// vector the classifier consumes.
package window

import (
	"errors"
	"fmt"
)

const (
	// Samples is the number of timed samples per window.
	Samples = 4
	// FieldsPerSample is ax, ay, az, gx, gy, gz, flex.
	FieldsPerSample = 7
	// FeatureLen is the classifier input length.
	FeatureLen = Samples * FieldsPerSample
)

var (
	ErrIncomplete = errors.New("window: incomplete")
	ErrWindowFull = errors.New("window: full")
)

// Sample is one instant's converted sensor reading.
type Sample struct {
	Accel     [3]float32 `json:"accel"`      // g
	Gyro      [3]float32 `json:"gyro"`       // deg/s
	FlexAngle float32    `json:"flex_angle"` // degrees, clamped
}

// FeatureVector holds Samples consecutive samples, oldest first.
type FeatureVector [FeatureLen]float32

// Builder collects exactly Samples samples in arrival order.
type Builder struct {
	buf FeatureVector
	n   int
}

// Add writes s into the next slot.
func (b *Builder) Add(s Sample) error {
	if b.n >= Samples {
		return fmt.Errorf("%w: %d samples already collected", ErrWindowFull, b.n)
	}
	off := b.n * FieldsPerSample
	b.buf[off+0] = s.Accel[0]
	b.buf[off+1] = s.Accel[1]
	b.buf[off+2] = s.Accel[2]
	b.buf[off+3] = s.Gyro[0]
	b.buf[off+4] = s.Gyro[1]
	b.buf[off+5] = s.Gyro[2]
	b.buf[off+6] = s.FlexAngle
	b.n++
	return nil
}

// Len returns the number of samples collected so far.
func (b *Builder) Len() int { return b.n }

// Complete reports whether the window holds Samples samples.
func (b *Builder) Complete() bool { return b.n == Samples }

// Vector returns a copy of the completed feature vector.
func (b *Builder) Vector() (FeatureVector, error) {
	if !b.Complete() {
		return FeatureVector{}, fmt.Errorf("%w: %d of %d samples", ErrIncomplete, b.n, Samples)
	}
	return b.buf, nil
}

// Reset discards everything collected so far.
func (b *Builder) Reset() {
	b.buf = FeatureVector{}
	b.n = 0
}
