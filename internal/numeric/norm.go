// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package numeric holds vector helpers for diagnostics. Feature vectors
// reach the classifier un-normalised.
package numeric

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrZeroNorm is returned when normalising a vector whose norm is zero.
var ErrZeroNorm = errors.New("numeric: zero norm")

// PNorm returns the L-p norm of v. p = 0 counts the non-zero entries and
// p = +Inf gives the largest magnitude.
func PNorm(v []float64, p float64) float64 {
	if len(v) == 0 {
		return 0
	}
	if p == 0 {
		return float64(floats.Count(func(x float64) bool { return x != 0 }, v))
	}
	return floats.Norm(v, p)
}

// EuclideanNorm is PNorm(v, 2).
func EuclideanNorm(v []float64) float64 {
	return PNorm(v, 2)
}

// Normalize scales v in place so that its L-p norm is one.
func Normalize(v []float64, p float64) error {
	n := PNorm(v, p)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrZeroNorm
	}
	floats.Scale(1/n, v)
	return nil
}
