// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const floatBytes = 8

// ArenaBytes returns the working memory MLP needs for m: one float64 slot
// per input value and per unit of every layer.
func ArenaBytes(m *Model) int {
	n := m.Input
	for _, l := range m.Layers {
		n += len(l.Weights)
	}
	return n * floatBytes
}

// MLP evaluates a dense feed-forward Model. All activations live in one
// working-memory slab allocated at construction.
type MLP struct {
	model   *Model
	weights []*mat.Dense
	biases  []*mat.VecDense
	acts    []*mat.VecDense // acts[0] is the input, acts[i+1] the output of layer i
	arena   []float64
}

// NewMLP prepares m for inference inside a working memory of arenaBytes.
// A malformed model or an arena that is too small fails with ErrInit.
func NewMLP(m *Model, arenaBytes int) (*MLP, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	need := ArenaBytes(m)
	if arenaBytes < need {
		return nil, fmt.Errorf("%w: working memory of %d bytes, model %q needs %d", ErrInit, arenaBytes, m.Name, need)
	}

	c := &MLP{
		model: m,
		arena: make([]float64, arenaBytes/floatBytes),
	}

	off := 0
	take := func(n int) *mat.VecDense {
		v := mat.NewVecDense(n, c.arena[off:off+n:off+n])
		off += n
		return v
	}

	c.acts = append(c.acts, take(m.Input))
	for _, l := range m.Layers {
		rows, cols := len(l.Weights), len(l.Weights[0])
		flat := make([]float64, 0, rows*cols)
		for _, row := range l.Weights {
			flat = append(flat, row...)
		}
		c.weights = append(c.weights, mat.NewDense(rows, cols, flat))
		c.biases = append(c.biases, mat.NewVecDense(rows, append([]float64(nil), l.Bias...)))
		c.acts = append(c.acts, take(rows))
	}
	return c, nil
}

func (c *MLP) InputLen() int  { return c.model.Input }
func (c *MLP) OutputLen() int { return c.model.Output() }

// Labels returns the label order stored in the model file, if any.
func (c *MLP) Labels() []string { return c.model.Labels }

func (c *MLP) Invoke(input, output []float32) error {
	if err := checkBuffers(c, input, output); err != nil {
		return err
	}

	in := c.acts[0]
	for i, v := range input {
		in.SetVec(i, float64(v))
	}

	for i, l := range c.model.Layers {
		out := c.acts[i+1]
		out.MulVec(c.weights[i], c.acts[i])
		out.AddVec(out, c.biases[i])
		activate(out, l.Activation)
	}

	last := c.acts[len(c.acts)-1]
	for i := range output {
		v := last.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: output %d is not finite", ErrInvoke, i)
		}
		output[i] = float32(v)
	}
	return nil
}

func activate(v *mat.VecDense, name string) {
	n := v.Len()
	switch name {
	case ActivationReLU:
		for i := 0; i < n; i++ {
			if v.AtVec(i) < 0 {
				v.SetVec(i, 0)
			}
		}
	case ActivationSigmoid:
		for i := 0; i < n; i++ {
			v.SetVec(i, 1/(1+math.Exp(-v.AtVec(i))))
		}
	case ActivationTanh:
		for i := 0; i < n; i++ {
			v.SetVec(i, math.Tanh(v.AtVec(i)))
		}
	case ActivationSoftmax:
		top := mat.Max(v)
		sum := 0.0
		for i := 0; i < n; i++ {
			e := math.Exp(v.AtVec(i) - top)
			v.SetVec(i, e)
			sum += e
		}
		v.ScaleVec(1/sum, v)
	}
}
