// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package classifier

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Activation names accepted in a model file.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
	ActivationSoftmax = "softmax"
)

// Layer is one dense layer: out = act(W·in + b). Weights are row major,
// one row per output unit.
type Layer struct {
	Weights    [][]float64 `yaml:"weights"`
	Bias       []float64   `yaml:"bias"`
	Activation string      `yaml:"activation"`
}

// Model is the on-disk description of a dense feed-forward network.
type Model struct {
	Name   string   `yaml:"name"`
	Input  int      `yaml:"input"`
	Labels []string `yaml:"labels,omitempty"`
	Layers []Layer  `yaml:"layers"`
}

// LoadModel reads and validates a YAML model file.
func LoadModel(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read model: %w", ErrInit, err)
	}
	return ParseModel(b)
}

// ParseModel decodes and validates a YAML model.
func ParseModel(b []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: decode model: %w", ErrInit, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Output returns the width of the last layer.
func (m *Model) Output() int {
	if len(m.Layers) == 0 {
		return 0
	}
	return len(m.Layers[len(m.Layers)-1].Weights)
}

// Validate checks that every layer chains onto the previous one.
func (m *Model) Validate() error {
	if m.Input <= 0 {
		return fmt.Errorf("%w: model input width must be positive, got %d", ErrInit, m.Input)
	}
	if len(m.Layers) == 0 {
		return fmt.Errorf("%w: model has no layers", ErrInit)
	}
	width := m.Input
	for i, l := range m.Layers {
		if len(l.Weights) == 0 {
			return fmt.Errorf("%w: layer %d has no units", ErrInit, i)
		}
		if len(l.Bias) != len(l.Weights) {
			return fmt.Errorf("%w: layer %d has %d biases for %d units", ErrInit, i, len(l.Bias), len(l.Weights))
		}
		for r, row := range l.Weights {
			if len(row) != width {
				return fmt.Errorf("%w: layer %d row %d has %d weights, want %d", ErrInit, i, r, len(row), width)
			}
			for _, w := range row {
				if math.IsNaN(w) || math.IsInf(w, 0) {
					return fmt.Errorf("%w: layer %d row %d has a non-finite weight", ErrInit, i, r)
				}
			}
		}
		switch l.Activation {
		case "", ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationSoftmax:
		default:
			return fmt.Errorf("%w: layer %d has unknown activation %q", ErrInit, i, l.Activation)
		}
		width = len(l.Weights)
	}
	if len(m.Labels) > 0 && len(m.Labels) != width {
		return fmt.Errorf("%w: model lists %d labels for %d outputs", ErrInit, len(m.Labels), width)
	}
	return nil
}
