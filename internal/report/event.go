// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package report delivers per-cycle results to on-device outputs.
package report

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a cycle result.
type Kind string

const (
	KindGesture         Kind = "gesture"
	KindSensorFault     Kind = "sensor_fault"
	KindClassifierFault Kind = "classifier_fault"
)

// Event is one cycle's result. Label, Index and Score are only meaningful
// for KindGesture.
type Event struct {
	Kind   Kind      `json:"kind"`
	Time   time.Time `json:"time"`
	Label  string    `json:"label,omitempty"`
	Index  int       `json:"index"`
	Score  float32   `json:"score"`
	Reason string    `json:"reason,omitempty"`
}

// Line renders the human-readable console line for e.
func (e Event) Line() string {
	switch e.Kind {
	case KindGesture:
		return "Predicted gesture: " + e.Label
	case KindSensorFault:
		return "Sensor fault: " + e.Reason
	case KindClassifierFault:
		return "Classifier fault: " + e.Reason
	}
	return fmt.Sprintf("unknown event %q", e.Kind)
}

// Reporter receives cycle results. Implementations are called from the
// pipeline goroutine and must not retain e beyond the call.
type Reporter interface {
	Report(e Event) error
}

// Fanout forwards each event to every reporter, in order. One failing
// reporter does not stop the others.
type Fanout []Reporter

func (f Fanout) Report(e Event) error {
	var errs []error
	for _, r := range f {
		if err := r.Report(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Prompter shows operator instructions while the glove waits for the
// button and counts down.
type Prompter interface {
	Prompt(msg string) error
}

// Prompts forwards each prompt to every prompter, in order.
type Prompts []Prompter

func (p Prompts) Prompt(msg string) error {
	var errs []error
	for _, r := range p {
		if err := r.Prompt(msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
