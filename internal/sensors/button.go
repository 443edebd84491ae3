// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePin is the part of gpio.PinIn the button uses.
type edgePin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
}

// Button is an active-low push button that starts a capture.
type Button struct {
	name  string
	pin   edgePin
	stale bool // edges queued since the last press are bounce
}

// OpenButton configures the named GPIO (e.g. "GPIO60") as a pulled-up
// input that reports falling edges.
func OpenButton(name string) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("button: pin %q not found", name)
	}
	b, err := newButton(name, p)
	if err != nil {
		return nil, err
	}
	log.Info().Str("pin", name).Msg("button: waiting for presses")
	return b, nil
}

func newButton(name string, pin edgePin) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("button: configure %s: %w", name, err)
	}
	return &Button{name: name, pin: pin}, nil
}

// Await blocks up to timeout for a press. An edge only counts when the line
// still reads low, so release bounce is ignored. Edges that piled up while
// the previous capture ran are dropped first.
func (b *Button) Await(timeout time.Duration) bool {
	if b.stale {
		for b.pin.WaitForEdge(0) {
		}
		b.stale = false
	}
	if !b.pin.WaitForEdge(timeout) {
		return false
	}
	if b.pin.Read() != gpio.Low {
		return false
	}
	b.stale = true
	return true
}
