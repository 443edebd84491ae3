// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// buttonPin queues edges; each edge leaves the line at the given level.
type buttonPin struct {
	pull  gpio.Pull
	edge  gpio.Edge
	inErr error
	level gpio.Level
	edges []gpio.Level
	waits []time.Duration
}

func (p *buttonPin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.pull, p.edge = pull, edge
	p.level = gpio.High
	return p.inErr
}

func (p *buttonPin) Read() gpio.Level { return p.level }

func (p *buttonPin) WaitForEdge(timeout time.Duration) bool {
	p.waits = append(p.waits, timeout)
	if len(p.edges) == 0 {
		return false
	}
	p.level, p.edges = p.edges[0], p.edges[1:]
	return true
}

func TestButtonConfiguresPullUpFallingEdge(t *testing.T) {
	pin := &buttonPin{}
	_, err := newButton("GPIO60", pin)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullUp, pin.pull)
	assert.Equal(t, gpio.FallingEdge, pin.edge)

	_, err = newButton("GPIO60", &buttonPin{inErr: errBus})
	require.ErrorIs(t, err, errBus)
	assert.Contains(t, err.Error(), "GPIO60")
}

func TestButtonAwait(t *testing.T) {
	pin := &buttonPin{}
	b, err := newButton("GPIO60", pin)
	require.NoError(t, err)

	assert.False(t, b.Await(300*time.Millisecond), "no edge")
	assert.Equal(t, []time.Duration{300 * time.Millisecond}, pin.waits)

	pin.edges = []gpio.Level{gpio.High}
	assert.False(t, b.Await(time.Second), "bounce that ends high is not a press")

	pin.edges = []gpio.Level{gpio.Low}
	assert.True(t, b.Await(time.Second))
}

func TestButtonDropsEdgesQueuedDuringCapture(t *testing.T) {
	pin := &buttonPin{edges: []gpio.Level{gpio.Low}}
	b, err := newButton("GPIO60", pin)
	require.NoError(t, err)
	require.True(t, b.Await(time.Second))

	// bounce and a second press while the cycle was running
	pin.edges = []gpio.Level{gpio.High, gpio.Low, gpio.High}
	pin.waits = nil
	assert.False(t, b.Await(time.Second))
	assert.Empty(t, pin.edges)
	assert.Equal(t, []time.Duration{0, 0, 0, 0, time.Second}, pin.waits)

	pin.edges = []gpio.Level{gpio.Low}
	assert.True(t, b.Await(time.Second))
}
