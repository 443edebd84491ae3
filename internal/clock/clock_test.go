// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFake(start)

	f.Sleep(250 * time.Millisecond)
	f.Sleep(2 * time.Second)
	f.Advance(time.Second)

	assert.Equal(t, start.Add(3250*time.Millisecond), f.Now())
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 2 * time.Second}, f.Sleeps())
}

func TestReal_Monotonic(t *testing.T) {
	c := Real()
	a := c.Now()
	c.Sleep(time.Millisecond)
	assert.True(t, c.Now().After(a))
}
