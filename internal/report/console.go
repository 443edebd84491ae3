// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// Console writes one line per event.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Report(e Event) error {
	if _, err := fmt.Fprintln(c.w, e.Line()); err != nil {
		return fmt.Errorf("console: write: %w", err)
	}
	return nil
}

func (c *Console) Prompt(msg string) error {
	if _, err := fmt.Fprintln(c.w, msg); err != nil {
		return fmt.Errorf("console: write: %w", err)
	}
	return nil
}

// OpenSerialConsole opens a UART and returns a Console writing to it. The
// caller closes the returned port.
func OpenSerialConsole(portName string, baud int) (*Console, io.ReadWriteCloser, error) {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("console: open %s: %w", portName, err)
	}
	return NewConsole(port), port, nil
}
