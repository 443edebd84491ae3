// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// basicfont.Face7x13 cell size
const (
	glyphWidth  = 7
	glyphHeight = 13
)

// screen is the part of *ssd1306.Dev the display reporter draws on.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// Display shows the latest result on a 128x64 SSD1306 OLED.
type Display struct {
	dev screen
}

// OpenDisplay initializes an SSD1306 on the named I²C bus ("" picks the
// first bus) and shows the splash screen. The caller closes the bus.
func OpenDisplay(busName string) (*Display, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("display: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("display: open I2C bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("display: init SSD1306: %w", err)
	}

	d := newDisplay(dev)
	if err := d.Splash(); err != nil {
		bus.Close()
		return nil, nil, err
	}
	return d, bus, nil
}

func newDisplay(dev screen) *Display {
	return &Display{dev: dev}
}

// Splash shows the startup screen.
func (d *Display) Splash() error {
	return d.show("SignSpeak", "Ready")
}

func (d *Display) Report(e Event) error {
	switch e.Kind {
	case KindGesture:
		return d.show("Gesture:", strings.ToUpper(e.Label), fmt.Sprintf("score %.2f", e.Score))
	case KindSensorFault:
		return d.show("Sensor fault")
	case KindClassifierFault:
		return d.show("Model fault")
	}
	return nil
}

// Prompt shows msg word-wrapped to the panel width.
func (d *Display) Prompt(msg string) error {
	return d.show(wrapWords(msg, d.dev.Bounds().Dx()/glyphWidth)...)
}

// show draws up to four lines of 7x13 text.
func (d *Display) show(lines ...string) error {
	img := renderLines(d.dev.Bounds(), lines...)
	if err := d.dev.Draw(d.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("display: draw: %w", err)
	}
	return nil
}

// wrapWords splits s into lines of at most width characters. A word longer
// than width gets a line of its own.
func wrapWords(s string, width int) []string {
	var lines []string
	line := ""
	for _, w := range strings.Fields(s) {
		switch {
		case line == "":
			line = w
		case len(line)+1+len(w) <= width:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func renderLines(bounds image.Rectangle, lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(bounds)
	draw.Draw(img, img.Bounds(), &image.Uniform{image1bit.Off}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if i == 4 {
			break
		}
		drawer.Dot = fixed.P(0, glyphHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}
