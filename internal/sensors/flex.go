// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

// flexReader is satisfied by any analog.PinADC.
type flexReader interface {
	Read() (analog.Sample, error)
}

func adsChannel(ch int) (ads1x15.Channel, error) {
	switch ch {
	case 0:
		return ads1x15.Channel0, nil
	case 1:
		return ads1x15.Channel1, nil
	case 2:
		return ads1x15.Channel2, nil
	case 3:
		return ads1x15.Channel3, nil
	}
	return 0, fmt.Errorf("ADS1115 channel must be 0-3, got %d", ch)
}

// openADS1115 returns a single-ended pin on an ADS1115 whose programmable
// gain covers maxVolt.
func openADS1115(bus i2c.Bus, addr uint16, channel int, maxVolt float64) (flexReader, error) {
	ch, err := adsChannel(channel)
	if err != nil {
		return nil, err
	}

	opts := ads1x15.DefaultOpts
	if addr != 0 {
		opts.I2cAddress = addr
	}
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("ADS1115 init at 0x%02X: %w", opts.I2cAddress, err)
	}

	pin, err := adc.PinForChannel(ch, physic.ElectricPotential(maxVolt*float64(physic.Volt)), 128*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ADS1115 channel %d: %w", channel, err)
	}
	return pin, nil
}

// flexChannel rescales ADC samples into counts of the calibration's
// converter: reference volts read as fullScale.
type flexChannel struct {
	pin       flexReader
	reference float64
	fullScale uint16
}

// count reads one sample. The driver's Raw code is relative to the
// ADS1115 gain range, so only the measured voltage is used. Negative
// single-ended noise reads as zero and anything past the reference as
// full scale.
func (c flexChannel) count() (uint16, error) {
	s, err := c.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ADC read: %w", err)
	}
	v := float64(s.V) / float64(physic.Volt)
	if v <= 0 {
		return 0, nil
	}
	n := math.Round(v / c.reference * float64(c.fullScale))
	if n >= float64(c.fullScale) {
		return c.fullScale, nil
	}
	return uint16(n), nil
}
