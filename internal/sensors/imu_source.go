// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/signspeak/internal/config"
	"github.com/relabs-tech/signspeak/internal/imu"
)

// txer is the part of i2c.Dev the port uses.
type txer interface {
	Tx(w, r []byte) error
}

// BusPort reads the BMI270 and the flex ADC that share one I²C bus.
type BusPort struct {
	name    string
	imu     txer
	dataReg byte
	flex    flexChannel
	bus     i2c.BusCloser
}

// BusOptions selects the devices behind a BusPort.
type BusOptions struct {
	Name       string
	Bus        string // "" picks the first bus
	IMUAddr    uint16
	IMUDataReg byte
	ADCAddr    uint16
	ADCChannel int

	// ADCReference is the voltage that reads as ADCFullScale counts. It
	// also selects the ADS1115 gain range.
	ADCReference float64
	ADCFullScale uint16
}

// NewBusPortFromConfig builds a BusPort from the global configuration.
func NewBusPortFromConfig() (*BusPort, error) {
	cfg := config.Get()
	ref := cfg.ADCReferenceVoltage
	if ref == 0 {
		ref = cfg.FlexSupplyVoltage
	}
	return NewBusPort(BusOptions{
		Name:         "glove",
		Bus:          cfg.I2CBus,
		IMUAddr:      cfg.IMUI2CAddr,
		IMUDataReg:   cfg.IMUDataReg,
		ADCAddr:      cfg.ADCI2CAddr,
		ADCChannel:   cfg.ADCChannel,
		ADCReference: ref,
		ADCFullScale: uint16(cfg.ADCFullScaleCounts),
	})
}

// NewBusPort opens the I²C bus and both devices on it.
func NewBusPort(opts BusOptions) (*BusPort, error) {
	name := opts.Name
	if opts.ADCReference <= 0 || opts.ADCFullScale == 0 {
		return nil, fmt.Errorf("%s flex: ADC reference %vV / full scale %d not usable", name, opts.ADCReference, opts.ADCFullScale)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	bus, err := i2creg.Open(opts.Bus)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: open I2C bus %q: %w", name, opts.Bus, err)
	}

	dev := &i2c.Dev{Bus: bus, Addr: opts.IMUAddr}
	if id, err := ReadChipID(dev); err != nil {
		log.Warn().Err(err).Str("imu", name).Msg("imu: failed to read chip id")
	} else if id != BMI270ChipID {
		log.Warn().Str("imu", name).Str("chip_id", fmt.Sprintf("0x%02X", id)).
			Msg("imu: unexpected chip id, continuing")
	} else {
		log.Info().Str("imu", name).Str("addr", fmt.Sprintf("0x%02X", opts.IMUAddr)).Msg("imu: BMI270 detected")
	}

	pin, err := openADS1115(bus, opts.ADCAddr, opts.ADCChannel, opts.ADCReference)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("%s flex: %w", name, err)
	}
	log.Info().Str("imu", name).
		Int("channel", opts.ADCChannel).
		Float64("reference_v", opts.ADCReference).
		Uint16("full_scale", opts.ADCFullScale).
		Msg("flex: ADS1115 ready")

	flex := flexChannel{pin: pin, reference: opts.ADCReference, fullScale: opts.ADCFullScale}
	p := newBusPort(name, dev, opts.IMUDataReg, flex)
	p.bus = bus
	return p, nil
}

// Close releases the I²C bus.
func (p *BusPort) Close() error {
	if p.bus == nil {
		return nil
	}
	return p.bus.Close()
}

func newBusPort(name string, dev txer, dataReg byte, flex flexChannel) *BusPort {
	return &BusPort{name: name, imu: dev, dataReg: dataReg, flex: flex}
}

// ReadInertial reads one accel+gyro burst starting at the data register.
func (p *BusPort) ReadInertial() ([]byte, error) {
	buf := make([]byte, imu.BurstLen)
	if err := p.imu.Tx([]byte{p.dataReg}, buf); err != nil {
		return nil, fmt.Errorf("%s IMU burst read at 0x%02X: %w", p.name, p.dataReg, err)
	}
	return buf, nil
}

// ReadFlexRaw reads the flex channel as a count in [0, ADCFullScale].
func (p *BusPort) ReadFlexRaw() (uint16, error) {
	raw, err := p.flex.count()
	if err != nil {
		return 0, fmt.Errorf("%s flex: %w", p.name, err)
	}
	return raw, nil
}

// ReadChipID reads the BMI270 CHIP_ID register.
func ReadChipID(dev txer) (byte, error) {
	var id [1]byte
	if err := dev.Tx([]byte{RegChipID}, id[:]); err != nil {
		return 0, err
	}
	return id[0], nil
}

// ProbeIMU opens the bus, reads the chip id and dumps the BMI270 register
// table. Write-only registers are skipped.
func ProbeIMU(busName string, addr uint16) (byte, []RegisterValue, error) {
	if _, err := host.Init(); err != nil {
		return 0, nil, fmt.Errorf("probe: periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return 0, nil, fmt.Errorf("probe: open I2C bus %q: %w", busName, err)
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: addr}
	id, err := ReadChipID(dev)
	if err != nil {
		return 0, nil, fmt.Errorf("probe: no answer at 0x%02X: %w", addr, err)
	}
	regs, err := DumpRegisters(dev, BMI270RegisterMap())
	return id, regs, err
}
