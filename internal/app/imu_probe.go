// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/signspeak/internal/config"
	"github.com/relabs-tech/signspeak/internal/sensors"
)

// RunIMUProbe checks that the BMI270 answers on the configured bus and
// prints its register table, as text or as JSON.
func RunIMUProbe(asJSON bool) error {
	cfg := config.Get()
	setupLogging(cfg.LogLevel)

	id, regs, err := sensors.ProbeIMU(cfg.I2CBus, cfg.IMUI2CAddr)
	if err != nil && len(regs) == 0 {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Int("read", len(regs)).Msg("probe: register dump incomplete")
	}
	if id != sensors.BMI270ChipID {
		log.Warn().Str("chip_id", fmt.Sprintf("0x%02X", id)).Msg("probe: not a BMI270")
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(regs)
	}
	printRegisters(os.Stdout, id, regs)
	return nil
}

func printRegisters(w io.Writer, id byte, regs []sensors.RegisterValue) {
	fmt.Fprintf(w, "chip id 0x%02X\n", id)
	for _, r := range regs {
		fmt.Fprintf(w, "0x%02X %-16s 0x%02X  %08b  %s\n", r.Address, r.Name, r.Value, r.Value, r.Description)
		for _, f := range r.BitFields {
			fmt.Fprintf(w, "     [%-4s] %-16s %s\n", f.Bits, f.Name, f.Description)
		}
	}
}
