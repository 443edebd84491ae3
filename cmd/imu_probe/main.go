// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/signspeak/internal/app"
	"github.com/relabs-tech/signspeak/internal/config"
)

func main() {
	configPath := flag.String("config", "./gesture_config.txt", "path to configuration file")
	asJSON := flag.Bool("json", false, "print registers as JSON")
	flag.Parse()

	log.Info().Msg("starting BMI270 register probe")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := app.RunIMUProbe(*asJSON); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
