// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/signspeak/internal/config"
	"github.com/relabs-tech/signspeak/internal/report"
)

// RunGestureConsole prints every gesture event seen on the on-board broker
// until Ctrl+C.
func RunGestureConsole() error {
	cfg := config.Get()
	setupLogging(cfg.LogLevel)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Info().Str("broker", cfg.MQTTBroker).Msg("console: connected to MQTT broker")

	token := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		printEvent(os.Stdout, msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Info().Str("topic", cfg.TopicGesture).Msg("console: subscribed")

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("console: shutting down")
	client.Disconnect(250)
	return nil
}

func printEvent(w io.Writer, payload []byte) {
	var e report.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		log.Warn().Err(err).Msg("console: event unmarshal error")
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", e.Time.Format(time.TimeOnly), e.Line())
}
