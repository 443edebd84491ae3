// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publisher is the part of mqtt.Client the reporter needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes events as JSON on the on-board broker.
type MQTT struct {
	client  publisher
	topic   string
	timeout time.Duration
}

// NewMQTT wraps an already connected client.
func NewMQTT(client publisher, topic string) *MQTT {
	return &MQTT{client: client, topic: topic, timeout: time.Second}
}

// ConnectMQTT connects to broker and returns the reporter together with the
// client so the caller can disconnect it.
func ConnectMQTT(broker, clientID, topic string) (*MQTT, mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("mqtt: connect %s: %w", broker, token.Error())
	}
	return NewMQTT(client, topic), client, nil
}

func (m *MQTT) Report(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("mqtt: marshal event: %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt: publish %s: timed out after %s", m.topic, m.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", m.topic, err)
	}
	return nil
}
