package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTOptions selects the broker and topic carrying GPS fixes.
type MQTTOptions struct {
	Broker   string
	Topic    string
	ClientID string
}

// Fix is a GPS fix as published on the MQTT topic.
type Fix struct {
	Time      string  `json:"time,omitempty"`
	Date      string  `json:"date,omitempty"`
	Validity  string  `json:"validity,omitempty"` // "A" valid, "V" void
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// MQTT is a location source fed by GPS fixes published on a broker topic.
type MQTT struct {
	client mqtt.Client
	hub    *hub
	topic  string
}

func newMQTT(topic string, maxAge time.Duration) *MQTT {
	return &MQTT{topic: topic, hub: newHub(maxAge)}
}

// DialMQTT connects to the broker and subscribes to the fix topic.
func DialMQTT(opts MQTTOptions, maxAge time.Duration) (*MQTT, error) {
	m := newMQTT(opts.Topic, maxAge)

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Str("broker", opts.Broker).Msg("MQTT connection lost")
		})

	m.client = mqtt.NewClient(clientOpts)
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect MQTT broker %s: %w", opts.Broker, token.Error())
	}

	if token := m.client.Subscribe(opts.Topic, 0, m.handle); token.Wait() && token.Error() != nil {
		m.client.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", opts.Topic, token.Error())
	}

	log.Info().
		Str("broker", opts.Broker).
		Str("topic", opts.Topic).
		Msg("Subscribed to GPS fixes")

	return m, nil
}

func (m *MQTT) handle(_ mqtt.Client, msg mqtt.Message) {
	var fix Fix
	if err := json.Unmarshal(msg.Payload(), &fix); err != nil {
		log.Debug().Err(err).Str("topic", msg.Topic()).Msg("Invalid GPS fix payload")
		return
	}
	if fix.Validity != "" && fix.Validity != "A" {
		return
	}

	m.hub.publish(Position{Latitude: fix.Latitude, Longitude: fix.Longitude})
}

// CurrentPosition returns the latest fix, waiting for the next one when the
// cached fix is too old.
func (m *MQTT) CurrentPosition(ctx context.Context) (Position, error) {
	return m.hub.next(ctx)
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}

	return nil
}
