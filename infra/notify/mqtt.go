// Package notify holds the concrete notification transports. The MQTT
// notifier bridges engine notifications onto a broker topic so a chat relay
// or dashboard can pick them up.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/infra/logger"
)

// Config parameterizes the MQTT notifier.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Topic      string `json:"topic"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	QOS        byte   `json:"qos"`
	MaxRetries int    `json:"max_retries"`
	BackoffMS  int    `json:"backoff_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "evpark-notifier"
	}
	if c.Topic == "" {
		c.Topic = "evpark/notifications"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 200
	}
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt notifier: broker is required")
	}
	return nil
}

// publisher is the slice of the paho client the notifier needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes notification events as JSON payloads on a topic,
// with a bounded publish retry.
type MQTTNotifier struct {
	client publisher
	cfg    Config
	log    logger.Logger
	sleep  func(time.Duration)
}

// NewMQTTNotifier connects to the broker and returns the notifier.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt notifier: connect %s: %w", cfg.Broker, token.Error())
	}
	return &MQTTNotifier{
		client: client,
		cfg:    cfg,
		log:    logger.New("mqtt-notifier"),
		sleep:  time.Sleep,
	}, nil
}

// SendMail publishes the mail event on the mail subtopic.
func (n *MQTTNotifier) SendMail(msg notify.Message) error {
	return n.publish(n.cfg.Topic+"/mail", notify.Event{
		Kind:    notify.KindMail,
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
}

// PostChannel publishes the channel message on the channel subtopic.
func (n *MQTTNotifier) PostChannel(text string) error {
	return n.publish(n.cfg.Topic+"/channel", notify.Event{
		Kind: notify.KindChannel,
		Text: text,
	})
}

func (n *MQTTNotifier) publish(topic string, ev notify.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("mqtt notifier: encode event: %w", err)
	}
	backoff := time.Duration(n.cfg.BackoffMS) * time.Millisecond
	var last error
	for attempt := 1; attempt <= n.cfg.MaxRetries; attempt++ {
		token := n.client.Publish(topic, n.cfg.QOS, false, payload)
		token.Wait()
		if last = token.Error(); last == nil {
			return nil
		}
		n.log.Warnf("publish %s attempt %d/%d: %v", topic, attempt, n.cfg.MaxRetries, last)
		if attempt < n.cfg.MaxRetries {
			n.sleep(backoff)
		}
	}
	return fmt.Errorf("mqtt notifier: publish %s: %w", topic, last)
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	if n.client.IsConnected() {
		n.client.Disconnect(250)
	}
}
