package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenotify "github.com/evpark/evpark/core/notify"
	"github.com/evpark/evpark/infra/logger"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakePublisher struct {
	topics    []string
	payloads  [][]byte
	failures  int
	connected bool
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if p.failures > 0 {
		p.failures--
		return &fakeToken{err: errors.New("broker unavailable")}
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload.([]byte))
	return &fakeToken{}
}

func (p *fakePublisher) IsConnected() bool { return p.connected }
func (p *fakePublisher) Disconnect(uint)   { p.connected = false }

func newTestNotifier(pub *fakePublisher) *MQTTNotifier {
	cfg := Config{Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	return &MQTTNotifier{
		client: pub,
		cfg:    cfg,
		log:    logger.New("mqtt-test"),
		sleep:  func(time.Duration) {},
	}
}

func TestSendMailPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := newTestNotifier(pub)

	err := n.SendMail(corenotify.Message{To: "alice@example.com", Subject: "hi", Body: "there"})
	require.NoError(t, err)
	require.Equal(t, []string{"evpark/notifications/mail"}, pub.topics)

	var ev corenotify.Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, corenotify.KindMail, ev.Kind)
	assert.Equal(t, "alice@example.com", ev.To)
	assert.Equal(t, "hi", ev.Subject)
}

func TestPostChannelPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := newTestNotifier(pub)

	require.NoError(t, n.PostChannel("charger 1 is free"))
	require.Equal(t, []string{"evpark/notifications/channel"}, pub.topics)

	var ev corenotify.Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, corenotify.KindChannel, ev.Kind)
	assert.Equal(t, "charger 1 is free", ev.Text)
}

func TestPublishRetriesUntilBrokerRecovers(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	n := newTestNotifier(pub)

	require.NoError(t, n.PostChannel("eventually"))
	assert.Len(t, pub.topics, 1)
}

func TestPublishGivesUpAfterMaxRetries(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	n := newTestNotifier(pub)

	err := n.PostChannel("never")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish evpark/notifications/channel")
	assert.Empty(t, pub.topics)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	require.Error(t, cfg.Validate())
	cfg.Broker = "tcp://localhost:1883"
	require.NoError(t, cfg.Validate())
}

func TestCloseDisconnects(t *testing.T) {
	pub := &fakePublisher{connected: true}
	n := newTestNotifier(pub)
	n.Close()
	assert.False(t, pub.connected)
}
