package mqttclient

import (
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-telemetry/errors"
)

// stubToken is a pre-resolved paho token carrying a fixed outcome.
type stubToken struct {
	err error
}

func (t *stubToken) Wait() bool                     { return true }
func (t *stubToken) WaitTimeout(time.Duration) bool { return true }
func (t *stubToken) Error() error                   { return t.err }
func (t *stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubBroker fakes the parts of the paho client the wrapper exercises.
// Calls outside those panic on the embedded nil interface.
type stubBroker struct {
	paho.Client
	publishErr error
	published  []string
}

func (b *stubBroker) Publish(topic string, _ byte, _ bool, _ interface{}) paho.Token {
	b.published = append(b.published, topic)
	return &stubToken{err: b.publishErr}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", c.BrokerURL())
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.NotEmpty(t, c.ClientID())
	assert.Equal(t, 5*time.Second, c.reconnectWait)
	assert.True(t, c.cleanSession)
}

func TestNewClient_EmptyURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorInvalid, errors.Classify(err))
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883",
		WithClientID("gateway-01"),
		WithReconnectWait(2*time.Second),
		WithConnectTimeout(3*time.Second),
		WithCredentials("user", "pass"),
		WithCleanSession(false),
	)
	require.NoError(t, err)
	assert.Equal(t, "gateway-01", c.ClientID())
	assert.Equal(t, 2*time.Second, c.reconnectWait)
	assert.Equal(t, 3*time.Second, c.connectTimeout)
	assert.Equal(t, "user", c.username)
	assert.False(t, c.cleanSession)
}

func TestConnectionStatus_String(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "stopped", StatusStopped.String())
	assert.Equal(t, "unknown", ConnectionStatus(99).String())
}

func TestSubscribe_BeforeConnect(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	// Registering before the first connect is allowed; the connect handler
	// replays it.
	err = c.Subscribe("sahool/sensors/#", 1, func(string, []byte) {})
	require.NoError(t, err)

	c.subsMu.RLock()
	sub, ok := c.subs["sahool/sensors/#"]
	c.subsMu.RUnlock()
	require.True(t, ok)
	assert.Equal(t, byte(1), sub.qos)
}

func TestSubscribe_Validation(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	err = c.Subscribe("", 0, func(string, []byte) {})
	require.Error(t, err)
	field, ok := errors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "topic", field)

	err = c.Subscribe("sahool/sensors/#", 0, nil)
	require.Error(t, err)
	field, ok = errors.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "handler", field)
}

func TestUnsubscribe_Unknown(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	// Unsubscribing a never-subscribed topic is a no-op.
	assert.NoError(t, c.Unsubscribe("sahool/sensors/#"))
}

func TestPublish_WhenDisconnected(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	err = c.Publish("sahool/sensors/s1/f1/sm", 1, false, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotConnected)
	assert.True(t, errors.IsTransient(err))
}

func TestPublish_SurfacesBrokerError(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	broker := &stubBroker{publishErr: assert.AnError}
	c.mqtt = broker
	c.setStatus(StatusConnected)

	err = c.Publish("sahool/sensors/s1/f1/sm", 1, false, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, errors.IsTransient(err))

	// A clean ack returns nil.
	broker.publishErr = nil
	require.NoError(t, c.Publish("sahool/sensors/s1/f1/sm", 1, false, []byte(`{}`)))
	assert.Len(t, broker.published, 2)
}

func TestDispatch_RecoverFromPanic(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.dispatch(func(string, []byte) {
			panic("handler blew up")
		}, "sahool/sensors/s1/f1/sm", []byte(`{}`))
	})

	// A healthy handler still runs after a panicking one.
	var got string
	c.dispatch(func(topic string, _ []byte) { got = topic }, "sahool/sensors/s2/f1/sm", nil)
	assert.Equal(t, "sahool/sensors/s2/f1/sm", got)
}

func TestStop_IsTerminal(t *testing.T) {
	c, err := NewClient("tcp://localhost:1883")
	require.NoError(t, err)

	c.Stop(time.Second)
	assert.Equal(t, StatusStopped, c.Status())

	// Stop is idempotent.
	c.Stop(time.Second)
	assert.Equal(t, StatusStopped, c.Status())

	// A stopped client rejects further operations.
	err = c.Subscribe("sahool/sensors/#", 0, func(string, []byte) {})
	assert.ErrorIs(t, err, errors.ErrClientStopped)

	err = c.Publish("sahool/sensors/s1/f1/sm", 0, false, nil)
	assert.ErrorIs(t, err, errors.ErrClientStopped)
}
