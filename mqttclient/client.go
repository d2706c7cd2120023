package mqttclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kafaat/sahool-telemetry/errors"
)

// ConnectionStatus represents the state of the broker connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusStopped
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MessageHandler consumes one inbound message. Handlers run on the client's
// dispatch goroutines; a panicking handler is recovered and logged, never
// allowed to take the connection down.
type MessageHandler func(topic string, payload []byte)

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client wraps an MQTT connection with a fixed-interval reconnect loop.
// The connection cycles disconnected, connecting, connected, disconnected
// for as long as the process runs; Stop is the only terminal transition.
type Client struct {
	brokerURL string
	clientID  string
	status    atomic.Value // stores ConnectionStatus
	logger    Logger

	mqtt paho.Client

	// Subscriptions survive reconnects: the connect handler replays them
	// against the fresh session.
	subsMu sync.RWMutex
	subs   map[string]subscription

	reconnectWait  time.Duration
	connectTimeout time.Duration
	keepAlive      time.Duration
	cleanSession   bool

	username string
	password string

	onConnect        func()
	onConnectionLost func(error)

	reconnects atomic.Int32
	stopped    atomic.Bool
	stopMu     sync.Mutex
}

// NewClient creates a new MQTT client with optional configuration
func NewClient(brokerURL string, opts ...ClientOption) (*Client, error) {
	if brokerURL == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("broker URL cannot be empty"),
			"Client", "NewClient", "URL validation")
	}

	c := &Client{
		brokerURL: brokerURL,
		clientID:  fmt.Sprintf("sahool-ingest-%s", uuid.NewString()[:8]),
		logger:    &defaultLogger{},
		subs:      make(map[string]subscription),
		// Sensible defaults
		reconnectWait:  5 * time.Second,
		connectTimeout: 10 * time.Second,
		keepAlive:      30 * time.Second,
		cleanSession:   true,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}

	c.status.Store(StatusDisconnected)

	c.logger.Debugf("Created MQTT client for %s (client id %s)", brokerURL, c.clientID)

	return c, nil
}

// BrokerURL returns the broker URL
func (c *Client) BrokerURL() string {
	return c.brokerURL
}

// ClientID returns the MQTT client identifier
func (c *Client) ClientID() string {
	return c.clientID
}

// Status returns the current connection status
func (c *Client) Status() ConnectionStatus {
	val := c.status.Load()
	if val == nil {
		return StatusDisconnected
	}
	return val.(ConnectionStatus)
}

// IsConnected returns true if the broker connection is up
func (c *Client) IsConnected() bool {
	return c.Status() == StatusConnected
}

// Reconnects returns how many times the connection has been re-established
// after a drop.
func (c *Client) Reconnects() int32 {
	return c.reconnects.Load()
}

func (c *Client) setStatus(status ConnectionStatus) {
	c.status.Store(status)
}

// Connect dials the broker and starts the reconnect loop. The underlying
// library keeps retrying at the fixed reconnect interval forever; Connect
// returns once the first session is up or the context expires. A context
// expiry does not stop the background retries, it only unblocks the caller.
func (c *Client) Connect(ctx context.Context) error {
	if c.stopped.Load() {
		return errors.WrapInvalid(errors.ErrClientStopped, "Client", "Connect", "lifecycle check")
	}

	c.setStatus(StatusConnecting)

	opts := paho.NewClientOptions().
		AddBroker(c.brokerURL).
		SetClientID(c.clientID).
		SetCleanSession(c.cleanSession).
		SetKeepAlive(c.keepAlive).
		SetConnectTimeout(c.connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(c.reconnectWait).
		SetMaxReconnectInterval(c.reconnectWait).
		SetOnConnectHandler(c.handleConnect).
		SetConnectionLostHandler(c.handleConnectionLost)

	if c.username != "" {
		opts.SetUsername(c.username)
		opts.SetPassword(c.password)
	}

	c.mqtt = paho.NewClient(opts)

	token := c.mqtt.Connect()
	select {
	case <-ctx.Done():
		return errors.WrapTransient(errors.ErrConnectionTimeout, "Client", "Connect", "wait for broker")
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return errors.WrapTransient(err, "Client", "Connect", "broker handshake")
	}
	return nil
}

// handleConnect runs on every successful connect, including reconnects.
// It replays all registered subscriptions against the fresh session.
func (c *Client) handleConnect(_ paho.Client) {
	if c.stopped.Load() {
		return
	}

	prev := c.Status()
	c.setStatus(StatusConnected)
	if prev == StatusDisconnected {
		c.reconnects.Add(1)
	}
	c.logger.Printf("Connected to broker %s", c.brokerURL)

	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for topic, sub := range c.subs {
		if err := c.subscribeLocked(topic, sub); err != nil {
			c.logger.Errorf("Failed to restore subscription %s: %v", topic, err)
		}
	}

	if c.onConnect != nil {
		c.onConnect()
	}
}

// handleConnectionLost marks the connection down. The library's retry loop
// takes over from here.
func (c *Client) handleConnectionLost(_ paho.Client, err error) {
	if c.stopped.Load() {
		return
	}

	c.setStatus(StatusDisconnected)
	c.logger.Errorf("Connection lost: %v, retrying every %v", err, c.reconnectWait)

	if c.onConnectionLost != nil {
		c.onConnectionLost(err)
	}
}

// Subscribe registers a handler for a topic filter. The subscription is
// remembered and re-established on every reconnect. Subscribing before the
// first Connect is allowed; the connect handler picks it up.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return errors.NewValidation("topic", "missing required field")
	}
	if handler == nil {
		return errors.NewValidation("handler", "handler cannot be nil")
	}
	if c.stopped.Load() {
		return errors.WrapInvalid(errors.ErrClientStopped, "Client", "Subscribe", "lifecycle check")
	}

	sub := subscription{qos: qos, handler: handler}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	c.subs[topic] = sub

	if c.IsConnected() {
		if err := c.subscribeLocked(topic, sub); err != nil {
			return errors.WrapTransient(err, "Client", "Subscribe", fmt.Sprintf("subscribe %s", topic))
		}
	}
	return nil
}

// subscribeLocked issues the broker subscription. Callers hold subsMu.
func (c *Client) subscribeLocked(topic string, sub subscription) error {
	token := c.mqtt.Subscribe(topic, sub.qos, func(_ paho.Client, msg paho.Message) {
		c.dispatch(sub.handler, msg.Topic(), msg.Payload())
	})
	if ok := token.WaitTimeout(c.connectTimeout); !ok {
		return errors.ErrSubscriptionFailed
	}
	return token.Error()
}

// dispatch invokes a handler, isolating the connection from handler panics.
func (c *Client) dispatch(handler MessageHandler, topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("Handler panic on %s: %v", topic, r)
		}
	}()
	handler(topic, payload)
}

// Unsubscribe removes a topic subscription and stops re-establishing it.
func (c *Client) Unsubscribe(topic string) error {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	if _, ok := c.subs[topic]; !ok {
		return nil
	}
	delete(c.subs, topic)

	if c.IsConnected() {
		token := c.mqtt.Unsubscribe(topic)
		if ok := token.WaitTimeout(c.connectTimeout); !ok {
			return errors.WrapTransient(errors.ErrConnectionTimeout, "Client", "Unsubscribe", fmt.Sprintf("unsubscribe %s", topic))
		}
		return token.Error()
	}
	return nil
}

// Publish sends one message and surfaces broker-side failures to the
// caller; nothing is retried internally. Publishing while disconnected
// fails fast instead of queueing.
func (c *Client) Publish(topic string, qos byte, retain bool, payload []byte) error {
	if c.stopped.Load() {
		return errors.WrapInvalid(errors.ErrClientStopped, "Client", "Publish", "lifecycle check")
	}
	if !c.IsConnected() {
		return errors.WrapTransient(errors.ErrNotConnected, "Client", "Publish", fmt.Sprintf("publish %s", topic))
	}

	token := c.mqtt.Publish(topic, qos, retain, payload)
	if ok := token.WaitTimeout(c.connectTimeout); !ok {
		return errors.WrapTransient(errors.ErrConnectionTimeout, "Client", "Publish", fmt.Sprintf("publish %s", topic))
	}
	if err := token.Error(); err != nil {
		return errors.WrapTransient(err, "Client", "Publish", fmt.Sprintf("publish %s", topic))
	}
	return nil
}

// Stop disconnects from the broker and ends the reconnect loop. This is the
// only terminal transition; the client cannot be restarted afterwards. The
// timeout bounds how long in-flight work may drain.
func (c *Client) Stop(timeout time.Duration) {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()

	if !c.stopped.CompareAndSwap(false, true) {
		return
	}

	c.setStatus(StatusStopped)
	if c.mqtt != nil && c.mqtt.IsConnectionOpen() {
		c.mqtt.Disconnect(uint(timeout.Milliseconds()))
	}
	c.logger.Printf("MQTT client stopped")
}
