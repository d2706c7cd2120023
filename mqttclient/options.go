package mqttclient

import (
	"log"
	"time"
)

// Logger interface for injecting custom loggers
type Logger interface {
	Printf(format string, v ...any)
	Errorf(format string, v ...any)
	Debugf(format string, v ...any)
}

// defaultLogger implements Logger using standard log package
type defaultLogger struct{}

func (l *defaultLogger) Printf(format string, v ...any) {
	log.Printf("[MQTT] "+format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...any) {
	log.Printf("[MQTT ERROR] "+format, v...)
}

func (l *defaultLogger) Debugf(_ string, _ ...any) {
	// Silent by default
}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithClientID sets the MQTT client identifier. A random suffix is generated
// when not set.
func WithClientID(id string) ClientOption {
	return func(c *Client) error {
		if id != "" {
			c.clientID = id
		}
		return nil
	}
}

// WithReconnectWait sets the fixed wait between reconnection attempts.
// Reconnection never gives up; only Stop ends the loop.
func WithReconnectWait(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d > 0 {
			c.reconnectWait = d
		}
		return nil
	}
}

// WithConnectTimeout sets the timeout for the initial broker handshake.
func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d > 0 {
			c.connectTimeout = d
		}
		return nil
	}
}

// WithKeepAlive sets the MQTT keep-alive interval.
func WithKeepAlive(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d > 0 {
			c.keepAlive = d
		}
		return nil
	}
}

// WithCredentials sets username and password for broker authentication
func WithCredentials(username, password string) ClientOption {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithCleanSession controls whether the broker discards session state on
// connect. Defaults to true.
func WithCleanSession(clean bool) ClientOption {
	return func(c *Client) error {
		c.cleanSession = clean
		return nil
	}
}

// WithLogger sets a custom logger for the client
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = &defaultLogger{}
		}
		c.logger = logger
		return nil
	}
}

// WithConnectCallback sets a callback invoked on every successful connect,
// including reconnects after a drop.
func WithConnectCallback(fn func()) ClientOption {
	return func(c *Client) error {
		c.onConnect = fn
		return nil
	}
}

// WithConnectionLostCallback sets a callback for connection loss events.
// The client keeps reconnecting regardless.
func WithConnectionLostCallback(fn func(error)) ClientOption {
	return func(c *Client) error {
		c.onConnectionLost = fn
		return nil
	}
}
