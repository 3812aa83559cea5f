package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// conn is the part of mqtt.Client the sink uses.
type conn interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Host     string
	Port     int
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
	Retries  int
}

// MQTTSink publishes single messages like paho's publish.single: connect,
// publish with QoS 0 non-retained, disconnect.
type MQTTSink struct {
	opts    MQTTOptions
	log     *slog.Logger
	dial    func(*mqtt.ClientOptions) conn
	backoff time.Duration
}

// NewMQTTSink creates a sink for the configured broker.
func NewMQTTSink(opts MQTTOptions, log *slog.Logger) *MQTTSink {
	return &MQTTSink{
		opts:    opts,
		log:     log,
		dial:    func(o *mqtt.ClientOptions) conn { return mqtt.NewClient(o) },
		backoff: time.Second,
	}
}

func (s *MQTTSink) clientOptions() *mqtt.ClientOptions {
	o := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", s.opts.Host, s.opts.Port)).
		SetClientID(s.opts.ClientID).
		SetProtocolVersion(4).
		SetKeepAlive(60 * time.Second).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(s.opts.Timeout)
	if s.opts.Username != "" {
		o.SetUsername(s.opts.Username)
		o.SetPassword(s.opts.Password)
	}
	return o
}

// wait blocks on a token up to the configured timeout.
func (s *MQTTSink) wait(t mqtt.Token, what string) error {
	if !t.WaitTimeout(s.opts.Timeout) {
		return fmt.Errorf("%s: timed out after %v", what, s.opts.Timeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// Send publishes once.
func (s *MQTTSink) Send(topic string, payload []byte) error {
	c := s.dial(s.clientOptions())
	if err := s.wait(c.Connect(), "connect"); err != nil {
		return err
	}
	defer c.Disconnect(250)

	return s.wait(c.Publish(topic, 0, false, payload), "publish")
}

// Publish sends with exponential backoff retry.
func (s *MQTTSink) Publish(ctx context.Context, topic string, payload []byte) error {
	var lastErr error
	for i := 0; i <= s.opts.Retries; i++ {
		err := s.Send(topic, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == s.opts.Retries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * s.backoff
		s.log.Warn("mqtt publish failed, retrying",
			"attempt", i+1, "max_attempts", s.opts.Retries+1, "delay", backoff, "err", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrPublish, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%w: all %d attempts failed: %v", ErrPublish, s.opts.Retries+1, lastErr)
}
