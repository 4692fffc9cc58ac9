package transport

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// StreamConfig configures the MQTT stream link.
type StreamConfig struct {
	Host           string
	Port           int
	ClientID       string
	Username       string
	Password       string
	DownlinkTopic  string
	ConnectTimeout time.Duration
	QueueSize      int
}

type mqttConn struct {
	client mqtt.Client
	queue  chan []byte
}

// DialStream connects to the controller's MQTT broker and subscribes to
// the downlink topic. Inbound payloads are buffered; when the buffer is
// full new messages are dropped and logged, a slow consumer must not
// block the broker callback.
func DialStream(cfg StreamConfig) (StreamConn, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 32
	}
	if cfg.Port == 0 {
		cfg.Port = 1883
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(true)

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		client.Disconnect(0)
		return nil, ErrJoinTimeout
	}
	if err := token.Error(); err != nil {
		if strings.Contains(err.Error(), "not Authorized") || strings.Contains(err.Error(), "bad user name or password") {
			return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
		}
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	conn := &mqttConn{
		client: client,
		queue:  make(chan []byte, cfg.QueueSize),
	}

	subToken := client.Subscribe(cfg.DownlinkTopic, 1, conn.onMessage)
	if !subToken.WaitTimeout(cfg.ConnectTimeout) {
		client.Disconnect(250)
		return nil, ErrJoinTimeout
	}
	if err := subToken.Error(); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("mqtt subscribe %q: %w", cfg.DownlinkTopic, err)
	}

	slog.Info("Stream link established", "broker", cfg.Host, "downlink", cfg.DownlinkTopic)
	return conn, nil
}

func (c *mqttConn) onMessage(_ mqtt.Client, msg mqtt.Message) {
	select {
	case c.queue <- msg.Payload():
	default:
		slog.Warn("Inbound stream queue full, dropping message", "topic", msg.Topic(), "size", len(msg.Payload()))
	}
}

func (c *mqttConn) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %q: %w", topic, err)
	}
	return nil
}

func (c *mqttConn) Poll() ([]byte, bool) {
	select {
	case payload := <-c.queue:
		return payload, true
	default:
		return nil, false
	}
}

func (c *mqttConn) Disconnect() {
	c.client.Disconnect(250)
}
