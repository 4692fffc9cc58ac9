// Package agent implements the device-side session layer: one logical,
// bidirectional connection to the controller over whichever link is
// active, plus the dispatch of inbound messages into device actions.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mircad/telelink/hardware"
	"github.com/mircad/telelink/proto"
	"github.com/mircad/telelink/transport"
)

// Status is the session's connection state. Exactly one transport handle
// exists while the status names it; none otherwise.
type Status int

const (
	StatusDisconnected Status = iota
	StatusStream
	StatusRadioWide
	StatusNarrowband
)

func (s Status) String() string {
	switch s {
	case StatusStream:
		return "stream"
	case StatusRadioWide:
		return "radio-wide"
	case StatusNarrowband:
		return "narrowband"
	default:
		return "disconnected"
	}
}

var (
	ErrAlreadyConnected     = errors.New("agent: already connected, disconnect first")
	ErrNotConnected         = errors.New("agent: not connected")
	ErrPayloadTooLarge      = errors.New("agent: payload exceeds narrowband limit")
	ErrUnsupportedTransport = errors.New("agent: transport not supported on this hardware")
)

// Console executes a remote console command and returns its textual
// result. The command set is fixed by the implementation; console text is
// never evaluated as code.
type Console interface {
	Execute(command string) (string, error)
}

// Method is a user-registered callback invoked by remote command. Params
// map a parameter slot index to a 16-bit value; returned values, if any,
// are reported back to the controller.
type Method func(params map[int]uint16) []uint16

// MessageCallback receives the raw payload of every non-system message.
// Errors are logged at the dispatch boundary and never propagate.
type MessageCallback func(raw []byte) error

const radioRecvLimit = 256

// Config carries the session's identity and collaborators.
type Config struct {
	DeviceID string
	Owner    string

	// Controller broker for the stream link.
	Host string
	Port int

	// CheckInterval paces the stream receive loop; RadioPollInterval
	// paces the radio-wide receive loop. Both default to 500ms.
	CheckInterval     time.Duration
	RadioPollInterval time.Duration

	Hardware   hardware.Factory
	Console    Console
	OnMessage  MessageCallback
	NewUpdater func() Updater
}

// Session owns the active transport, the connection status and the
// virtual pin / custom method registry. One Session is created per agent
// run and shared by reference.
type Session struct {
	deviceID      string
	owner         string
	host          string
	port          int
	uplinkTopic   string
	downlinkTopic string

	checkInterval time.Duration
	radioPoll     time.Duration

	codec      *proto.Codec
	hw         hardware.Factory
	console    Console
	onMessage  MessageCallback
	newUpdater func() Updater

	// Overridable in tests.
	dialStream func(transport.StreamConfig) (transport.StreamConn, error)

	mu        sync.Mutex
	status    Status
	stream    transport.StreamConn
	radio     transport.Radio
	radioConn transport.RadioConn
	narrow    transport.NarrowbandConn

	// radioMu serializes every access to radioConn: the receive loop,
	// foreground senders and blocking-mode changes. It is never held
	// across anything but the bounded operation itself.
	radioMu sync.Mutex

	batteryMu sync.Mutex
	battery   int

	pinMu     sync.Mutex
	pins      map[uint8]any
	pullModes map[uint8]hardware.Pull
	methods   map[uint8]Method

	tapMu sync.Mutex
	tap   func(Event)
}

// New constructs the session. It does not connect anything.
func New(cfg Config) *Session {
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 500 * time.Millisecond
	}
	if cfg.RadioPollInterval == 0 {
		cfg.RadioPollInterval = 500 * time.Millisecond
	}
	return &Session{
		deviceID:      cfg.DeviceID,
		owner:         cfg.Owner,
		host:          cfg.Host,
		port:          cfg.Port,
		uplinkTopic:   "u" + cfg.DeviceID,
		downlinkTopic: "d" + cfg.DeviceID,
		checkInterval: cfg.CheckInterval,
		radioPoll:     cfg.RadioPollInterval,
		codec:         proto.NewCodec(),
		hw:            cfg.Hardware,
		console:       cfg.Console,
		onMessage:     cfg.OnMessage,
		newUpdater:    cfg.NewUpdater,
		dialStream:    transport.DialStream,
		status:        StatusDisconnected,
		battery:       -1,
		pins:          make(map[uint8]any),
		pullModes:     make(map[uint8]hardware.Pull),
		methods:       make(map[uint8]Method),
	}
}

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// DeviceID returns the device identity the session was built with.
func (s *Session) DeviceID() string {
	return s.deviceID
}

// ConnectStream brings up the MQTT stream link and starts the receive
// loop.
func (s *Session) ConnectStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusDisconnected {
		slog.Error("Connect failed: connection already exists, disconnect first", "status", s.status.String())
		return ErrAlreadyConnected
	}

	conn, err := s.dialStream(transport.StreamConfig{
		Host:          s.host,
		Port:          s.port,
		ClientID:      s.deviceID,
		Username:      s.owner,
		Password:      s.deviceID,
		DownlinkTopic: s.downlinkTopic,
	})
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}

	s.stream = conn
	s.codec.SetNetwork(proto.NetworkStream)
	s.status = StatusStream

	go s.streamReceiveLoop(conn)

	slog.Info("Connected to controller", "transport", "stream", "uplink", s.uplinkTopic)
	return nil
}

// ConnectRadioWide joins the wide-area radio and starts its receive loop.
// A nil radio means the hardware cannot provide this transport.
func (s *Session) ConnectRadioWide(radio transport.Radio, cfg transport.WideConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusDisconnected {
		slog.Error("Connect failed: connection already exists, disconnect first", "status", s.status.String())
		return ErrAlreadyConnected
	}
	if radio == nil {
		return ErrUnsupportedTransport
	}

	conn, err := transport.JoinWide(radio, cfg)
	if err != nil {
		return fmt.Errorf("radio-wide connect: %w", err)
	}

	s.radio = radio
	s.radioConn = conn
	s.codec.SetNetwork(proto.NetworkRadioWide)
	s.status = StatusRadioWide

	go s.radioReceiveLoop(conn)

	slog.Info("Connected to controller", "transport", "radio-wide")
	return nil
}

// ConnectNarrowband opens the uplink-only narrowband link. No receive
// loop runs; the link has no downlink.
func (s *Session) ConnectNarrowband(radio transport.NarrowRadio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusDisconnected {
		slog.Error("Connect failed: connection already exists, disconnect first", "status", s.status.String())
		return ErrAlreadyConnected
	}
	if radio == nil {
		return ErrUnsupportedTransport
	}

	conn, err := radio.Open()
	if err != nil {
		return fmt.Errorf("narrowband connect: %w", err)
	}

	s.narrow = conn
	s.codec.SetNetwork(proto.NetworkRadioNarrow)
	s.status = StatusNarrowband

	slog.Info("Connected to controller", "transport", "narrowband", "note", "uplink only")
	return nil
}

// Disconnect closes the active transport and returns the session to
// StatusDisconnected. It is idempotent; close errors are logged, never
// returned.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusDisconnected:
		slog.Debug("Already disconnected")

	case StatusStream:
		s.stream.Disconnect()
		s.stream = nil

	case StatusRadioWide:
		s.radioMu.Lock()
		err := s.radioConn.Close()
		s.radioMu.Unlock()
		if err != nil {
			slog.Warn("Error closing radio socket", "error", err)
		}
		s.radioConn = nil
		s.radio = nil

	case StatusNarrowband:
		if err := s.narrow.Close(); err != nil {
			slog.Warn("Error closing narrowband socket", "error", err)
		}
		s.narrow = nil
	}

	s.status = StatusDisconnected
}

// Send routes an encoded message out over the active transport. The
// optional topic suffix namespaces the uplink topic on the stream link
// and is ignored elsewhere.
func (s *Session) Send(body []byte, topicSuffix string) error {
	s.mu.Lock()
	status := s.status
	stream := s.stream
	radioConn := s.radioConn
	narrow := s.narrow
	s.mu.Unlock()

	switch status {
	case StatusStream:
		topic := s.uplinkTopic
		if topicSuffix != "" {
			topic = topic + "/" + topicSuffix
		}
		if err := stream.Publish(topic, body); err != nil {
			slog.Error("Error sending message", "transport", "stream", "topic", topic, "error", err)
			return err
		}
		s.emit(Event{Direction: DirectionOutbound, Detail: topic, Size: len(body)})
		return nil

	case StatusRadioWide:
		s.radioMu.Lock()
		radioConn.SetBlocking(true)
		err := radioConn.Send(body)
		s.radioMu.Unlock()
		if err != nil {
			slog.Error("Error sending message", "transport", "radio-wide", "error", err)
			return err
		}
		s.emit(Event{Direction: DirectionOutbound, Detail: "radio-wide", Size: len(body)})
		return nil

	case StatusNarrowband:
		if len(body) > transport.MaxNarrowbandPayload {
			slog.Warn("Message not sent: narrowband supports at most 12 byte payloads", "size", len(body))
			return ErrPayloadTooLarge
		}
		if err := narrow.Send(body); err != nil {
			slog.Error("Error sending message", "transport", "narrowband", "error", err)
			return err
		}
		s.emit(Event{Direction: DirectionOutbound, Detail: "narrowband", Size: len(body)})
		return nil

	default:
		slog.Error("Error: sending without a connection")
		return ErrNotConnected
	}
}

// streamReceiveLoop polls the stream link at the configured interval and
// feeds inbound messages to the dispatcher. It exits once the session
// leaves the stream state.
func (s *Session) streamReceiveLoop(conn transport.StreamConn) {
	for s.Status() == StatusStream {
		if payload, ok := conn.Poll(); ok {
			s.OnMessage(payload)
			continue
		}
		time.Sleep(s.checkInterval)
	}
	slog.Debug("Stream receive loop stopped")
}

// radioReceiveLoop performs a lock-guarded, non-blocking receive attempt
// each tick. The guard is released before dispatch so handlers can send
// replies over the same socket. The loop exits once the session leaves
// the radio-wide state.
func (s *Session) radioReceiveLoop(conn transport.RadioConn) {
	for s.Status() == StatusRadioWide {
		s.radioMu.Lock()
		conn.SetBlocking(false)
		payload, err := conn.Recv(radioRecvLimit)
		s.radioMu.Unlock()

		if err != nil {
			slog.Warn("Error receiving on radio socket, ignore this if you disconnected", "error", err)
		} else if len(payload) > 0 {
			s.OnMessage(payload)
		}
		time.Sleep(s.radioPoll)
	}
	slog.Debug("Radio receive loop stopped")
}

// SetBatteryLevel updates the cached battery level reported to the
// controller. -1 means unknown.
func (s *Session) SetBatteryLevel(level int) {
	s.batteryMu.Lock()
	s.battery = level
	s.batteryMu.Unlock()
}

// BatteryLevel returns the cached battery level.
func (s *Session) BatteryLevel() int {
	s.batteryMu.Lock()
	defer s.batteryMu.Unlock()
	return s.battery
}
