package transport

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mircad/telelink/proto"
)

// Radio is the hardware binding for the wide-area radio. Implementations
// own the join procedure and the raw socket; the session layer never talks
// to the modem directly.
type Radio interface {
	JoinOTAA(devEUI, appEUI, appKey []byte, timeout time.Duration) error
	JoinABP(devAddr uint32, nwkSKey, appSKey []byte, timeout time.Duration) error
	RemoveChannel(index int) error
	AddChannel(index int, frequency uint32, drMin, drMax int) error
	OpenSocket(dataRate int) (RadioConn, error)
	Stats() proto.RadioStats
}

// RadioConn is an open raw socket on the wide-area radio. It is NOT safe
// for concurrent use; callers must serialize access, including blocking
// mode changes.
type RadioConn interface {
	SetBlocking(blocking bool)
	Send(data []byte) error
	// Recv attempts a bounded read. In non-blocking mode it returns
	// (nil, nil) when nothing is pending.
	Recv(max int) ([]byte, error)
	Close() error
}

// Activation selects the wide-area join procedure.
type Activation string

const (
	ActivationOTAA Activation = "otaa"
	ActivationABP  Activation = "abp"
)

// Channel plan applied when operating against a single-channel
// concentrator: three logical channels pinned to one frequency.
const (
	nanoGatewayFrequency = 868100000
	nanoGatewayChannels  = 3
	nanoGatewayDRMin     = 0
	nanoGatewayDRMax     = 5
	radioChannelCount    = 16
)

// DefaultDataRate is used for the raw socket unless overridden.
const DefaultDataRate = 5

// WideConfig configures the wide-area radio join.
type WideConfig struct {
	Activation Activation

	// OTAA credentials, hex encoded.
	DevEUI string
	AppEUI string
	AppKey string

	// ABP credentials, hex encoded. DevAddr is a 32-bit address.
	DevAddr string
	NwkSKey string
	AppSKey string

	JoinTimeout time.Duration
	DataRate    int

	// NanoGateway pins the channel plan to one frequency before opening
	// the socket.
	NanoGateway bool
}

// JoinWide runs the configured join procedure, applies the channel plan if
// requested and opens the raw socket.
func JoinWide(radio Radio, cfg WideConfig) (RadioConn, error) {
	if cfg.JoinTimeout == 0 {
		cfg.JoinTimeout = 15 * time.Second
	}
	if cfg.DataRate == 0 {
		cfg.DataRate = DefaultDataRate
	}

	switch cfg.Activation {
	case ActivationOTAA:
		devEUI, err := ParseHexKey(cfg.DevEUI)
		if err != nil {
			return nil, fmt.Errorf("dev EUI: %w", err)
		}
		appEUI, err := ParseHexKey(cfg.AppEUI)
		if err != nil {
			return nil, fmt.Errorf("app EUI: %w", err)
		}
		appKey, err := ParseHexKey(cfg.AppKey)
		if err != nil {
			return nil, fmt.Errorf("app key: %w", err)
		}
		slog.Info("Joining wide-area radio", "activation", "otaa", "timeout", cfg.JoinTimeout)
		if err := radio.JoinOTAA(devEUI, appEUI, appKey, cfg.JoinTimeout); err != nil {
			return nil, fmt.Errorf("otaa join: %w", err)
		}

	case ActivationABP:
		addr, err := ParseDevAddr(cfg.DevAddr)
		if err != nil {
			return nil, fmt.Errorf("device address: %w", err)
		}
		nwkSKey, err := ParseHexKey(cfg.NwkSKey)
		if err != nil {
			return nil, fmt.Errorf("network session key: %w", err)
		}
		appSKey, err := ParseHexKey(cfg.AppSKey)
		if err != nil {
			return nil, fmt.Errorf("app session key: %w", err)
		}
		slog.Info("Joining wide-area radio", "activation", "abp", "timeout", cfg.JoinTimeout)
		if err := radio.JoinABP(addr, nwkSKey, appSKey, cfg.JoinTimeout); err != nil {
			return nil, fmt.Errorf("abp join: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown activation %q", cfg.Activation)
	}

	if cfg.NanoGateway {
		if err := applyNanoGatewayPlan(radio); err != nil {
			return nil, err
		}
	}

	conn, err := radio.OpenSocket(cfg.DataRate)
	if err != nil {
		return nil, fmt.Errorf("open radio socket: %w", err)
	}
	return conn, nil
}

func applyNanoGatewayPlan(radio Radio) error {
	for i := nanoGatewayChannels; i < radioChannelCount; i++ {
		if err := radio.RemoveChannel(i); err != nil {
			return fmt.Errorf("remove channel %d: %w", i, err)
		}
	}
	for i := 0; i < nanoGatewayChannels; i++ {
		if err := radio.AddChannel(i, nanoGatewayFrequency, nanoGatewayDRMin, nanoGatewayDRMax); err != nil {
			return fmt.Errorf("add channel %d: %w", i, err)
		}
	}
	slog.Debug("Applied nano-gateway channel plan", "frequency", nanoGatewayFrequency, "channels", nanoGatewayChannels)
	return nil
}

// ParseHexKey decodes a hex credential, tolerating embedded spaces.
func ParseHexKey(s string) ([]byte, error) {
	cleaned := strings.ReplaceAll(s, " ", "")
	if cleaned == "" {
		return nil, fmt.Errorf("empty key")
	}
	key, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	return key, nil
}

// ParseDevAddr decodes a 4-byte hex device address into its 32-bit form.
func ParseDevAddr(s string) (uint32, error) {
	raw, err := ParseHexKey(s)
	if err != nil {
		return 0, err
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("device address must be 4 bytes, got %d", len(raw))
	}
	return uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]), nil
}
