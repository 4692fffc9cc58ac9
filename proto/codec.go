package proto

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Header layout, one byte:
//
//	bit 7     persistence flag
//	bit 6     origin (1 = system)
//	bits 4-5  network tag
//	bits 0-3  message type tag
const (
	headerPersistent = 1 << 7
	headerSystem     = 1 << 6
	headerNetShift   = 4
	headerNetMask    = 0x03
	headerTypeMask   = 0x0F
)

// ProtocolVersion is reported in info messages.
const ProtocolVersion uint8 = 1

// RadioStats is a snapshot of the wide-area radio link, reported in
// scan-info messages.
type RadioStats struct {
	RSSI     int16
	SNR      int8
	DataRate uint8
}

// Codec builds and parses envelopes. The active network tag is stamped
// into every outbound header; the session updates it on connect.
type Codec struct {
	mu      sync.Mutex
	network uint8
}

func NewCodec() *Codec {
	return &Codec{network: NetworkStream}
}

// SetNetwork records the network tag used for subsequent encodes.
func (c *Codec) SetNetwork(network uint8) {
	c.mu.Lock()
	c.network = network
	c.mu.Unlock()
}

// Encode renders an envelope into wire bytes. The envelope's Network field
// is ignored; the codec's active network tag is used.
func (c *Codec) Encode(origin Origin, persistent bool, msgType uint8, body []byte) []byte {
	c.mu.Lock()
	network := c.network
	c.mu.Unlock()

	var header byte
	if persistent {
		header |= headerPersistent
	}
	if origin == OriginSystem {
		header |= headerSystem
	}
	header |= (network & headerNetMask) << headerNetShift
	header |= msgType & headerTypeMask

	out := make([]byte, 1+len(body))
	out[0] = header
	copy(out[1:], body)
	return out
}

// Decode parses wire bytes into an envelope. An empty buffer is malformed.
func (c *Codec) Decode(raw []byte) (Envelope, error) {
	if len(raw) < 1 {
		return Envelope{}, fmt.Errorf("message too short: %d bytes", len(raw))
	}
	header := raw[0]
	env := Envelope{
		Persistent: header&headerPersistent != 0,
		Network:    (header >> headerNetShift) & headerNetMask,
		Type:       header & headerTypeMask,
		Body:       raw[1:],
	}
	if header&headerSystem != 0 {
		env.Origin = OriginSystem
	}
	return env, nil
}

func (c *Codec) EncodePing() []byte {
	return c.Encode(OriginSystem, false, TypePing, nil)
}

func (c *Codec) EncodeInfo() []byte {
	return c.Encode(OriginSystem, false, TypeInfo, []byte{ProtocolVersion})
}

func (c *Codec) EncodeNetworkInfo() []byte {
	c.mu.Lock()
	network := c.network
	c.mu.Unlock()
	return c.Encode(OriginSystem, false, TypeNetworkInfo, []byte{network})
}

func (c *Codec) EncodeScanInfo(stats RadioStats) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint16(body[0:2], uint16(stats.RSSI))
	body[2] = byte(stats.SNR)
	body[3] = stats.DataRate
	return c.Encode(OriginSystem, false, TypeScanInfo, body)
}

// EncodeBatteryInfo carries the cached battery level as a signed byte;
// -1 means unknown.
func (c *Codec) EncodeBatteryInfo(level int) []byte {
	return c.Encode(OriginSystem, false, TypeBatteryInfo, []byte{byte(int8(level))})
}

func (c *Codec) EncodeOTAResult(code uint8) []byte {
	return c.Encode(OriginSystem, false, TypeOTA, []byte{code})
}

// EncodePinValue builds a fixed-size pin command: sub-command, pin index
// and a big-endian 16-bit value.
func (c *Codec) EncodePinValue(persistent bool, cmd, pin uint8, value uint16) []byte {
	body := make([]byte, 4)
	body[0] = cmd
	body[1] = pin
	binary.BigEndian.PutUint16(body[2:4], value)
	return c.Encode(OriginSystem, persistent, TypeCommand, body)
}

// EncodePinValuesVariable builds a pin command with an arbitrary trailing
// payload, used for custom method returns, location reports and console
// replies.
func (c *Codec) EncodePinValuesVariable(persistent bool, cmd, pin uint8, payload []byte) []byte {
	body := make([]byte, 2+len(payload))
	body[0] = cmd
	body[1] = pin
	copy(body[2:], payload)
	return c.Encode(OriginSystem, persistent, TypeCommand, body)
}

func (c *Codec) EncodeUserMessage(persistent bool, msgType uint8, body []byte) []byte {
	return c.Encode(OriginUser, persistent, msgType, body)
}

// ParseMethodParams splits the tail of a custom-method body into 3-byte
// groups. Each group contributes one parameter slot: a big-endian 16-bit
// value from its first two bytes, the third byte is padding. A trailing
// group shorter than two bytes is dropped.
func ParseMethodParams(tail []byte) map[int]uint16 {
	params := make(map[int]uint16)
	for i := 0; i+1 < len(tail); i += 3 {
		params[i/3] = binary.BigEndian.Uint16(tail[i : i+2])
	}
	return params
}

// EncodeMethodValues renders method return values into the same 3-byte
// group layout.
func EncodeMethodValues(values []uint16) []byte {
	out := make([]byte, 0, len(values)*3)
	for _, v := range values {
		out = append(out, byte(v>>8), byte(v), 0x00)
	}
	return out
}
