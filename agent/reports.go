package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mircad/telelink/hardware"
	"github.com/mircad/telelink/proto"
)

// Outbound report helpers. Each encodes via the codec and routes through
// Send; pin-backed reports lazily configure the channel first.

func (s *Session) SendPing() error {
	return s.Send(s.codec.EncodePing(), "")
}

func (s *Session) SendInfo() error {
	return s.Send(s.codec.EncodeInfo(), "")
}

func (s *Session) SendNetworkInfo() error {
	return s.Send(s.codec.EncodeNetworkInfo(), "")
}

// SendScanInfo reports the wide-area radio link quality. It is only
// meaningful after a radio join.
func (s *Session) SendScanInfo() error {
	s.mu.Lock()
	radio := s.radio
	s.mu.Unlock()

	if radio == nil {
		slog.Warn("Scan info requested without a radio join")
		return ErrNotConnected
	}
	return s.Send(s.codec.EncodeScanInfo(radio.Stats()), "")
}

func (s *Session) SendBatteryInfo() error {
	return s.Send(s.codec.EncodeBatteryInfo(s.BatteryLevel()), "")
}

// SendOTAResult reports a firmware update outcome under the ota topic
// namespace.
func (s *Session) SendOTAResult(code ResultCode) error {
	slog.Info("Sending firmware update result", "code", uint8(code))
	return s.Send(s.codec.EncodeOTAResult(uint8(code)), "ota")
}

// SendUserMessage sends an application-originated message verbatim.
func (s *Session) SendUserMessage(persistent bool, msgType uint8, body []byte) error {
	return s.Send(s.codec.EncodeUserMessage(persistent, msgType, body), "")
}

// ReportDigital reads the pin's level and reports it, lazily configuring
// the pin as an input with the given pull mode.
func (s *Session) ReportDigital(pin uint8, pull hardware.Pull) error {
	p, err := s.digitalIn(pin, pull)
	if err != nil {
		return err
	}
	return s.Send(s.codec.EncodePinValue(false, proto.CmdDigitalWrite, pin, uint16(p.Get())), "")
}

// ReportAnalog samples the pin and reports the value, lazily configuring
// it as an analog input.
func (s *Session) ReportAnalog(pin uint8) error {
	p, err := s.analogPin(pin)
	if err != nil {
		return err
	}
	return s.Send(s.codec.EncodePinValue(false, proto.CmdAnalogWrite, pin, p.Sample()), "")
}

// ReportCustomValues reports method return values for a custom method id.
func (s *Session) ReportCustomValues(id uint8, values []uint16) error {
	body := proto.EncodeMethodValues(values)
	return s.Send(s.codec.EncodePinValuesVariable(false, proto.CmdCustomMethod, id, body), "")
}

// ReportCustomLocation reports a coordinate pair on a virtual pin.
func (s *Session) ReportCustomLocation(pin uint8, x, y float64) error {
	body, err := json.Marshal(struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{x, y})
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	return s.Send(s.codec.EncodePinValuesVariable(false, proto.CmdCustomLocation, pin, body), "")
}

// sendConsole carries console output back on the reserved console pin.
func (s *Session) sendConsole(text string) error {
	return s.Send(s.codec.EncodePinValuesVariable(false, proto.CmdCustomMethod, proto.ConsolePin, []byte(text)), "")
}
