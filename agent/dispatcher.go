package agent

import (
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/mircad/telelink/proto"
)

// How long a firmware update result gets to flush before the reboot.
var otaRebootDelay = 1500 * time.Millisecond

// OnMessage decodes an inbound payload and routes it: system messages to
// their reply or action, everything else verbatim to the user callback.
// A malformed payload is dropped after logging; nothing here ever brings
// the receive loop down.
func (s *Session) OnMessage(raw []byte) {
	env, err := s.codec.Decode(raw)
	if err != nil {
		slog.Warn("Dropping undecodable message", "error", err, "size", len(raw))
		return
	}
	s.emit(Event{Direction: DirectionInbound, Detail: typeName(env.Type), Size: len(raw)})

	if env.Origin != proto.OriginSystem {
		if s.onMessage == nil {
			slog.Debug("No user message callback registered, dropping message")
			return
		}
		if err := s.onMessage(raw); err != nil {
			slog.Warn("User message callback failed", "error", err)
		}
		return
	}

	switch env.Type {
	case proto.TypePing:
		s.SendPing()
	case proto.TypeInfo:
		s.SendInfo()
	case proto.TypeNetworkInfo:
		s.SendNetworkInfo()
	case proto.TypeScanInfo:
		s.SendScanInfo()
	case proto.TypeBatteryInfo:
		s.SendBatteryInfo()
	case proto.TypeOTA:
		s.handleOTA()
	case proto.TypeCommand:
		s.handleCommand(env.Body)
	default:
		slog.Debug("Ignoring unknown message type", "type", env.Type)
	}
}

func (s *Session) handleOTA() {
	if s.newUpdater == nil {
		slog.Warn("Firmware update requested but no updater is configured")
		return
	}
	updater := s.newUpdater()

	if s.Status() == StatusDisconnected {
		slog.Info("Bringing up updater network path")
		if err := updater.Connect(); err != nil {
			slog.Error("Updater connect failed", "error", err)
			return
		}
	}

	slog.Info("Performing firmware update")
	code, err := updater.Update()
	if err != nil {
		slog.Error("Firmware update failed", "error", err)
	}
	s.SendOTAResult(code)

	if code == ResultApplied {
		// Let the result flush before the device goes away.
		time.Sleep(otaRebootDelay)
		updater.Reboot()
	}
}

// handleCommand routes a pin command body: byte 0 is the sub-command,
// byte 1 the pin or method index, bytes 2..3 (when present) a big-endian
// 16-bit value.
func (s *Session) handleCommand(body []byte) {
	if len(body) < 2 {
		slog.Warn("Dropping truncated pin command", "size", len(body))
		return
	}
	cmd := body[0]
	pin := body[1]
	var value uint16
	if len(body) > 3 {
		value = binary.BigEndian.Uint16(body[2:4])
	}

	switch cmd {
	case proto.CmdPinMode:
		// Pin modes are applied implicitly on first use.

	case proto.CmdDigitalRead:
		s.ReportDigital(pin, s.pullMode(pin))

	case proto.CmdDigitalWrite:
		p, err := s.digitalOut(pin)
		if err != nil {
			slog.Error("Digital write failed", "pin", pin, "error", err)
			return
		}
		p.Set(int(value))

	case proto.CmdAnalogRead:
		s.ReportAnalog(pin)

	case proto.CmdAnalogWrite:
		ch, err := s.pwmChannel(pin)
		if err != nil {
			slog.Error("Analog write failed", "pin", pin, "error", err)
			return
		}
		ch.SetDutyCycle(uint32(value) * 100)

	case proto.CmdCustomMethod:
		if pin == proto.ConsolePin {
			s.handleConsole(body[2:])
			return
		}
		fn := s.method(pin)
		if fn == nil {
			slog.Warn("No callback registered for custom method", "id", pin)
			return
		}
		if values := fn(proto.ParseMethodParams(body[2:])); len(values) > 0 {
			s.ReportCustomValues(pin, values)
		}

	default:
		// CmdCustomLocation is outbound only; anything else is inert.
		slog.Debug("Ignoring pin command", "command", cmd)
	}
}

// handleConsole runs a console command through the fixed interpreter and
// sends the result, or the error text, back on the console channel. A
// disabled console is a silent no-op.
func (s *Session) handleConsole(cmdBytes []byte) {
	if s.console == nil {
		return
	}
	line := string(cmdBytes)
	slog.Debug("Console command", "command", line)

	out, err := s.console.Execute(line)
	if err != nil {
		s.sendConsole(err.Error())
		return
	}
	if out != "" {
		s.sendConsole(out)
	}
}

func typeName(t uint8) string {
	switch t {
	case proto.TypePing:
		return "ping"
	case proto.TypeInfo:
		return "info"
	case proto.TypeNetworkInfo:
		return "network-info"
	case proto.TypeScanInfo:
		return "scan-info"
	case proto.TypeBatteryInfo:
		return "battery-info"
	case proto.TypeOTA:
		return "ota"
	case proto.TypeCommand:
		return "command"
	default:
		return "unknown"
	}
}
