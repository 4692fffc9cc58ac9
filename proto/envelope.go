package proto

// Origin classifies who produced a message.
type Origin int

const (
	OriginUser Origin = iota
	OriginSystem
)

// Network tags identify the link a message was prepared for.
const (
	NetworkStream      uint8 = 0
	NetworkRadioWide   uint8 = 1
	NetworkRadioNarrow uint8 = 2
)

// Message type tags. The tag space is closed; anything else is ignored by
// the dispatcher.
const (
	TypePing        uint8 = 0x00
	TypeInfo        uint8 = 0x01
	TypeNetworkInfo uint8 = 0x02
	TypeScanInfo    uint8 = 0x03
	TypeBatteryInfo uint8 = 0x04
	TypeOTA         uint8 = 0x05
	TypeCommand     uint8 = 0x0E
)

// Pin command sub-commands carried in the first body byte of a TypeCommand
// message.
const (
	CmdPinMode        uint8 = 0
	CmdDigitalRead    uint8 = 1
	CmdDigitalWrite   uint8 = 2
	CmdAnalogRead     uint8 = 3
	CmdAnalogWrite    uint8 = 4
	CmdCustomMethod   uint8 = 5
	CmdCustomLocation uint8 = 6
)

// ConsolePin is the reserved virtual pin index that carries remote console
// traffic. It is never backed by real hardware.
const ConsolePin uint8 = 255

// Envelope is the decoded logical message unit exchanged with the
// controller.
type Envelope struct {
	Origin     Origin
	Persistent bool
	Network    uint8
	Type       uint8
	Body       []byte
}
