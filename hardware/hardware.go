// Package hardware abstracts the device's I/O channels. The session layer
// only ever sees these interfaces; concrete GPIO/ADC/PWM drivers plug in
// behind the Factory.
package hardware

// Direction of a digital pin.
type Direction int

const (
	Input Direction = iota
	Output
)

// Pull selects the resistor applied to a digital input.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// DigitalPin is a configured digital channel.
type DigitalPin interface {
	Get() int
	Set(level int)
}

// AnalogPin is a configured ADC channel.
type AnalogPin interface {
	Sample() uint16
}

// PWMChannel is a configured PWM output.
type PWMChannel interface {
	SetDutyCycle(duty uint32)
}

// Factory creates channels for a pin index. Creating a channel for a pin
// that already has one of another kind is allowed; ownership of the old
// channel simply ends.
type Factory interface {
	Digital(pin int, dir Direction, pull Pull) (DigitalPin, error)
	Analog(pin int) (AnalogPin, error)
	PWM(pin int) (PWMChannel, error)
}
