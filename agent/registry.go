package agent

import (
	"fmt"

	"github.com/mircad/telelink/hardware"
)

// Virtual pin and custom method bookkeeping. Channels are created through
// the hardware factory on first use and kept until the process ends;
// configuring a pin again, with any kind, replaces the previous channel.

// ConfigureDigital creates a digital channel for the pin and records its
// pull mode for later reads.
func (s *Session) ConfigureDigital(pin uint8, dir hardware.Direction, pull hardware.Pull) (hardware.DigitalPin, error) {
	if s.hw == nil {
		return nil, fmt.Errorf("no hardware factory configured")
	}
	p, err := s.hw.Digital(int(pin), dir, pull)
	if err != nil {
		return nil, fmt.Errorf("configure digital pin %d: %w", pin, err)
	}
	s.pinMu.Lock()
	s.pins[pin] = p
	s.pullModes[pin] = pull
	s.pinMu.Unlock()
	return p, nil
}

// ConfigureAnalog creates an ADC channel for the pin.
func (s *Session) ConfigureAnalog(pin uint8) (hardware.AnalogPin, error) {
	if s.hw == nil {
		return nil, fmt.Errorf("no hardware factory configured")
	}
	p, err := s.hw.Analog(int(pin))
	if err != nil {
		return nil, fmt.Errorf("configure analog pin %d: %w", pin, err)
	}
	s.pinMu.Lock()
	s.pins[pin] = p
	s.pinMu.Unlock()
	return p, nil
}

// ConfigurePWM creates a PWM channel for the pin.
func (s *Session) ConfigurePWM(pin uint8) (hardware.PWMChannel, error) {
	if s.hw == nil {
		return nil, fmt.Errorf("no hardware factory configured")
	}
	p, err := s.hw.PWM(int(pin))
	if err != nil {
		return nil, fmt.Errorf("configure pwm pin %d: %w", pin, err)
	}
	s.pinMu.Lock()
	s.pins[pin] = p
	s.pinMu.Unlock()
	return p, nil
}

// RegisterMethod stores or overwrites the callback for a custom method
// id.
func (s *Session) RegisterMethod(id uint8, fn Method) {
	s.pinMu.Lock()
	s.methods[id] = fn
	s.pinMu.Unlock()
}

func (s *Session) method(id uint8) Method {
	s.pinMu.Lock()
	defer s.pinMu.Unlock()
	return s.methods[id]
}

// pullMode returns the recorded pull mode for a pin, defaulting to
// pull-up when none was recorded.
func (s *Session) pullMode(pin uint8) hardware.Pull {
	s.pinMu.Lock()
	defer s.pinMu.Unlock()
	if pull, ok := s.pullModes[pin]; ok {
		return pull
	}
	return hardware.PullUp
}

// digitalIn returns the pin's digital channel, lazily configuring it as
// an input with the given pull.
func (s *Session) digitalIn(pin uint8, pull hardware.Pull) (hardware.DigitalPin, error) {
	s.pinMu.Lock()
	p, ok := s.pins[pin].(hardware.DigitalPin)
	s.pinMu.Unlock()
	if ok {
		return p, nil
	}
	return s.ConfigureDigital(pin, hardware.Input, pull)
}

// digitalOut returns the pin's digital channel, lazily configuring it as
// an output.
func (s *Session) digitalOut(pin uint8) (hardware.DigitalPin, error) {
	s.pinMu.Lock()
	p, ok := s.pins[pin].(hardware.DigitalPin)
	s.pinMu.Unlock()
	if ok {
		return p, nil
	}
	return s.ConfigureDigital(pin, hardware.Output, hardware.PullNone)
}

// analogPin returns the pin's ADC channel, lazily configuring it.
func (s *Session) analogPin(pin uint8) (hardware.AnalogPin, error) {
	s.pinMu.Lock()
	p, ok := s.pins[pin].(hardware.AnalogPin)
	s.pinMu.Unlock()
	if ok {
		return p, nil
	}
	return s.ConfigureAnalog(pin)
}

// pwmChannel returns the pin's PWM channel, lazily configuring it.
func (s *Session) pwmChannel(pin uint8) (hardware.PWMChannel, error) {
	s.pinMu.Lock()
	p, ok := s.pins[pin].(hardware.PWMChannel)
	s.pinMu.Unlock()
	if ok {
		return p, nil
	}
	return s.ConfigurePWM(pin)
}

// PinsSnapshot lists the configured pins and their channel kinds.
func (s *Session) PinsSnapshot() map[int]string {
	s.pinMu.Lock()
	defer s.pinMu.Unlock()

	out := make(map[int]string, len(s.pins))
	for pin, ch := range s.pins {
		switch ch.(type) {
		case hardware.DigitalPin:
			out[int(pin)] = "digital"
		case hardware.AnalogPin:
			out[int(pin)] = "analog"
		case hardware.PWMChannel:
			out[int(pin)] = "pwm"
		default:
			out[int(pin)] = "unknown"
		}
	}
	return out
}
