package hardware

import (
	"sync"
)

// SimFactory is an in-memory hardware backend used on the bench and in
// tests. Channel state is observable through the factory.
type SimFactory struct {
	mu       sync.Mutex
	digital  map[int]*SimDigitalPin
	analog   map[int]*SimAnalogPin
	pwm      map[int]*SimPWMChannel
	readings map[int]uint16
}

func NewSimFactory() *SimFactory {
	return &SimFactory{
		digital:  make(map[int]*SimDigitalPin),
		analog:   make(map[int]*SimAnalogPin),
		pwm:      make(map[int]*SimPWMChannel),
		readings: make(map[int]uint16),
	}
}

// SetReading seeds the value returned by analog samples on a pin.
func (f *SimFactory) SetReading(pin int, value uint16) {
	f.mu.Lock()
	f.readings[pin] = value
	if a, ok := f.analog[pin]; ok {
		a.setValue(value)
	}
	f.mu.Unlock()
}

func (f *SimFactory) Digital(pin int, dir Direction, pull Pull) (DigitalPin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &SimDigitalPin{Dir: dir, Pull: pull}
	if pull == PullUp {
		p.level = 1
	}
	f.digital[pin] = p
	return p, nil
}

func (f *SimFactory) Analog(pin int) (AnalogPin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &SimAnalogPin{value: f.readings[pin]}
	f.analog[pin] = p
	return p, nil
}

func (f *SimFactory) PWM(pin int) (PWMChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &SimPWMChannel{}
	f.pwm[pin] = p
	return p, nil
}

// DigitalPin returns the simulated digital channel for a pin, if created.
func (f *SimFactory) DigitalPin(pin int) (*SimDigitalPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.digital[pin]
	return p, ok
}

// PWM returns the simulated PWM channel for a pin, if created.
func (f *SimFactory) PWMChannel(pin int) (*SimPWMChannel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pwm[pin]
	return p, ok
}

type SimDigitalPin struct {
	mu    sync.Mutex
	Dir   Direction
	Pull  Pull
	level int
}

func (p *SimDigitalPin) Get() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimDigitalPin) Set(level int) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

type SimAnalogPin struct {
	mu    sync.Mutex
	value uint16
}

func (p *SimAnalogPin) Sample() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *SimAnalogPin) setValue(v uint16) {
	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
}

type SimPWMChannel struct {
	mu   sync.Mutex
	duty uint32
}

func (p *SimPWMChannel) SetDutyCycle(duty uint32) {
	p.mu.Lock()
	p.duty = duty
	p.mu.Unlock()
}

// Duty returns the last duty cycle written to the channel.
func (p *SimPWMChannel) Duty() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duty
}
