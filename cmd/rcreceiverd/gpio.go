package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// gpioButton reads the bind button's physical level, translating the
// platform's active-low convention into the logical "held down" bool
// button.Reader expects.
type gpioButton struct {
	pin gpio.PinIO
}

func openButton(bcmPin int) (*gpioButton, error) {
	name := fmt.Sprintf("GPIO%d", bcmPin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("rcreceiverd: failed to open button pin %s", name)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("rcreceiverd: failed to configure button pin %s: %w", name, err)
	}
	return &gpioButton{pin: p}, nil
}

func (b *gpioButton) Pressed() bool { return b.pin.Read() == gpio.Low }

// gpioLED drives the status LED pin. Set(true) drives the pin high, per
// the original firmware's active-high GPIO_LED_ON/_OFF.
type gpioLED struct {
	pin gpio.PinIO
}

func openLED(bcmPin int) (*gpioLED, error) {
	name := fmt.Sprintf("GPIO%d", bcmPin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("rcreceiverd: failed to open LED pin %s", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("rcreceiverd: failed to configure LED pin %s: %w", name, err)
	}
	return &gpioLED{pin: p}, nil
}

func (l *gpioLED) Set(on bool) {
	if on {
		l.pin.Out(gpio.High)
		return
	}
	l.pin.Out(gpio.Low)
}
