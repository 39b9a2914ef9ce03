//go:build linux

// Package calbutton watches the calibration-entry push button over a
// GPIO character device line, latching each press as a single atomic
// flag the control loop drains once per tick.
package calbutton

import (
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Button latches a calibration-button press between ticks. The
// interrupt handler performs the only write; ControlLoop performs the
// only read-and-clear, via Swap — the two-access critical section this
// is grounded on allows no third party to touch the flag.
type Button struct {
	line    *gpiocdev.Line
	pressed atomic.Bool
}

// Config names the GPIO chip and line offset of the button.
type Config struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// New requests the button line. Returns nil, nil if no pin is
// configured, so callers can treat an unconfigured button the same as
// a disabled peripheral.
func New(cfg Config) (*Button, error) {
	if cfg.Pin == 0 {
		return nil, nil
	}
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	b := &Button{}
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.Pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(2*time.Millisecond),
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, err
	}
	b.line = line
	return b, nil
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type == gpiocdev.LineEventFallingEdge {
		b.pressed.Store(true)
	}
}

// Pressed reports whether the button has been pressed since the last
// call, clearing the flag atomically.
func (b *Button) Pressed() bool {
	return b.pressed.Swap(false)
}

// Release closes the GPIO line.
func (b *Button) Release() error {
	if b.line == nil {
		return nil
	}
	return b.line.Close()
}
