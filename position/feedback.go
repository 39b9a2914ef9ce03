//go:build linux

package position

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// SPIFeedback reads the bolt's analog feedback potentiometer through an
// external successive-approximation ADC chip, bit-banging the chip's
// SPI-style read protocol over four GPIO lines. govattu (the PWM/GPIO
// library the rest of this controller uses for the motor) exposes no analog
// input anywhere in its API, so the feedback path is sourced independently
// through periph.io's gpio.PinIO primitives — the same primitives
// client/motorshield.go in the wider example pack drives a software PWM
// through (pin.Out, gpioreg.ByName).
type SPIFeedback struct {
	clk gpio.PinIO
	cs  gpio.PinIO
	di  gpio.PinIO // MOSI: controller -> ADC
	do  gpio.PinIO // MISO: ADC -> controller

	channel int // single-ended input channel on the ADC, 0-7
}

// NewSPIFeedback requests the four named GPIO lines and initializes the
// periph.io host drivers. Pin names follow periph.io's BCM-numbered
// gpioreg convention (e.g. "GPIO17").
func NewSPIFeedback(clkPin, csPin, diPin, doPin string, channel int) (*SPIFeedback, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("position: periph host init: %w", err)
	}

	f := &SPIFeedback{channel: channel}
	var err error
	if f.clk, err = resolvePin(clkPin); err != nil {
		return nil, err
	}
	if f.cs, err = resolvePin(csPin); err != nil {
		return nil, err
	}
	if f.di, err = resolvePin(diPin); err != nil {
		return nil, err
	}
	if f.do, err = resolvePin(doPin); err != nil {
		return nil, err
	}

	_ = f.clk.Out(gpio.Low)
	_ = f.di.Out(gpio.Low)
	_ = f.cs.Out(gpio.High)
	return f, nil
}

func resolvePin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("position: unknown GPIO pin %q", name)
	}
	return pin, nil
}

// Read implements FeedbackReader. It performs one full bit-banged
// transaction against a MCP3008-family ADC: select the chip, clock out a
// start bit + single-ended mode bit + 3-bit channel select, then clock in a
// 10-bit result.
func (f *SPIFeedback) Read() (int, error) {
	_ = f.cs.Out(gpio.Low)
	defer f.cs.Out(gpio.High)

	// Start bit, single-ended mode, channel select (5 bits total).
	cmd := []bool{true, true, f.channel&4 != 0, f.channel&2 != 0, f.channel&1 != 0}
	for _, bit := range cmd {
		f.clockOutBit(bit)
	}

	// One null bit between command and result, then 10 result bits.
	f.clockOutBit(false)
	result := 0
	for i := 0; i < 10; i++ {
		result <<= 1
		if f.clockInBit() {
			result |= 1
		}
	}
	return result, nil
}

func (f *SPIFeedback) clockOutBit(bit bool) {
	if bit {
		_ = f.di.Out(gpio.High)
	} else {
		_ = f.di.Out(gpio.Low)
	}
	f.pulseClock()
}

func (f *SPIFeedback) clockInBit() bool {
	f.pulseClock()
	return f.do.Read() == gpio.High
}

func (f *SPIFeedback) pulseClock() {
	_ = f.clk.Out(gpio.High)
	time.Sleep(time.Microsecond)
	_ = f.clk.Out(gpio.Low)
	time.Sleep(time.Microsecond)
}
