package motor

import (
	"fmt"

	"github.com/hjkoskel/govattu"
)

// Config names the two pins a hobby-servo Actuator needs: the PWM output
// and the transistor gate that removes power while detached. A nil
// ServoPin disables the motor entirely (a Noop is built instead),
// matching door.Config's "Pin == nil means software-only" convention.
type Config struct {
	ServoPin      *uint8 `yaml:"servo_pin"`
	TransistorPin uint8  `yaml:"transistor_pin"`
}

// New builds an Actuator from cfg: a Noop if no servo pin is configured,
// otherwise a hardware Servo opened through govattu.
func New(cfg Config) (Actuator, error) {
	if cfg.ServoPin == nil {
		return &Noop{}, nil
	}

	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("motor: open gpio: %w", err)
	}
	return NewServo(hw, *cfg.ServoPin, cfg.TransistorPin)
}

// pwm count bounds for a 20ms period at 1us resolution (Pwm0SetRange(20000)):
// a 1ms-2ms pulse width is the common hobby-servo full sweep.
const (
	pwmCountMin = 1000
	pwmCountMax = 2000
	degMin      = 0
	degMax      = 180
)

// Servo drives a hobby servo through govattu's PWM0 output, gated by a
// transistor on a separate switched line so the servo draws no current
// while detached.
type Servo struct {
	hw            govattu.Vattu
	servoPin      uint8
	transistorPin uint8
	attached      bool
}

// NewServo configures the PWM and transistor-gate pins. The servo starts
// detached; callers must Attach (or AttachAndWrite) before motion.
func NewServo(hw govattu.Vattu, servoPin, transistorPin uint8) (*Servo, error) {
	hw.PinMode(transistorPin, govattu.ALToutput)
	hw.PinClear(transistorPin)

	s := &Servo{
		hw:            hw,
		servoPin:      servoPin,
		transistorPin: transistorPin,
	}
	return s, nil
}

// Attach implements Actuator.Attach.
func (s *Servo) Attach() error {
	if s.attached {
		return nil
	}
	s.hw.PinSet(s.transistorPin)
	s.hw.PinMode(s.servoPin, govattu.ALT5) // ALT5 selects PWM0 on the header pin
	s.hw.PwmSetMode(true, true, false, false)
	s.hw.PwmSetClock(19)
	s.hw.Pwm0SetRange(20000)
	s.attached = true
	return nil
}

// Detach implements Actuator.Detach.
func (s *Servo) Detach() error {
	if !s.attached {
		return nil
	}
	s.hw.PinMode(s.servoPin, govattu.ALToutput) // unbind PWM0 from the header pin
	s.hw.PinClear(s.servoPin)
	s.hw.PinClear(s.transistorPin)
	s.attached = false
	return nil
}

// AttachAndWrite implements Actuator.AttachAndWrite.
func (s *Servo) AttachAndWrite(targetDeg int) error {
	if err := s.Attach(); err != nil {
		return err
	}
	s.hw.Pwm0Set(uint32(degToCount(targetDeg)))
	return nil
}

// Attached implements Actuator.Attached.
func (s *Servo) Attached() bool {
	return s.attached
}

func degToCount(deg int) int {
	if deg < degMin {
		deg = degMin
	}
	if deg > degMax {
		deg = degMax
	}
	return pwmCountMin + (deg-degMin)*(pwmCountMax-pwmCountMin)/(degMax-degMin)
}
