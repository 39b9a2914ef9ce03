//go:build !linux

package calbutton

import "errors"

// ErrNotSupported is returned by New on platforms without a GPIO
// character device.
var ErrNotSupported = errors.New("calibration button not supported on this platform")

// Button is a stub for non-linux platforms.
type Button struct{}

// Config names the GPIO chip and line offset of the button.
type Config struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// New returns an error on non-linux platforms unless no pin is
// configured, mirroring the linux build's disabled-peripheral path.
func New(cfg Config) (*Button, error) {
	if cfg.Pin == 0 {
		return nil, nil
	}
	return nil, ErrNotSupported
}

func (b *Button) Pressed() bool { return false }
func (b *Button) Release() error { return nil }
