//go:build !linux

package position

import "errors"

// ErrFeedbackNotSupported is returned by New on non-linux platforms when a
// hardware feedback path is configured.
var ErrFeedbackNotSupported = errors.New("position: SPI feedback not supported on this platform")

// New builds a Sensor from cfg. Off-linux builds can only provide the
// FixedFeedback stub; a configured clock pin is an error since no
// hardware backend is compiled in.
func New(cfg Config) (*Sensor, error) {
	if cfg.ClkPin == "" {
		return build(&FixedFeedback{Values: []int{0}}, cfg), nil
	}
	return nil, ErrFeedbackNotSupported
}
