//go:build linux

package position

// New builds a Sensor from cfg: a FixedFeedback-backed stub (reading a
// constant zero) if no clock pin is configured, otherwise a Sensor
// backed by the real bit-banged SPI feedback ADC.
func New(cfg Config) (*Sensor, error) {
	if cfg.ClkPin == "" {
		return build(&FixedFeedback{Values: []int{0}}, cfg), nil
	}
	reader, err := NewSPIFeedback(cfg.ClkPin, cfg.CSPin, cfg.DIPin, cfg.DOPin, cfg.Channel)
	if err != nil {
		return nil, err
	}
	return build(reader, cfg), nil
}
