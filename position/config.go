package position

// Config names the bit-banged ADC lines and the persisted calibration
// anchors for a Sensor. A blank ClkPin disables the hardware feedback
// path and a FixedFeedback stub is built instead, mirroring
// door.Config's nil-pin-means-software-only convention.
type Config struct {
	ClkPin  string `yaml:"clk_pin"`
	CSPin   string `yaml:"cs_pin"`
	DIPin   string `yaml:"di_pin"`
	DOPin   string `yaml:"do_pin"`
	Channel int    `yaml:"channel"`

	Powered   Anchors `yaml:"powered_anchors"`
	Unpowered Anchors `yaml:"unpowered_anchors"`
}

// build applies cfg's calibration anchors to a freshly constructed
// Sensor. Shared by both the linux and stub factories.
func build(reader FeedbackReader, cfg Config) *Sensor {
	s := NewSensor(reader)
	s.SetAnchors(cfg.Powered, cfg.Unpowered)
	return s
}
