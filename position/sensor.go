// Package position implements the bolt position sensor: a denoised angle
// reading backed by a raw analog feedback pin, compensated for whether the
// motor is currently powered.
package position

import "sort"

// sampleCount is how many raw readings one sample takes before dropping
// the highest and lowest and averaging the rest. Fixed at 5, matching
// the original firmware's client-side analogReadStable (the server-side
// variant used 9 but still only averaged three of them, an inconsistency
// this package does not reproduce).
const sampleCount = 5

// FeedbackReader sources one raw analog reading from the feedback pin.
// Implementations do not denoise; Sensor.Sample does that.
type FeedbackReader interface {
	Read() (int, error)
}

// Anchors is one calibration pair: the raw feedback values observed at the
// two endpoint positions.
type Anchors struct {
	MinFeedback int // raw feedback value recorded at min_pos
	MaxFeedback int // raw feedback value recorded at max_pos
	MinDeg      int
	MaxDeg      int
}

// degrees linearly maps a raw feedback value to degrees using this anchor
// pair.
func (a Anchors) degrees(raw int) int {
	if a.MaxFeedback == a.MinFeedback {
		return a.MinDeg
	}
	span := a.MaxDeg - a.MinDeg
	return a.MinDeg + (raw-a.MinFeedback)*span/(a.MaxFeedback-a.MinFeedback)
}

// Sensor maps denoised feedback to degrees through one of two calibration
// tables, chosen by the attached flag passed to Sample.
type Sensor struct {
	reader    FeedbackReader
	powered   Anchors
	unpowered Anchors
}

// NewSensor builds a Sensor reading through reader, with both calibration
// tables initially zeroed (call Calibrate before trusting Sample).
func NewSensor(reader FeedbackReader) *Sensor {
	return &Sensor{reader: reader}
}

// SetAnchors installs previously-recorded calibration anchors, e.g. loaded
// from configuration instead of re-run at every boot.
func (s *Sensor) SetAnchors(powered, unpowered Anchors) {
	s.powered = powered
	s.unpowered = unpowered
}

// Sample returns a denoised angle in degrees. attached selects which
// calibration table to map through — the two tables MUST be kept separate
//: the feedback potentiometer reads differently depending on whether
// the motor is currently driven.
func (s *Sensor) Sample(attached bool) (int, error) {
	raw, err := s.sampleRaw()
	if err != nil {
		return 0, err
	}
	if attached {
		return s.powered.degrees(raw), nil
	}
	return s.unpowered.degrees(raw), nil
}

// sampleRaw implements analogReadStable: take sampleCount raw readings,
// sort, discard the highest and lowest, average the middle three.
func (s *Sensor) sampleRaw() (int, error) {
	v := make([]int, sampleCount)
	for i := range v {
		raw, err := s.reader.Read()
		if err != nil {
			return 0, err
		}
		v[i] = raw
	}
	sort.Ints(v)
	sum := 0
	for _, x := range v[1 : len(v)-1] {
		sum += x
	}
	return sum / (len(v) - 2), nil
}
