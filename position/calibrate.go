package position

import "time"

// settleDelay is how long the bolt is given to reach an endpoint before its
// powered feedback is sampled; releaseDelay is how long it's given to relax
// before the unpowered feedback is sampled. Both come straight from the
// original firmware's calibrate() (myservo.hpp): 2s to settle under power,
// 500ms to settle after release.
var (
	settleDelay  = 2 * time.Second
	releaseDelay = 500 * time.Millisecond
)

// actuator is the narrow motor interface Calibrate needs.
type actuator interface {
	AttachAndWrite(targetDeg int) error
	Detach() error
}

// Calibrate drives the motor to minPos and maxPos in turn, recording both
// the powered and the unpowered feedback value at each, per the two-table
// procedure. It leaves the motor detached.
func (s *Sensor) Calibrate(act actuator, minPos, maxPos int) error {
	minPowered, minUnpowered, err := s.calibrateOne(act, minPos)
	if err != nil {
		return err
	}
	maxPowered, maxUnpowered, err := s.calibrateOne(act, maxPos)
	if err != nil {
		return err
	}

	s.powered = Anchors{MinDeg: minPos, MaxDeg: maxPos, MinFeedback: minPowered, MaxFeedback: maxPowered}
	s.unpowered = Anchors{MinDeg: minPos, MaxDeg: maxPos, MinFeedback: minUnpowered, MaxFeedback: maxUnpowered}
	return nil
}

func (s *Sensor) calibrateOne(act actuator, targetDeg int) (powered, unpowered int, err error) {
	if err = act.AttachAndWrite(targetDeg); err != nil {
		return 0, 0, err
	}
	time.Sleep(settleDelay)
	if powered, err = s.sampleRaw(); err != nil {
		return 0, 0, err
	}

	if err = act.Detach(); err != nil {
		return 0, 0, err
	}
	time.Sleep(releaseDelay)
	if unpowered, err = s.sampleRaw(); err != nil {
		return 0, 0, err
	}

	return powered, unpowered, nil
}
