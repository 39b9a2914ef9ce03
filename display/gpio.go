package display

import (
	"github.com/hjkoskel/govattu"

	"github.com/Second-Last/csci1600-doorlock/fsm"
)

// GPIO renders FSM state as a tri-color LED pattern: solid green
// (unlocked), solid red (locked), blinking handled by the caller via
// repeated Show calls, amber for the busy states, and a fast red/green
// alternation is approximated by leaving both lit for Bad (a fault an
// operator must notice at a glance).
type GPIO struct {
	hw        govattu.Vattu
	greenPin  *uint8
	yellowPin *uint8
	redPin    *uint8
}

// NewGPIO opens the hardware handle and configures whichever of the three
// pins are non-nil as outputs.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, err
	}
	g := &GPIO{hw: hw, greenPin: greenPin, yellowPin: yellowPin, redPin: redPin}
	for _, pin := range []*uint8{greenPin, yellowPin, redPin} {
		if pin != nil {
			hw.PinMode(*pin, govattu.ALToutput)
		}
	}
	g.allOff()
	return g, nil
}

func (g *GPIO) allOff() {
	for _, pin := range []*uint8{g.greenPin, g.yellowPin, g.redPin} {
		if pin != nil {
			g.hw.PinClear(*pin)
		}
	}
}

func (g *GPIO) set(green, yellow, red bool) {
	g.allOff()
	if green && g.greenPin != nil {
		g.hw.PinSet(*g.greenPin)
	}
	if yellow && g.yellowPin != nil {
		g.hw.PinSet(*g.yellowPin)
	}
	if red && g.redPin != nil {
		g.hw.PinSet(*g.redPin)
	}
}

// Show implements Display.Show.
func (g *GPIO) Show(state fsm.State) {
	switch state {
	case fsm.Unlocked:
		g.set(true, false, false)
	case fsm.Locked:
		g.set(false, false, true)
	case fsm.BusyWait, fsm.BusyMove:
		g.set(false, true, false)
	case fsm.CalibrateLock, fsm.CalibrateUnlock:
		g.set(true, true, false)
	case fsm.Bad:
		g.set(true, false, true)
	}
}

// Release implements Display.Release.
func (g *GPIO) Release() error {
	g.allOff()
	return g.hw.Close()
}
