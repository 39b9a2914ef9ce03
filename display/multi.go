package display

import "github.com/Second-Last/csci1600-doorlock/fsm"

// Multi fans a state change out to every configured backend.
type Multi struct {
	displays []Display
}

// Show implements Display.Show.
func (m *Multi) Show(state fsm.State) {
	for _, d := range m.displays {
		d.Show(state)
	}
}

// Release implements Display.Release.
func (m *Multi) Release() error {
	var lastErr error
	for _, d := range m.displays {
		if err := d.Release(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
