package display

import "github.com/Second-Last/csci1600-doorlock/fsm"

// Noop implements Display but does nothing. Used when no backend is
// configured.
type Noop struct{}

// Show implements Display.Show.
func (n *Noop) Show(state fsm.State) {}

// Release implements Display.Release.
func (n *Noop) Release() error { return nil }
