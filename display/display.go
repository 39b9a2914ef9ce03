// Package display drives the local status mirror: one glyph per FSM
// state. It has no coupling to the control plane beyond Show(state).
package display

import "github.com/Second-Last/csci1600-doorlock/fsm"

// Display is the external collaborator contract.
type Display interface {
	// Show renders the given state. Called once per tick in which the
	// state changed.
	Show(state fsm.State)

	// Release frees any hardware resources.
	Release() error
}

// Config selects which backend(s) to enable; the zero value means no
// display is attached.
type Config struct {
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	FramebufferEnabled bool `yaml:"framebuffer_enabled"`
}

// New builds a Display from cfg, composing an LED backend and a framebuffer
// backend into a Multi if both are configured, a single backend if only one
// is, or a Noop if neither is.
func New(cfg Config) (Display, error) {
	var ds []Display

	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		led, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		ds = append(ds, led)
	}

	if cfg.FramebufferEnabled {
		if !FramebufferSupported() {
			return nil, ErrFramebufferNotCompiled
		}
		fb, err := NewFramebuffer()
		if err != nil {
			return nil, err
		}
		ds = append(ds, fb)
	}

	switch len(ds) {
	case 0:
		return &Noop{}, nil
	case 1:
		return ds[0], nil
	default:
		return &Multi{displays: ds}, nil
	}
}
