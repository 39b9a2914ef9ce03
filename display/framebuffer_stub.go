//go:build !screen

package display

import (
	"errors"

	"github.com/Second-Last/csci1600-doorlock/fsm"
)

// ErrFramebufferNotCompiled is returned when framebuffer support was not
// compiled in.
var ErrFramebufferNotCompiled = errors.New("framebuffer support not compiled in (build with -tags=screen)")

// FramebufferSupported reports whether framebuffer support is compiled in.
func FramebufferSupported() bool { return false }

// framebuffer is a stub when framebuffer support is not compiled in.
type framebuffer struct{}

// NewFramebuffer returns an error when framebuffer support is not compiled
// in.
func NewFramebuffer() (*framebuffer, error) {
	return nil, ErrFramebufferNotCompiled
}

func (f *framebuffer) Show(state fsm.State) {}
func (f *framebuffer) Release() error        { return nil }
