package motor

// Noop implements Actuator but touches no hardware. Used in tests and
// whenever no servo pin is configured.
type Noop struct {
	attached bool
}

// Attach implements Actuator.Attach.
func (n *Noop) Attach() error {
	n.attached = true
	return nil
}

// Detach implements Actuator.Detach.
func (n *Noop) Detach() error {
	n.attached = false
	return nil
}

// AttachAndWrite implements Actuator.AttachAndWrite.
func (n *Noop) AttachAndWrite(targetDeg int) error {
	n.attached = true
	return nil
}

// Attached implements Actuator.Attached.
func (n *Noop) Attached() bool {
	return n.attached
}
