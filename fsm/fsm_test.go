package fsm

import "testing"

// fake is a minimal Actuator spy used to assert motor side effects without
// touching hardware.
type fake struct {
	attached    bool
	lastWrite   int
	writeCalled bool
}

func (f *fake) AttachAndWrite(deg int) error {
	f.attached = true
	f.writeCalled = true
	f.lastWrite = deg
	return nil
}

func (f *fake) Detach() error {
	f.attached = false
	return nil
}

// base returns the FSMState every table row starts from, matching the
// reset fixture in the original firmware's unit-test harness
// (resetTestState): lockDeg=120, unlockDeg=50.
func base(current State) FSMState {
	return FSMState{
		Current:   current,
		LockDeg:   120,
		UnlockDeg: 50,
	}
}

// Ported from the original firmware's 20 numbered FSM unit-test vectors
// (doorlock_unit_tests.h), plus two added rows (16b/17b) that sit exactly
// at the epsilon=5 boundary the original's tests 19/20 didn't quite reach.
func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name  string
		start FSMState
		in    Inputs
		want  FSMState
	}{
		{
			name:  "1 unlock self-loop to busy_wait",
			start: base(Unlocked),
			in:    Inputs{Deg: 75, Cmd: None, NowMS: 1000},
			want:  FSMState{Current: BusyWait, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "2 unlock accepts lock command",
			start: base(Unlocked),
			in:    Inputs{Deg: 50, Cmd: Lock, NowMS: 2000},
			want:  FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 2000, CurrentCmd: Lock},
		},
		{
			name:  "3 unlock settles at lock side",
			start: base(Unlocked),
			in:    Inputs{Deg: 120, Cmd: None, NowMS: 1000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "4 unlock self-loop within tolerance",
			start: base(Unlocked),
			in:    Inputs{Deg: 48, Cmd: None, NowMS: 1000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "5 busy_wait settles at lock",
			start: base(BusyWait),
			in:    Inputs{Deg: 120, NowMS: 1000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "6 busy_wait settles at unlock",
			start: base(BusyWait),
			in:    Inputs{Deg: 50, NowMS: 1000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "7 busy_wait self-loop mid-travel",
			start: base(BusyWait),
			in:    Inputs{Deg: 80, NowMS: 1000},
			want:  FSMState{Current: BusyWait, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "8 busy_move completes lock",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 120, NowMS: 2000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
		{
			name:  "9 busy_move completes unlock",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Unlock},
			in:    Inputs{Deg: 50, NowMS: 2000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
		{
			name:  "10 busy_move times out",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 75, NowMS: 7000},
			want:  FSMState{Current: Bad, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
		},
		{
			name:  "11 busy_move self-loop mid-travel",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 75, NowMS: 3000},
			want:  FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
		},
		{
			name:  "12 lock accepts unlock command",
			start: base(Locked),
			in:    Inputs{Deg: 120, Cmd: Unlock, NowMS: 2000},
			want:  FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 2000, CurrentCmd: Unlock},
		},
		{
			name:  "13 lock settles at unlock",
			start: base(Locked),
			in:    Inputs{Deg: 50, NowMS: 1000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "14 lock moves to busy_wait",
			start: base(Locked),
			in:    Inputs{Deg: 85, NowMS: 1000},
			want:  FSMState{Current: BusyWait, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "15 lock self-loop within tolerance",
			start: base(Locked),
			in:    Inputs{Deg: 122, NowMS: 1000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "16 busy_move just under timeout",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 75, NowMS: 5999},
			want:  FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
		},
		{
			name:  "17 busy_move just over timeout",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 75, NowMS: 6001},
			want:  FSMState{Current: Bad, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
		},
		{
			name:  "18 unlock just outside tolerance band",
			start: base(Unlocked),
			in:    Inputs{Deg: 60, NowMS: 1000},
			want:  FSMState{Current: BusyWait, LockDeg: 120, UnlockDeg: 50},
		},
		{
			name:  "19 busy_move lock completion inside epsilon=5 band",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 117, NowMS: 2000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
		{
			name:  "20 busy_move unlock completion inside epsilon=5 band",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Unlock},
			in:    Inputs{Deg: 53, NowMS: 2000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
		{
			name:  "16b busy_move lock completion exactly at epsilon=5 boundary",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock},
			in:    Inputs{Deg: 115, NowMS: 2000},
			want:  FSMState{Current: Locked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
		{
			name:  "17b busy_move unlock completion exactly at epsilon=5 boundary",
			start: FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Unlock},
			in:    Inputs{Deg: 55, NowMS: 2000},
			want:  FSMState{Current: Unlocked, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: None},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			act := &fake{attached: c.start.Current == BusyMove}
			got := Transition(c.start, c.in, act)
			if got != c.want {
				t.Fatalf("Transition(%+v, %+v) = %+v, want %+v", c.start, c.in, got, c.want)
			}
		})
	}
}

// Calibration rows aren't in the original numbered vectors (the original
// firmware advances calibration via a different code path); they follow
// directly from the transition table.
func TestTransitionCalibration(t *testing.T) {
	s := New()
	if s.Current != CalibrateLock {
		t.Fatalf("New() = %+v, want Current=CalibrateLock", s)
	}

	s = Transition(s, Inputs{Deg: 10, CalibrateBtn: false}, nil)
	if s.Current != CalibrateLock {
		t.Fatalf("calibrate_lock without button press transitioned: %+v", s)
	}

	s = Transition(s, Inputs{Deg: 120, CalibrateBtn: true}, nil)
	if s.Current != CalibrateUnlock || s.LockDeg != 120 {
		t.Fatalf("calibrate_lock -> calibrate_unlock: got %+v", s)
	}

	s = Transition(s, Inputs{Deg: 50, CalibrateBtn: true}, nil)
	if s.Current != Unlocked || s.UnlockDeg != 50 {
		t.Fatalf("calibrate_unlock -> unlocked: got %+v", s)
	}
}

func TestBadIsTerminal(t *testing.T) {
	s := FSMState{Current: Bad, LockDeg: 120, UnlockDeg: 50, CurrentCmd: Lock}
	act := &fake{attached: true}
	for _, in := range []Inputs{
		{Deg: 50, Cmd: Lock},
		{Deg: 120, Cmd: Unlock, CalibrateBtn: true},
		{Deg: 0, NowMS: 999999999},
	} {
		s = Transition(s, in, act)
		if s.Current != Bad {
			t.Fatalf("Bad state exited via %+v: got %+v", in, s)
		}
	}
	if act.attached {
		t.Fatalf("actuator still attached after Bad transition")
	}
}

func TestBusyMoveDetachesOnExit(t *testing.T) {
	start := FSMState{Current: BusyMove, LockDeg: 120, UnlockDeg: 50, MoveStartTime: 1000, CurrentCmd: Lock}
	act := &fake{attached: true}
	got := Transition(start, Inputs{Deg: 120, NowMS: 2000}, act)
	if got.Current != Locked {
		t.Fatalf("expected Locked, got %v", got.Current)
	}
	if act.attached {
		t.Fatalf("actuator still attached after BusyMove -> Locked")
	}
}

func TestStateStringRoundTrip(t *testing.T) {
	for _, s := range []State{CalibrateLock, CalibrateUnlock, Unlocked, Locked, BusyWait, BusyMove, Bad} {
		str := s.String()
		got, ok := ParseState(str)
		if !ok || got != s {
			t.Fatalf("round trip failed for %v: str=%q got=%v ok=%v", s, str, got, ok)
		}
	}
}
