package main

import (
	"github.com/Second-Last/csci1600-doorlock/calbutton"
	"github.com/Second-Last/csci1600-doorlock/display"
	"github.com/Second-Last/csci1600-doorlock/motor"
	"github.com/Second-Last/csci1600-doorlock/position"
	"github.com/Second-Last/csci1600-doorlock/telemetry"
)

// Config is the top-level configuration for the lock controller, loaded
// from a single YAML file at startup. Compile-time
// spec constants (epsilon, TOL, replay window, sample count) are Go
// consts elsewhere in the tree, never fields here.
type Config struct {
	// ListenAddr is the TCP address the HTTP front end binds, e.g.
	// "0.0.0.0:8080".
	ListenAddr string `yaml:"listen_addr"`

	// SharedSecret is REMOTE_LOCK_PASS: the HMAC key requests are signed
	// under.
	SharedSecret string `yaml:"shared_secret"`

	// SkipAuth disables signature verification entirely. Test only; never
	// set in a deployed config.
	SkipAuth bool `yaml:"skip_auth"`

	// ResetNonceOnBoot zeroes the persisted replay-protection nonce at
	// startup (RESET_TIMESTAMP in the original firmware).
	ResetNonceOnBoot bool `yaml:"reset_nonce_on_boot"`

	// NonceStorePath is the file the last-accepted nonce is persisted to.
	NonceStorePath string `yaml:"nonce_store_path"`

	Motor     motor.Config     `yaml:"motor"`
	Position  position.Config  `yaml:"position"`
	Display   display.Config   `yaml:"display"`
	CalButton calbutton.Config `yaml:"cal_button"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	ClientID  string           `yaml:"client_id"`
}
