package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Second-Last/csci1600-doorlock/auth"
	"github.com/Second-Last/csci1600-doorlock/calbutton"
	"github.com/Second-Last/csci1600-doorlock/display"
	"github.com/Second-Last/csci1600-doorlock/fsm"
	"github.com/Second-Last/csci1600-doorlock/httpapi"
	"github.com/Second-Last/csci1600-doorlock/motor"
	"github.com/Second-Last/csci1600-doorlock/position"
	"github.com/Second-Last/csci1600-doorlock/telemetry"
)

// tickBudget bounds one control-loop iteration: the listener accepts for
// at most this long before the loop moves on to the rest of the tick with
// no client this time around.
const tickBudget = 100 * time.Millisecond

// watchdogBudget is the hardware-watchdog analogue: a tick that never
// comes back around to refresh the timer forces a restart rather than
// hanging forever.
const watchdogBudget = 2700 * time.Millisecond

// App aggregates the process-wide singletons: one FSM, one motor, one
// sensor, one auth verifier, passed by mutable reference into every tick
// rather than as ambient globals.
type App struct {
	cfg       *Config
	listener  *net.TCPListener
	verifier  httpapi.Authenticator
	actuator  motor.Actuator
	sensor    *position.Sensor
	disp      display.Display
	button    *calbutton.Button
	telemetry *telemetry.Publisher
	watchdog  *time.Timer

	state fsm.FSMState
}

func main() {
	cfgFile := flag.String("cfg", "./doorlock.yaml", "Config file")
	skipAuth := flag.Bool("skip-auth", false, "Disable signature verification (test only)")
	resetNonce := flag.Bool("reset-nonce", false, "Reset persisted nonce to 0 on boot")
	flag.Parse()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *skipAuth {
		cfg.SkipAuth = true
	}
	if *resetNonce {
		cfg.ResetNonceOnBoot = true
	}

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer app.shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()

	app.telemetry.PublishState(app.state.Current)
	app.disp.Show(app.state.Current)

	go app.pingLoop(done)

	log.Printf("doorlock: listening on %s", cfg.ListenAddr)
	for {
		select {
		case <-done:
			log.Println("doorlock: shutting down")
			return
		default:
			app.tick()
		}
	}
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newApp(cfg *Config) (*App, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		return nil, fmt.Errorf("doorlock: listen_addr did not produce a TCP listener")
	}

	store, err := auth.NewNonceStore(cfg.NonceStorePath)
	if err != nil {
		return nil, err
	}
	if cfg.ResetNonceOnBoot {
		if err := store.Reset(); err != nil {
			return nil, err
		}
	}

	var verifier httpapi.Authenticator
	if cfg.SkipAuth {
		verifier = auth.AllowAll{}
	} else {
		verifier = auth.NewVerifier(cfg.SharedSecret, store)
	}

	act, err := motor.New(cfg.Motor)
	if err != nil {
		return nil, err
	}

	sensor, err := position.New(cfg.Position)
	if err != nil {
		return nil, err
	}

	disp, err := display.New(cfg.Display)
	if err != nil {
		return nil, err
	}

	button, err := calbutton.New(cfg.CalButton)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.New(cfg.Telemetry, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	if err := tel.Connect(); err != nil {
		log.Printf("doorlock: telemetry connect: %v", err)
	}

	app := &App{
		cfg:       cfg,
		listener:  tcpLn,
		verifier:  verifier,
		actuator:  act,
		sensor:    sensor,
		disp:      disp,
		button:    button,
		telemetry: tel,
		state:     fsm.New(),
	}
	app.watchdog = time.AfterFunc(watchdogBudget, app.watchdogFire)
	return app, nil
}

// watchdogFire models a hardware watchdog reset: a tick that never comes
// back to refresh the timer means the loop is stuck, and the only safe
// response is to force a restart.
func (app *App) watchdogFire() {
	log.Println("doorlock: watchdog fired, tick overrun, exiting")
	os.Exit(1)
}

// tick runs one control-loop iteration.
func (app *App) tick() {
	conn, req := app.acceptOne()

	deg, err := app.sensor.Sample(app.actuator.Attached())
	if err != nil {
		log.Printf("doorlock: sensor read: %v", err)
	}

	calBtn := false
	if app.button != nil {
		calBtn = app.button.Pressed()
	}

	cmd := commandFor(req.Kind)
	before := app.state.Current

	app.state = fsm.Transition(app.state, fsm.Inputs{
		Deg:          deg,
		NowMS:        time.Now().UnixMilli(),
		CalibrateBtn: calBtn,
		Cmd:          cmd,
	}, app.actuator)

	if conn != nil {
		if err := httpapi.WriteResponse(conn, req, app.state.Current); err != nil {
			log.Printf("doorlock: write response: %v", err)
		}
		conn.Close()
	}

	app.watchdog.Reset(watchdogBudget)

	if app.state.Current != before {
		app.disp.Show(app.state.Current)
		app.telemetry.PublishState(app.state.Current)
	}
}

// acceptOne accepts and fully parses at most one connection this tick,
// bounded by tickBudget; a timed-out or malformed accept yields a zero
// Request, which WriteResponse never sees since conn is nil.
func (app *App) acceptOne() (net.Conn, httpapi.Request) {
	if err := app.listener.SetDeadline(time.Now().Add(tickBudget)); err != nil {
		return nil, httpapi.Request{Kind: httpapi.Unrecognized}
	}

	conn, err := app.listener.Accept()
	if err != nil {
		return nil, httpapi.Request{Kind: httpapi.Unrecognized}
	}

	if err := conn.SetReadDeadline(time.Now().Add(tickBudget)); err != nil {
		conn.Close()
		return nil, httpapi.Request{Kind: httpapi.Unrecognized}
	}

	req, err := httpapi.ParseRequest(bufio.NewReader(conn), app.verifier)
	if err != nil {
		conn.Close()
		return nil, httpapi.Request{Kind: httpapi.Unrecognized}
	}
	return conn, req
}

func commandFor(kind httpapi.Kind) fsm.Command {
	switch kind {
	case httpapi.LockReq:
		return fsm.Lock
	case httpapi.UnlockReq:
		return fsm.Unlock
	default:
		return fsm.None
	}
}

// pingLoop publishes a telemetry heartbeat on a fixed interval, ambient
// to the tick loop and never touching FSM state.
func (app *App) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			app.telemetry.Ping(time.Now().Unix())
		}
	}
}

func (app *App) shutdown() {
	app.watchdog.Stop()
	app.listener.Close()
	app.telemetry.Disconnect()
	app.actuator.Detach()
	if app.button != nil {
		app.button.Release()
	}
	app.disp.Release()
}
