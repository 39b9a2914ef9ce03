// Package telemetry publishes lock state transitions and a periodic
// heartbeat over MQTT. Publishing is best-effort: a broker that is
// unreachable or not configured never blocks or fails the control loop.
package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Second-Last/csci1600-doorlock/fsm"
)

// Config holds MQTT connection settings. Host empty disables telemetry.
type Config struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CACert     string `yaml:"ca_cert"`
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
	Topic      string `yaml:"topic"`
}

// Publisher wraps an MQTT client with the topic layout this controller
// uses: <topic>/state on every FSM transition and <topic>/heartbeat on
// a fixed interval.
type Publisher struct {
	client  paho.Client
	topic   string
	enabled bool
}

// New creates a Publisher. Returns a disabled no-op publisher if
// cfg.Host is empty.
func New(cfg Config, clientID string) (*Publisher, error) {
	p := &Publisher{topic: cfg.Topic}
	if p.topic == "" {
		p.topic = "doorlock"
	}

	if cfg.Host == "" {
		p.enabled = false
		log.Println("telemetry: MQTT disabled (no host configured)")
		return p, nil
	}
	p.enabled = true

	var broker string
	var tlsConfig *tls.Config
	hasTLS := cfg.CACert != "" || cfg.ClientCert != ""

	if hasTLS {
		broker = fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)
		var err error
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("telemetry: build TLS config: %w", err)
		}
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		broker = fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
		log.Println("telemetry: MQTT using non-TLS connection")
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("telemetry: connection lost: %v", err)
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			log.Println("telemetry: connected")
		})

	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	p.client = paho.NewClient(opts)

	paho.ERROR = log.New(os.Stdout, "[telemetry ERROR] ", 0)
	paho.CRITICAL = log.New(os.Stdout, "[telemetry CRIT] ", 0)
	paho.WARN = log.New(os.Stdout, "[telemetry WARN] ", 0)

	return p, nil
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{}

	if cfg.CACert != "" {
		caCert, err := ioutil.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		caPool.AppendCertsFromPEM(caCert)
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect connects to the broker. No-op if disabled.
func (p *Publisher) Connect() error {
	if !p.enabled {
		return nil
	}
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("telemetry: connect: %w", token.Error())
	}
	return nil
}

// Disconnect closes the connection. No-op if disabled.
func (p *Publisher) Disconnect() {
	if !p.enabled || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}

// PublishState announces an FSM transition. Never blocks the caller on
// broker availability: publish failures are logged and dropped.
func (p *Publisher) PublishState(state fsm.State) {
	if !p.enabled {
		return
	}
	token := p.client.Publish(p.topic+"/state", 0, true, state.String())
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("telemetry: publish state: %v", token.Error())
		}
	}()
}

// Ping publishes a heartbeat with the current Unix timestamp, supplied
// by the caller so this package never calls time.Now itself outside of
// the keepalive plumbing above.
func (p *Publisher) Ping(unixSeconds int64) {
	if !p.enabled {
		return
	}
	payload := fmt.Sprintf("%d", unixSeconds)
	token := p.client.Publish(p.topic+"/heartbeat", 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("telemetry: publish heartbeat: %v", token.Error())
		}
	}()
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p.enabled
}
