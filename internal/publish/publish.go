package publish

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher sends payloads to a broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// Backend selects the MQTT client implementation.
type Backend string

const (
	// Paho uses the Eclipse Paho client, which reconnects on its own.
	Paho Backend = "paho"
	// Natiu uses the allocation-free natiu client over a single connection.
	Natiu Backend = "natiu"
)

// DefaultTimeout bounds connecting and each publish.
const DefaultTimeout = 5 * time.Second

// Config describes the broker connection.
type Config struct {
	Broker   string  `yaml:"broker"` // tcp://host:port
	Backend  Backend `yaml:"backend"`
	ClientID string  `yaml:"client_id"`

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`

	Log *logrus.Entry `yaml:"-"`
}

func (c *Config) withDefaults() error {
	if c.Broker == "" {
		return fmt.Errorf("publish: no broker")
	}
	if c.Backend == "" {
		c.Backend = Paho
	}
	if c.ClientID == "" {
		c.ClientID = "rtcctl-" + uuid.NewString()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return nil
}

// New connects to the broker named in cfg.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	if err := cfg.withDefaults(); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("publish: broker %q: %w", cfg.Broker, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("publish: broker %q has no host", cfg.Broker)
	}
	log := cfg.Log.WithFields(logrus.Fields{"broker": u.Host, "client": cfg.ClientID})

	switch cfg.Backend {
	case Paho:
		return newPaho(cfg, log)
	case Natiu:
		if u.Scheme != "tcp" && u.Scheme != "mqtt" {
			return nil, fmt.Errorf("publish: natiu backend only speaks plain tcp, not %q", u.Scheme)
		}
		return newNatiu(ctx, cfg, hostPort(u), log)
	}
	return nil, fmt.Errorf("publish: unknown backend %q", cfg.Backend)
}

func hostPort(u *url.URL) string {
	if u.Port() == "" {
		return u.Hostname() + ":1883"
	}
	return u.Host
}
