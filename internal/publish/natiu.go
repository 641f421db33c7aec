package publish

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	mqtt "github.com/soypat/natiu-mqtt"
)

// natiuPublisher publishes at QoS 0 over one connection. It does not reconnect.
type natiuPublisher struct {
	mu     sync.Mutex
	client *mqtt.Client
	conn   net.Conn
	flags  mqtt.PacketFlags
	log    *logrus.Entry
}

func newNatiu(ctx context.Context, cfg Config, addr string, log *logrus.Entry) (*natiuPublisher, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("publish: dial %s: %w", addr, err)
	}
	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1500)},
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(cfg.ClientID))
	if err := client.Connect(ctx, conn, &varconn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("publish: connect to %s: %w", addr, err)
	}
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Connected")
	return &natiuPublisher{client: client, conn: conn, flags: flags, log: log}, nil
}

func (p *natiuPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		if err := p.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("publish: set write deadline: %w", err)
		}
		defer p.conn.SetWriteDeadline(time.Time{})
	}
	vp := mqtt.VariablesPublish{TopicName: []byte(topic)}
	return p.client.PublishPayload(p.flags, vp, payload)
}

func (p *natiuPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.client.Disconnect(fmt.Errorf("publisher closed"))
	if cerr := p.conn.Close(); err == nil {
		err = cerr
	}
	p.log.Info("Disconnected")
	return err
}
