package publish

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type pahoPublisher struct {
	client mqtt.Client
	cfg    Config
}

func newPaho(cfg Config, log *logrus.Entry) (*pahoPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("Connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("Connected")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("publish: connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publish: connect to %s: %w", cfg.Broker, err)
	}
	return &pahoPublisher{client: client, cfg: cfg}, nil
}

func (p *pahoPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.cfg.Timeout) {
		return fmt.Errorf("publish: %s: timeout", topic)
	}
	return token.Error()
}

func (p *pahoPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
