// Package telemetry forwards daemon events to an MQTT broker so an
// external dashboard can observe the station without talking to the unix
// socket API.
package telemetry

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"sortstation/pkg/events"
)

// Config holds the MQTT connection parameters.
type Config struct {
	Broker    string
	ClientID  string
	Username  string
	Password  string
	BaseTopic string
}

// Publisher bridges the daemon EventHub onto MQTT topics. Each event name
// becomes a subtopic under BaseTopic, e.g. station.snapshot is published
// to <base>/station.snapshot.
type Publisher struct {
	client mqtt.Client
	base   string
}

// NewPublisher connects to the broker. The connection auto-reconnects;
// events published while disconnected are dropped.
func NewPublisher(conf Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	opts.SetClientID(conf.ClientID)
	opts.SetUsername(conf.Username)
	opts.SetPassword(conf.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		log.WithField("broker", conf.Broker).Info("telemetry broker connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("telemetry broker connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrap(token.Error(), "failed to connect to MQTT broker")
	}

	return &Publisher{
		client: client,
		base:   conf.BaseTopic,
	}, nil
}

// Run drains hub events onto MQTT until ctx is canceled or the hub is
// closed. A publish failure is logged and the next event is attempted.
func (p *Publisher) Run(ctx context.Context, hub *events.EventHub) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			topic := p.base + "/" + ev.Name
			token := p.client.Publish(topic, 0, false, []byte(ev.Data))
			if token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).WithField("topic", topic).Warn("failed to publish telemetry event")
			}
		}
	}
}

// Close disconnects from the broker, letting in-flight publishes finish.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
