// Package mqtt announces finished monitoring runs to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connTimeout    = 10
	reconnTimeout  = 1
	disconnTimeout = 250

	// RunTopicPrefix is prepended to a run ID to form its topic.
	RunTopicPrefix = "memmon/runs/"

	statusTopicTemplate = "memmon/status/%s"
	lwtPayloadTemplate  = `{"status":"offline","client_id":"%s"}`
)

var (
	ErrConnect = errors.New("failed to connect to MQTT broker")

	errPublishTimeout = errors.New("failed to publish due to timeout reached")
	errConnectTimeout = errors.New("timeout reached while connecting to MQTT broker")
	errEmptyTopic     = errors.New("empty topic")
	errEmptyID        = errors.New("empty ID")
	errEmptyAddress   = errors.New("empty broker address")
)

type Publisher interface {
	Publish(ctx context.Context, topic string, msg any) error
	Disconnect(ctx context.Context) error
}

type Config struct {
	Address  string        `toml:"address"   env:"MEMMON_MQTT_ADDRESS"`
	QoS      byte          `toml:"qos"       env:"MEMMON_MQTT_QOS"`
	Timeout  time.Duration `toml:"timeout"   env:"MEMMON_MQTT_TIMEOUT"`
	ClientID string        `toml:"client_id" env:"MEMMON_MQTT_CLIENT_ID"`
	Username string        `toml:"username"  env:"MEMMON_MQTT_USERNAME"`
	Password string        `toml:"password"  env:"MEMMON_MQTT_PASSWORD"`
}

type publisher struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
	logger  *slog.Logger
}

// RunTopic returns the topic a run summary is published on.
func RunTopic(runID string) string {
	return RunTopicPrefix + runID
}

func NewPublisher(cfg Config, logger *slog.Logger) (Publisher, error) {
	if cfg.Address == "" {
		return nil, errEmptyAddress
	}
	if cfg.ClientID == "" {
		return nil, errEmptyID
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewPublisherWithClient(client, cfg.QoS, cfg.Timeout, logger), nil
}

// NewPublisherWithClient wraps an already configured client.
func NewPublisherWithClient(client mqtt.Client, qos byte, timeout time.Duration, logger *slog.Logger) Publisher {
	return &publisher{
		client:  client,
		qos:     qos,
		timeout: timeout,
		logger:  logger,
	}
}

func (p *publisher) Publish(ctx context.Context, topic string, msg any) error {
	if topic == "" {
		return errEmptyTopic
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	token := p.client.Publish(topic, p.qos, false, data)
	if token.Error() != nil {
		return token.Error()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if ok := token.WaitTimeout(p.timeout); !ok {
		return errPublishTimeout
	}

	return token.Error()
}

func (p *publisher) Disconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.client.Disconnect(disconnTimeout)

		return nil
	}
}

func newClient(cfg Config, logger *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Address).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connTimeout * time.Second).
		SetMaxReconnectInterval(reconnTimeout * time.Minute).
		SetWill(fmt.Sprintf(statusTopicTemplate, cfg.ClientID), fmt.Sprintf(lwtPayloadTemplate, cfg.ClientID), 0, false)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT connection established")
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		args := []any{}
		if err != nil {
			args = append(args, slog.Any("error", err))
		}

		logger.Info("MQTT connection lost", args...)
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, options *mqtt.ClientOptions) {
		args := []any{}
		if options != nil {
			args = append(args,
				slog.String("client_id", options.ClientID),
				slog.String("username", options.Username),
			)
		}

		logger.Info("MQTT reconnecting", args...)
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if token.Error() != nil {
		return nil, errors.Join(ErrConnect, token.Error())
	}

	if ok := token.WaitTimeout(cfg.Timeout); !ok {
		return nil, errConnectTimeout
	}
	if token.Error() != nil {
		return nil, errors.Join(ErrConnect, token.Error())
	}

	return client, nil
}
