// Package mqtt publishes the engine's operational stream (event lifecycle
// changes, scan summaries) to an MQTT broker for dashboards and downstream
// tooling. The publisher is optional; a nil *Publisher is a no-op.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"SiteMonitorAPI/internal/config"
	"SiteMonitorAPI/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher struct {
	client    mqtt.Client
	cfg       *config.MQTTConfig
	log       *logger.Logger
	mu        sync.RWMutex
	connected bool
}

func NewPublisher(cfg *config.MQTTConfig, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	p := &Publisher{
		cfg: cfg,
		log: log,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		p.mu.Lock()
		p.connected = true
		p.mu.Unlock()
		log.Info("MQTT publisher connected to %s:%d", cfg.Broker, cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
		log.Warn("MQTT connection lost: %v", err)
	})

	p.client = mqtt.NewClient(opts)

	return p, nil
}

func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(p.cfg.ConnectTimeout) {
		return fmt.Errorf("mqtt connection timeout after %v", p.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	return nil
}

func (p *Publisher) Disconnect() {
	if p == nil {
		return
	}

	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	p.client.Disconnect(250)
	p.log.Info("MQTT publisher disconnected")
}

func (p *Publisher) IsConnected() bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.client.IsConnected()
}

// Publish serializes payload as JSON under <prefix>/<subtopic>. Failures are
// logged, never returned: the ops stream is best-effort and must not affect
// the scan or request paths.
func (p *Publisher) Publish(subtopic string, payload interface{}) {
	if p == nil {
		return
	}
	if !p.IsConnected() {
		p.log.Debug("MQTT not connected, dropping message for %s", subtopic)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("Failed to marshal MQTT payload for %s: %v", subtopic, err)
		return
	}

	topic := p.cfg.TopicPrefix + "/" + subtopic
	token := p.client.Publish(topic, p.cfg.QoS, false, body)
	if !token.WaitTimeout(5 * time.Second) {
		p.log.Warn("MQTT publish timeout for topic %s", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.log.Error("MQTT publish to %s failed: %v", topic, err)
	}
}
