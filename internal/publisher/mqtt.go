package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/envirolink/internal/config"
	"github.com/jgoulah/envirolink/pkg/models"
)

const (
	publishTimeout = 5 * time.Second
	statsTimeout   = 60 * time.Second
)

// Publisher sends readings, insights and alerts to MQTT and backfills
// Home Assistant history over its HTTP API
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// New creates a new publisher. Either side may be disabled in config.
func New(cfg *config.Config) (*Publisher, error) {
	haCfg := cfg.HomeAssistant
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client
	mqttCfg := cfg.MQTT
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(brokerURL(mqttCfg.Broker))
		opts.SetClientID("envirolink")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return newPublisher(client, cfg.GetMQTTTopicPrefix(), haCfg), nil
}

func newPublisher(client mqtt.Client, topicPrefix string, haCfg config.HAConfig) *Publisher {
	return &Publisher{
		client:      client,
		topicPrefix: strings.TrimSuffix(topicPrefix, "/"),
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// MQTTEnabled reports whether an MQTT client is configured
func (p *Publisher) MQTTEnabled() bool {
	return p.client != nil
}

// HAEnabled reports whether Home Assistant backfill is configured
func (p *Publisher) HAEnabled() bool {
	return p.haConfig.Enabled
}

// PublishReading sends a real-time reading to <prefix>/energy/realtime
func (p *Publisher) PublishReading(r models.EnergyReading) error {
	return p.publishJSON("energy/realtime", false, r)
}

// InsightMessage is the payload published for generated insights
type InsightMessage struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishInsight sends generated text to <prefix>/insights/<kind>. The
// message is retained so new subscribers see the latest insight.
func (p *Publisher) PublishInsight(kind, text string) error {
	return p.publishJSON("insights/"+kind, true, InsightMessage{
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

// PublishAlert sends an alert to <prefix>/alerts
func (p *Publisher) PublishAlert(a models.Alert) error {
	return p.publishJSON("alerts", false, a)
}

func (p *Publisher) publishJSON(topic string, retained bool, v any) error {
	if p.client == nil {
		return fmt.Errorf("MQTT publishing is not enabled in config")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	full := p.topicPrefix + "/" + topic
	token := p.client.Publish(full, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", full)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", full, err)
	}
	return nil
}

// HAPayload matches the Home Assistant backfill service call data
type HAPayload struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	LastUpdated string `json:"last_updated"`
}

// Backfill writes a historical reading into Home Assistant via the AppDaemon API
func (p *Publisher) Backfill(r models.EnergyReading) error {
	if !p.haConfig.Enabled {
		return fmt.Errorf("Home Assistant publishing is not enabled in config")
	}

	apiURL := fmt.Sprintf("%s/api/appdaemon/backfill_state", strings.TrimSuffix(p.haConfig.URL, "/"))
	timestamp := r.Timestamp.Format(time.RFC3339)

	body, err := json.Marshal(HAPayload{
		EntityID:    p.haConfig.EntityID,
		State:       fmt.Sprintf("%.2f", r.Value),
		LastChanged: timestamp,
		LastUpdated: timestamp,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// StatsResult is the AppDaemon generate_statistics response
type StatsResult struct {
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	TotalHours int `json:"total_hours"`
}

// GenerateStatistics asks AppDaemon to compile long-term statistics from the
// backfilled hourly states so they show up on the Energy dashboard
func (p *Publisher) GenerateStatistics() (StatsResult, error) {
	var result StatsResult
	if !p.haConfig.Enabled {
		return result, fmt.Errorf("Home Assistant publishing is not enabled in config")
	}

	apiURL := fmt.Sprintf("%s/api/appdaemon/generate_statistics", strings.TrimSuffix(p.haConfig.URL, "/"))
	body, err := json.Marshal(map[string]string{"entity_id": p.haConfig.EntityID})
	if err != nil {
		return result, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return result, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	// compiling statistics takes a while on large histories
	client := &http.Client{Timeout: statsTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return result, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result, fmt.Errorf("parsing response: %w", err)
	}
	return result, nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
