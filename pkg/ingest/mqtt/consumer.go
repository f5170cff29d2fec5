package mqtt

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"go.uber.org/zap"
)

// DefaultTopicPrefix is the first topic level sensors publish under
const DefaultTopicPrefix = "sensors"

// Subscriber is the part of Client the consumer needs
type Subscriber interface {
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Ingester accepts decoded payloads
type Ingester interface {
	Ingest(ctx context.Context, kind models.ReadingKind, payload map[string]any) (ingest.Accepted, error)
}

// Consumer subscribes to <prefix>/<sensorID>/<kind> and ingests every message
type Consumer struct {
	sub      Subscriber
	ingester Ingester
	prefix   string
	qos      byte
	logger   *zap.Logger

	ctx    context.Context
	topics []string
}

// NewConsumer creates a consumer. An empty prefix uses DefaultTopicPrefix.
func NewConsumer(sub Subscriber, ingester Ingester, prefix string, qos byte, logger *zap.Logger) *Consumer {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Consumer{
		sub:      sub,
		ingester: ingester,
		prefix:   strings.TrimSuffix(prefix, "/"),
		qos:      qos,
		logger:   logger,
	}
}

// Topics returns the subscription filters, one per reading kind
func (c *Consumer) Topics() []string {
	return []string{
		fmt.Sprintf("%s/+/%s", c.prefix, models.KindShock),
		fmt.Sprintf("%s/+/%s", c.prefix, models.KindEnvironment),
	}
}

// Start subscribes to every kind topic. ctx bounds the ingestion calls.
func (c *Consumer) Start(ctx context.Context) error {
	c.ctx = ctx
	for _, topic := range c.Topics() {
		if err := c.sub.Subscribe(topic, c.qos, c.handle); err != nil {
			return err
		}
		c.topics = append(c.topics, topic)
		c.logger.Info("Subscribed to sensor topic", zap.String("topic", topic))
	}
	return nil
}

// Stop removes the subscriptions made by Start
func (c *Consumer) Stop() error {
	if len(c.topics) == 0 {
		return nil
	}
	err := c.sub.Unsubscribe(c.topics...)
	c.topics = nil
	return err
}

func (c *Consumer) handle(topic string, payload []byte) error {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return c.HandleMessage(ctx, topic, payload)
}

// HandleMessage ingests one message. The topic's sensor segment is used
// when the payload has no sensorID.
func (c *Consumer) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	sensorID, kind, err := c.parseTopic(topic)
	if err != nil {
		return err
	}

	body, err := ingest.DecodePayloadBytes(payload)
	if err != nil {
		return fmt.Errorf("topic %s: %w", topic, err)
	}
	if v, ok := body[ingest.FieldSensorID]; !ok || v == nil {
		body[ingest.FieldSensorID] = sensorID
	}

	if _, err := c.ingester.Ingest(ctx, kind, body); err != nil {
		return fmt.Errorf("topic %s: %w", topic, err)
	}
	return nil
}

func (c *Consumer) parseTopic(topic string) (string, models.ReadingKind, error) {
	rest, ok := strings.CutPrefix(topic, c.prefix+"/")
	if !ok {
		return "", "", fmt.Errorf("unexpected topic %s", topic)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("unexpected topic %s", topic)
	}
	return parts[0], models.ReadingKind(parts[1]), nil
}
