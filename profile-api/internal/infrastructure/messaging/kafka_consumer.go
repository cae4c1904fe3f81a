package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/fernsky/digital-profile/profile-api/internal/domain/entities"
	"github.com/fernsky/digital-profile/profile-api/internal/domain/ports"
	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
)

type KafkaConsumer struct {
	consumer sarama.ConsumerGroup
	brokers  []string
	topic    string
	groupID  string
	logger   logger.Logger
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

type consumerHandler struct {
	handler ports.MessageHandler
	logger  logger.Logger
}

func NewKafkaConsumer(brokers []string, topic, groupID string, log logger.Logger) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRange()
	config.Consumer.MaxProcessingTime = 30 * time.Second
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &KafkaConsumer{
		consumer: consumer,
		brokers:  brokers,
		topic:    topic,
		groupID:  groupID,
		logger:   logger.ForComponent(log, "kafka_consumer"),
	}, nil
}

// Consume starts the group session loop in the background and returns
// immediately.
func (k *KafkaConsumer) Consume(ctx context.Context, handler ports.MessageHandler) error {
	k.logger.Infof("Starting Kafka consumer for topic: %s, group: %s", k.topic, k.groupID)

	ctx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	h := &consumerHandler{
		handler: handler,
		logger:  k.logger.WithField("topic", k.topic),
	}

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			if err := k.consumer.Consume(ctx, []string{k.topic}, h); err != nil {
				k.logger.Errorf("Error consuming from Kafka: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(5 * time.Second):
				}
			}
			if ctx.Err() != nil {
				k.logger.Info("Kafka consumer context cancelled, stopping...")
				return
			}
		}
	}()

	go func() {
		for err := range k.consumer.Errors() {
			k.logger.Errorf("Kafka consumer error: %v", err)
		}
	}()

	return nil
}

func (k *KafkaConsumer) Close() error {
	k.logger.Info("Closing Kafka consumer...")
	if k.cancel != nil {
		k.cancel()
	}
	k.wg.Wait()

	if err := k.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka consumer: %w", err)
	}
	return nil
}

func (k *KafkaConsumer) HealthCheck(ctx context.Context) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.Net.DialTimeout = 5 * time.Second

	client, err := sarama.NewClient(k.brokers, config)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	defer client.Close()

	topics, err := client.Topics()
	if err != nil {
		return fmt.Errorf("failed to get topics: %w", err)
	}
	for _, topic := range topics {
		if topic == k.topic {
			return nil
		}
	}
	return fmt.Errorf("topic %s not found", k.topic)
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Debug("Kafka consumer handler setup completed")
	return nil
}

func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Debug("Kafka consumer handler cleanup")
	return nil
}

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		select {
		case <-session.Context().Done():
			return nil
		default:
		}
		if h.handle(session.Context(), message) {
			session.MarkMessage(message, "")
		}
	}
	return nil
}

// handle reports whether the message is done with. Undecodable and invalid
// events are logged and skipped; handler failures leave the offset
// unmarked so the event is redelivered.
func (h *consumerHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) bool {
	event, err := decodeEvent(message.Value)
	if err != nil {
		h.logger.Errorf("Dropping message at offset %d: %v", message.Offset, err)
		return true
	}

	if err := h.handler(ctx, event); err != nil {
		h.logger.Errorf("Failed to handle %s %s/%s: %v", event.Op, event.Record.Dataset, event.Record.UnitKey, err)
		return false
	}

	h.logger.Debugf("Processed %s %s/%s (offset: %d)", event.Op, event.Record.Dataset, event.Record.UnitKey, message.Offset)
	return true
}

// decodeEvent keeps numbers as json.Number so large integers survive.
func decodeEvent(data []byte) (entities.RecordEvent, error) {
	var event entities.RecordEvent
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return event, fmt.Errorf("failed to unmarshal Kafka message: %w", err)
	}
	if event.Op == "" {
		event.Op = entities.OpUpsert
	}
	if event.Record.Source == "" {
		event.Record.Source = "kafka"
	}
	if err := event.Validate(); err != nil {
		return event, fmt.Errorf("invalid record event: %w", err)
	}
	return event, nil
}
