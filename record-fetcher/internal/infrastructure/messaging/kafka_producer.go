package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
	"github.com/fernsky/digital-profile/record-fetcher/internal/pkg/logger"
)

type KafkaProducer struct {
	producer sarama.SyncProducer
	brokers  []string
	topic    string
	logger   logger.Logger
}

func NewKafkaProducer(brokers []string, topic string, requiredAcks int16, maxRetries int, log logger.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.RequiredAcks(requiredAcks)
	config.Producer.Retry.Max = maxRetries
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaProducer(producer, brokers, topic, log), nil
}

func newKafkaProducer(producer sarama.SyncProducer, brokers []string, topic string, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		brokers:  brokers,
		topic:    topic,
		logger:   logger.ForComponent(log, "kafka_producer").WithField("topic", topic),
	}
}

func (k *KafkaProducer) message(event entities.RecordEvent) (*sarama.ProducerMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.Key(), err)
	}
	return &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("op"), Value: []byte(event.Op)},
		},
	}, nil
}

func (k *KafkaProducer) Produce(ctx context.Context, event entities.RecordEvent) error {
	msg, err := k.message(event)
	if err != nil {
		return err
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to produce %s: %w", event.Key(), err)
	}
	k.logger.Debugf("Produced %s to partition %d at offset %d", event.Key(), partition, offset)
	return nil
}

func (k *KafkaProducer) ProduceBatch(ctx context.Context, events []entities.RecordEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		msg, err := k.message(event)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	if err := k.producer.SendMessages(messages); err != nil {
		var perrs sarama.ProducerErrors
		if errors.As(err, &perrs) {
			return fmt.Errorf("failed to produce %d of %d events: %w", len(perrs), len(messages), err)
		}
		return fmt.Errorf("failed to produce batch: %w", err)
	}

	k.logger.Debugf("Produced batch of %d events", len(messages))
	return nil
}

func (k *KafkaProducer) HealthCheck(ctx context.Context) error {
	if k.producer == nil {
		return errors.New("kafka producer is not initialized")
	}

	config := sarama.NewConfig()
	config.Net.DialTimeout = 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		config.Net.DialTimeout = time.Until(deadline)
	}

	client, err := sarama.NewClient(k.brokers, config)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	defer client.Close()

	if _, err := client.Topics(); err != nil {
		return fmt.Errorf("failed to get topics: %w", err)
	}
	return nil
}

func (k *KafkaProducer) Close() error {
	if k.producer == nil {
		return nil
	}
	if err := k.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
