package services

import (
	"encoding/json"

	"passkey_auth_ms/dtos/request"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	TopicPasskeyRegistered    = "PasskeyRegisteredEvent"
	TopicPasskeyAuthenticated = "PasskeyAuthenticatedEvent"
	TopicSecurityAlert        = "SecurityAlertEvent"
)

// IEventPublisher is the notification sink. Every method is
// fire-and-forget: failures are logged and never propagate into the
// ceremony that raised the event.
type IEventPublisher interface {
	PublishPasskeyRegistered(ev *request.PasskeyRegisteredEvent)
	PublishPasskeyAuthenticated(ev *request.PasskeyAuthenticatedEvent)
	PublishSecurityAlert(ev *request.SecurityAlertEvent)
}

// NoopEventPublisher drops events, logging each one. Used when the broker
// is unreachable at startup so ceremonies keep working.
type NoopEventPublisher struct {
	logger *zap.Logger
}

func NewNoopEventPublisher(logger *zap.Logger) *NoopEventPublisher {
	return &NoopEventPublisher{logger: logger}
}

func (p *NoopEventPublisher) PublishPasskeyRegistered(ev *request.PasskeyRegisteredEvent) {
	p.logger.Debug("event dropped", zap.String("topic", TopicPasskeyRegistered))
}

func (p *NoopEventPublisher) PublishPasskeyAuthenticated(ev *request.PasskeyAuthenticatedEvent) {
	p.logger.Debug("event dropped", zap.String("topic", TopicPasskeyAuthenticated))
}

func (p *NoopEventPublisher) PublishSecurityAlert(ev *request.SecurityAlertEvent) {
	p.logger.Debug("event dropped", zap.String("topic", TopicSecurityAlert))
}

type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewKafkaEventPublisher(brokers []string, logger *zap.Logger) (*KafkaEventPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaEventPublisher{producer: producer, logger: logger}, nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

func (p *KafkaEventPublisher) PublishPasskeyRegistered(ev *request.PasskeyRegisteredEvent) {
	p.publish(TopicPasskeyRegistered, ev)
}

func (p *KafkaEventPublisher) PublishPasskeyAuthenticated(ev *request.PasskeyAuthenticatedEvent) {
	p.publish(TopicPasskeyAuthenticated, ev)
}

func (p *KafkaEventPublisher) PublishSecurityAlert(ev *request.SecurityAlertEvent) {
	p.publish(TopicSecurityAlert, ev)
}

func (p *KafkaEventPublisher) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to encode event", zap.String("topic", topic), zap.Error(err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to publish event", zap.String("topic", topic), zap.Error(err))
		return
	}
	p.logger.Info("event published",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
}
