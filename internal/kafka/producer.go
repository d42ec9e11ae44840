package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Producer publishes audit payloads to the order-events topic.
type Producer struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: prod, log: log}, nil
}

func (p *Producer) Publish(topic string, message []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(message),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("kafka publish failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	p.log.Info("kafka message stored",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
