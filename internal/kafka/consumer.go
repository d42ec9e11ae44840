package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
)

// consumerGroupHandler logs every consumed audit event. It is the read side
// of the outbox: nothing downstream exists yet, so consumption is purely
// observational.
type consumerGroupHandler struct {
	log *zap.Logger
}

func (consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var rec audit.Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			h.log.Warn("skipping malformed audit event",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			session.MarkMessage(msg, "")
			continue
		}
		h.log.Info("consumed audit event",
			zap.String("topic", msg.Topic),
			zap.Int32("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("order_id", rec.OrderID),
			zap.String("message", rec.Message),
		)
		session.MarkMessage(msg, "")
	}
	return nil
}

// StartConsumer runs a consumer group loop until the context is cancelled.
func StartConsumer(ctx context.Context, brokers []string, groupID string, topics []string, log *zap.Logger) error {
	config := sarama.NewConfig()

	consumerGroup, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumerGroup.Close(); err != nil {
			log.Error("closing consumer group", zap.Error(err))
		}
	}()

	handler := consumerGroupHandler{log: log}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := consumerGroup.Consume(ctx, topics, handler); err != nil {
				log.Error("consumer error", zap.Error(err))
			}
		}
	}
}
