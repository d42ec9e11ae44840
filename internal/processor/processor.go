// Package taskprocessor drains the outbox: pending audit tasks are
// published to Kafka and deleted, failures are retried with a delay up to
// the attempt limit.
package taskprocessor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/kafka"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
)

type TaskProcessor struct {
	repo         repository.TaskRepository
	producer     *kafka.Producer
	topic        string
	pollInterval time.Duration
	limit        int
	maxAttempts  int
	retryDelay   time.Duration
	log          *zap.Logger
}

func NewTaskProcessor(repo repository.TaskRepository, producer *kafka.Producer, topic string, pollInterval time.Duration, limit int, log *zap.Logger) *TaskProcessor {
	return &TaskProcessor{
		repo:         repo,
		producer:     producer,
		topic:        topic,
		pollInterval: pollInterval,
		limit:        limit,
		maxAttempts:  3,
		retryDelay:   2 * time.Second,
		log:          log,
	}
}

func (p *TaskProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processPendingTasks(ctx)
		}
	}
}

func (p *TaskProcessor) processPendingTasks(ctx context.Context) {
	tasks, err := p.repo.GetPendingTasks(ctx, p.limit, p.maxAttempts)
	if err != nil {
		p.log.Error("fetching pending tasks", zap.Error(err))
		return
	}
	for _, task := range tasks {
		if err := p.repo.MarkTaskProcessing(ctx, task.ID); err != nil {
			p.log.Error("marking task processing", zap.Int("task_id", task.ID), zap.Error(err))
			continue
		}

		if err := p.producer.Publish(p.topic, task.AuditData); err != nil {
			p.update(ctx, task, err)
			continue
		}
		p.log.Info("task published", zap.Int("task_id", task.ID))
		if err := p.repo.DeleteTask(ctx, task.ID); err != nil {
			p.log.Error("deleting published task", zap.Int("task_id", task.ID), zap.Error(err))
		}
	}
}

func (p *TaskProcessor) update(ctx context.Context, task *repository.Task, cause error) {
	newAttempt := task.AttemptCount + 1
	newStatus := repository.TaskStatusFailed
	if newAttempt >= p.maxAttempts {
		newStatus = repository.TaskStatusNoAttemptsLeft
	}
	nextAttempt := time.Now().Add(p.retryDelay)
	if err := p.repo.UpdateTaskFailure(ctx, task.ID, newAttempt, newStatus, nextAttempt); err != nil {
		p.log.Error("updating failed task", zap.Int("task_id", task.ID), zap.Error(err))
	}
	p.log.Warn("task publish failed",
		zap.Int("task_id", task.ID),
		zap.Int("attempt", newAttempt),
		zap.Error(cause),
	)
}
