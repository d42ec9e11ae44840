package audit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

type captureProcessor struct {
	mu      sync.Mutex
	records []audit.Record
}

func (p *captureProcessor) Process(batch []audit.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, batch...)
	return nil
}

func (p *captureProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func TestFlushOnFullBatch(t *testing.T) {
	proc := &captureProcessor{}
	pool := audit.NewWorkerPool(
		audit.PoolConfig{BatchSize: 3, Timeout: time.Hour, ChannelSize: 16},
		zap.NewNop(), proc,
	)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	for i := 0; i < 3; i++ {
		pool.Log(audit.Record{OrderID: 1001, Message: "order saved"})
	}

	assert.Eventually(t, func() bool { return proc.count() == 3 },
		time.Second, 10*time.Millisecond)

	pool.Shutdown(cancel)
}

func TestFlushOnTimeout(t *testing.T) {
	proc := &captureProcessor{}
	pool := audit.NewWorkerPool(
		audit.PoolConfig{BatchSize: 100, Timeout: 30 * time.Millisecond, ChannelSize: 16},
		zap.NewNop(), proc,
	)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	pool.Log(audit.Record{OrderID: 1002, Message: "order deleted"})

	assert.Eventually(t, func() bool { return proc.count() == 1 },
		time.Second, 10*time.Millisecond)

	pool.Shutdown(cancel)
}

func TestShutdownFlushesPartialBatch(t *testing.T) {
	proc := &captureProcessor{}
	pool := audit.NewWorkerPool(
		audit.PoolConfig{BatchSize: 100, Timeout: time.Hour, ChannelSize: 16},
		zap.NewNop(), proc,
	)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 1)

	pool.Log(audit.Record{OrderID: 1001, Message: "comment added"})
	pool.Log(audit.Record{OrderID: 1002, Message: "comment added"})

	// даём воркеру забрать записи из канала до остановки
	time.Sleep(50 * time.Millisecond)
	pool.Shutdown(cancel)

	assert.Equal(t, 2, proc.count())
}

func TestRecordEncode(t *testing.T) {
	rec := audit.Record{
		OrderID:   1001,
		OldStatus: models.StatusConfirmed,
		NewStatus: models.StatusShipping,
		Message:   "order saved",
	}
	data, err := rec.Encode()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"order_id":1001`)
	assert.Contains(t, string(data), `"new_status":"SHIPPING"`)
}
