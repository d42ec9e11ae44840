// Package audit collects order-change records and flushes them in batches
// to pluggable processors.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
)

type Record struct {
	Timestamp time.Time          `json:"timestamp"`
	OrderID   int                `json:"order_id"`
	OldStatus models.OrderStatus `json:"old_status,omitempty"`
	NewStatus models.OrderStatus `json:"new_status,omitempty"`
	Endpoint  string             `json:"endpoint,omitempty"`
	Request   string             `json:"request,omitempty"`
	Message   string             `json:"message"`
}

// Encode renders the record for the outbox payload.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

type PoolConfig struct {
	BatchSize   int
	Timeout     time.Duration
	ChannelSize int
}

type Processor interface {
	Process(batch []Record) error
}

// DBProcessor writes batches into the audit_logs table with one multi-row
// insert.
type DBProcessor struct {
	DB *sql.DB
}

func (p *DBProcessor) Process(batch []Record) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO audit_logs (timestamp, order_id, old_status, new_status, endpoint, request, message) VALUES `)

	params := []interface{}{}
	paramIndex := 1
	for i, rec := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			paramIndex, paramIndex+1, paramIndex+2, paramIndex+3, paramIndex+4, paramIndex+5, paramIndex+6))
		paramIndex += 7
		params = append(params, rec.Timestamp, rec.OrderID, rec.OldStatus, rec.NewStatus, rec.Endpoint, rec.Request, rec.Message)
	}
	if _, err := p.DB.Exec(sb.String(), params...); err != nil {
		return fmt.Errorf("audit db processor: %w", err)
	}
	return nil
}

// LogProcessor mirrors batches into the application log, optionally keeping
// only records whose message contains the filter word.
type LogProcessor struct {
	Log    *zap.Logger
	Filter string
}

func (p *LogProcessor) Process(batch []Record) error {
	for _, rec := range batch {
		if p.Filter != "" &&
			!strings.Contains(strings.ToLower(rec.Message), strings.ToLower(p.Filter)) {
			continue
		}
		p.Log.Info("audit",
			zap.Time("timestamp", rec.Timestamp),
			zap.Int("order_id", rec.OrderID),
			zap.String("old_status", string(rec.OldStatus)),
			zap.String("new_status", string(rec.NewStatus)),
			zap.String("message", rec.Message),
		)
	}
	return nil
}

// WorkerPool buffers records on a channel and flushes them to every
// processor either when a batch fills up or when the timeout elapses.
type WorkerPool struct {
	inputCh    chan Record
	processors []Processor
	batchSize  int
	timeout    time.Duration
	log        *zap.Logger

	wg sync.WaitGroup
}

func NewWorkerPool(cfg PoolConfig, log *zap.Logger, processors ...Processor) *WorkerPool {
	return &WorkerPool{
		inputCh:    make(chan Record, cfg.ChannelSize),
		processors: processors,
		batchSize:  cfg.BatchSize,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

func (p *WorkerPool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.worker(ctx)
		}()
	}
}

func (p *WorkerPool) worker(ctx context.Context) {
	var batch []Record
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				p.processBatch(batch)
			}
			return
		case rec := <-p.inputCh:
			batch = append(batch, rec)
			if len(batch) >= p.batchSize {
				if !timer.Stop() {
					<-timer.C
				}
				p.processBatch(batch)
				batch = nil
				timer.Reset(p.timeout)
			}
		case <-timer.C:
			if len(batch) > 0 {
				p.processBatch(batch)
				batch = nil
			}
			timer.Reset(p.timeout)
		}
	}
}

func (p *WorkerPool) processBatch(batch []Record) {
	for _, proc := range p.processors {
		if err := proc.Process(batch); err != nil {
			p.log.Error("audit batch processing failed", zap.Error(err))
		}
	}
}

// Log enqueues a record without blocking; when the channel is full the
// record is dropped rather than stalling the request path.
func (p *WorkerPool) Log(record Record) {
	select {
	case p.inputCh <- record:
	default:
		p.log.Warn("audit channel full, dropping record")
	}
}

// Shutdown cancels the workers and waits for the in-flight batches.
func (p *WorkerPool) Shutdown(cancel context.CancelFunc) {
	cancel()
	p.wg.Wait()
}
