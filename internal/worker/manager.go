package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inkwell/internal/queue"
)

const (
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages read per XREADGROUP call.
	DefaultBatchSize = 10

	// DefaultBlockTimeout bounds how long a read blocks so shutdown is
	// observed promptly.
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs the worker goroutines consuming the notification stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	log         *zap.SugaredLogger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, handler *Handler, workerCount int, log *zap.SugaredLogger) *Manager {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: workerCount,
		batchSize:   DefaultBatchSize,
		blockTime:   DefaultBlockTimeout,
		log:         log,
	}
}

// Start creates the consumer group and spins up the workers. Call Stop to
// shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotification); err != nil {
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		// Unique consumer names keep replicas from stealing each other's
		// pending entries.
		name := fmt.Sprintf("worker-%d-%s", i+1, uuid.NewString()[:8])
		m.wg.Add(1)
		go m.run(name)
	}

	m.log.Infow("workers started", "count", m.workerCount, "stream", queue.StreamNotifications)
	return nil
}

// Stop shuts all workers down and blocks until they finish.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.log.Infow("workers stopped")
}

func (m *Manager) run(consumerName string) {
	defer m.wg.Done()

	// Replay anything delivered to this consumer before a crash.
	m.drainPending(consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.readBatch(consumerName)
		}
	}
}

func (m *Manager) drainPending(consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotification, consumerName, m.batchSize)
		if err != nil {
			m.log.Warnw("read pending failed", "consumer", consumerName, "error", err)
			return
		}
		if len(messages) == 0 {
			return
		}
		m.handle(consumerName, messages)
	}
}

func (m *Manager) readBatch(consumerName string) {
	messages, err := m.consumer.Read(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotification, consumerName, m.batchSize, m.blockTime)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.log.Warnw("read failed", "consumer", consumerName, "error", err)
		time.Sleep(time.Second)
		return
	}
	if len(messages) == 0 {
		return
	}
	m.handle(consumerName, messages)
}

func (m *Manager) handle(consumerName string, messages []queue.Message) {
	for _, msg := range messages {
		if msg.Err != nil {
			// Malformed payload, nothing to handle; ack so the entry
			// leaves the pending list for good.
			m.log.Warnw("dropping malformed stream message", "id", msg.ID, "error", msg.Err)
		} else if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			// Ack anyway; redelivering a permanently failing message
			// would wedge the consumer.
			m.log.Warnw("handle event failed", "id", msg.ID, "type", msg.Event.Type, "error", err)
		}
		if err := m.consumer.Ack(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotification, msg.ID); err != nil {
			m.log.Warnw("ack failed", "id", msg.ID, "consumer", consumerName, "error", err)
		}
	}
}
