package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"microblog/internal/logging"
	"microblog/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second
)

// Manager orchestrates worker goroutines that consume the mail stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	errBackoff  time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
		errBackoff:  time.Second,
	}
}

// Start begins the worker goroutines. Call Stop to shut them down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamMail, queue.ConsumerGroupMail); err != nil {
		m.cancel()
		return err
	}

	log.Info().Str("component", "Manager").
		Int("workers", m.workerCount).
		Str("stream", queue.StreamMail).
		Msg("starting workers")

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		m.wg.Add(1)
		go m.runWorker(workerID, consumerNameForWorker(workerID))
	}
	return nil
}

// Stop cancels the workers and blocks until they have finished.
func (m *Manager) Stop() {
	if m == nil || m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	log.Info().Str("component", "Manager").Msg("all workers stopped")
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()

	logger := logging.Component("Worker").With().Int("worker", workerID).Logger()
	logger.Debug().Str("consumer", consumerName).Msg("started")

	// Crash recovery first: messages delivered to this consumer but never acked.
	m.processPending(logger, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			logger.Debug().Msg("shutting down")
			return
		default:
			m.processMessages(logger, consumerName)
		}
	}
}

func (m *Manager) processPending(logger zerolog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamMail, queue.ConsumerGroupMail, consumerName, m.batchSize)
		if err != nil {
			logger.Error().Err(err).Msg("error reading pending")
			return
		}
		if len(messages) == 0 {
			return
		}

		logger.Info().Int("count", len(messages)).Msg("processing pending messages")
		m.handleMessages(logger, messages)
	}
}

func (m *Manager) processMessages(logger zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamMail,
		queue.ConsumerGroupMail,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		logger.Error().Err(err).Msg("error reading")
		select {
		case <-m.ctx.Done():
		case <-time.After(m.errBackoff):
		}
		return
	}

	if len(messages) == 0 {
		return
	}
	m.handleMessages(logger, messages)
}

func (m *Manager) handleMessages(logger zerolog.Logger, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			// Still ACK to prevent infinite retry loops.
			logger.Error().Str("msg_id", msg.ID).Err(err).Msg("handler error")
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamMail, queue.ConsumerGroupMail, msg.ID); err != nil {
			logger.Error().Str("msg_id", msg.ID).Err(err).Msg("ack error")
		}
	}
}

func consumerNameForWorker(workerID int) string {
	return "worker-" + strconv.Itoa(workerID)
}
