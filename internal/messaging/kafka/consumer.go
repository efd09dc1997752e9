// internal/messaging/kafka/consumer.go
package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"gongu-service/internal/domain/order"
	"gongu-service/internal/service/lifecycle"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SignalConsumer drains one signal topic and feeds the lifecycle
// orchestrator. Order-completed and stock-depleted each get their own
// consumer instance.
type SignalConsumer struct {
	reader  *kafka.Reader
	handle  func(ctx context.Context, payload []byte) error
	logger  *zap.Logger
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewOrderCompletedConsumer consumes the Order collaborator's post-commit
// signals.
func NewOrderCompletedConsumer(reader *kafka.Reader, orch *lifecycle.Orchestrator, logger *zap.Logger) *SignalConsumer {
	return &SignalConsumer{
		reader: reader,
		logger: logger,
		handle: func(ctx context.Context, payload []byte) error {
			var sig order.CompletedSignal
			if err := json.Unmarshal(payload, &sig); err != nil {
				return err
			}
			return orch.HandleOrderCompleted(ctx, &sig)
		},
	}
}

// NewStockDepletedConsumer consumes depletion hints from batch auditors and
// other producers.
func NewStockDepletedConsumer(reader *kafka.Reader, orch *lifecycle.Orchestrator, logger *zap.Logger) *SignalConsumer {
	return &SignalConsumer{
		reader: reader,
		logger: logger,
		handle: func(ctx context.Context, payload []byte) error {
			var sig order.StockDepletedSignal
			if err := json.Unmarshal(payload, &sig); err != nil {
				return err
			}
			return orch.HandleStockDepleted(ctx, &sig)
		},
	}
}

// Start begins the fetch loop in its own goroutine.
func (c *SignalConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Info("kafka signal consumer started",
			zap.String("topic", c.reader.Config().Topic))
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("kafka signal consumer shutting down",
						zap.String("topic", c.reader.Config().Topic))
					return
				}
				c.logger.Error("failed to fetch message", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			if err := c.handle(ctx, msg.Value); err != nil {
				// Malformed or undeliverable signals are logged and skipped;
				// the close path is idempotent, a later signal re-covers the
				// same campaigns.
				c.logger.Error("failed to handle signal",
					zap.String("topic", c.reader.Config().Topic),
					zap.Error(err),
				)
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("failed to commit offset", zap.Error(err))
			}
		}
	}()
}

// Stop closes the reader and waits for the fetch loop to exit.
func (c *SignalConsumer) Stop() {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
}
