// internal/messaging/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gongu-service/internal/domain/groupbuy"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ClosedProducer publishes CampaignClosed notifications for downstream
// seller dashboards and buyer notification services.
type ClosedProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewClosedProducer(writer *kafka.Writer, logger *zap.Logger) *ClosedProducer {
	return &ClosedProducer{writer: writer, logger: logger}
}

func (p *ClosedProducer) PublishCampaignClosed(ctx context.Context, event *groupbuy.CampaignClosed) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign closed event: %w", err)
	}

	msg := kafka.Message{
		// Key by campaign so replays of the same campaign stay ordered.
		Key:   []byte(strconv.FormatInt(event.CampaignID, 10)),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write campaign closed event: %w", err)
	}

	p.logger.Info("campaign closed event published",
		zap.Int64("campaign_id", event.CampaignID),
		zap.String("event_id", event.EventID),
	)
	return nil
}

func (p *ClosedProducer) Close() error {
	return p.writer.Close()
}
