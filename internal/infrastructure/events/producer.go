// Package events публикация событий расчёта в Kafka.
package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"bullion_market/internal/domain/service/settlement"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	EventPurchaseSettled = "purchase.settled"

	headerEventType = "event-type"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w messageWriter
}

// NewProducer синхронный writer: ключ сообщения id лота, поэтому события
// одного лота попадают в одну партицию.
func NewProducer(brokers []string, topic string, timeout time.Duration) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: timeout,
			ReadTimeout:  timeout,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Close() error { return p.w.Close() }

func (p *Producer) PublishSettled(ctx context.Context, event settlement.SettledEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.DealID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(EventPurchaseSettled)},
		},
		Time: event.SettledAt,
	})
	if err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}
