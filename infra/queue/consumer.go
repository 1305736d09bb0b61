package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/SundayYogurt/channel_service/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const (
	defaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 30 * time.Second
)

type KafkaConsumer struct {
	Reader      MessageReader
	Handler     interfaces.ConsumerHandler
	ServiceName string
	// first wait after a failed read, doubled per consecutive failure
	RetryBackoff time.Duration
	log          *slog.Logger
}

func NewKafkaConsumer(broker, topic, groupID, username, password string, handler interfaces.ConsumerHandler, logger *slog.Logger) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{Username: username, Password: password}
	}

	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, //10KB
		MaxBytes: 10e6, //10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:       reader,
		Handler:      handler,
		ServiceName:  "Channel Service",
		RetryBackoff: defaultRetryBackoff,
		log:          logger.With("component", "kafka_consumer", "topic", topic),
	}
}

// Listen blocks until ctx is cancelled. Handler failures are logged and the
// message is skipped. Read failures back off exponentially up to 30s.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	logger := kc.log
	if logger == nil {
		logger = slog.Default()
	}
	initial := kc.RetryBackoff
	if initial <= 0 {
		initial = defaultRetryBackoff
	}
	defer kc.Reader.Close()

	backoff := initial
	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			logger.Warn("read message failed", "service", kc.ServiceName, "retry_in", backoff, "error", err)

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			backoff = min(backoff*2, maxRetryBackoff)
			continue
		}
		backoff = initial

		if err := kc.Handler.HandleMessage(ctx, msg.Value); err != nil {
			logger.Error("handle message failed",
				"service", kc.ServiceName,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}
