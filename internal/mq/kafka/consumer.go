package kafka

import (
	"context"
	"errors"
	"time"

	"go-studioadmin/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	MinBytes       int
	MaxBytes       int
	CommitInterval time.Duration
	// HandlerRetries is how many times a failing message is handed back to
	// the handler before it is logged and skipped.
	HandlerRetries int
	RetryBackoff   time.Duration
}

type MessageHandler func(ctx context.Context, msg kafkaGo.Message) error

type Consumer struct {
	reader  *kafkaGo.Reader
	logger  *logging.Logger
	retries int
	backoff time.Duration
}

func NewConsumer(cfg ConsumerConfig, l *logging.Logger) *Consumer {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1 << 10
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if l == nil {
		l = logging.Nop()
	}
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: cfg.CommitInterval,
	})
	return &Consumer{reader: reader, logger: l, retries: cfg.HandlerRetries, backoff: cfg.RetryBackoff}
}

// Start reads until ctx is cancelled. Each message gets the producer's trace
// context, a kafka.consume span and the legacy trace_id header as a ctx value.
// A message whose handler keeps failing after the configured retries is
// logged and committed anyway.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("nil reader")
	}
	prop := otel.GetTextMapPropagator()
	tracer := otel.Tracer("kafka-consumer")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		carrier := propagation.MapCarrier{}
		for _, h := range m.Headers {
			carrier[h.Key] = string(h.Value)
		}
		msgCtx := prop.Extract(ctx, carrier)
		if v, ok := carrier["trace_id"]; ok && v != "" {
			msgCtx = context.WithValue(msgCtx, logging.TraceIDKey, v)
		}

		attrs := []attribute.KeyValue{
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationName(m.Topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.Int("messaging.kafka.partition", m.Partition),
			attribute.Int64("messaging.kafka.offset", m.Offset),
			attribute.Int("messaging.message.size", len(m.Value)),
		}
		msgCtx, span := tracer.Start(msgCtx, "kafka.consume", trace.WithSpanKind(trace.SpanKindConsumer), trace.WithAttributes(attrs...))

		if err := c.handle(msgCtx, handler, m); err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			c.logger.WithContext(msgCtx).Error("kafka_handler_error",
				zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		}
		span.End()
	}
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, m kafkaGo.Message) error {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		err := handler(ctx, m)
		if err == nil || attempt >= c.retries {
			return err
		}
		c.logger.WithContext(ctx).Warn("kafka_handler_retry",
			zap.Int64("offset", m.Offset), zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
