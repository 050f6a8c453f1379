package kafka

import (
	"context"
	"sync"
	"time"

	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/metrics"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AsyncMessage is one queued access-log record.
type AsyncMessage struct {
	Ctx       context.Context
	Key       []byte
	Value     []byte
	Headers   map[string]string
	EnqueueAt time.Time
}

// AccessAsyncSender batches access-log records from a bounded queue.
// A batch is flushed at maxBatch messages or after maxWait. When the queue
// is full new records are dropped. A failed batch is retried message by message.
type AccessAsyncSender struct {
	producer *Producer
	logger   *logging.Logger
	queue    chan AsyncMessage
	workers  int
	wg       sync.WaitGroup
	stopCh   chan struct{}
	once     sync.Once

	maxBatch int
	maxWait  time.Duration
}

func NewAccessAsyncSender(p *Producer, l *logging.Logger, queueSize, workers, maxBatch int, maxWait time.Duration) *AccessAsyncSender {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if maxWait <= 0 {
		maxWait = 20 * time.Millisecond
	}
	if l == nil {
		l = logging.Nop()
	}
	return &AccessAsyncSender{
		producer: p,
		logger:   l,
		queue:    make(chan AsyncMessage, queueSize),
		workers:  workers,
		stopCh:   make(chan struct{}),
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
}

func (s *AccessAsyncSender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run()
	}
}

func (s *AccessAsyncSender) run() {
	defer s.wg.Done()
	batch := make([]AsyncMessage, 0, s.maxBatch)
	timer := time.NewTimer(s.maxWait)
	timer.Stop()
	var timerCh <-chan time.Time

	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		s.flush(batch, reason)
		batch = batch[:0]
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerCh = nil
	}

	for {
		select {
		case <-s.stopCh:
			// drain what is already queued
			for {
				select {
				case msg := <-s.queue:
					metrics.HTTPAccessKafkaQueueDepth.Dec()
					batch = append(batch, msg)
					if len(batch) >= s.maxBatch {
						flush("shutdown")
					}
				default:
					flush("shutdown")
					return
				}
			}
		case msg := <-s.queue:
			metrics.HTTPAccessKafkaQueueDepth.Dec()
			batch = append(batch, msg)
			if len(batch) == 1 {
				timer.Reset(s.maxWait)
				timerCh = timer.C
			}
			if len(batch) >= s.maxBatch {
				flush("size")
			}
		case <-timerCh:
			timerCh = nil
			flush("timeout")
		}
	}
}

func (s *AccessAsyncSender) flush(batch []AsyncMessage, reason string) {
	start := time.Now()
	msgs := make([]kafkaGo.Message, 0, len(batch))
	spans := make([]trace.Span, 0, len(batch))
	for _, m := range batch {
		if !m.EnqueueAt.IsZero() {
			metrics.HTTPAccessKafkaQueueDelay.Observe(start.Sub(m.EnqueueAt).Seconds())
		}
		ctx := m.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		ctxSpan, span := s.producer.startSpan(ctx)
		hs := make([]kafkaGo.Header, 0, len(m.Headers))
		for k, v := range m.Headers {
			hs = append(hs, kafkaGo.Header{Key: k, Value: []byte(v)})
		}
		hs = s.producer.injectHeaders(ctxSpan, hs)
		msgs = append(msgs, kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs})
		spans = append(spans, span)
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := s.producer.Writer.WriteMessages(writeCtx, msgs...)
	cancel()
	for _, sp := range spans {
		if err != nil {
			sp.SetStatus(codes.Error, err.Error())
			sp.RecordError(err)
		}
		sp.End()
	}
	if err != nil {
		metrics.HTTPAccessKafkaErrors.Add(float64(len(batch)))
		s.logger.Warn("access_log_batch_failed", zap.Int("size", len(batch)), zap.Error(err))
		for _, m := range batch {
			// request contexts are gone by now
			_ = s.producer.SendWithHeaders(context.Background(), m.Key, m.Value, m.Headers)
		}
	}
	elapsed := time.Since(start)
	metrics.HTTPAccessKafkaBatchFlushTotal.WithLabelValues(reason).Inc()
	metrics.HTTPAccessKafkaBatchSize.Observe(float64(len(batch)))
	metrics.HTTPAccessKafkaFlushDuration.WithLabelValues(reason).Observe(elapsed.Seconds())
}

// Enqueue never blocks; a full queue drops the record.
func (s *AccessAsyncSender) Enqueue(m AsyncMessage) bool {
	select {
	case <-s.stopCh:
		metrics.HTTPAccessKafkaEnqueue.WithLabelValues("closed").Inc()
		return false
	default:
	}
	select {
	case s.queue <- m:
		metrics.HTTPAccessKafkaEnqueue.WithLabelValues("ok").Inc()
		metrics.HTTPAccessKafkaQueueDepth.Inc()
		return true
	default:
		metrics.HTTPAccessKafkaEnqueue.WithLabelValues("dropped").Inc()
		return false
	}
}

// Close stops the workers after they flushed what was queued.
func (s *AccessAsyncSender) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.stopCh) })
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
