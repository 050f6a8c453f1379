package debug

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config *config.Config
	Logger *logging.Logger
}

type Handler struct{ d Dependencies }

func New(d Dependencies) *Handler { return &Handler{d: d} }

// PeekOpLog reads one record from the op-log topic (access or operation log)
// to debug the trace pipeline. A throwaway reader is created per request.
// ?wait_ms= bounds the read, default 2000.
func (h *Handler) PeekOpLog(c *gin.Context) {
	waitMS, err := strconv.Atoi(c.DefaultQuery("wait_ms", "2000"))
	if err != nil || waitMS <= 0 {
		response.Error(c, retcode.PARAM_INVALID, "invalid wait_ms")
		return
	}
	cfg := h.d.Config
	if cfg == nil || len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.OpLogTopic == "" {
		response.Error(c, retcode.INVALID, "kafka not configured")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(waitMS)*time.Millisecond)
	defer cancel()
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.OpLogTopic,
		GroupID:  "studio-debug-peek",
		MinBytes: 1 << 10,
		MaxBytes: 1 << 20,
		MaxWait:  200 * time.Millisecond,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	if err != nil {
		h.d.Logger.WithContext(c.Request.Context()).Debug("debug_peek_timeout", zap.Error(err))
		response.Error(c, retcode.NOT_EXISTS, "no record within wait_ms")
		return
	}
	headers := make(map[string]string, len(msg.Headers))
	for _, hkv := range msg.Headers {
		headers[hkv.Key] = string(hkv.Value)
	}
	carrier := propagation.MapCarrier{}
	for k, v := range headers {
		carrier[k] = v
	}
	extractedCtx := otel.GetTextMapPropagator().Extract(ctx, carrier)
	sc := trace.SpanContextFromContext(extractedCtx)
	traceID := ""
	spanID := ""
	if sc.IsValid() {
		traceID = sc.TraceID().String()
		spanID = sc.SpanID().String()
	}
	var body map[string]interface{}
	_ = json.Unmarshal(msg.Value, &body)
	response.Item(c, gin.H{
		"topic":     cfg.Kafka.OpLogTopic,
		"trace_id":  traceID,
		"span_id":   spanID,
		"headers":   headers,
		"body":      body,
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"key":       string(msg.Key),
	})
}
