package observability

import (
	"encoding/json"
	"time"

	"go-studioadmin/internal/mq/kafka"

	"github.com/gin-gonic/gin"
)

// AccessEntry is the http_access record shipped to Kafka.
type AccessEntry struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	IP        string `json:"ip"`
	TS        int64  `json:"ts"`
	UA        string `json:"ua"`
	TraceID   string `json:"trace_id,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
}

func accessEntry(c *gin.Context, start time.Time) AccessEntry {
	return AccessEntry{
		Type:      "http_access",
		Path:      routePath(c),
		Method:    c.Request.Method,
		Status:    c.Writer.Status(),
		LatencyMs: time.Since(start).Milliseconds(),
		IP:        c.ClientIP(),
		TS:        time.Now().Unix(),
		UA:        truncateString(c.Request.UserAgent(), 200),
		TraceID:   c.GetString(TraceIDKey),
		UserID:    c.GetInt64("user_id"),
	}
}

func traceHeaders(traceID string) map[string]string {
	if traceID == "" {
		return nil
	}
	return map[string]string{"trace_id": traceID}
}

// AccessLogKafka sends the access record synchronously.
func AccessLogKafka(p *kafka.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if p == nil {
			return
		}
		e := accessEntry(c, start)
		_ = p.SendJSON(c.Request.Context(), nil, e, traceHeaders(e.TraceID))
	}
}

// AccessLogKafkaAsync queues the access record on the batching sender (kafka.access_async).
func AccessLogKafkaAsync(sender *kafka.AccessAsyncSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if sender == nil {
			return
		}
		e := accessEntry(c, start)
		b, _ := json.Marshal(e)
		sender.Enqueue(kafka.AsyncMessage{Ctx: c.Request.Context(), Value: b, Headers: traceHeaders(e.TraceID), EnqueueAt: time.Now()})
	}
}
