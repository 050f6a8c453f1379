// Package oplog turns operation-log records from Kafka into audit log rows.
package oplog

import (
	"context"
	"encoding/json"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Entry is the record the OperationLog middleware publishes.
type Entry struct {
	ActionName string   `json:"action_name"`
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Status     int      `json:"status"`
	LatencyMs  int64    `json:"latency_ms"`
	IP         string   `json:"ip"`
	UserID     int64    `json:"user_id"`
	Time       string   `json:"time"`
	Body       string   `json:"body"`
	Query      string   `json:"query,omitempty"`
	TraceID    string   `json:"trace_id,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e *model.AuditEntry) error
}

type Handler struct {
	Store  Recorder
	Logger *logging.Logger
}

func NewHandler(store Recorder, l *logging.Logger) *Handler {
	if l == nil {
		l = logging.Nop()
	}
	return &Handler{Store: store, Logger: l}
}

// Handle decodes one message. Malformed and access-log records are skipped
// without error so the consumer keeps committing.
func (h *Handler) Handle(ctx context.Context, m kafkaGo.Message) error {
	var e Entry
	if err := json.Unmarshal(m.Value, &e); err != nil {
		h.Logger.WithContext(ctx).Warn("oplog_unmarshal_failed", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if e.ActionName == "" {
		return nil
	}
	if e.TraceID == "" {
		for _, hd := range m.Headers {
			if hd.Key == "trace_id" {
				e.TraceID = string(hd.Value)
			}
		}
	}
	rec := ToAuditEntry(e)
	return h.Store.Record(ctx, &rec)
}

func ToAuditEntry(e Entry) model.AuditEntry {
	ts := time.Now().Unix()
	if t, err := time.Parse(time.RFC3339, e.Time); err == nil {
		ts = t.Unix()
	}
	return model.AuditEntry{
		ActionName: truncate(e.ActionName, 120),
		UserID:     e.UserID,
		AddTime:    ts,
		Data:       truncate(e.Body, 2000),
		URL:        truncate(e.Path, 200),
		Method:     e.Method,
		Status:     e.Status,
		LatencyMs:  e.LatencyMs,
		IP:         e.IP,
		TraceID:    e.TraceID,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
