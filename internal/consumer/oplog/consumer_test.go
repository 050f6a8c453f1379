package oplog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go-studioadmin/internal/domain/model"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	entries []model.AuditEntry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e *model.AuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

func message(t *testing.T, e Entry, headers ...kafkaGo.Header) kafkaGo.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafkaGo.Message{Value: b, Headers: headers}
}

func TestHandler_RecordsOperation(t *testing.T) {
	rec := &memRecorder{}
	h := NewHandler(rec, nil)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	err := h.Handle(context.Background(), message(t, Entry{
		ActionName: "patch_api_v1_admin_groups_id",
		Path:       "/api/v1/admin/groups/3",
		Method:     "PATCH",
		Status:     200,
		UserID:     1,
		Time:       at.Format(time.RFC3339),
		Body:       `{"is_active":false}`,
	}, kafkaGo.Header{Key: "trace_id", Value: []byte("abc123")}))
	require.NoError(t, err)

	require.Len(t, rec.entries, 1)
	got := rec.entries[0]
	assert.Equal(t, "patch_api_v1_admin_groups_id", got.ActionName)
	assert.Equal(t, at.Unix(), got.AddTime)
	assert.Equal(t, "/api/v1/admin/groups/3", got.URL)
	assert.Equal(t, "abc123", got.TraceID)
	assert.Equal(t, int64(1), got.UserID)
}

func TestHandler_SkipsAccessLogsAndGarbage(t *testing.T) {
	rec := &memRecorder{}
	h := NewHandler(rec, nil)

	require.NoError(t, h.Handle(context.Background(), kafkaGo.Message{Value: []byte("{broken")}))
	require.NoError(t, h.Handle(context.Background(), message(t, Entry{Path: "/healthz", Status: 200})))
	assert.Empty(t, rec.entries)
}

func TestHandler_StoreErrorIsReturned(t *testing.T) {
	h := NewHandler(&memRecorder{err: errors.New("db down")}, nil)
	err := h.Handle(context.Background(), message(t, Entry{ActionName: "post_api_v1_admin_groups"}))
	assert.EqualError(t, err, "db down")
}

func TestToAuditEntry_Truncates(t *testing.T) {
	e := ToAuditEntry(Entry{
		ActionName: strings.Repeat("a", 300),
		Body:       strings.Repeat("b", 5000),
		Path:       strings.Repeat("c", 500),
		Time:       "not a time",
	})
	assert.Len(t, e.ActionName, 120)
	assert.Len(t, e.Data, 2000)
	assert.Len(t, e.URL, 200)
	assert.InDelta(t, time.Now().Unix(), e.AddTime, 5)
}
