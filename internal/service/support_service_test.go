package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.SupportMessage
	err    error
}

func (p *recordingPublisher) PublishSupportMessage(_ context.Context, ev realtime.SupportMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func TestSupportService_InboundOpensConversation(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	pub := &recordingPublisher{}
	svc := NewSupportService(r, pub)

	msg, err := svc.Inbound(ctx, InboundMessage{UserName: "Ира", Body: "Можно перенести занятие?\nСпасибо"})
	require.NoError(t, err)
	assert.Equal(t, model.SenderUser, msg.SenderType)
	require.NotNil(t, msg.Source)
	assert.Equal(t, "site", *msg.Source)

	conv, err := r.Conversations.Get(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Можно перенести занятие?", conv.Subject)
	assert.Equal(t, model.SupportOpen, conv.Status)
	require.NotNil(t, conv.LastMessageAt)
	assert.True(t, conv.LastMessageAt.Equal(testNow))
	require.Len(t, conv.Messages, 1)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, conv.ID, ev.Conversation.ID)
	assert.Equal(t, msg.ID, ev.Message.ID)
	assert.Equal(t, "Можно перенести занятие?\nСпасибо", ev.Message.Body)
}

func TestSupportService_ReplyAndStatusUntouched(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	pub := &recordingPublisher{}
	svc := NewSupportService(r, pub)

	conv, err := r.Conversations.Create(ctx, &model.SupportConversation{Subject: "Оплата", Status: model.SupportResolved})
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)

	_, err = svc.Inbound(ctx, InboundMessage{ConversationID: conv.ID, Body: "Ещё вопрос"})
	require.NoError(t, err)
	reply, err := svc.Reply(ctx, conv.ID, "  Ответили  ", 1)
	require.NoError(t, err)
	assert.Equal(t, "Ответили", reply.Body)
	assert.Equal(t, model.SenderAdmin, reply.SenderType)
	require.NotNil(t, reply.SenderID)
	assert.Equal(t, int64(1), *reply.SenderID)

	msgs, err := svc.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ещё вопрос", msgs[0].Body)
	assert.Equal(t, "Ответили", msgs[1].Body)

	got, err := r.Conversations.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SupportResolved, got.Status)
	require.Len(t, pub.events, 2)
	assert.Equal(t, model.SupportResolved, *pub.events[1].Conversation.Status)
}

func TestSupportService_Errors(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	svc := NewSupportService(r, &recordingPublisher{err: errors.New("redis down")})

	_, err := svc.Reply(ctx, 404, "hello", 1)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	_, err = svc.Inbound(ctx, InboundMessage{Body: "   "})
	assert.ErrorIs(t, err, resource.ErrInvalid)
	_, err = svc.ListMessages(ctx, 404)
	assert.ErrorIs(t, err, resource.ErrNotFound)

	msg, err := svc.Inbound(ctx, InboundMessage{Subject: "Привет", Body: "Текст"})
	require.NoError(t, err, "a failed push does not fail the write")
	assert.NotZero(t, msg.ID)
}

func TestConversations_AnyStatusTransition(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	conv, err := r.Conversations.Create(ctx, &model.SupportConversation{Subject: "Расписание"})
	require.NoError(t, err)

	for _, st := range []string{model.SupportClosed, model.SupportOpen, model.SupportResolved, model.SupportInProgress} {
		got, err := r.Conversations.Update(ctx, conv.ID, []byte(`{"status":"`+st+`"}`))
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}
	_, err = r.Conversations.Update(ctx, conv.ID, []byte(`{"status":"archived"}`))
	assert.Error(t, err)

	require.NoError(t, r.Conversations.Delete(ctx, conv.ID))
}
