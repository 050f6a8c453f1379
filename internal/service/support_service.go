package service

import (
	"context"
	"strings"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/realtime"

	"go.uber.org/zap"
)

// SupportPublisher pushes new support messages to connected admins.
type SupportPublisher interface {
	PublishSupportMessage(ctx context.Context, ev realtime.SupportMessage) error
}

type SupportService struct {
	Conversations *resource.Service[model.SupportConversation, *model.SupportConversation]
	Messages      *resource.DAO[model.SupportMessage]
	Publisher     SupportPublisher
	now           func() time.Time
}

func NewSupportService(r *Resources, pub SupportPublisher) *SupportService {
	return &SupportService{
		Conversations: r.Conversations,
		Messages:      resource.NewDAO[model.SupportMessage](r.DB, "id ASC", nil),
		Publisher:     pub,
		now:           r.opts.now,
	}
}

func (s *SupportService) ListMessages(ctx context.Context, conversationID int64) ([]model.SupportMessage, error) {
	conv, err := s.Conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// Reply stores an admin answer in the conversation and announces it.
func (s *SupportService) Reply(ctx context.Context, conversationID int64, body string, adminID int64) (*model.SupportMessage, error) {
	var sender *int64
	if adminID > 0 {
		sender = &adminID
	}
	return s.post(ctx, conversationID, model.SupportMessage{
		Body:       body,
		SenderType: model.SenderAdmin,
		SenderID:   sender,
	})
}

// InboundMessage is a user message arriving from an outside channel
// (site widget, Telegram bridge).
type InboundMessage struct {
	ConversationID int64  `json:"conversation_id"`
	UserID         *int64 `json:"user_id"`
	UserName       string `json:"user_name"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	Source         string `json:"source"`
}

// Inbound appends a user message, opening a new conversation when none is
// referenced. The status of an existing conversation is left as it is.
func (s *SupportService) Inbound(ctx context.Context, in InboundMessage) (*model.SupportMessage, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, resource.Invalidf("body is required")
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = "site"
	}
	convID := in.ConversationID
	if convID == 0 {
		subject := strings.TrimSpace(in.Subject)
		if subject == "" {
			subject = firstLine(in.Body)
		}
		conv, err := s.Conversations.Create(ctx, &model.SupportConversation{
			UserID:   in.UserID,
			UserName: in.UserName,
			Subject:  subject,
			Status:   model.SupportOpen,
			Source:   source,
		})
		if err != nil {
			return nil, err
		}
		convID = conv.ID
	}
	return s.post(ctx, convID, model.SupportMessage{
		Body:       in.Body,
		SenderType: model.SenderUser,
		SenderID:   in.UserID,
		Source:     &source,
	})
}

func (s *SupportService) post(ctx context.Context, conversationID int64, msg model.SupportMessage) (*model.SupportMessage, error) {
	msg.Body = strings.TrimSpace(msg.Body)
	if msg.Body == "" {
		return nil, resource.Invalidf("body is required")
	}
	conv, err := s.Conversations.DAO.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, resource.ErrNotFound
	}
	msg.ID = 0
	msg.ConversationID = conversationID
	msg.SentAt = s.now().UTC()
	if err := s.Messages.Create(ctx, &msg); err != nil {
		return nil, err
	}
	sentAt := msg.SentAt
	err = s.Conversations.DAO.DB.WithContext(ctx).Model(&model.SupportConversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", sentAt).Error
	if err != nil {
		return nil, err
	}
	s.Conversations.Invalidate(ctx)
	s.announce(ctx, conv, &msg)
	return &msg, nil
}

func (s *SupportService) announce(ctx context.Context, conv *model.SupportConversation, msg *model.SupportMessage) {
	if s.Publisher == nil {
		return
	}
	status := conv.Status
	sentAt := msg.SentAt
	ev := realtime.SupportMessage{
		Conversation: realtime.ConversationRef{ID: conv.ID, Status: &status, LastMessageAt: &sentAt},
		Message: realtime.MessagePayload{
			ID:         msg.ID,
			Body:       msg.Body,
			SenderType: msg.SenderType,
			Source:     msg.Source,
			SentAt:     &sentAt,
		},
	}
	if err := s.Publisher.PublishSupportMessage(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("support_publish_failed",
			zap.Int64("conversation_id", conv.ID), zap.Int64("message_id", msg.ID), zap.Error(err))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > 80 {
		r = r[:80]
	}
	return string(r)
}
