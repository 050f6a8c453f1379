package adminclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/realtime"

	"github.com/gorilla/websocket"
)

// EmptyPreview is the preview of a conversation without messages.
const EmptyPreview = "Нет сообщений"

const previewLen = 80

// Inbox is the support two-pane view: conversations with their messages and
// the local selection. Push events are merged with Ingest.
type Inbox struct {
	Client *Client
	// Dialer opens the push channel; with a nil Dialer Subscribe does nothing.
	Dialer *websocket.Dialer
	// OnIngest, when set, is called outside the lock for every event Ingest kept.
	OnIngest func(realtime.SupportMessage)

	mu       sync.Mutex
	threads  *OrderedSet[int64, *thread]
	selected int64
	notice   Notice
}

type thread struct {
	conv model.SupportConversation
	msgs *OrderedSet[int64, model.SupportMessage]
}

func newThread(conv model.SupportConversation) *thread {
	t := &thread{msgs: NewOrderedSet(func(m model.SupportMessage) int64 { return m.ID })}
	t.merge(conv)
	return t
}

// merge takes the conversation fields from conv and adds any messages not
// seen yet, keeping local arrival order.
func (t *thread) merge(conv model.SupportConversation) {
	for _, m := range conv.Messages {
		t.msgs.Insert(m)
	}
	conv.Messages = nil
	t.conv = conv
}

func (t *thread) snapshot() model.SupportConversation {
	c := t.conv
	c.Messages = t.msgs.Values()
	return c
}

func NewInbox(c *Client, initial []model.SupportConversation) *Inbox {
	b := &Inbox{Client: c, threads: NewOrderedSet(func(t *thread) int64 { return t.conv.ID })}
	for _, conv := range initial {
		b.threads.Insert(newThread(conv))
	}
	return b
}

// Load refetches the conversation list and replaces the local one.
func (b *Inbox) Load(ctx context.Context) error {
	res, err := Get[ListResponse[model.SupportConversation]](ctx, b.Client, "support/conversations")
	if err != nil {
		return err
	}
	threads := NewOrderedSet(func(t *thread) int64 { return t.conv.ID })
	for _, conv := range res.Items {
		threads.Insert(newThread(conv))
	}
	b.mu.Lock()
	b.threads = threads
	b.mu.Unlock()
	return nil
}

func (b *Inbox) Conversations() []model.SupportConversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.SupportConversation, 0, b.threads.Len())
	for _, t := range b.threads.Values() {
		out = append(out, t.snapshot())
	}
	return out
}

func (b *Inbox) Conversation(id int64) (model.SupportConversation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.find(id)
	if t == nil {
		return model.SupportConversation{}, false
	}
	return t.snapshot(), true
}

// Select changes the open conversation. It is purely local.
func (b *Inbox) Select(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.find(id) == nil {
		return false
	}
	b.selected = id
	return true
}

func (b *Inbox) Selected() (model.SupportConversation, bool) {
	b.mu.Lock()
	id := b.selected
	b.mu.Unlock()
	if id == 0 {
		return model.SupportConversation{}, false
	}
	return b.Conversation(id)
}

// Preview is the first line of the latest message, or EmptyPreview.
func (b *Inbox) Preview(id int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.find(id)
	if t == nil {
		return EmptyPreview
	}
	last, ok := t.msgs.Last()
	if !ok {
		return EmptyPreview
	}
	text := strings.TrimSpace(last.Body)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if utf8.RuneCountInString(text) > previewLen {
		text = string([]rune(text)[:previewLen]) + "…"
	}
	if text == "" {
		return EmptyPreview
	}
	return text
}

// Reply posts an admin message to the selected conversation and appends the
// created message locally.
func (b *Inbox) Reply(ctx context.Context, body string) (model.SupportMessage, error) {
	b.mu.Lock()
	id := b.selected
	b.mu.Unlock()
	if id == 0 {
		return model.SupportMessage{}, ErrUnknownRow
	}
	res, err := Post[ItemResponse[model.SupportMessage]](ctx, b.Client,
		"support/conversations/"+strconv.FormatInt(id, 10)+"/messages", map[string]string{"body": body})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failure(err)
		return model.SupportMessage{}, err
	}
	if t := b.find(id); t != nil {
		// The push event for this message may already have landed.
		t.msgs.Insert(res.Item)
		sent := res.Item.SentAt
		t.conv.LastMessageAt = &sent
	}
	b.notice = success(textSent)
	return res.Item, nil
}

// SetStatus accepts any of the four statuses regardless of the current one.
func (b *Inbox) SetStatus(ctx context.Context, id int64, status string) error {
	return b.patch(ctx, id, map[string]any{"status": status})
}

// Assign sets the responsible admin; nil clears it.
func (b *Inbox) Assign(ctx context.Context, id int64, adminID *int64) error {
	return b.patch(ctx, id, map[string]any{"assigned_to": adminID})
}

func (b *Inbox) patch(ctx context.Context, id int64, body map[string]any) error {
	res, err := Patch[ItemResponse[model.SupportConversation]](ctx, b.Client,
		"support/conversations/"+strconv.FormatInt(id, 10), body)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = failure(err)
		return err
	}
	if t := b.find(id); t != nil {
		t.merge(res.Item)
	}
	b.notice = success(textSaved)
	return nil
}

// Ingest merges one push event. Events for unknown conversations and
// messages already present are dropped; it reports whether anything changed.
func (b *Inbox) Ingest(ev realtime.SupportMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.find(ev.Conversation.ID)
	if t == nil {
		return false
	}
	msg := model.SupportMessage{
		ID:             ev.Message.ID,
		ConversationID: ev.Conversation.ID,
		Body:           ev.Message.Body,
		SenderType:     ev.Message.SenderType,
		Source:         ev.Message.Source,
	}
	if ev.Message.SentAt != nil {
		msg.SentAt = *ev.Message.SentAt
	}
	if !t.msgs.Insert(msg) {
		return false
	}
	if ev.Conversation.Status != nil {
		t.conv.Status = *ev.Conversation.Status
	}
	if ev.Conversation.LastMessageAt != nil {
		at := *ev.Conversation.LastMessageAt
		t.conv.LastMessageAt = &at
	}
	return true
}

func (b *Inbox) Notice() Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

// Subscribe opens the push channel and feeds support events into Ingest
// until the returned close func is called. Without a Dialer it is a no-op.
func (b *Inbox) Subscribe(ctx context.Context) (func(), error) {
	if b.Dialer == nil {
		return func() {}, nil
	}
	header := http.Header{}
	if b.Client.Token != "" {
		header.Set("Authorization", "Bearer "+b.Client.Token)
	}
	conn, _, err := b.Dialer.DialContext(ctx, wsURL(b.Client.BaseURL)+AdminPrefix+"realtime", header)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b.handleFrame(data)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = conn.Close()
			<-done
		})
	}, nil
}

func (b *Inbox) handleFrame(data []byte) {
	var f realtime.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return
	}
	if f.Channel != realtime.SupportChannel || f.Event != realtime.SupportMessageEvent {
		return
	}
	var ev realtime.SupportMessage
	if err := json.Unmarshal(f.Data, &ev); err != nil {
		return
	}
	if b.Ingest(ev) && b.OnIngest != nil {
		b.OnIngest(ev)
	}
}

func (b *Inbox) find(id int64) *thread {
	t, _ := b.threads.Get(id)
	return t
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
