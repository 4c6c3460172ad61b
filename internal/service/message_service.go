package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"notebridge/internal/event"
	"notebridge/internal/model"
	"notebridge/pkg/apierror"
)

const recentMessageLimit = 50

type MessageStore interface {
	Create(ctx context.Context, m model.Message) (model.Message, error)
	ListByChat(ctx context.Context, chatID int64, page, size int) ([]model.Message, error)
	ListRecent(ctx context.Context, chatID int64, limit int) ([]model.Message, error)
	CountByChat(ctx context.Context, chatID int64) (int64, error)
	CountUnread(ctx context.Context, chatID, userID int64) (int64, error)
	CountUnreadForUser(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, chatID, userID int64) (int, error)
}

type MessageService struct {
	messages MessageStore
	chats    ChatStore
	users    UserStore
	bus      event.Bus
}

func NewMessageService(messages MessageStore, chats ChatStore, users UserStore, bus event.Bus) *MessageService {
	return &MessageService{messages: messages, chats: chats, users: users, bus: bus}
}

func (s *MessageService) Send(ctx context.Context, senderID, chatID int64, content string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, apierror.New("BAD_REQUEST", "message content is required", "", http.StatusBadRequest)
	}

	chat, err := s.participantChat(ctx, chatID, senderID)
	if err != nil {
		return model.Message{}, err
	}

	now := time.Now().UTC()
	message := model.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
		SentAt:   now,
	}

	created, err := s.messages.Create(ctx, message)
	if err != nil {
		return model.Message{}, err
	}

	if err := s.chats.TouchLastMessage(ctx, chat.ID, now); err != nil {
		return model.Message{}, err
	}

	if sender, err := s.users.FindByID(ctx, senderID); err == nil {
		created.Sender = &sender
	}

	s.publish(event.TypeMessageSent, created, senderID)
	return created, nil
}

func (s *MessageService) ChatMessages(ctx context.Context, chatID, userID int64, page, size int) ([]model.Message, int64, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, 0, err
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	messages, err := s.messages.ListByChat(ctx, chatID, page, size)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.messages.CountByChat(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	return s.attachSenders(ctx, messages), total, nil
}

func (s *MessageService) RecentChatMessages(ctx context.Context, chatID, userID int64) ([]model.Message, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListRecent(ctx, chatID, recentMessageLimit)
	if err != nil {
		return nil, err
	}
	return s.attachSenders(ctx, messages), nil
}

// MarkRead marks the other participant's messages in the chat as read and
// reports how many were affected.
func (s *MessageService) MarkRead(ctx context.Context, chatID, userID int64) (int, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return 0, err
	}

	marked, err := s.messages.MarkRead(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}

	if marked > 0 {
		s.publish(event.TypeMessagesRead, map[string]int64{"chatId": chatID, "userId": userID}, userID)
	}
	return marked, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, chatID, userID int64) (int64, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return 0, err
	}
	return s.messages.CountUnread(ctx, chatID, userID)
}

func (s *MessageService) TotalUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountUnreadForUser(ctx, userID)
}

func (s *MessageService) participantChat(ctx context.Context, chatID, userID int64) (model.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return model.Chat{}, err
	}
	if !chat.IsParticipant(userID) {
		return model.Chat{}, apierror.New("FORBIDDEN", "user is not a participant of this chat", "", http.StatusForbidden)
	}
	return chat, nil
}

func (s *MessageService) attachSenders(ctx context.Context, messages []model.Message) []model.Message {
	cache := map[int64]*model.User{}
	for i := range messages {
		if cached, ok := cache[messages[i].SenderID]; ok {
			messages[i].Sender = cached
			continue
		}
		sender, err := s.users.FindByID(ctx, messages[i].SenderID)
		if err != nil {
			continue
		}
		cache[messages[i].SenderID] = &sender
		messages[i].Sender = &sender
	}
	return messages
}

func (s *MessageService) publish(t event.Type, payload interface{}, actorID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ActorID:   actorID,
	})
}
