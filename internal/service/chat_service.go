package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"notebridge/internal/event"
	"notebridge/internal/model"
	"notebridge/pkg/apierror"
)

type ChatStore interface {
	FindByID(ctx context.Context, id int64) (model.Chat, error)
	FindByPair(ctx context.Context, teacherID, studentID int64) (model.Chat, error)
	Create(ctx context.Context, c model.Chat) (model.Chat, error)
	UpdateSubject(ctx context.Context, id int64, subject string) error
	TouchLastMessage(ctx context.Context, id int64, at time.Time) error
	ListForUser(ctx context.Context, userID int64) ([]model.Chat, error)
}

type ChatService struct {
	chats ChatStore
	users UserStore
	bus   event.Bus
}

func NewChatService(chats ChatStore, users UserStore, bus event.Bus) *ChatService {
	return &ChatService{chats: chats, users: users, bus: bus}
}

// CreateOrGet returns the chat between the teacher and the student, creating
// it when the pair has never talked. The returned bool is true for a fresh
// chat.
func (s *ChatService) CreateOrGet(ctx context.Context, teacherID, studentID int64, subject string) (model.Chat, bool, error) {
	teacher, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		return model.Chat{}, false, apierror.New("NOT_FOUND", "teacher not found", "", http.StatusNotFound)
	}
	if !teacher.Role.Is(model.RoleTeacher) {
		return model.Chat{}, false, apierror.New("BAD_REQUEST", "user is not a teacher", "", http.StatusBadRequest)
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return model.Chat{}, false, apierror.New("NOT_FOUND", "student not found", "", http.StatusNotFound)
	}
	if !student.Role.Is(model.RoleStudent) {
		return model.Chat{}, false, apierror.New("BAD_REQUEST", "user is not a student", "", http.StatusBadRequest)
	}

	existing, err := s.chats.FindByPair(ctx, teacherID, studentID)
	if err == nil {
		existing.Teacher = &teacher
		existing.Student = &student
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrChatNotFound) {
		return model.Chat{}, false, err
	}

	chat := model.Chat{
		TeacherID: teacherID,
		StudentID: studentID,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.chats.Create(ctx, chat)
	if err != nil {
		return model.Chat{}, false, err
	}
	created.Teacher = &teacher
	created.Student = &student

	s.publish(event.TypeChatCreated, created, 0)
	return created, true, nil
}

func (s *ChatService) ListForUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range chats {
		s.attachParticipants(ctx, &chats[i])
	}
	return chats, nil
}

// GetByID returns the chat only to its participants.
func (s *ChatService) GetByID(ctx context.Context, chatID, userID int64) (model.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return model.Chat{}, err
	}
	if !chat.IsParticipant(userID) {
		return model.Chat{}, apierror.New("FORBIDDEN", "user is not a participant of this chat", "", http.StatusForbidden)
	}
	s.attachParticipants(ctx, &chat)
	return chat, nil
}

func (s *ChatService) UpdateSubject(ctx context.Context, chatID, userID int64, subject string) (model.Chat, error) {
	chat, err := s.GetByID(ctx, chatID, userID)
	if err != nil {
		return model.Chat{}, err
	}

	if err := s.chats.UpdateSubject(ctx, chatID, subject); err != nil {
		return model.Chat{}, err
	}
	chat.Subject = subject
	return chat, nil
}

func (s *ChatService) attachParticipants(ctx context.Context, chat *model.Chat) {
	if teacher, err := s.users.FindByID(ctx, chat.TeacherID); err == nil {
		chat.Teacher = &teacher
	}
	if student, err := s.users.FindByID(ctx, chat.StudentID); err == nil {
		chat.Student = &student
	}
}

func (s *ChatService) publish(t event.Type, payload interface{}, actorID int64) {
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
