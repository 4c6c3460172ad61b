package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"notebridge/internal/model"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]model.User)}
}

func (s *fakeUserStore) add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	return s.add(u), nil
}

func (s *fakeUserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return model.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

type storedToken struct {
	userID    int64
	expiresAt time.Time
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]storedToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]storedToken)}
}

func (s *fakeTokenStore) Store(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *fakeTokenStore) Validate(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[token]
	if !ok || time.Now().After(stored.expiresAt) {
		return 0, model.ErrTokenNotFound
	}
	return stored.userID, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, stored := range s.tokens {
		if stored.userID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *fakeTokenStore) CleanExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for token, stored := range s.tokens {
		if time.Now().After(stored.expiresAt) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed, nil
}

func (s *fakeTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type fakeLessonStore struct {
	mu      sync.Mutex
	nextID  int64
	lessons map[int64]model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: make(map[int64]model.Lesson)}
}

func (s *fakeLessonStore) FindByID(_ context.Context, id int64) (model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return model.Lesson{}, model.ErrLessonNotFound
	}
	return l, nil
}

func (s *fakeLessonStore) Create(_ context.Context, l model.Lesson) (model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	s.lessons[l.ID] = l
	return l, nil
}

func (s *fakeLessonStore) Update(_ context.Context, l model.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[l.ID]; !ok {
		return model.ErrLessonNotFound
	}
	s.lessons[l.ID] = l
	return nil
}

func (s *fakeLessonStore) SetCancelled(_ context.Context, id int64, cancelled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	if !ok {
		return model.ErrLessonNotFound
	}
	l.IsCancelled = cancelled
	s.lessons[id] = l
	return nil
}

func (s *fakeLessonStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[id]; !ok {
		return model.ErrLessonNotFound
	}
	delete(s.lessons, id)
	return nil
}

func (s *fakeLessonStore) ListActive(_ context.Context) ([]model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		if !l.IsCancelled {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeLessonStore) ListAll(_ context.Context) ([]model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, l)
	}
	return out, nil
}

func (s *fakeLessonStore) ListByTeacher(_ context.Context, teacherID int64) ([]model.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lesson, 0)
	for _, l := range s.lessons {
		if l.TeacherID == teacherID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeChatStore struct {
	mu     sync.Mutex
	nextID int64
	chats  map[int64]model.Chat
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[int64]model.Chat)}
}

func (s *fakeChatStore) FindByID(_ context.Context, id int64) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return model.Chat{}, model.ErrChatNotFound
	}
	return c, nil
}

func (s *fakeChatStore) FindByPair(_ context.Context, teacherID, studentID int64) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chats {
		if c.TeacherID == teacherID && c.StudentID == studentID {
			return c, nil
		}
	}
	return model.Chat{}, model.ErrChatNotFound
}

func (s *fakeChatStore) Create(_ context.Context, c model.Chat) (model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.chats[c.ID] = c
	return c, nil
}

func (s *fakeChatStore) UpdateSubject(_ context.Context, id int64, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return model.ErrChatNotFound
	}
	c.Subject = subject
	s.chats[id] = c
	return nil
}

func (s *fakeChatStore) TouchLastMessage(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return model.ErrChatNotFound
	}
	c.LastMessageAt = &at
	s.chats[id] = c
	return nil
}

func (s *fakeChatStore) ListForUser(_ context.Context, userID int64) ([]model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Chat, 0)
	for _, c := range s.chats {
		if c.IsParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	nextID   int64
	messages []model.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (s *fakeMessageStore) Create(_ context.Context, m model.Message) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *fakeMessageStore) ListByChat(_ context.Context, chatID int64, page, size int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inChat := s.byChat(chatID)

	start := len(inChat) - (page+1)*size
	end := len(inChat) - page*size
	if end <= 0 {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	return append([]model.Message(nil), inChat[start:end]...), nil
}

func (s *fakeMessageStore) ListRecent(_ context.Context, chatID int64, limit int) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inChat := s.byChat(chatID)
	if len(inChat) > limit {
		inChat = inChat[len(inChat)-limit:]
	}
	return append([]model.Message(nil), inChat...), nil
}

func (s *fakeMessageStore) CountByChat(_ context.Context, chatID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byChat(chatID))), nil
}

func (s *fakeMessageStore) CountUnread(_ context.Context, chatID, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, m := range s.byChat(chatID) {
		if m.SenderID != userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) CountUnreadForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, m := range s.messages {
		if m.SenderID != userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) MarkRead(_ context.Context, chatID, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for i, m := range s.messages {
		if m.ChatID == chatID && m.SenderID != userID && !m.IsRead {
			s.messages[i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (s *fakeMessageStore) byChat(chatID int64) []model.Message {
	out := make([]model.Message, 0)
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}
