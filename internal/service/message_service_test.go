package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"notebridge/internal/event"
	"notebridge/internal/model"
)

type messageFixture struct {
	svc     *MessageService
	chats   *fakeChatStore
	chat    model.Chat
	teacher model.User
	student model.User
	events  <-chan event.Event
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()

	users := newFakeUserStore()
	teacher := users.add(model.User{Email: "t@u.edu", Role: model.RoleTeacher})
	student := users.add(model.User{Email: "s@u.edu", Role: model.RoleStudent})

	chats := newFakeChatStore()
	chat, err := chats.Create(context.Background(), model.Chat{TeacherID: teacher.ID, StudentID: student.ID})
	require.NoError(t, err)

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	t.Cleanup(unsubscribe)

	return &messageFixture{
		svc:     NewMessageService(newFakeMessageStore(), chats, users, bus),
		chats:   chats,
		chat:    chat,
		teacher: teacher,
		student: student,
		events:  events,
	}
}

func TestMessageServiceSend(t *testing.T) {
	t.Parallel()

	t.Run("stores the message and touches the chat", func(t *testing.T) {
		f := newMessageFixture(t)

		message, err := f.svc.Send(context.Background(), f.student.ID, f.chat.ID, "hello")
		require.NoError(t, err)
		require.NotZero(t, message.ID)
		require.Equal(t, "hello", message.Content)
		require.NotNil(t, message.Sender)
		require.Equal(t, f.student.ID, message.Sender.ID)

		chat, err := f.chats.FindByID(context.Background(), f.chat.ID)
		require.NoError(t, err)
		require.NotNil(t, chat.LastMessageAt)

		e := <-f.events
		require.Equal(t, event.TypeMessageSent, e.Type)
		require.Equal(t, f.student.ID, e.ActorID)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		f := newMessageFixture(t)
		_, err := f.svc.Send(context.Background(), f.student.ID, f.chat.ID, "   ")
		require.Error(t, err)
	})

	t.Run("rejects a non-participant sender", func(t *testing.T) {
		f := newMessageFixture(t)
		_, err := f.svc.Send(context.Background(), f.teacher.ID+100, f.chat.ID, "hi")
		require.Error(t, err)
	})
}

func TestMessageServicePaging(t *testing.T) {
	t.Parallel()

	f := newMessageFixture(t)
	for i := 0; i < 25; i++ {
		_, err := f.svc.Send(context.Background(), f.student.ID, f.chat.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	t.Run("first page holds the newest messages", func(t *testing.T) {
		messages, total, err := f.svc.ChatMessages(context.Background(), f.chat.ID, f.teacher.ID, 0, 10)
		require.NoError(t, err)
		require.EqualValues(t, 25, total)
		require.Len(t, messages, 10)
		require.Equal(t, "message 24", messages[len(messages)-1].Content)
	})

	t.Run("later pages walk backwards", func(t *testing.T) {
		messages, _, err := f.svc.ChatMessages(context.Background(), f.chat.ID, f.teacher.ID, 2, 10)
		require.NoError(t, err)
		require.Len(t, messages, 5)
		require.Equal(t, "message 0", messages[0].Content)
	})

	t.Run("recent returns everything under the cap", func(t *testing.T) {
		messages, err := f.svc.RecentChatMessages(context.Background(), f.chat.ID, f.student.ID)
		require.NoError(t, err)
		require.Len(t, messages, 25)
	})
}

func TestMessageServiceUnread(t *testing.T) {
	t.Parallel()

	f := newMessageFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Send(context.Background(), f.student.ID, f.chat.ID, "hi")
		require.NoError(t, err)
	}
	_, err := f.svc.Send(context.Background(), f.teacher.ID, f.chat.ID, "hello back")
	require.NoError(t, err)

	t.Run("counts only the other side's messages", func(t *testing.T) {
		count, err := f.svc.UnreadCount(context.Background(), f.chat.ID, f.teacher.ID)
		require.NoError(t, err)
		require.EqualValues(t, 3, count)

		count, err = f.svc.UnreadCount(context.Background(), f.chat.ID, f.student.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})

	t.Run("mark read reports the affected count and is idempotent", func(t *testing.T) {
		marked, err := f.svc.MarkRead(context.Background(), f.chat.ID, f.teacher.ID)
		require.NoError(t, err)
		require.Equal(t, 3, marked)

		count, err := f.svc.UnreadCount(context.Background(), f.chat.ID, f.teacher.ID)
		require.NoError(t, err)
		require.Zero(t, count)

		marked, err = f.svc.MarkRead(context.Background(), f.chat.ID, f.teacher.ID)
		require.NoError(t, err)
		require.Zero(t, marked)
	})
}
