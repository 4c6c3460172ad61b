package event

type Type string

const (
	TypeChatCreated     Type = "chat.created"
	TypeMessageSent     Type = "message.sent"
	TypeMessagesRead    Type = "messages.read"
	TypeLessonCreated   Type = "lesson.created"
	TypeLessonCancelled Type = "lesson.cancelled"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   int64       `json:"actor_id,omitempty"` // Who triggered the event
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
