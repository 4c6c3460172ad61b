package model

import "time"

// Chat is the single conversation between one teacher and one student.
// The pair is unique; creating an existing pair returns the existing chat.
type Chat struct {
	ID            int64      `json:"id"`
	Teacher       *User      `json:"teacher,omitempty"`
	TeacherID     int64      `json:"-"`
	Student       *User      `json:"student,omitempty"`
	StudentID     int64      `json:"-"`
	Subject       string     `json:"subject,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// IsParticipant reports whether the user takes part in the chat.
func (c Chat) IsParticipant(userID int64) bool {
	return c.TeacherID == userID || c.StudentID == userID
}

type Message struct {
	ID       int64     `json:"id"`
	ChatID   int64     `json:"chatId"`
	Sender   *User     `json:"sender,omitempty"`
	SenderID int64     `json:"-"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
	IsRead   bool      `json:"isRead"`
}
