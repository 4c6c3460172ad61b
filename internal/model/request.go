package model

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ProfileURL  string `json:"profileUrl,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched; email, password and role are not mutable through this path.
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	ProfileURL  *string `json:"profileUrl,omitempty"`
}

type CreateLessonRequest struct {
	Title           string     `json:"title"`
	Instrument      string     `json:"instrument"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	MeetingLink     string     `json:"meetingLink,omitempty"`
	PhysicalAddress string     `json:"physicalAddress,omitempty"`
	TeacherID       int64      `json:"teacherId,omitempty"`
}

type SendMessageRequest struct {
	ChatID  int64  `json:"chatId"`
	Content string `json:"content"`
}
