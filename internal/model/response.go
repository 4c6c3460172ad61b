package model

// Envelope response types. The API reports its outcome in the body:
// statusCode is 200 on success and an HTTP-like failure code otherwise,
// while the transport status stays 200. Clients must key off the body,
// not the wire status.

type AuthEnvelope struct {
	StatusCode     int    `json:"statusCode"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
	Token          string `json:"token,omitempty"`
	RefreshToken   string `json:"refreshToken,omitempty"`
	ExpirationTime string `json:"expirationTime,omitempty"`
	Role           string `json:"role,omitempty"`
	User           *User  `json:"user,omitempty"`
	UsersList      []User `json:"usersList,omitempty"`
}

type LessonEnvelope struct {
	StatusCode  int      `json:"statusCode"`
	Error       string   `json:"error,omitempty"`
	Message     string   `json:"message,omitempty"`
	Lesson      *Lesson  `json:"lesson,omitempty"`
	LessonsList []Lesson `json:"lessonsList,omitempty"`
}

type ChatEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Chat       *Chat  `json:"chat,omitempty"`
	ChatsList  []Chat `json:"chatsList,omitempty"`
	IsNewChat  *bool  `json:"isNewChat,omitempty"`
}

type MessageEnvelope struct {
	StatusCode           int       `json:"statusCode"`
	Error                string    `json:"error,omitempty"`
	Message              string    `json:"message,omitempty"`
	MessageObject        *Message  `json:"messageObject,omitempty"`
	MessagesList         []Message `json:"messagesList,omitempty"`
	UnreadMessageCount   *int64    `json:"unreadMessageCount,omitempty"`
	TotalMessageCount    *int64    `json:"totalMessageCount,omitempty"`
	MessagesMarkedAsRead *int      `json:"messagesMarkedAsRead,omitempty"`
}

type FileEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`
}
