package model

import (
	"strings"
	"time"
)

// LessonLocation is how a lesson is delivered.
type LessonLocation string

const (
	LocationOnline   LessonLocation = "ONLINE"
	LocationInPerson LessonLocation = "IN_PERSON"
	LocationHybrid   LessonLocation = "HYBRID"
)

func ParseLessonLocation(raw string) (LessonLocation, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(LocationOnline):
		return LocationOnline, nil
	case string(LocationInPerson):
		return LocationInPerson, nil
	case string(LocationHybrid):
		return LocationHybrid, nil
	default:
		return "", ErrInvalidInput
	}
}

type Lesson struct {
	ID              int64          `json:"id"`
	Teacher         *User          `json:"teacher,omitempty"`
	TeacherID       int64          `json:"-"`
	Title           string         `json:"title"`
	Instrument      string         `json:"instrument"`
	Description     string         `json:"description,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	Location        LessonLocation `json:"location"`
	StartTime       *time.Time     `json:"startTime,omitempty"`
	EndTime         *time.Time     `json:"endTime,omitempty"`
	StartDate       *time.Time     `json:"startDate,omitempty"`
	EndDate         *time.Time     `json:"endDate,omitempty"`
	MeetingLink     string         `json:"meetingLink,omitempty"`
	PhysicalAddress string         `json:"physicalAddress,omitempty"`
	IsCancelled     bool           `json:"isCancelled"`
}
