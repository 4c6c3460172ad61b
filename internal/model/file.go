package model

import "time"

// FileMetaData records an uploaded file. The bytes live on disk under
// UniqueID; the row ties them to their owner and, for lesson pictures,
// the lesson.
type FileMetaData struct {
	ID         int64     `json:"id"`
	UniqueID   string    `json:"uniqueId"`
	ObjectName string    `json:"objectName"`
	UploadDate time.Time `json:"uploadDate"`
	UserID     int64     `json:"-"`
	LessonID   int64     `json:"-"`
}
