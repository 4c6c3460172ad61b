package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"notebridge/internal/event"
	"notebridge/internal/model"
	"notebridge/pkg/apierror"
)

type LessonStore interface {
	FindByID(ctx context.Context, id int64) (model.Lesson, error)
	Create(ctx context.Context, l model.Lesson) (model.Lesson, error)
	Update(ctx context.Context, l model.Lesson) error
	SetCancelled(ctx context.Context, id int64, cancelled bool) error
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]model.Lesson, error)
	ListAll(ctx context.Context) ([]model.Lesson, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]model.Lesson, error)
}

type LessonService struct {
	lessons LessonStore
	users   UserStore
	bus     event.Bus
}

func NewLessonService(lessons LessonStore, users UserStore, bus event.Bus) *LessonService {
	return &LessonService{lessons: lessons, users: users, bus: bus}
}

func (s *LessonService) ListActive(ctx context.Context) ([]model.Lesson, error) {
	lessons, err := s.lessons.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachTeachers(ctx, lessons)
}

func (s *LessonService) ListAll(ctx context.Context) ([]model.Lesson, error) {
	lessons, err := s.lessons.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachTeachers(ctx, lessons)
}

func (s *LessonService) ListByTeacher(ctx context.Context, teacherID int64) ([]model.Lesson, error) {
	lessons, err := s.lessons.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.attachTeachers(ctx, lessons)
}

func (s *LessonService) GetByID(ctx context.Context, id int64) (model.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return model.Lesson{}, err
	}
	return s.attachTeacher(ctx, lesson)
}

// Create makes a lesson owned by teacherID. The owner must exist and hold
// the TEACHER role; admin-created lessons name their teacher explicitly.
func (s *LessonService) Create(ctx context.Context, teacherID int64, req model.CreateLessonRequest) (model.Lesson, error) {
	teacher, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		return model.Lesson{}, apierror.New("NOT_FOUND", "teacher not found", "", http.StatusNotFound)
	}
	if !teacher.Role.Is(model.RoleTeacher) {
		return model.Lesson{}, apierror.New("FORBIDDEN", "only teachers can own lessons", "", http.StatusForbidden)
	}

	if req.Title == "" || req.Instrument == "" {
		return model.Lesson{}, apierror.New("BAD_REQUEST", "title and instrument are required", "", http.StatusBadRequest)
	}

	location, err := model.ParseLessonLocation(req.Location)
	if err != nil {
		return model.Lesson{}, apierror.New("BAD_REQUEST", "invalid location", req.Location, http.StatusBadRequest)
	}

	lesson := model.Lesson{
		TeacherID:       teacherID,
		Title:           req.Title,
		Instrument:      req.Instrument,
		Description:     req.Description,
		Location:        location,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MeetingLink:     req.MeetingLink,
		PhysicalAddress: req.PhysicalAddress,
	}

	created, err := s.lessons.Create(ctx, lesson)
	if err != nil {
		return model.Lesson{}, err
	}
	created.Teacher = &teacher
	s.publish(event.TypeLessonCreated, created, teacherID)
	return created, nil
}

// Update rewrites the mutable lesson fields. When actorID is non-zero the
// actor must own the lesson; admin paths pass zero to skip the check.
func (s *LessonService) Update(ctx context.Context, lessonID int64, req model.CreateLessonRequest, actorID int64) (model.Lesson, error) {
	lesson, err := s.ownedLesson(ctx, lessonID, actorID)
	if err != nil {
		return model.Lesson{}, err
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Instrument != "" {
		lesson.Instrument = req.Instrument
	}
	if req.Location != "" {
		location, err := model.ParseLessonLocation(req.Location)
		if err != nil {
			return model.Lesson{}, apierror.New("BAD_REQUEST", "invalid location", req.Location, http.StatusBadRequest)
		}
		lesson.Location = location
	}
	lesson.Description = req.Description
	lesson.StartTime = req.StartTime
	lesson.EndTime = req.EndTime
	lesson.StartDate = req.StartDate
	lesson.EndDate = req.EndDate
	lesson.MeetingLink = req.MeetingLink
	lesson.PhysicalAddress = req.PhysicalAddress

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return model.Lesson{}, err
	}
	return s.attachTeacher(ctx, lesson)
}

func (s *LessonService) Cancel(ctx context.Context, lessonID, actorID int64) error {
	lesson, err := s.ownedLesson(ctx, lessonID, actorID)
	if err != nil {
		return err
	}
	if err := s.lessons.SetCancelled(ctx, lessonID, true); err != nil {
		return err
	}
	lesson.IsCancelled = true
	s.publish(event.TypeLessonCancelled, lesson, actorID)
	return nil
}

func (s *LessonService) Reactivate(ctx context.Context, lessonID, actorID int64) error {
	if _, err := s.ownedLesson(ctx, lessonID, actorID); err != nil {
		return err
	}
	return s.lessons.SetCancelled(ctx, lessonID, false)
}

func (s *LessonService) DeletePermanently(ctx context.Context, lessonID int64) error {
	return s.lessons.Delete(ctx, lessonID)
}

func (s *LessonService) SetImageURL(ctx context.Context, lessonID int64, imageURL string) error {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return err
	}
	lesson.ImageURL = imageURL
	return s.lessons.Update(ctx, lesson)
}

func (s *LessonService) publish(t event.Type, payload interface{}, actorID int64) {
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

func (s *LessonService) ownedLesson(ctx context.Context, lessonID, actorID int64) (model.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return model.Lesson{}, err
	}
	if actorID != 0 && lesson.TeacherID != actorID {
		return model.Lesson{}, apierror.New("FORBIDDEN", "lesson belongs to another teacher", "", http.StatusForbidden)
	}
	return lesson, nil
}

func (s *LessonService) attachTeacher(ctx context.Context, lesson model.Lesson) (model.Lesson, error) {
	teacher, err := s.users.FindByID(ctx, lesson.TeacherID)
	if err == nil {
		lesson.Teacher = &teacher
	}
	return lesson, nil
}

func (s *LessonService) attachTeachers(ctx context.Context, lessons []model.Lesson) ([]model.Lesson, error) {
	cache := map[int64]*model.User{}
	for i := range lessons {
		if cached, ok := cache[lessons[i].TeacherID]; ok {
			lessons[i].Teacher = cached
			continue
		}
		teacher, err := s.users.FindByID(ctx, lessons[i].TeacherID)
		if err != nil {
			continue
		}
		cache[lessons[i].TeacherID] = &teacher
		lessons[i].Teacher = &teacher
	}
	return lessons, nil
}
