package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notebridge/internal/model"
)

const lessonColumns = `id, teacher_id, title, instrument, description, image_url, location,
	        start_time, end_time, start_date, end_date, meeting_link, physical_address, is_cancelled`

type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

func scanLesson(row pgx.Row) (model.Lesson, error) {
	var l model.Lesson
	err := row.Scan(&l.ID, &l.TeacherID, &l.Title, &l.Instrument, &l.Description, &l.ImageURL,
		&l.Location, &l.StartTime, &l.EndTime, &l.StartDate, &l.EndDate,
		&l.MeetingLink, &l.PhysicalAddress, &l.IsCancelled)
	return l, err
}

func (r *LessonRepository) FindByID(ctx context.Context, id int64) (model.Lesson, error) {
	l, err := scanLesson(r.pool.QueryRow(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Lesson{}, model.ErrLessonNotFound
	}
	if err != nil {
		return model.Lesson{}, fmt.Errorf("find lesson by id: %w", err)
	}
	return l, nil
}

func (r *LessonRepository) Create(ctx context.Context, l model.Lesson) (model.Lesson, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO lessons (teacher_id, title, instrument, description, image_url, location,
		        start_time, end_time, start_date, end_date, meeting_link, physical_address, is_cancelled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		l.TeacherID, l.Title, l.Instrument, l.Description, l.ImageURL, l.Location,
		l.StartTime, l.EndTime, l.StartDate, l.EndDate, l.MeetingLink, l.PhysicalAddress,
		l.IsCancelled).Scan(&l.ID)
	if err != nil {
		return model.Lesson{}, fmt.Errorf("create lesson: %w", err)
	}
	return l, nil
}

func (r *LessonRepository) Update(ctx context.Context, l model.Lesson) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lessons SET title = $2, instrument = $3, description = $4, image_url = $5,
		        location = $6, start_time = $7, end_time = $8, start_date = $9, end_date = $10,
		        meeting_link = $11, physical_address = $12, is_cancelled = $13
		 WHERE id = $1`,
		l.ID, l.Title, l.Instrument, l.Description, l.ImageURL, l.Location,
		l.StartTime, l.EndTime, l.StartDate, l.EndDate, l.MeetingLink, l.PhysicalAddress,
		l.IsCancelled)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLessonNotFound
	}
	return nil
}

func (r *LessonRepository) SetCancelled(ctx context.Context, id int64, cancelled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lessons SET is_cancelled = $2 WHERE id = $1`, id, cancelled)
	if err != nil {
		return fmt.Errorf("set lesson cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLessonNotFound
	}
	return nil
}

func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLessonNotFound
	}
	return nil
}

// ListActive returns lessons that are not cancelled.
func (r *LessonRepository) ListActive(ctx context.Context) ([]model.Lesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE NOT is_cancelled ORDER BY id`)
}

// ListAll returns every lesson, cancelled included.
func (r *LessonRepository) ListAll(ctx context.Context) ([]model.Lesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM lessons ORDER BY id`)
}

func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]model.Lesson, error) {
	return r.list(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE teacher_id = $1 ORDER BY id`, teacherID)
}

func (r *LessonRepository) list(ctx context.Context, query string, args ...any) ([]model.Lesson, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	lessons := make([]model.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}
