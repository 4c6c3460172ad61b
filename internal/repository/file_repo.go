package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notebridge/internal/model"
)

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

func (r *FileRepository) Create(ctx context.Context, f model.FileMetaData) (model.FileMetaData, error) {
	var userID, lessonID *int64
	if f.UserID != 0 {
		userID = &f.UserID
	}
	if f.LessonID != 0 {
		lessonID = &f.LessonID
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO files (unique_id, object_name, upload_date, user_id, lesson_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		f.UniqueID, f.ObjectName, f.UploadDate, userID, lessonID).Scan(&f.ID)
	if err != nil {
		return model.FileMetaData{}, fmt.Errorf("create file metadata: %w", err)
	}
	return f, nil
}

func (r *FileRepository) FindByUniqueID(ctx context.Context, uniqueID string) (model.FileMetaData, error) {
	var f model.FileMetaData
	var userID, lessonID *int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, unique_id, object_name, upload_date, user_id, lesson_id
		 FROM files WHERE unique_id = $1`, uniqueID).
		Scan(&f.ID, &f.UniqueID, &f.ObjectName, &f.UploadDate, &userID, &lessonID)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.FileMetaData{}, model.ErrFileNotFound
	}
	if err != nil {
		return model.FileMetaData{}, fmt.Errorf("find file by unique id: %w", err)
	}

	if userID != nil {
		f.UserID = *userID
	}
	if lessonID != nil {
		f.LessonID = *lessonID
	}
	return f, nil
}
