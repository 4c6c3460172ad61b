package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notebridge/internal/model"
)

const chatColumns = `id, teacher_id, student_id, subject, created_at, last_message_at`

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func scanChat(row pgx.Row) (model.Chat, error) {
	var c model.Chat
	err := row.Scan(&c.ID, &c.TeacherID, &c.StudentID, &c.Subject, &c.CreatedAt, &c.LastMessageAt)
	return c, err
}

func (r *ChatRepository) FindByID(ctx context.Context, id int64) (model.Chat, error) {
	c, err := scanChat(r.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Chat{}, model.ErrChatNotFound
	}
	if err != nil {
		return model.Chat{}, fmt.Errorf("find chat by id: %w", err)
	}
	return c, nil
}

func (r *ChatRepository) FindByPair(ctx context.Context, teacherID, studentID int64) (model.Chat, error) {
	c, err := scanChat(r.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chats WHERE teacher_id = $1 AND student_id = $2`,
		teacherID, studentID))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Chat{}, model.ErrChatNotFound
	}
	if err != nil {
		return model.Chat{}, fmt.Errorf("find chat by pair: %w", err)
	}
	return c, nil
}

func (r *ChatRepository) Create(ctx context.Context, c model.Chat) (model.Chat, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chats (teacher_id, student_id, subject, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.TeacherID, c.StudentID, c.Subject, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return model.Chat{}, fmt.Errorf("create chat: %w", err)
	}
	return c, nil
}

func (r *ChatRepository) UpdateSubject(ctx context.Context, id int64, subject string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chats SET subject = $2 WHERE id = $1`, id, subject)
	if err != nil {
		return fmt.Errorf("update chat subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChatNotFound
	}
	return nil
}

func (r *ChatRepository) TouchLastMessage(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE chats SET last_message_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch chat last message: %w", err)
	}
	return nil
}

// ListForUser returns the chats the user participates in, most recent
// activity first.
func (r *ChatRepository) ListForUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+chatColumns+` FROM chats
		 WHERE teacher_id = $1 OR student_id = $1
		 ORDER BY last_message_at DESC NULLS LAST, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats for user: %w", err)
	}
	defer rows.Close()

	chats := make([]model.Chat, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
