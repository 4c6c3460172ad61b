package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notebridge/internal/model"
)

const messageColumns = `id, chat_id, sender_id, content, sent_at, is_read`

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.SentAt, &m.IsRead)
	return m, err
}

func (r *MessageRepository) Create(ctx context.Context, m model.Message) (model.Message, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (chat_id, sender_id, content, sent_at, is_read)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		m.ChatID, m.SenderID, m.Content, m.SentAt, m.IsRead).Scan(&m.ID)
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ListByChat returns one page of a chat's history, oldest first within the
// page. Page numbering starts at 0.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID int64, page, size int) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM (
		     SELECT `+messageColumns+` FROM messages
		     WHERE chat_id = $1
		     ORDER BY sent_at DESC
		     LIMIT $2 OFFSET $3
		 ) page ORDER BY sent_at ASC`,
		chatID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListRecent returns the newest limit messages, oldest first.
func (r *MessageRepository) ListRecent(ctx context.Context, chatID int64, limit int) ([]model.Message, error) {
	return r.ListByChat(ctx, chatID, 0, limit)
}

func (r *MessageRepository) CountByChat(ctx context.Context, chatID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// CountUnread counts messages in the chat sent by the other participant that
// the given user has not read yet.
func (r *MessageRepository) CountUnread(ctx context.Context, chatID, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages
		 WHERE chat_id = $1 AND sender_id <> $2 AND NOT is_read`,
		chatID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

// CountUnreadForUser totals unread messages across every chat the user
// participates in.
func (r *MessageRepository) CountUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages m
		 JOIN chats c ON c.id = m.chat_id
		 WHERE (c.teacher_id = $1 OR c.student_id = $1)
		   AND m.sender_id <> $1 AND NOT m.is_read`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread for user: %w", err)
	}
	return count, nil
}

// MarkRead flags the other participant's messages as read and reports how
// many rows changed.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET is_read = TRUE
		 WHERE chat_id = $1 AND sender_id <> $2 AND NOT is_read`,
		chatID, userID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
