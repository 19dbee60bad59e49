package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workfound/workfound-server/internal/core/message"
	pgdb "github.com/workfound/workfound-server/internal/platform/db/postgres"
)

// MessageRepository は PostgreSQL を利用した会話・メッセージ永続化の実装です。
type MessageRepository struct {
	pool pgdb.Queryer
}

// NewMessageRepository は MessageRepository を生成します。
func NewMessageRepository(pool pgdb.Queryer) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// FindOrCreateConversation は組み合わせに対応する会話を返し、存在しなければ作成します。
// 一意制約との競合は既存行の取得として扱われます。
func (r *MessageRepository) FindOrCreateConversation(ctx context.Context, conv *message.Conversation) (*message.Conversation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO conversations (employer_id, seeker_id, job_id, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (employer_id, seeker_id, job_id) DO UPDATE SET employer_id = EXCLUDED.employer_id
        RETURNING id, employer_id, seeker_id, job_id, updated_at
    `,
		conv.EmployerID,
		conv.SeekerID,
		nullableString(conv.JobID),
		conv.UpdatedAt,
	)

	found, err := scanConversation(row)
	if err != nil {
		return nil, translateMessagePgError(err)
	}
	return found, nil
}

// FindConversation は ID で会話を取得します。
func (r *MessageRepository) FindConversation(ctx context.Context, id string) (*message.Conversation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, employer_id, seeker_id, job_id, updated_at
          FROM conversations
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanConversation(row)
	if err != nil {
		return nil, translateMessagePgError(err)
	}
	return found, nil
}

// ListConversations は利用者が参加する会話を更新順に取得します。
// 末尾のメッセージ本文を結合して返します。
func (r *MessageRepository) ListConversations(ctx context.Context, userID string) ([]*message.Conversation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT c.id, c.employer_id, c.seeker_id, c.job_id, c.updated_at,
               (SELECT m.content FROM messages m
                 WHERE m.conversation_id = c.id
                 ORDER BY m.created_at DESC, m.id DESC
                 LIMIT 1)
          FROM conversations c
         WHERE c.employer_id = $1 OR c.seeker_id = $1
         ORDER BY c.updated_at DESC, c.id DESC
    `, userID)
	if err != nil {
		return nil, translateMessagePgError(err)
	}
	defer rows.Close()

	var conversations []*message.Conversation
	for rows.Next() {
		var (
			conv        message.Conversation
			jobID       sql.NullString
			lastMessage sql.NullString
		)
		if err := rows.Scan(&conv.ID, &conv.EmployerID, &conv.SeekerID, &jobID, &conv.UpdatedAt, &lastMessage); err != nil {
			return nil, translateMessagePgError(err)
		}
		conv.JobID = nullStringPtr(jobID)
		conv.LastMessage = nullStringPtr(lastMessage)
		conversations = append(conversations, &conv)
	}

	if err := rows.Err(); err != nil {
		return nil, translateMessagePgError(err)
	}

	return conversations, nil
}

// TouchConversation は会話の更新時刻を進めます。
func (r *MessageRepository) TouchConversation(ctx context.Context, id string, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE conversations SET updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return translateMessagePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return message.ErrConversationNotFound
	}
	return nil
}

// InsertMessage はメッセージを追記します。
func (r *MessageRepository) InsertMessage(ctx context.Context, msg *message.Message) (*message.Message, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO messages (conversation_id, sender_id, content, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, conversation_id, sender_id, content, is_read, created_at
    `,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		msg.CreatedAt,
	)

	created, err := scanMessage(row)
	if err != nil {
		return nil, translateMessagePgError(err)
	}
	return created, nil
}

// ListMessages は会話のメッセージを古い順に取得します。
func (r *MessageRepository) ListMessages(ctx context.Context, conversationID string) ([]*message.Message, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, conversation_id, sender_id, content, is_read, created_at
          FROM messages
         WHERE conversation_id = $1
         ORDER BY created_at ASC, id ASC
    `, conversationID)
	if err != nil {
		return nil, translateMessagePgError(err)
	}
	defer rows.Close()

	var messages []*message.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, translateMessagePgError(err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, translateMessagePgError(err)
	}

	return messages, nil
}

// MarkRead は会話内で reader 以外が送った未読メッセージを既読にします。
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        UPDATE messages
           SET is_read = TRUE
         WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE
    `, conversationID, readerID); err != nil {
		return translateMessagePgError(err)
	}
	return nil
}

func scanConversation(row pgx.Row) (*message.Conversation, error) {
	var (
		conv  message.Conversation
		jobID sql.NullString
	)

	if err := row.Scan(&conv.ID, &conv.EmployerID, &conv.SeekerID, &jobID, &conv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, message.ErrConversationNotFound
		}
		return nil, err
	}

	conv.JobID = nullStringPtr(jobID)
	return &conv, nil
}

func scanMessage(row pgx.Row) (*message.Message, error) {
	var msg message.Message
	if err := row.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.IsRead, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}

func translateMessagePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return message.ErrConversationNotFound
	}
	return err
}
