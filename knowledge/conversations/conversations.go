package conversations

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/kbase/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, projectID, ownerID, title string, template Template) (*Conversation, error) {
	if title == "" {
		title = DefaultTitle
	}

	conv, err := scanConversation(r.db.QueryRow(ctx, queryCreate, projectID, ownerID, title, template))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conv, nil
}

// conversations of a project, most recently active first
func (r *Repository) List(ctx context.Context, projectID, ownerID string) ([]Conversation, error) {
	rows, err := r.db.Query(ctx, queryList, projectID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	defer rows.Close()

	convs := []Conversation{}

	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}

		convs = append(convs, *conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return convs, nil
}

// returns the conversation only when it belongs to ownerID
func (r *Repository) Get(ctx context.Context, conversationID, ownerID string) (*Conversation, error) {
	conv, err := scanConversation(r.db.QueryRow(ctx, queryGet, conversationID, ownerID))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

// appends a turn and bumps the conversation's updated_at in one transaction.
// callers must have checked ownership with Get.
func (r *Repository) AddMessage(ctx context.Context, conversationID, role, content string, meta map[string]any) (*Message, error) {
	if meta == nil {
		meta = map[string]any{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	var msg Message

	err = tx.QueryRow(ctx, queryInsertMessage, conversationID, role, content, meta).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.Role,
		&msg.Content,
		&msg.Meta,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if _, err := tx.Exec(ctx, queryTouch, conversationID); err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &msg, nil
}

// messages in creation order
func (r *Repository) ListMessages(ctx context.Context, conversationID, ownerID string) ([]Message, error) {
	rows, err := r.db.Query(ctx, queryListMessages, conversationID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	defer rows.Close()

	msgs := []Message{}

	for rows.Next() {
		var m Message

		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Meta, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return msgs, nil
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation

	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.OwnerID,
		&c.Title,
		&c.Template,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
