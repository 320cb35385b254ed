package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avoronin/bidmarket-backend/internal/models"
)

// ConversationRepository отвечает за чаты и сообщения.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository создаёт новый экземпляр.
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreate возвращает чат между сторонами по проекту, создавая его при
// первом обращении. ON CONFLICT DO NOTHING плюс повторный SELECT делают
// операцию безопасной при конкурентных вызовах.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, projectID uuid.UUID, clientID, freelancerID uuid.UUID) (*models.Conversation, error) {
	insert := `
		INSERT INTO conversations (project_id, client_id, freelancer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, client_id, freelancer_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, projectID, clientID, freelancerID); err != nil {
		return nil, fmt.Errorf("conversation repository: insert %w", err)
	}

	var conversation models.Conversation
	query := `
		SELECT id, project_id, client_id, freelancer_id, created_at
		FROM conversations
		WHERE project_id = $1 AND client_id = $2 AND freelancer_id = $3
	`
	if err := r.db.GetContext(ctx, &conversation, query, projectID, clientID, freelancerID); err != nil {
		return nil, fmt.Errorf("conversation repository: get after insert %w", err)
	}

	return &conversation, nil
}

// GetByID возвращает чат по идентификатору.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	query := `SELECT id, project_id, client_id, freelancer_id, created_at FROM conversations WHERE id = $1`
	if err := r.db.GetContext(ctx, &conversation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation repository: get by id %w", err)
	}
	return &conversation, nil
}

// ListByUser возвращает чаты, где пользователь является одной из сторон.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	query := `
		SELECT id, project_id, client_id, freelancer_id, created_at
		FROM conversations
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &conversations, query, userID); err != nil {
		return nil, fmt.Errorf("conversation repository: list by user %w", err)
	}
	return conversations, nil
}

// CreateMessage сохраняет сообщение в чате.
func (r *ConversationRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, author_type, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		message.ConversationID,
		message.AuthorType,
		message.AuthorID,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt); err != nil {
		return fmt.Errorf("conversation repository: insert message %w", err)
	}

	return nil
}

// ListMessages возвращает сообщения чата в хронологическом порядке.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT id, conversation_id, author_type, author_id, content, created_at, updated_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return messages, nil
}
