package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

// ConversationRepository は PostgreSQL を利用した会話永続化の実装です。
type ConversationRepository struct {
	pool pgdb.Queryer
}

// NewConversationRepository は ConversationRepository を生成します。
func NewConversationRepository(pool pgdb.Queryer) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

// Create は会話を新規作成します。
func (r *ConversationRepository) Create(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	members, err := marshalDocument(c.Members, "[]")
	if err != nil {
		return nil, err
	}

	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO conversations (members, created_at)
        VALUES ($1, $2)
        RETURNING id, members, created_at
    `, members, c.CreatedAt)

	created, err := scanConversation(row)
	if err != nil {
		return nil, translateConversationPgError(err)
	}
	return created, nil
}

// FindByMembers は members をすべて含む最も古い会話を返します。
func (r *ConversationRepository) FindByMembers(ctx context.Context, members []string) (*conversation.Conversation, error) {
	probe, err := marshalDocument(members, "[]")
	if err != nil {
		return nil, err
	}

	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        SELECT id, members, created_at
          FROM conversations
         WHERE members @> $1::jsonb
         ORDER BY created_at ASC, id ASC
         LIMIT 1
    `, probe)

	found, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateConversationPgError(err)
	}
	return found, nil
}

// scanConversation は該当行がない場合 pgx.ErrNoRows をそのまま返します。
func scanConversation(row pgx.Row) (*conversation.Conversation, error) {
	var (
		id         string
		membersRaw []byte
		createdAt  time.Time
	)

	if err := row.Scan(&id, &membersRaw, &createdAt); err != nil {
		return nil, err
	}

	var members []string
	if err := unmarshalDocument(membersRaw, &members); err != nil {
		return nil, fmt.Errorf("postgres: decode conversation %s members: %w", id, err)
	}

	return &conversation.Conversation{ID: id, Members: members, CreatedAt: createdAt}, nil
}

func translateConversationPgError(err error) error {
	if pgdb.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", conversation.ErrStoreUnavailable, err)
	}
	return err
}
