package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	fields, err := marshalDocument(u.Fields, "{}")
	if err != nil {
		return nil, err
	}

	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO users (email, fields, created_at)
        VALUES ($1, $2, $3)
        RETURNING id, email, fields, created_at
    `, u.Email, fields, u.CreatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        SELECT id, email, fields, created_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。重複がある場合は最も古いユーザーです。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := pgdb.QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
        SELECT id, email, fields, created_at
          FROM users
         WHERE email = $1
         ORDER BY created_at ASC, id ASC
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id, email string
		fieldsRaw []byte
		createdAt time.Time
	)

	if err := row.Scan(&id, &email, &fieldsRaw, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]any{}
	if err := unmarshalDocument(fieldsRaw, &fields); err != nil {
		return nil, fmt.Errorf("postgres: decode user %s fields: %w", id, err)
	}

	return &user.User{
		ID:        id,
		Email:     email,
		Fields:    fields,
		CreatedAt: createdAt,
	}, nil
}

func translateUserPgError(err error) error {
	switch {
	case err == nil:
		return nil
	case pgdb.HasCode(err, pgdb.CodeInvalidTextRepresentation):
		return fmt.Errorf("%w: %w", user.ErrInvalidID, err)
	case pgdb.IsUnavailable(err):
		return fmt.Errorf("%w: %w", user.ErrStoreUnavailable, err)
	default:
		return err
	}
}
