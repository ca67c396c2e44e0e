package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	GetUserByEmail(ctx context.Context, in GetUserByEmailInput) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateUserInput はユーザー作成時の入力です。Fields は email を含むドキュメントです。
type CreateUserInput struct {
	Fields map[string]any
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// GetUserByEmailInput はメールアドレスでのユーザー取得時の入力です。
type GetUserByEmailInput struct {
	Email string
}

// CreateUser は新しいユーザーを作成します。メールアドレスの重複は許容されます。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	rawEmail, _ := in.Fields["email"].(string)
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(in.Fields))
	for k, v := range in.Fields {
		switch k {
		case "_id", "email", "createdAt":
			continue
		}
		fields[k] = v
	}

	u := &User{
		Email:     email,
		Fields:    fields,
		CreatedAt: s.clock.Now(),
	}

	return s.repo.Create(ctx, u)
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	trimmed := strings.TrimSpace(in.ID)
	if trimmed == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	id, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("id %q: %w", trimmed, ErrInvalidID)
	}

	return s.repo.FindByID(ctx, id.String())
}

// GetUserByEmail はメールアドレスでユーザーを取得します。
func (s *Service) GetUserByEmail(ctx context.Context, in GetUserByEmailInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, email)
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}
