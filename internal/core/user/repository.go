package user

import "context"

// Repository はユーザーエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail は email に一致するユーザーのうち最も古いものを返します。
	FindByEmail(ctx context.Context, email string) (*User, error)
}
