package conversation

import "context"

// Repository は会話の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, c *Conversation) (*Conversation, error)
	// FindByMembers は members をすべて含む最も古い会話を返します。存在しない場合は nil, nil です。
	FindByMembers(ctx context.Context, members []string) (*Conversation, error)
}
