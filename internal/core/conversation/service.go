package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はチャットの会話に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は会話ユースケースの公開インターフェースです。
type UseCase interface {
	CreateConversation(ctx context.Context, in CreateConversationInput) (*Conversation, error)
	FindConversation(ctx context.Context, in FindConversationInput) (*Conversation, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateConversationInput は会話作成時の入力です。
type CreateConversationInput struct {
	SenderID   string
	ReceiverID string
}

// FindConversationInput は会話検索時の入力です。
type FindConversationInput struct {
	SenderID   string
	ReceiverID string
}

// CreateConversation は送信者と受信者の 2 名からなる会話を作成します。
func (s *Service) CreateConversation(ctx context.Context, in CreateConversationInput) (*Conversation, error) {
	members, err := normalizeMembers(in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Conversation{
		Members:   members,
		CreatedAt: s.clock.Now(),
	})
}

// FindConversation は両者を含む会話を返します。メンバーの順序は問いません。
// 該当する会話がない場合は nil を返します。
func (s *Service) FindConversation(ctx context.Context, in FindConversationInput) (*Conversation, error) {
	members, err := normalizeMembers(in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByMembers(ctx, members)
}

func normalizeMembers(sender, receiver string) ([]string, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return nil, fmt.Errorf("sender: %w", ErrInvalidMember)
	}
	receiver = strings.TrimSpace(receiver)
	if receiver == "" {
		return nil, fmt.Errorf("receiver: %w", ErrInvalidMember)
	}
	return []string{sender, receiver}, nil
}
