package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	conversations []*Conversation
}

func (r *fakeRepo) Create(_ context.Context, c *Conversation) (*Conversation, error) {
	clone := *c
	clone.ID = fmt.Sprintf("conversation-%d", len(r.conversations)+1)
	clone.Members = append([]string(nil), c.Members...)
	r.conversations = append(r.conversations, &clone)
	return &clone, nil
}

func (r *fakeRepo) FindByMembers(_ context.Context, members []string) (*Conversation, error) {
	for _, c := range r.conversations {
		if containsAll(c.Members, members) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, m := range have {
		set[m] = struct{}{}
	}
	for _, m := range want {
		if _, ok := set[m]; !ok {
			return false
		}
	}
	return true
}

func TestService_CreateConversation(t *testing.T) {
	t.Parallel()

	clk := stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(&fakeRepo{}, clk)

	created, err := svc.CreateConversation(context.Background(), CreateConversationInput{SenderID: " alice ", ReceiverID: "bob"})
	if err != nil {
		t.Fatalf("CreateConversation returned error: %v", err)
	}

	if len(created.Members) != 2 || created.Members[0] != "alice" || created.Members[1] != "bob" {
		t.Fatalf("expected [alice bob], got %v", created.Members)
	}
	if !created.CreatedAt.Equal(clk.now) {
		t.Fatalf("expected CreatedAt from clock, got %v", created.CreatedAt)
	}
}

func TestService_CreateConversation_InvalidMember(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRepo{}, nil)

	if _, err := svc.CreateConversation(context.Background(), CreateConversationInput{SenderID: "alice"}); !errors.Is(err, ErrInvalidMember) {
		t.Fatalf("expected ErrInvalidMember, got %v", err)
	}
}

func TestService_FindConversation_OrderIndependent(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeRepo{}, nil)
	ctx := context.Background()

	created, err := svc.CreateConversation(ctx, CreateConversationInput{SenderID: "alice", ReceiverID: "bob"})
	if err != nil {
		t.Fatalf("CreateConversation error: %v", err)
	}

	found, err := svc.FindConversation(ctx, FindConversationInput{SenderID: "bob", ReceiverID: "alice"})
	if err != nil {
		t.Fatalf("FindConversation returned error: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected conversation %s, got %+v", created.ID, found)
	}

	missing, err := svc.FindConversation(ctx, FindConversationInput{SenderID: "alice", ReceiverID: "carol"})
	if err != nil {
		t.Fatalf("FindConversation returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown pair, got %+v", missing)
	}
}
