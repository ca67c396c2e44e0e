package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestConversationRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewConversationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO conversations (members, created_at)`)).
		WithArgs([]byte(`["alice","bob"]`), now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "members", "created_at"}).
			AddRow("conv-1", []byte(`["alice","bob"]`), now))

	created, err := repo.Create(context.Background(), &conversation.Conversation{Members: []string{"alice", "bob"}, CreatedAt: now})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.ID != "conv-1" || len(created.Members) != 2 {
		t.Fatalf("unexpected conversation %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConversationRepository_FindByMembers(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewConversationRepository(mock)
	now := time.Now().UTC()
	query := regexp.QuoteMeta(`WHERE members @> $1::jsonb`)

	mock.ExpectQuery(query).
		WithArgs([]byte(`["bob","alice"]`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "members", "created_at"}).
			AddRow("conv-1", []byte(`["alice","bob"]`), now))

	found, err := repo.FindByMembers(context.Background(), []string{"bob", "alice"})
	if err != nil {
		t.Fatalf("FindByMembers returned error: %v", err)
	}
	if found == nil || found.ID != "conv-1" {
		t.Fatalf("unexpected conversation %+v", found)
	}

	mock.ExpectQuery(query).
		WithArgs([]byte(`["alice","carol"]`)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "members", "created_at"}))

	missing, err := repo.FindByMembers(context.Background(), []string{"alice", "carol"})
	if err != nil {
		t.Fatalf("FindByMembers returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for no match, got %+v", missing)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConversationRepository_FindByMembers_StoreUnavailable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewConversationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM conversations`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "57P01"})

	if _, err := repo.FindByMembers(context.Background(), []string{"alice", "bob"}); !errors.Is(err, conversation.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
