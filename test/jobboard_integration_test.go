//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/ogurasousui/jobboard-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func setup(t *testing.T) (*pgxpool.Pool, *config.Config) {
	t.Helper()

	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	pool, err := pg.NewPool(context.Background(), cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool, cfg
}

func TestJobFlowIntegration(t *testing.T) {
	pool, _ := setup(t)
	ctx := context.Background()

	svc := job.NewService(repo.NewJobRepository(pool), stubClock{now: time.Now().UTC()}, pg.NewTransactionManager(pool))

	created, err := svc.CreateJob(ctx, job.CreateJobInput{Fields: job.Document{"employerId": "E1", "title": "Engineer"}})
	if err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}

	fetched, err := svc.GetJob(ctx, job.GetJobInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if len(fetched.Applicants) != 0 || len(fetched.Queries) != 0 {
		t.Fatalf("expected empty applicants and queries, got %+v", fetched)
	}

	for _, email := range []string{"a@x.com", "b@x.com"} {
		if err := svc.ApplyToJob(ctx, job.ApplyToJobInput{JobID: created.ID, Applicant: job.Applicant{"email": email}}); err != nil {
			t.Fatalf("ApplyToJob error: %v", err)
		}
	}

	applied, err := svc.ListJobsAppliedByEmail(ctx, job.ListJobsAppliedByEmailInput{Email: "b@x.com"})
	if err != nil {
		t.Fatalf("ListJobsAppliedByEmail error: %v", err)
	}
	if len(applied) != 1 || applied[0].ID != created.ID {
		t.Fatalf("expected created job in applied list, got %d jobs", len(applied))
	}
	if got := applied[0].Applicants[1].Email(); got != "b@x.com" {
		t.Fatalf("expected applicant appended last, got %s", got)
	}

	asker := "7a1d6f0e-3c39-4b5e-9a4c-0f3d2d1c5b6a"
	other := "0b9f1c6e-52a1-4b8c-8f1e-3e7a9d4c2b10"
	for _, id := range []string{asker, other} {
		if err := svc.SubmitQuery(ctx, job.SubmitQueryInput{JobID: created.ID, AskerID: id, Email: "q@x.com", Question: "Remote?"}); err != nil {
			t.Fatalf("SubmitQuery error: %v", err)
		}
	}

	if _, err := svc.SubmitReply(ctx, job.SubmitReplyInput{JobID: created.ID, AskerID: asker, Reply: "Yes"}); err != nil {
		t.Fatalf("SubmitReply error: %v", err)
	}

	afterReply, err := svc.GetJob(ctx, job.GetJobInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if len(afterReply.Queries) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(afterReply.Queries))
	}
	if r := afterReply.Queries[0].Reply; len(r) != 1 || r[0] != "Yes" {
		t.Fatalf("expected reply on asker thread, got %v", r)
	}
	if r := afterReply.Queries[1].Reply; len(r) != 0 {
		t.Fatalf("expected other thread untouched, got %v", r)
	}

	if err := svc.DeleteJob(ctx, job.DeleteJobInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteJob error: %v", err)
	}
	if err := svc.DeleteJob(ctx, job.DeleteJobInput{ID: created.ID}); !errors.Is(err, job.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound on second delete, got %v", err)
	}
}

func TestUserAndConversationIntegration(t *testing.T) {
	pool, _ := setup(t)
	ctx := context.Background()

	userSvc := user.NewService(repo.NewUserRepository(pool), stubClock{now: time.Now().UTC()})

	created, err := userSvc.CreateUser(ctx, user.CreateUserInput{Fields: map[string]any{"email": "Integration@Example.com", "name": "Integration"}})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	found, err := userSvc.GetUserByEmail(ctx, user.GetUserByEmailInput{Email: "integration@example.com"})
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if found.ID != created.ID || found.Fields["name"] != "Integration" {
		t.Fatalf("unexpected user %+v", found)
	}

	convSvc := conversation.NewService(repo.NewConversationRepository(pool), stubClock{now: time.Now().UTC()})

	none, err := convSvc.FindConversation(ctx, conversation.FindConversationInput{SenderID: "s", ReceiverID: "r"})
	if err != nil || none != nil {
		t.Fatalf("expected no conversation, got %+v %v", none, err)
	}

	conv, err := convSvc.CreateConversation(ctx, conversation.CreateConversationInput{SenderID: "s", ReceiverID: "r"})
	if err != nil {
		t.Fatalf("CreateConversation error: %v", err)
	}

	// メンバーの順序に依存しないこと。
	reversed, err := convSvc.FindConversation(ctx, conversation.FindConversationInput{SenderID: "r", ReceiverID: "s"})
	if err != nil {
		t.Fatalf("FindConversation error: %v", err)
	}
	if reversed == nil || reversed.ID != conv.ID {
		t.Fatalf("expected conversation %s, got %+v", conv.ID, reversed)
	}
}

func resetMigrations(dsn, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
