package job

import (
	"context"
	"time"
)

// Repository は求人ドキュメントの永続化を行うインターフェースです。
// 追記系の操作は 1 ドキュメントに対してアトミックである必要があります。
type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, filter ListJobsFilter) ([]*Job, error)
	AppendApplicant(ctx context.Context, jobID string, applicant Applicant, at time.Time) error
	AppendQuery(ctx context.Context, jobID string, thread QueryThread, at time.Time) error
	// AppendReply は jobID の求人内で askerID に一致する全スレッドへ reply を追記し、更新したスレッド数を返します。
	AppendReply(ctx context.Context, jobID, askerID string, reply any, at time.Time) (int, error)
	// FindIDsByAskerID は askerID のスレッドを含む求人 ID を作成順に返します。
	FindIDsByAskerID(ctx context.Context, askerID string) ([]string, error)
}

// ListJobsFilter は一覧取得時の検索条件を表します。すべて未指定の場合は全件です。
type ListJobsFilter struct {
	EmployerID     *string
	ApplicantEmail *string
}

// EventType は求人に関するイベントの種類です。
type EventType string

const (
	EventJobCreated     EventType = "job.created"
	EventJobDeleted     EventType = "job.deleted"
	EventApplied        EventType = "job.applied"
	EventQuerySubmitted EventType = "job.query_submitted"
	EventReplySubmitted EventType = "job.reply_submitted"
)

// Event は求人の変更後に配信される通知です。
type Event struct {
	Type       EventType `json:"type"`
	JobID      string    `json:"jobId"`
	EmployerID string    `json:"employerId,omitempty"`
	AskerID    string    `json:"askerId,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher は求人イベントを配信します。配信失敗はユースケースの結果に影響しません。
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) {}
