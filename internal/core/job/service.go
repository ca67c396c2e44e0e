package job

import (
	"context"
	"errors"
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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は求人・応募・質問スレッドに関するユースケースをまとめます。
// 求人ドキュメントへの変更はすべてこの Service を経由します。
type Service struct {
	repo                   Repository
	clock                  Clock
	tx                     TransactionManager
	events                 EventPublisher
	allowLegacyReplyFanout bool
}

// UseCase は求人ユースケースの公開インターフェースです。
type UseCase interface {
	CreateJob(ctx context.Context, in CreateJobInput) (*Job, error)
	GetJob(ctx context.Context, in GetJobInput) (*Job, error)
	ListJobs(ctx context.Context) ([]*Job, error)
	ListJobsByEmployer(ctx context.Context, in ListJobsByEmployerInput) ([]*Job, error)
	ListJobsAppliedByEmail(ctx context.Context, in ListJobsAppliedByEmailInput) ([]*Job, error)
	DeleteJob(ctx context.Context, in DeleteJobInput) error
	ApplyToJob(ctx context.Context, in ApplyToJobInput) error
	SubmitQuery(ctx context.Context, in SubmitQueryInput) error
	SubmitReply(ctx context.Context, in SubmitReplyInput) (*SubmitReplyResult, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithEventPublisher は求人イベントの配信先を設定します。
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLegacyReplyFanout は jobId を伴わない返信 (質問者 ID のみでの一致) を許可します。
func WithLegacyReplyFanout(enabled bool) Option {
	return func(s *Service) {
		s.allowLegacyReplyFanout = enabled
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx, events: noopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJobInput は求人作成時の入力です。Fields は呼び出し元のドキュメントそのものです。
type CreateJobInput struct {
	Fields Document
}

// GetJobInput は求人取得時の入力です。
type GetJobInput struct {
	ID string
}

// DeleteJobInput は求人削除時の入力です。
type DeleteJobInput struct {
	ID string
}

// ListJobsByEmployerInput は掲載者別一覧の入力です。
type ListJobsByEmployerInput struct {
	EmployerID string
}

// ListJobsAppliedByEmailInput は応募済み求人一覧の入力です。
type ListJobsAppliedByEmailInput struct {
	Email string
}

// ApplyToJobInput は応募時の入力です。
type ApplyToJobInput struct {
	JobID     string
	Applicant Applicant
}

// SubmitQueryInput は質問投稿時の入力です。
type SubmitQueryInput struct {
	JobID    string
	AskerID  string
	Email    string
	Question string
}

// SubmitReplyInput は返信投稿時の入力です。
// JobID が空の場合はレガシーな質問者 ID のみの一致として扱われます (設定で許可されている場合のみ)。
type SubmitReplyInput struct {
	JobID   string
	AskerID string
	Reply   any
}

// SubmitReplyResult は返信投稿の結果です。
type SubmitReplyResult struct {
	MatchedJobs     []string
	ModifiedThreads int
}

// CreateJob は新しい求人を作成します。重複チェックは行いません。
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*Job, error) {
	j, err := newJobFromDocument(in.Fields)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	j.CreatedAt = now
	j.UpdatedAt = now

	var created *Job
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, j)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{Type: EventJobCreated, JobID: created.ID, EmployerID: created.EmployerID, OccurredAt: now})
	return created, nil
}

// GetJob は ID で求人を取得します。
func (s *Service) GetJob(ctx context.Context, in GetJobInput) (*Job, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var found *Job
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListJobs は全求人を作成順に返します。ページングは行いません。
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.list(ctx, ListJobsFilter{})
}

// ListJobsByEmployer は employerId が完全一致する求人を返します。
func (s *Service) ListJobsByEmployer(ctx context.Context, in ListJobsByEmployerInput) ([]*Job, error) {
	employerID := strings.TrimSpace(in.EmployerID)
	if employerID == "" {
		return nil, ErrInvalidEmployerID
	}
	return s.list(ctx, ListJobsFilter{EmployerID: &employerID})
}

// ListJobsAppliedByEmail は応募者に email を含む求人を返します。email は大文字小文字を区別せずに比較します。
// 形式の検証は行わないため、一致しない値では空の一覧になります。
func (s *Service) ListJobsAppliedByEmail(ctx context.Context, in ListJobsAppliedByEmailInput) ([]*Job, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	return s.list(ctx, ListJobsFilter{ApplicantEmail: &email})
}

func (s *Service) list(ctx context.Context, filter ListJobsFilter) ([]*Job, error) {
	var jobs []*Job
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		jobs = result
		return nil
	}); err != nil {
		return nil, err
	}

	if jobs == nil {
		jobs = []*Job{}
	}
	return jobs, nil
}

// DeleteJob は求人を削除します。存在しない場合は ErrJobNotFound を返します。
func (s *Service) DeleteJob(ctx context.Context, in DeleteJobInput) error {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	s.events.Publish(ctx, Event{Type: EventJobDeleted, JobID: id, OccurredAt: s.clock.Now()})
	return nil
}

// ApplyToJob は応募データを求人の applicants 末尾へ追記します。
// 同一応募者の重複応募は検出しません。
func (s *Service) ApplyToJob(ctx context.Context, in ApplyToJobInput) error {
	jobID, err := normalizeID(in.JobID, ErrInvalidID)
	if err != nil {
		return err
	}

	applicant, err := validateApplicant(in.Applicant)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.AppendApplicant(txCtx, jobID, applicant, now)
	}); err != nil {
		return err
	}

	s.events.Publish(ctx, Event{Type: EventApplied, JobID: jobID, Email: applicant.Email(), OccurredAt: now})
	return nil
}

// SubmitQuery は空の返信列を持つ質問スレッドを求人の queries 末尾へ追記します。
func (s *Service) SubmitQuery(ctx context.Context, in SubmitQueryInput) error {
	jobID, err := normalizeID(in.JobID, ErrInvalidID)
	if err != nil {
		return err
	}

	askerID, err := normalizeID(in.AskerID, ErrInvalidAskerID)
	if err != nil {
		return err
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return err
	}

	question := strings.TrimSpace(in.Question)
	if question == "" {
		return ErrInvalidQuestion
	}

	thread := QueryThread{ID: askerID, Email: email, Question: question, Reply: []any{}}

	now := s.clock.Now()
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.AppendQuery(txCtx, jobID, thread, now)
	}); err != nil {
		return err
	}

	s.events.Publish(ctx, Event{Type: EventQuerySubmitted, JobID: jobID, AskerID: askerID, Email: email, OccurredAt: now})
	return nil
}

// SubmitReply は askerID が質問したスレッドへ返信を追記します。
// 同じ求人内に同一質問者のスレッドが複数ある場合はそのすべてに追記されます。
func (s *Service) SubmitReply(ctx context.Context, in SubmitReplyInput) (*SubmitReplyResult, error) {
	askerID, err := normalizeID(in.AskerID, ErrInvalidAskerID)
	if err != nil {
		return nil, err
	}

	reply, err := normalizeReply(in.Reply)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.JobID) == "" {
		if !s.allowLegacyReplyFanout {
			return nil, fmt.Errorf("job id is required: %w", ErrInvalidID)
		}
		return s.fanoutReply(ctx, askerID, reply)
	}

	jobID, err := normalizeID(in.JobID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var modified int
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		n, err := s.repo.AppendReply(txCtx, jobID, askerID, reply, now)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := s.repo.FindByID(txCtx, jobID); err != nil {
				return err
			}
			return ErrQueryNotFound
		}
		modified = n
		return nil
	}); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{Type: EventReplySubmitted, JobID: jobID, AskerID: askerID, OccurredAt: now})
	return &SubmitReplyResult{MatchedJobs: []string{jobID}, ModifiedThreads: modified}, nil
}

// fanoutReply は askerID のスレッドを含むすべての求人へ、求人ごとに独立した更新で返信を追記します。
// 求人をまたぐトランザクションは張らないため、一部のみ適用される可能性があります。
func (s *Service) fanoutReply(ctx context.Context, askerID string, reply any) (*SubmitReplyResult, error) {
	ids, err := s.repo.FindIDsByAskerID(ctx, askerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrQueryNotFound
	}

	now := s.clock.Now()
	result := &SubmitReplyResult{}
	var (
		failed   map[string]error
		firstErr error
	)

	for _, id := range ids {
		n, err := s.repo.AppendReply(ctx, id, askerID, reply, now)
		if err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[id] = err
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n == 0 {
			// 一覧取得後に削除された求人
			continue
		}
		result.MatchedJobs = append(result.MatchedJobs, id)
		result.ModifiedThreads += n
		s.events.Publish(ctx, Event{Type: EventReplySubmitted, JobID: id, AskerID: askerID, OccurredAt: now})
	}

	switch {
	case len(failed) > 0 && len(result.MatchedJobs) == 0:
		return nil, firstErr
	case len(failed) > 0:
		return result, &PartialApplicationError{Applied: result.MatchedJobs, Failed: failed}
	case len(result.MatchedJobs) == 0:
		return nil, ErrQueryNotFound
	}

	return result, nil
}

func newJobFromDocument(doc Document) (*Job, error) {
	if len(doc) == 0 {
		return nil, ErrInvalidEmployerID
	}

	fields := doc.Clone()
	for _, key := range []string{FieldID, FieldCreatedAt, FieldUpdatedAt} {
		delete(fields, key)
	}

	rawEmployer, _ := fields[FieldEmployerID].(string)
	employerID := strings.TrimSpace(rawEmployer)
	if employerID == "" {
		return nil, ErrInvalidEmployerID
	}
	delete(fields, FieldEmployerID)

	applicants, err := decodeApplicants(fields[FieldApplicants])
	if err != nil {
		return nil, err
	}
	delete(fields, FieldApplicants)

	queries, err := decodeQueries(fields[FieldQueries])
	if err != nil {
		return nil, err
	}
	delete(fields, FieldQueries)

	return &Job{
		EmployerID: employerID,
		Fields:     fields,
		Applicants: applicants,
		Queries:    queries,
	}, nil
}

func decodeApplicants(raw any) ([]Applicant, error) {
	out := []Applicant{}
	if raw == nil {
		return out, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array: %w", FieldApplicants, ErrInvalidDocument)
	}

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object: %w", FieldApplicants, i, ErrInvalidDocument)
		}
		out = append(out, Applicant(m))
	}
	return out, nil
}

func decodeQueries(raw any) ([]QueryThread, error) {
	out := []QueryThread{}
	if raw == nil {
		return out, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array: %w", FieldQueries, ErrInvalidDocument)
	}

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object: %w", FieldQueries, i, ErrInvalidDocument)
		}

		thread := QueryThread{Reply: []any{}}
		thread.ID, _ = m["id"].(string)
		// 返信は正規化済みの質問者 ID で照合されるため、UUID として解釈できる ID は同じ形式に揃えます。
		if id, err := uuid.Parse(strings.TrimSpace(thread.ID)); err == nil {
			thread.ID = id.String()
		}
		thread.Email, _ = m["email"].(string)
		thread.Question, _ = m["question"].(string)

		switch replies := m["reply"].(type) {
		case nil:
		case []any:
			thread.Reply = append(thread.Reply, replies...)
		default:
			return nil, fmt.Errorf("%s[%d].reply must be an array: %w", FieldQueries, i, ErrInvalidDocument)
		}

		out = append(out, thread)
	}
	return out, nil
}

// validateApplicant は email を検証するのみで、応募データは受け取ったまま返します。
func validateApplicant(raw Applicant) (Applicant, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidApplicant
	}

	rawEmail, ok := raw[FieldEmail].(string)
	if !ok {
		return nil, fmt.Errorf("applicant email: %w", ErrInvalidEmail)
	}

	if _, err := validateEmail(rawEmail); err != nil {
		return nil, fmt.Errorf("applicant email: %w", err)
	}

	return Applicant(Document(raw).Clone()), nil
}

func normalizeReply(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, ErrInvalidReply
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, ErrInvalidReply
		}
		return trimmed, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, ErrInvalidReply
		}
		return v, nil
	default:
		return v, nil
	}
}

func normalizeID(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid
	}

	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%q: %w", trimmed, invalid)
	}
	return id.String(), nil
}

// validateEmail は前後の空白を除いた値を返します。大文字小文字や表示名はそのまま残します。
func validateEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", ErrInvalidEmail
	}

	return trimmed, nil
}

// IsValidation は err が入力不正に起因する場合に true を返します。
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidID,
		ErrInvalidEmployerID,
		ErrInvalidAskerID,
		ErrInvalidEmail,
		ErrInvalidApplicant,
		ErrInvalidQuestion,
		ErrInvalidReply,
		ErrInvalidDocument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
