package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	pgdb "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
)

const jobColumns = `id, employer_id, fields, applicants, queries, created_at, updated_at`

// JobRepository は PostgreSQL の jsonb 列を利用した求人ドキュメントの永続化実装です。
// applicants / queries への追記は単一の UPDATE 文で行うため、1 求人単位でアトミックです。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// Create は求人を新規作成します。
func (r *JobRepository) Create(ctx context.Context, j *job.Job) (*job.Job, error) {
	fields, err := marshalDocument(j.Fields, "{}")
	if err != nil {
		return nil, err
	}
	applicants, err := marshalDocument(j.Applicants, "[]")
	if err != nil {
		return nil, err
	}
	queries, err := marshalDocument(j.Queries, "[]")
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO jobs (employer_id, fields, applicants, queries, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+jobColumns, j.EmployerID, fields, applicants, queries, j.CreatedAt, j.UpdatedAt)

	created, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return created, nil
}

// Delete は求人を削除します。
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// FindByID は ID で求人を取得します。
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+jobColumns+`
          FROM jobs
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanJob(row)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	return found, nil
}

// List は条件に一致する求人を作成順に取得します。
func (r *JobRepository) List(ctx context.Context, filter job.ListJobsFilter) ([]*job.Job, error) {
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.EmployerID != nil {
		args = append(args, *filter.EmployerID)
		conditions = append(conditions, "employer_id = $"+strconv.Itoa(len(args)))
	}

	if filter.ApplicantEmail != nil {
		// 応募データは受け取ったまま保存しているため、email は大文字小文字を区別せずに比較します。
		args = append(args, strings.TrimSpace(*filter.ApplicantEmail))
		conditions = append(conditions, `EXISTS (
                SELECT 1
                  FROM jsonb_array_elements(applicants) AS a(applicant)
                 WHERE lower(btrim(a.applicant->>'email')) = lower($`+strconv.Itoa(len(args))+`))`)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + jobColumns + `
          FROM jobs` + whereClause + `
         ORDER BY created_at ASC, id ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		found, err := scanJob(rows)
		if err != nil {
			return nil, translateJobPgError(err)
		}
		jobs = append(jobs, found)
	}

	if err := rows.Err(); err != nil {
		return nil, translateJobPgError(err)
	}

	return jobs, nil
}

// AppendApplicant は applicants の末尾に応募データを追記します。
func (r *JobRepository) AppendApplicant(ctx context.Context, jobID string, applicant job.Applicant, at time.Time) error {
	body, err := marshalDocument(applicant, "{}")
	if err != nil {
		return err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE jobs
           SET applicants = applicants || jsonb_build_array($1::jsonb),
               updated_at = $2
         WHERE id = $3
    `, body, at, jobID)
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// AppendQuery は queries の末尾に質問スレッドを追記します。
func (r *JobRepository) AppendQuery(ctx context.Context, jobID string, thread job.QueryThread, at time.Time) error {
	if thread.Reply == nil {
		thread.Reply = []any{}
	}
	body, err := marshalDocument(thread, "{}")
	if err != nil {
		return err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE jobs
           SET queries = queries || jsonb_build_array($1::jsonb),
               updated_at = $2
         WHERE id = $3
    `, body, at, jobID)
	if err != nil {
		return translateJobPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}

// AppendReply は jobID の求人内で askerID に一致する全スレッドの reply 末尾へ追記します。
// スレッドの並び順は保持されます。求人が存在しない、またはスレッドが一致しない場合は 0 を返します。
func (r *JobRepository) AppendReply(ctx context.Context, jobID, askerID string, reply any, at time.Time) (int, error) {
	body, err := json.Marshal(reply)
	if err != nil {
		return 0, fmt.Errorf("postgres: marshal reply: %w", err)
	}
	probe, err := askerProbe(askerID)
	if err != nil {
		return 0, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE jobs
           SET queries = (
                   SELECT jsonb_agg(
                              CASE WHEN q.thread->>'id' = $1
                                   THEN jsonb_set(q.thread, '{reply}', COALESCE(q.thread->'reply', '[]'::jsonb) || jsonb_build_array($2::jsonb))
                                   ELSE q.thread
                              END
                              ORDER BY q.pos)
                     FROM jsonb_array_elements(queries) WITH ORDINALITY AS q(thread, pos)
               ),
               updated_at = $3
         WHERE id = $4
           AND queries @> $5::jsonb
        RETURNING (SELECT count(*) FROM jsonb_array_elements(queries) AS t(thread) WHERE t.thread->>'id' = $1)
    `, askerID, body, at, jobID, probe)

	var modified int
	if err := row.Scan(&modified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, translateJobPgError(err)
	}
	return modified, nil
}

// FindIDsByAskerID は askerID のスレッドを含む求人 ID を作成順に返します。
func (r *JobRepository) FindIDsByAskerID(ctx context.Context, askerID string) ([]string, error) {
	probe, err := askerProbe(askerID)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id
          FROM jobs
         WHERE queries @> $1::jsonb
         ORDER BY created_at ASC, id ASC
    `, probe)
	if err != nil {
		return nil, translateJobPgError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translateJobPgError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translateJobPgError(err)
	}
	return ids, nil
}

func askerProbe(askerID string) ([]byte, error) {
	probe, err := json.Marshal([]map[string]string{{"id": askerID}})
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal asker probe: %w", err)
	}
	return probe, nil
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var (
		id, employerID                    string
		fieldsRaw, applicantsRaw, queries []byte
		createdAt, updatedAt              time.Time
	)

	if err := row.Scan(&id, &employerID, &fieldsRaw, &applicantsRaw, &queries, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound
		}
		return nil, err
	}

	found := &job.Job{
		ID:         id,
		EmployerID: employerID,
		Fields:     job.Document{},
		Applicants: []job.Applicant{},
		Queries:    []job.QueryThread{},
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	if err := unmarshalDocument(fieldsRaw, &found.Fields); err != nil {
		return nil, fmt.Errorf("postgres: decode job %s fields: %w", id, err)
	}
	if err := unmarshalDocument(applicantsRaw, &found.Applicants); err != nil {
		return nil, fmt.Errorf("postgres: decode job %s applicants: %w", id, err)
	}
	if err := unmarshalDocument(queries, &found.Queries); err != nil {
		return nil, fmt.Errorf("postgres: decode job %s queries: %w", id, err)
	}
	for i := range found.Queries {
		if found.Queries[i].Reply == nil {
			found.Queries[i].Reply = []any{}
		}
	}

	return found, nil
}

func translateJobPgError(err error) error {
	switch {
	case err == nil:
		return nil
	case pgdb.HasCode(err, pgdb.CodeInvalidTextRepresentation):
		return fmt.Errorf("%w: %w", job.ErrInvalidID, err)
	case pgdb.IsUnavailable(err):
		return fmt.Errorf("%w: %w", job.ErrStoreUnavailable, err)
	default:
		return err
	}
}
