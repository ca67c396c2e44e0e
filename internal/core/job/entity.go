package job

import (
	"strings"
	"time"
)

// Document はスキーマを持たない任意のフィールド集合です。
type Document map[string]any

// Clone は Document の浅いコピーを返します。
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Applicant は応募時に呼び出し元が渡した任意のフィールドです。email を含むことが想定されます。
type Applicant Document

// Email は応募者のメールアドレスを返します。存在しない場合は空文字列です。
func (a Applicant) Email() string {
	v, _ := a[FieldEmail].(string)
	return v
}

// QueryThread は求人に埋め込まれた質問と返信のスレッドです。
// ID は質問したユーザーの ID であり、スレッド自体の ID ではありません。
type QueryThread struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Question string `json:"question"`
	Reply    []any  `json:"reply"`
}

// Job は求人エンティティです。Applicants と Queries は追記のみ行われます。
type Job struct {
	ID         string
	EmployerID string
	Fields     Document
	Applicants []Applicant
	Queries    []QueryThread
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasApplicant は email に一致する応募者が含まれるかを返します。大文字小文字は区別しません。
func (j *Job) HasApplicant(email string) bool {
	email = strings.TrimSpace(email)
	for _, a := range j.Applicants {
		if strings.EqualFold(strings.TrimSpace(a.Email()), email) {
			return true
		}
	}
	return false
}

// ThreadsAskedBy は askerID に一致するスレッドの位置を返します。
func (j *Job) ThreadsAskedBy(askerID string) []int {
	var idx []int
	for i, q := range j.Queries {
		if q.ID == askerID {
			idx = append(idx, i)
		}
	}
	return idx
}

// ドキュメント内で予約されているフィールド名です。
const (
	FieldID         = "_id"
	FieldEmployerID = "employerId"
	FieldApplicants = "applicants"
	FieldQueries    = "queries"
	FieldEmail      = "email"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
)
