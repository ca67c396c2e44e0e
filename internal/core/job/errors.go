package job

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound は求人が存在しない場合に返却されます。
	ErrJobNotFound = errors.New("job: not found")
	// ErrQueryNotFound は質問者 ID に一致するスレッドが存在しない場合に返却されます。
	ErrQueryNotFound = errors.New("job: query thread not found")
	// ErrInvalidID は求人 ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("job: invalid id")
	// ErrInvalidEmployerID は employerId が未指定または不正な場合に返却されます。
	ErrInvalidEmployerID = errors.New("job: invalid employer id")
	// ErrInvalidAskerID は質問者 ID が不正な場合に返却されます。
	ErrInvalidAskerID = errors.New("job: invalid asker id")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("job: invalid email")
	// ErrInvalidApplicant は応募データが不正な場合に返却されます。
	ErrInvalidApplicant = errors.New("job: invalid applicant")
	// ErrInvalidQuestion は質問本文が空の場合に返却されます。
	ErrInvalidQuestion = errors.New("job: invalid question")
	// ErrInvalidReply は返信内容が空の場合に返却されます。
	ErrInvalidReply = errors.New("job: invalid reply")
	// ErrInvalidDocument は求人ドキュメントの形式が不正な場合に返却されます。
	ErrInvalidDocument = errors.New("job: invalid document")
	// ErrStoreUnavailable はストアに接続できない場合に返却されます。
	ErrStoreUnavailable = errors.New("job: store unavailable")
	// ErrPartialApplication は複数求人への返信の一部のみ適用された場合に返却されます。
	ErrPartialApplication = errors.New("job: partially applied")
)

// PartialApplicationError は複数求人にまたがる更新で一部が失敗したことを表します。
type PartialApplicationError struct {
	Applied []string
	Failed  map[string]error
}

func (e *PartialApplicationError) Error() string {
	return fmt.Sprintf("%s: %d applied, %d failed", ErrPartialApplication, len(e.Applied), len(e.Failed))
}

// Is は errors.Is(err, ErrPartialApplication) を成立させます。
func (e *PartialApplicationError) Is(target error) bool {
	return target == ErrPartialApplication
}

// Unwrap は失敗した各求人のエラーを返します。
func (e *PartialApplicationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}
