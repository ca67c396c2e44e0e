package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

// エラーコードはレスポンスの error.code にそのまま出力されます。
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodePartialApplication = "PARTIAL_APPLICATION"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

var errInvalidBody = errors.New("invalid request body")

func toHTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody),
		job.IsValidation(err),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, conversation.ErrInvalidMember):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, job.ErrQueryNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, job.ErrPartialApplication):
		return http.StatusConflict, CodePartialApplication
	case errors.Is(err, job.ErrStoreUnavailable),
		errors.Is(err, user.ErrStoreUnavailable),
		errors.Is(err, conversation.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError は {status:false, error:{code,message}} 形式で失敗を返します。
func writeError(c *gin.Context, err error) {
	status, code := toHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// 内部エラーの詳細はログにのみ残します。
		_ = c.Error(err)
		message = "internal error"
	}

	body := gin.H{
		"status": false,
		"error":  gin.H{"code": code, "message": message},
	}

	var partial *job.PartialApplicationError
	if errors.As(err, &partial) {
		body["data"] = gin.H{
			"appliedJobIds": partial.Applied,
			"appliedCount":  len(partial.Applied),
			"failedCount":   len(partial.Failed),
		}
	}

	c.AbortWithStatusJSON(status, body)
}

// writeRawError はチャット系エンドポイント向けに {error} のみを返します。
func writeRawError(c *gin.Context, err error) {
	status, _ := toHTTPStatus(err)
	if status != http.StatusBadRequest {
		_ = c.Error(err)
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
