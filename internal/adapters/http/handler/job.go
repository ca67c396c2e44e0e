package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
)

// JobHandler は求人関連エンドポイントの HTTP 実装です。
type JobHandler struct {
	svc job.UseCase
}

// NewJobHandler は JobHandler を生成します。
func NewJobHandler(svc job.UseCase) *JobHandler {
	return &JobHandler{svc: svc}
}

// Register はルーティングを登録します。
func (h *JobHandler) Register(r gin.IRouter) {
	r.POST("/jobs", h.CreateJob)
	r.GET("/jobs", h.ListJobs)
	r.GET("/jobs/:id", h.GetJob)
	r.DELETE("/jobs/:id", h.DeleteJob)
	r.PATCH("/apply/:jobId", h.ApplyToJob)
	r.PATCH("/query", h.SubmitQuery)
	r.PATCH("/reply", h.SubmitReply)
	r.GET("/my-jobs/:id", h.ListJobsByEmployer)
	r.GET("/applied-jobs/:email", h.ListJobsAppliedByEmail)
}

type submitQueryRequest struct {
	JobID    string `json:"jobId"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Question string `json:"question"`
}

type submitReplyRequest struct {
	JobID  string `json:"jobId"`
	UserID string `json:"userId"`
	Reply  any    `json:"reply"`
}

// CreateJob は POST /jobs を処理します。
func (h *JobHandler) CreateJob(c *gin.Context) {
	var body job.Document
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errInvalidBody)
		return
	}

	created, err := h.svc.CreateJob(c.Request.Context(), job.CreateJobInput{Fields: body})
	if err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, insertResult(created.ID))
}

// ListJobs は GET /jobs を処理します。
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.svc.ListJobs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toJobsJSON(jobs))
}

// GetJob は GET /jobs/:id を処理します。
func (h *JobHandler) GetJob(c *gin.Context) {
	found, err := h.svc.GetJob(c.Request.Context(), job.GetJobInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toJobJSON(found))
}

// DeleteJob は DELETE /jobs/:id を処理します。
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.svc.DeleteJob(c.Request.Context(), job.DeleteJobInput{ID: c.Param("id")}); err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, deleteResult(1))
}

// ApplyToJob は PATCH /apply/:jobId を処理します。リクエストボディ全体が応募データです。
func (h *JobHandler) ApplyToJob(c *gin.Context) {
	var body job.Applicant
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, errInvalidBody)
		return
	}

	if err := h.svc.ApplyToJob(c.Request.Context(), job.ApplyToJobInput{
		JobID:     c.Param("jobId"),
		Applicant: body,
	}); err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, updateResult(1, 1))
}

// SubmitQuery は PATCH /query を処理します。
func (h *JobHandler) SubmitQuery(c *gin.Context) {
	var req submitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errInvalidBody)
		return
	}

	if err := h.svc.SubmitQuery(c.Request.Context(), job.SubmitQueryInput{
		JobID:    req.JobID,
		AskerID:  req.UserID,
		Email:    req.Email,
		Question: req.Question,
	}); err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, updateResult(1, 1))
}

// SubmitReply は PATCH /reply を処理します。
func (h *JobHandler) SubmitReply(c *gin.Context) {
	var req submitReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errInvalidBody)
		return
	}

	result, err := h.svc.SubmitReply(c.Request.Context(), job.SubmitReplyInput{
		JobID:   req.JobID,
		AskerID: req.UserID,
		Reply:   req.Reply,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	data := updateResult(len(result.MatchedJobs), len(result.MatchedJobs))
	data["modifiedThreads"] = result.ModifiedThreads
	writeOK(c, data)
}

// ListJobsByEmployer は GET /my-jobs/:id を処理します。
func (h *JobHandler) ListJobsByEmployer(c *gin.Context) {
	jobs, err := h.svc.ListJobsByEmployer(c.Request.Context(), job.ListJobsByEmployerInput{EmployerID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toJobsJSON(jobs))
}

// ListJobsAppliedByEmail は GET /applied-jobs/:email を処理します。
func (h *JobHandler) ListJobsAppliedByEmail(c *gin.Context) {
	jobs, err := h.svc.ListJobsAppliedByEmail(c.Request.Context(), job.ListJobsAppliedByEmailInput{Email: c.Param("email")})
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, toJobsJSON(jobs))
}
