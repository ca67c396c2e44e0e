package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

func writeOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": true, "data": data})
}

func insertResult(id string) gin.H {
	return gin.H{"acknowledged": true, "insertedId": id}
}

func updateResult(matched, modified int) gin.H {
	return gin.H{"acknowledged": true, "matchedCount": matched, "modifiedCount": modified}
}

func deleteResult(deleted int) gin.H {
	return gin.H{"acknowledged": true, "deletedCount": deleted}
}

// toJobJSON は任意フィールドと管理フィールドを 1 つのオブジェクトに平坦化します。
func toJobJSON(j *job.Job) map[string]any {
	out := make(map[string]any, len(j.Fields)+6)
	for k, v := range j.Fields {
		out[k] = v
	}

	applicants := j.Applicants
	if applicants == nil {
		applicants = []job.Applicant{}
	}
	queries := j.Queries
	if queries == nil {
		queries = []job.QueryThread{}
	}

	out[job.FieldID] = j.ID
	out[job.FieldEmployerID] = j.EmployerID
	out[job.FieldApplicants] = applicants
	out[job.FieldQueries] = queries
	out[job.FieldCreatedAt] = j.CreatedAt
	out[job.FieldUpdatedAt] = j.UpdatedAt
	return out
}

func toJobsJSON(jobs []*job.Job) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobJSON(j))
	}
	return out
}

func toUserJSON(u *user.User) map[string]any {
	out := make(map[string]any, len(u.Fields)+3)
	for k, v := range u.Fields {
		out[k] = v
	}
	out["_id"] = u.ID
	out["email"] = u.Email
	out["createdAt"] = u.CreatedAt
	return out
}

func toConversationJSON(conv *conversation.Conversation) gin.H {
	return gin.H{
		"_id":       conv.ID,
		"members":   conv.Members,
		"createdAt": conv.CreatedAt,
	}
}
