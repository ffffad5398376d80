package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type EmbeddingHandler struct {
	log              *logger.Logger
	studentRepo      students.StudentRepo
	embeddingService services.EmbeddingService
}

func NewEmbeddingHandler(log *logger.Logger, studentRepo students.StudentRepo, embeddingService services.EmbeddingService) *EmbeddingHandler {
	return &EmbeddingHandler{
		log:              log.With("handler", "EmbeddingHandler"),
		studentRepo:      studentRepo,
		embeddingService: embeddingService,
	}
}

// RefreshMyEmbedding regenerates the authenticated student's profile
// embedding unless the source text is unchanged.
func (h *EmbeddingHandler) RefreshMyEmbedding(c *gin.Context) {
	ctx := c.Request.Context()
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	student, err := h.studentRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		h.log.Error("RefreshMyEmbedding student lookup failed", "error", err, "user_id", rd.UserID)
		response.RespondServiceError(c, "refresh_failed", err)
		return
	}
	if student == nil {
		response.RespondError(c, http.StatusBadRequest, "student_profile_required", errors.New("student profile required"))
		return
	}

	status, err := h.embeddingService.RefreshStudent(ctx, student.ID)
	if err != nil {
		h.log.Error("RefreshMyEmbedding failed", "error", err, "student_id", student.ID)
		response.RespondServiceError(c, "refresh_failed", err)
		return
	}
	response.RespondOK(c, status)
}

func (h *EmbeddingHandler) RefreshJobEmbedding(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	status, err := h.embeddingService.RefreshJob(c.Request.Context(), jobID)
	if err != nil {
		h.log.Error("RefreshJobEmbedding failed", "error", err, "job_id", jobID)
		response.RespondServiceError(c, "refresh_failed", err)
		return
	}
	response.RespondOK(c, status)
}

func (h *EmbeddingHandler) RefreshAllJobEmbeddings(c *gin.Context) {
	results, err := h.embeddingService.RefreshAllJobs(c.Request.Context())
	if err != nil {
		h.log.Error("RefreshAllJobEmbeddings failed", "error", err)
		response.RespondServiceError(c, "refresh_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": results, "total": len(results)})
}
