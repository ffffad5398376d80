package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/http/response"
	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/services"
)

type StudentJobHandler struct {
	log                *logger.Logger
	studentRepo        students.StudentRepo
	matchingService    services.MatchingService
	applicationService services.ApplicationService
}

func NewStudentJobHandler(
	log *logger.Logger,
	studentRepo students.StudentRepo,
	matchingService services.MatchingService,
	applicationService services.ApplicationService,
) *StudentJobHandler {
	return &StudentJobHandler{
		log:                log.With("handler", "StudentJobHandler"),
		studentRepo:        studentRepo,
		matchingService:    matchingService,
		applicationService: applicationService,
	}
}

// currentStudent resolves the authenticated user's student profile. Returns
// (nil, nil) for authenticated users without one (recruiters, admins).
func (h *StudentJobHandler) currentStudent(ctx context.Context) (*domain.Student, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, errors.New("unauthorized")
	}
	return h.studentRepo.GetByUserID(ctx, nil, rd.UserID)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func (h *StudentJobHandler) GetRecommended(c *gin.Context) {
	ctx := c.Request.Context()
	student, err := h.currentStudent(ctx)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	if student == nil {
		response.RespondError(c, http.StatusBadRequest, "student_profile_required", errors.New("student profile required"))
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	result, err := h.matchingService.Recommend(ctx, student, limit, offset)
	if err != nil {
		h.log.Error("GetRecommended failed", "error", err, "student_id", student.ID)
		response.RespondServiceError(c, "recommend_failed", err)
		return
	}
	response.RespondOK(c, result)
}

func (h *StudentJobHandler) BrowseJobs(c *gin.Context) {
	ctx := c.Request.Context()
	student, err := h.currentStudent(ctx)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	filter := jobs.BrowseFilter{
		Search:         c.Query("search"),
		EmploymentType: c.Query("employment_type"),
		RemoteType:     c.Query("remote_type"),
		Location:       c.Query("location"),
		Limit:          intQuery(c, "limit", 20),
		Offset:         intQuery(c, "offset", 0),
	}

	result, err := h.matchingService.Browse(ctx, student, filter)
	if err != nil {
		h.log.Error("BrowseJobs failed", "error", err)
		response.RespondServiceError(c, "browse_failed", err)
		return
	}
	response.RespondOK(c, result)
}

func (h *StudentJobHandler) GetJobDetail(c *gin.Context) {
	ctx := c.Request.Context()
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	student, err := h.currentStudent(ctx)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	detail, err := h.matchingService.Detail(ctx, jobID, student)
	if err != nil {
		h.log.Error("GetJobDetail failed", "error", err, "job_id", jobID)
		response.RespondServiceError(c, "job_detail_failed", err)
		return
	}

	if student != nil {
		applied, err := h.applicationService.HasApplied(ctx, student.ID, jobID)
		if err != nil {
			h.log.Warn("HasApplied lookup failed", "error", err, "job_id", jobID, "student_id", student.ID)
		} else {
			detail.HasApplied = applied
		}
	}
	response.RespondOK(c, detail)
}

func (h *StudentJobHandler) Apply(c *gin.Context) {
	ctx := c.Request.Context()
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	student, err := h.currentStudent(ctx)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	if student == nil {
		response.RespondError(c, http.StatusBadRequest, "student_profile_required", errors.New("student profile required"))
		return
	}

	var req services.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	application, err := h.applicationService.Apply(ctx, student, jobID, req)
	if err != nil {
		h.log.Error("Apply failed", "error", err, "job_id", jobID, "student_id", student.ID)
		response.RespondServiceError(c, "apply_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"application": application})
}

func (h *StudentJobHandler) MyApplications(c *gin.Context) {
	ctx := c.Request.Context()
	student, err := h.currentStudent(ctx)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	if student == nil {
		response.RespondError(c, http.StatusBadRequest, "student_profile_required", errors.New("student profile required"))
		return
	}

	applications, err := h.applicationService.ListForStudent(ctx, student.ID)
	if err != nil {
		h.log.Error("MyApplications failed", "error", err, "student_id", student.ID)
		response.RespondServiceError(c, "load_applications_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"applications": applications, "total": len(applications)})
}
