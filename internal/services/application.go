package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/notifications"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/apierr"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// ApplyRequest is the student-supplied part of an application.
type ApplyRequest struct {
	CoverLetter      string   `json:"cover_letter"`
	ExpectedSalary   *float64 `json:"expected_salary"`
	NoticePeriodDays *int     `json:"notice_period_days"`
}

type ApplicationService interface {
	// Apply creates one application per (student, job) pair and snapshots
	// the match score at apply time on the 0-100 admin scale. The snapshot
	// is never recomputed afterwards.
	Apply(ctx context.Context, student *domain.Student, jobID uuid.UUID, req ApplyRequest) (*domain.Application, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]jobs.ApplicationRow, error)
	HasApplied(ctx context.Context, studentID, jobID uuid.UUID) (bool, error)
}

type applicationService struct {
	log              *logger.Logger
	jobRepo          jobs.JobRepo
	applicationRepo  jobs.ApplicationRepo
	notificationRepo notifications.NotificationRepo
	matching         MatchingService
	notifier         NotifierService
}

func NewApplicationService(
	baseLog *logger.Logger,
	jobRepo jobs.JobRepo,
	applicationRepo jobs.ApplicationRepo,
	notificationRepo notifications.NotificationRepo,
	matching MatchingService,
	notifier NotifierService,
) ApplicationService {
	return &applicationService{
		log:              baseLog.With("service", "ApplicationService"),
		jobRepo:          jobRepo,
		applicationRepo:  applicationRepo,
		notificationRepo: notificationRepo,
		matching:         matching,
		notifier:         notifier,
	}
}

func (s *applicationService) Apply(ctx context.Context, student *domain.Student, jobID uuid.UUID, req ApplyRequest) (*domain.Application, error) {
	if student == nil {
		return nil, apierr.New(http.StatusBadRequest, "STUDENT_PROFILE_REQUIRED", errors.New("student profile required"))
	}

	job, err := s.jobRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.New(http.StatusNotFound, "JOB_NOT_FOUND", errors.New("job not found"))
	}
	if job.Status != domain.JobStatusActive {
		return nil, apierr.New(http.StatusConflict, "JOB_NOT_ACTIVE", fmt.Errorf("job is %s", job.Status))
	}

	exists, err := s.applicationRepo.Exists(ctx, nil, student.ID, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierr.New(http.StatusConflict, "ALREADY_APPLIED", errors.New("application already exists for this job"))
	}

	// score snapshot; a missing embedding leaves it null rather than zero
	score, err := s.matching.ScoreForApplication(ctx, student, jobID)
	if err != nil {
		s.log.Warn("match score snapshot failed", "job_id", jobID, "student_id", student.ID, "error", err)
		score = nil
	}
	var adminScore *float64
	if score != nil {
		v := math.Round(*score*100*100) / 100
		adminScore = &v
	}

	application := &domain.Application{
		StudentID:        student.ID,
		JobID:            jobID,
		Status:           domain.ApplicationPendingAdminReview,
		CoverLetter:      req.CoverLetter,
		ExpectedSalary:   req.ExpectedSalary,
		NoticePeriodDays: req.NoticePeriodDays,
		AdminMatchScore:  adminScore,
	}
	created, err := s.applicationRepo.Create(ctx, nil, []*domain.Application{application})
	if err != nil {
		return nil, err
	}
	application = created[0]

	if err := s.jobRepo.IncrementApplicationsCount(ctx, nil, jobID); err != nil {
		s.log.Warn("applications count bump failed", "job_id", jobID, "error", err)
	}

	s.notifyApplied(ctx, student, job, application)
	return application, nil
}

func (s *applicationService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]jobs.ApplicationRow, error) {
	return s.applicationRepo.GetByStudentID(ctx, nil, studentID)
}

func (s *applicationService) HasApplied(ctx context.Context, studentID, jobID uuid.UUID) (bool, error) {
	return s.applicationRepo.Exists(ctx, nil, studentID, jobID)
}

func (s *applicationService) notifyApplied(ctx context.Context, student *domain.Student, job *domain.Job, application *domain.Application) {
	companyName := ""
	if job.Company != nil {
		companyName = job.Company.Name
	}

	err := s.notifier.Notify(ctx,
		[]uuid.UUID{student.UserID},
		domain.NotificationApplicationUpdate,
		"Application submitted",
		fmt.Sprintf("Your application for %s at %s is pending review.", job.Title, companyName),
		"/applications",
		"application", &application.ID,
	)
	if err != nil {
		s.log.Warn("student notification failed", "application_id", application.ID, "error", err)
	}

	adminIDs, err := s.notificationRepo.AdminUserIDs(ctx, nil)
	if err != nil {
		s.log.Warn("admin lookup failed", "error", err)
		return
	}
	err = s.notifier.Notify(ctx,
		adminIDs,
		domain.NotificationApplicationUpdate,
		"New application to review",
		fmt.Sprintf("A student applied for %s at %s.", job.Title, companyName),
		"/admin/applications",
		"application", &application.ID,
	)
	if err != nil {
		s.log.Warn("admin notification failed", "application_id", application.ID, "error", err)
	}
}
