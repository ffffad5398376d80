package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/apierr"
)

type fakeApplicationRepo struct {
	existing bool
	created  []*domain.Application
}

func (f *fakeApplicationRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Application) ([]*domain.Application, error) {
	for _, a := range in {
		a.ID = uuid.New()
	}
	f.created = append(f.created, in...)
	return in, nil
}

func (f *fakeApplicationRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (bool, error) {
	return f.existing, nil
}

func (f *fakeApplicationRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]jobs.ApplicationRow, error) {
	return nil, nil
}

type fakeNotificationRepo struct {
	created  []*domain.Notification
	adminIDs []uuid.UUID
}

func (f *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Notification) ([]*domain.Notification, error) {
	f.created = append(f.created, in...)
	return in, nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, userID, notificationID uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) AdminUserIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	return f.adminIDs, nil
}

func newTestApplicationService(t *testing.T, jobRepo *fakeJobRepo, appRepo *fakeApplicationRepo, notifRepo *fakeNotificationRepo, matching MatchingService) ApplicationService {
	t.Helper()
	log := testLogger(t)
	notifier := NewNotifierService(log, notifRepo, nil)
	return NewApplicationService(log, jobRepo, appRepo, notifRepo, matching, notifier)
}

func TestApplySnapshotsAdminScale(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	job := activeJob(jobID)
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: job}}
	embRepo := &fakeEmbeddingRepo{sims: map[uuid.UUID]float64{jobID: 0.5}}
	matching := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, embRepo, &fakeCourseRepo{})

	appRepo := &fakeApplicationRepo{}
	notifRepo := &fakeNotificationRepo{adminIDs: []uuid.UUID{uuid.New()}}
	svc := newTestApplicationService(t, jobRepo, appRepo, notifRepo, matching)

	student := &domain.Student{ID: uuid.New(), UserID: uuid.New()}
	application, err := svc.Apply(context.Background(), student, jobID, ApplyRequest{CoverLetter: "hello"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if application.Status != domain.ApplicationPendingAdminReview {
		t.Fatalf("status: got=%s", application.Status)
	}
	if application.AdminMatchScore == nil {
		t.Fatal("admin match score missing")
	}
	// composite 0.62 on the 0-100 scale
	if got, want := *application.AdminMatchScore, 62.0; got != want {
		t.Fatalf("admin match score: got=%v want=%v", got, want)
	}
	// one notification for the student, one for the admin
	if len(notifRepo.created) != 2 {
		t.Fatalf("notifications: got=%d want=2", len(notifRepo.created))
	}
}

func TestApplyWithoutEmbeddingLeavesScoreNil(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	matching := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})
	svc := newTestApplicationService(t, jobRepo, &fakeApplicationRepo{}, &fakeNotificationRepo{}, matching)

	application, err := svc.Apply(context.Background(), &domain.Student{ID: uuid.New(), UserID: uuid.New()}, jobID, ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if application.AdminMatchScore != nil {
		t.Fatalf("admin match score: got=%v want=nil", *application.AdminMatchScore)
	}
}

func TestHasApplied(t *testing.T) {
	t.Parallel()

	matching := newTestMatching(t, &fakeJobRepo{}, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})
	svc := newTestApplicationService(t, &fakeJobRepo{}, &fakeApplicationRepo{existing: true}, &fakeNotificationRepo{}, matching)

	applied, err := svc.HasApplied(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("HasApplied: %v", err)
	}
	if !applied {
		t.Fatal("expected applied=true")
	}
}

func TestApplyRejectsDuplicates(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	matching := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})
	svc := newTestApplicationService(t, jobRepo, &fakeApplicationRepo{existing: true}, &fakeNotificationRepo{}, matching)

	_, err := svc.Apply(context.Background(), &domain.Student{ID: uuid.New(), UserID: uuid.New()}, jobID, ApplyRequest{})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyRejectsInactiveJob(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	job := activeJob(jobID)
	job.Status = domain.JobStatusPaused
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: job}}
	matching := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})
	svc := newTestApplicationService(t, jobRepo, &fakeApplicationRepo{}, &fakeNotificationRepo{}, matching)

	_, err := svc.Apply(context.Background(), &domain.Student{ID: uuid.New(), UserID: uuid.New()}, jobID, ApplyRequest{})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	missing := uuid.New()
	_, err = svc.Apply(context.Background(), &domain.Student{ID: uuid.New(), UserID: uuid.New()}, missing, ApplyRequest{})
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
