package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/skillforge/skillforge-backend/internal/data/repos/embeddings"
	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/learning"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/gemini"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// RefreshStatus reports what a refresh call did for one entity.
type RefreshStatus struct {
	ID             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	SourceTextHash string    `json:"source_text_hash,omitempty"`
}

const (
	RefreshGenerated = "generated"
	RefreshUnchanged = "unchanged"
	RefreshSkipped   = "skipped"
)

type EmbeddingService interface {
	// RefreshStudent rebuilds the student's profile text and regenerates the
	// embedding unless the text hash is unchanged.
	RefreshStudent(ctx context.Context, studentID uuid.UUID) (*RefreshStatus, error)
	RefreshJob(ctx context.Context, jobID uuid.UUID) (*RefreshStatus, error)
	// RefreshAllJobs refreshes every active posting with bounded concurrency.
	RefreshAllJobs(ctx context.Context) ([]RefreshStatus, error)
}

type embeddingService struct {
	log            *logger.Logger
	embedder       gemini.Client
	studentRepo    students.StudentRepo
	skillRepo      students.StudentSkillRepo
	jobRepo        jobs.JobRepo
	jobSkillRepo   jobs.JobSkillRepo
	enrollmentRepo learning.EnrollmentRepo
	embeddingRepo  embeddings.EmbeddingRepo
}

func NewEmbeddingService(
	baseLog *logger.Logger,
	embedder gemini.Client,
	studentRepo students.StudentRepo,
	skillRepo students.StudentSkillRepo,
	jobRepo jobs.JobRepo,
	jobSkillRepo jobs.JobSkillRepo,
	enrollmentRepo learning.EnrollmentRepo,
	embeddingRepo embeddings.EmbeddingRepo,
) EmbeddingService {
	return &embeddingService{
		log:            baseLog.With("service", "EmbeddingService"),
		embedder:       embedder,
		studentRepo:    studentRepo,
		skillRepo:      skillRepo,
		jobRepo:        jobRepo,
		jobSkillRepo:   jobSkillRepo,
		enrollmentRepo: enrollmentRepo,
		embeddingRepo:  embeddingRepo,
	}
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// buildStudentText folds profile, skills and course history into one block.
// Field labels are part of the hash contract; changing them forces a global
// re-embed.
func buildStudentText(student *domain.Student, skills []students.SkillRow, completedCourses, activeCourses []string) string {
	var parts []string
	if student.Headline != "" {
		parts = append(parts, "Professional Summary: "+student.Headline)
	}
	if student.Bio != "" {
		parts = append(parts, "Bio: "+student.Bio)
	}
	if len(skills) > 0 {
		names := make([]string, 0, len(skills))
		for _, s := range skills {
			names = append(names, s.SkillName)
		}
		parts = append(parts, "Skills: "+strings.Join(names, ", "))
	}
	if student.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("Experience: %d years", student.ExperienceYears))
	}
	if student.Education != "" {
		parts = append(parts, "Education: "+student.Education)
	}
	if len(student.PreferredEmploymentTypes) > 0 {
		roles := make([]string, 0, len(student.PreferredEmploymentTypes))
		for _, t := range student.PreferredEmploymentTypes {
			roles = append(roles, strings.ReplaceAll(t, "_", " "))
		}
		parts = append(parts, "Previous Roles: "+strings.Join(roles, ", "))
	}
	courses := append(append([]string{}, completedCourses...), activeCourses...)
	if len(courses) > 0 {
		parts = append(parts, "Completed Courses: "+strings.Join(courses, "; "))
	}
	return strings.Join(parts, "\n")
}

func buildJobText(job *domain.Job, requirements []jobs.RequirementRow) string {
	var parts []string
	if job.Title != "" {
		parts = append(parts, "Job Title: "+job.Title)
	}
	if job.Description != "" {
		parts = append(parts, "Description: "+job.Description)
	}
	if job.Requirements != "" {
		parts = append(parts, "Requirements: "+job.Requirements)
	}
	if len(requirements) > 0 {
		names := make([]string, 0, len(requirements))
		for _, r := range requirements {
			names = append(names, r.SkillName)
		}
		parts = append(parts, "Required Skills: "+strings.Join(names, ", "))
	}
	if job.EmploymentType != "" {
		parts = append(parts, "Employment Type: "+strings.ReplaceAll(job.EmploymentType, "_", " "))
	}
	if job.Location != "" {
		parts = append(parts, "Location: "+job.Location)
	}
	return strings.Join(parts, "\n")
}

func (s *embeddingService) RefreshStudent(ctx context.Context, studentID uuid.UUID) (*RefreshStatus, error) {
	loaded, err := s.studentRepo.GetByIDs(ctx, nil, []uuid.UUID{studentID})
	if err != nil {
		return nil, err
	}
	if len(loaded) == 0 {
		return &RefreshStatus{ID: studentID, Status: RefreshSkipped}, nil
	}
	student := loaded[0]

	skills, err := s.skillRepo.GetByStudentID(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	completed, err := s.enrollmentRepo.CompletedCourseTitles(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	active, err := s.enrollmentRepo.ActiveCourseTitles(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	text := buildStudentText(student, skills, completed, active)
	if strings.TrimSpace(text) == "" {
		return &RefreshStatus{ID: studentID, Status: RefreshSkipped}, nil
	}
	hash := textHash(text)

	existing, err := s.embeddingRepo.GetStudentEmbedding(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.SourceTextHash == hash {
		return &RefreshStatus{ID: studentID, Status: RefreshUnchanged, SourceTextHash: hash}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{text}, gemini.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(vectors[0])
	if err := s.embeddingRepo.UpsertStudentEmbedding(ctx, nil, studentID, vec, s.embedder.Model(), hash); err != nil {
		return nil, err
	}

	s.log.Info("student embedding generated", "student_id", studentID)
	return &RefreshStatus{ID: studentID, Status: RefreshGenerated, SourceTextHash: hash}, nil
}

func (s *embeddingService) RefreshJob(ctx context.Context, jobID uuid.UUID) (*RefreshStatus, error) {
	job, err := s.jobRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return &RefreshStatus{ID: jobID, Status: RefreshSkipped}, nil
	}

	requirements, err := s.jobSkillRepo.GetByJobIDs(ctx, nil, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}

	text := buildJobText(job, requirements[jobID])
	if strings.TrimSpace(text) == "" {
		return &RefreshStatus{ID: jobID, Status: RefreshSkipped}, nil
	}
	hash := textHash(text)

	existing, err := s.embeddingRepo.GetJobEmbedding(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.SourceTextHash == hash {
		return &RefreshStatus{ID: jobID, Status: RefreshUnchanged, SourceTextHash: hash}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{text}, gemini.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(vectors[0])
	if err := s.embeddingRepo.UpsertJobEmbedding(ctx, nil, jobID, vec, s.embedder.Model(), hash); err != nil {
		return nil, err
	}

	s.log.Info("job embedding generated", "job_id", jobID)
	return &RefreshStatus{ID: jobID, Status: RefreshGenerated, SourceTextHash: hash}, nil
}

func (s *embeddingService) RefreshAllJobs(ctx context.Context) ([]RefreshStatus, error) {
	listed, err := s.jobRepo.ListActive(ctx, nil, jobs.BrowseFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]RefreshStatus, len(listed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, job := range listed {
		g.Go(func() error {
			status, err := s.RefreshJob(gctx, job.ID)
			if err != nil {
				return fmt.Errorf("refresh job %s: %w", job.ID, err)
			}
			results[i] = *status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
