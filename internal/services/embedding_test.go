package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/gemini"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string, taskType string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = make([]float32, gemini.EmbeddingDim)
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string { return "gemini-embedding-001" }

type fakeStudentRepo struct {
	student *domain.Student
}

func (f *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Student) ([]*domain.Student, error) {
	return in, nil
}

func (f *fakeStudentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Student, error) {
	if f.student == nil {
		return nil, nil
	}
	return []*domain.Student{f.student}, nil
}

func (f *fakeStudentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.Student, error) {
	return f.student, nil
}

type fakeEnrollmentRepo struct {
	completed []string
	active    []string
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Enrollment) ([]*domain.Enrollment, error) {
	return in, nil
}

func (f *fakeEnrollmentRepo) CompletedCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error) {
	return f.completed, nil
}

func (f *fakeEnrollmentRepo) ActiveCourseTitles(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]string, error) {
	return f.active, nil
}

// recordingEmbeddingRepo extends the matching fake with upsert tracking.
type recordingEmbeddingRepo struct {
	fakeEmbeddingRepo
	studentHash string
	upsertCalls int
	lastHash    string
	lastModel   string
}

func (r *recordingEmbeddingRepo) GetStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*domain.StudentEmbedding, error) {
	if r.studentHash == "" {
		return nil, nil
	}
	return &domain.StudentEmbedding{StudentID: studentID, SourceTextHash: r.studentHash}, nil
}

func (r *recordingEmbeddingRepo) UpsertStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error {
	r.upsertCalls++
	r.lastHash = sourceHash
	r.lastModel = model
	return nil
}

func newTestEmbeddingService(t *testing.T, embedder *fakeEmbedder, studentRepo *fakeStudentRepo, embRepo *recordingEmbeddingRepo) EmbeddingService {
	t.Helper()
	return NewEmbeddingService(
		testLogger(t),
		embedder,
		studentRepo,
		&fakeStudentSkillRepo{},
		&fakeJobRepo{},
		&fakeJobSkillRepo{},
		&fakeEnrollmentRepo{},
		embRepo,
	)
}

func TestRefreshStudentGeneratesEmbedding(t *testing.T) {
	t.Parallel()

	student := &domain.Student{ID: uuid.New(), Headline: "Backend developer", ExperienceYears: 3}
	embedder := &fakeEmbedder{}
	embRepo := &recordingEmbeddingRepo{}
	svc := newTestEmbeddingService(t, embedder, &fakeStudentRepo{student: student}, embRepo)

	status, err := svc.RefreshStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("RefreshStudent: %v", err)
	}
	if status.Status != RefreshGenerated {
		t.Fatalf("status: got=%s want=%s", status.Status, RefreshGenerated)
	}
	if embedder.calls != 1 {
		t.Fatalf("embedder calls: got=%d want=1", embedder.calls)
	}
	if embRepo.upsertCalls != 1 {
		t.Fatalf("upserts: got=%d want=1", embRepo.upsertCalls)
	}
	if embRepo.lastHash != status.SourceTextHash || embRepo.lastHash == "" {
		t.Fatalf("stored hash mismatch: stored=%q reported=%q", embRepo.lastHash, status.SourceTextHash)
	}
	if embRepo.lastModel != "gemini-embedding-001" {
		t.Fatalf("stored model: got=%q", embRepo.lastModel)
	}
}

func TestRefreshStudentSkipsUnchangedText(t *testing.T) {
	t.Parallel()

	student := &domain.Student{ID: uuid.New(), Headline: "Backend developer", ExperienceYears: 3}
	embedder := &fakeEmbedder{}
	first := &recordingEmbeddingRepo{}
	svc := newTestEmbeddingService(t, embedder, &fakeStudentRepo{student: student}, first)

	status, err := svc.RefreshStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("RefreshStudent: %v", err)
	}

	// same profile with the stored hash already current
	second := &recordingEmbeddingRepo{studentHash: status.SourceTextHash}
	svc = newTestEmbeddingService(t, embedder, &fakeStudentRepo{student: student}, second)

	status, err = svc.RefreshStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("RefreshStudent: %v", err)
	}
	if status.Status != RefreshUnchanged {
		t.Fatalf("status: got=%s want=%s", status.Status, RefreshUnchanged)
	}
	if embedder.calls != 1 {
		t.Fatalf("embedder called for unchanged text: calls=%d", embedder.calls)
	}
	if second.upsertCalls != 0 {
		t.Fatalf("upsert for unchanged text: calls=%d", second.upsertCalls)
	}
}

func TestRefreshStudentWithEmptyProfileIsSkipped(t *testing.T) {
	t.Parallel()

	student := &domain.Student{ID: uuid.New()}
	embedder := &fakeEmbedder{}
	embRepo := &recordingEmbeddingRepo{}
	svc := newTestEmbeddingService(t, embedder, &fakeStudentRepo{student: student}, embRepo)

	status, err := svc.RefreshStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("RefreshStudent: %v", err)
	}
	if status.Status != RefreshSkipped {
		t.Fatalf("status: got=%s want=%s", status.Status, RefreshSkipped)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedder called for empty profile: calls=%d", embedder.calls)
	}
}

func TestBuildStudentTextLayout(t *testing.T) {
	t.Parallel()

	student := &domain.Student{
		Headline:        "Senior Go engineer",
		Bio:             "Builds services.",
		Education:       "B.Tech",
		ExperienceYears: 4,
	}
	skills := []students.SkillRow{
		skillRow(uuid.New(), "Go", 5, 4),
		skillRow(uuid.New(), "PostgreSQL", 4, 3),
	}

	got := buildStudentText(student, skills, []string{"Advanced Go"}, []string{"Kubernetes Basics"})
	want := "Professional Summary: Senior Go engineer\n" +
		"Bio: Builds services.\n" +
		"Skills: Go, PostgreSQL\n" +
		"Experience: 4 years\n" +
		"Education: B.Tech\n" +
		"Completed Courses: Advanced Go; Kubernetes Basics"
	if got != want {
		t.Fatalf("student text:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildJobTextLayout(t *testing.T) {
	t.Parallel()

	job := &domain.Job{
		Title:          "Backend Engineer",
		Description:    "Own the matching engine.",
		Requirements:   "3+ years of Go.",
		EmploymentType: domain.EmploymentFullTime,
		Location:       "Remote, India",
	}
	reqs := []jobs.RequirementRow{
		requirement(uuid.New(), "Go", true, nil),
		requirement(uuid.New(), "PostgreSQL", false, nil),
	}

	got := buildJobText(job, reqs)
	want := "Job Title: Backend Engineer\n" +
		"Description: Own the matching engine.\n" +
		"Requirements: 3+ years of Go.\n" +
		"Required Skills: Go, PostgreSQL\n" +
		"Employment Type: full time\n" +
		"Location: Remote, India"
	if got != want {
		t.Fatalf("job text:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
