package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/skillforge/skillforge-backend/internal/data/repos/embeddings"
	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/learning"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

type fakeJobRepo struct {
	jobs       map[uuid.UUID]*domain.Job
	listed     []*domain.Job
	getByIDs   int
	listActive int
}

func (f *fakeJobRepo) Create(ctx context.Context, tx *gorm.DB, in []*domain.Job) ([]*domain.Job, error) {
	return in, nil
}

func (f *fakeJobRepo) GetByIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) ([]*domain.Job, error) {
	f.getByIDs++
	var out []*domain.Job
	for _, id := range jobIDs {
		if j, ok := f.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Job, error) {
	return f.jobs[jobID], nil
}

func (f *fakeJobRepo) ListActive(ctx context.Context, tx *gorm.DB, filter jobs.BrowseFilter) ([]*domain.Job, error) {
	f.listActive++
	return f.listed, nil
}

func (f *fakeJobRepo) CountActive(ctx context.Context, tx *gorm.DB, filter jobs.BrowseFilter) (int64, error) {
	return int64(len(f.listed)), nil
}

func (f *fakeJobRepo) IncrementApplicationsCount(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) error {
	return nil
}

type fakeJobSkillRepo struct {
	requirements map[uuid.UUID][]jobs.RequirementRow
	calls        int
}

func (f *fakeJobSkillRepo) GetByJobIDs(ctx context.Context, tx *gorm.DB, jobIDs []uuid.UUID) (map[uuid.UUID][]jobs.RequirementRow, error) {
	f.calls++
	out := make(map[uuid.UUID][]jobs.RequirementRow)
	for _, id := range jobIDs {
		if rows, ok := f.requirements[id]; ok {
			out[id] = rows
		}
	}
	return out, nil
}

type fakeStudentSkillRepo struct {
	rows  []students.SkillRow
	calls int
}

func (f *fakeStudentSkillRepo) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]students.SkillRow, error) {
	f.calls++
	return f.rows, nil
}

type fakeEmbeddingRepo struct {
	candidates []embeddings.JobCandidate
	sims       map[uuid.UUID]float64
	hasStudent bool
}

func (f *fakeEmbeddingRepo) CandidatesForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, threshold float64) ([]embeddings.JobCandidate, error) {
	var out []embeddings.JobCandidate
	for _, c := range f.candidates {
		if c.Similarity >= threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEmbeddingRepo) PairSimilarity(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (*float64, error) {
	if sim, ok := f.sims[jobID]; ok {
		return &sim, nil
	}
	return nil, nil
}

func (f *fakeEmbeddingRepo) SimilaritiesForJobs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64)
	for _, id := range jobIDs {
		if sim, ok := f.sims[id]; ok {
			out[id] = sim
		}
	}
	return out, nil
}

func (f *fakeEmbeddingRepo) GetStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*domain.StudentEmbedding, error) {
	if !f.hasStudent {
		return nil, nil
	}
	return &domain.StudentEmbedding{StudentID: studentID}, nil
}

func (f *fakeEmbeddingRepo) GetJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.JobEmbedding, error) {
	return nil, nil
}

func (f *fakeEmbeddingRepo) UpsertStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error {
	return nil
}

func (f *fakeEmbeddingRepo) UpsertJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error {
	return nil
}

type fakeCourseRepo struct {
	rows      []learning.GapCourseRow
	lastNames []string
}

func (f *fakeCourseRepo) GapCourses(ctx context.Context, tx *gorm.DB, skillNames []string, limit int) ([]learning.GapCourseRow, error) {
	f.lastNames = skillNames
	return f.rows, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func activeJob(id uuid.UUID) *domain.Job {
	return &domain.Job{
		ID:         id,
		Title:      "Backend Engineer",
		Status:     domain.JobStatusActive,
		RemoteType: domain.RemoteTypeRemote,
	}
}

func newTestMatching(t *testing.T, jobRepo *fakeJobRepo, skillRepo *fakeJobSkillRepo, studentSkills *fakeStudentSkillRepo, embRepo *fakeEmbeddingRepo, courses *fakeCourseRepo) MatchingService {
	t.Helper()
	return NewMatchingService(testLogger(t), jobRepo, skillRepo, studentSkills, embRepo, courses)
}

func TestRecommendThresholdInclusive(t *testing.T) {
	t.Parallel()

	atBar := uuid.New()
	below := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{
		atBar: activeJob(atBar),
		below: activeJob(below),
	}}
	embRepo := &fakeEmbeddingRepo{candidates: []embeddings.JobCandidate{
		// no skill requirements, neutral experience and preference:
		// composite = 0.55*vector + 0.30*0.8 + 0.15*0.7
		{JobID: atBar, Similarity: 0.5545}, // 0.6500
		{JobID: below, Similarity: 0.5543}, // 0.6499
	}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, embRepo, &fakeCourseRepo{})

	student := &domain.Student{ID: uuid.New()}
	result, err := svc.Recommend(context.Background(), student, 20, 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("total: got=%d want=1", result.Total)
	}
	if len(result.Jobs) != 1 || result.Jobs[0].Job.ID != atBar {
		t.Fatalf("expected only the job at the acceptance bar, got %+v", result.Jobs)
	}
	if got := result.Jobs[0].Breakdown.CompositeScore; got != 0.65 {
		t.Fatalf("composite: got=%v want=0.65", got)
	}
	if result.Threshold != 0.65 {
		t.Fatalf("threshold: got=%v want=0.65", result.Threshold)
	}
}

func TestRecommendEmptyWithoutCandidates(t *testing.T) {
	t.Parallel()

	svc := newTestMatching(t, &fakeJobRepo{}, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})

	result, err := svc.Recommend(context.Background(), &domain.Student{ID: uuid.New()}, 20, 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if result.Total != 0 || len(result.Jobs) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestRecommendBatchesSkillLookups(t *testing.T) {
	t.Parallel()

	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{}}
	var candidates []embeddings.JobCandidate
	for i := 0; i < 5; i++ {
		id := uuid.New()
		jobRepo.jobs[id] = activeJob(id)
		candidates = append(candidates, embeddings.JobCandidate{JobID: id, Similarity: 0.9})
	}
	skillRepo := &fakeJobSkillRepo{}
	studentSkills := &fakeStudentSkillRepo{}
	svc := newTestMatching(t, jobRepo, skillRepo, studentSkills, &fakeEmbeddingRepo{candidates: candidates}, &fakeCourseRepo{})

	if _, err := svc.Recommend(context.Background(), &domain.Student{ID: uuid.New()}, 20, 0); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if skillRepo.calls != 1 {
		t.Fatalf("requirement lookups: got=%d want=1", skillRepo.calls)
	}
	if studentSkills.calls != 1 {
		t.Fatalf("student skill lookups: got=%d want=1", studentSkills.calls)
	}
	if jobRepo.getByIDs != 1 {
		t.Fatalf("job lookups: got=%d want=1", jobRepo.getByIDs)
	}
}

func TestRecommendOrdersAndPaginates(t *testing.T) {
	t.Parallel()

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{
		first:  activeJob(first),
		second: activeJob(second),
		third:  activeJob(third),
	}}
	embRepo := &fakeEmbeddingRepo{candidates: []embeddings.JobCandidate{
		{JobID: second, Similarity: 0.80},
		{JobID: third, Similarity: 0.80}, // tie, retrieval order must hold
		{JobID: first, Similarity: 0.95},
	}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, embRepo, &fakeCourseRepo{})
	student := &domain.Student{ID: uuid.New()}

	result, err := svc.Recommend(context.Background(), student, 20, 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("total: got=%d want=3", result.Total)
	}
	gotOrder := []uuid.UUID{result.Jobs[0].Job.ID, result.Jobs[1].Job.ID, result.Jobs[2].Job.ID}
	wantOrder := []uuid.UUID{first, second, third}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order[%d]: got=%s want=%s", i, gotOrder[i], wantOrder[i])
		}
	}

	page, err := svc.Recommend(context.Background(), student, 1, 1)
	if err != nil {
		t.Fatalf("Recommend page: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("page total: got=%d want=3", page.Total)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].Job.ID != second {
		t.Fatalf("page contents: %+v", page.Jobs)
	}

	past, err := svc.Recommend(context.Background(), student, 20, 10)
	if err != nil {
		t.Fatalf("Recommend past end: %v", err)
	}
	if len(past.Jobs) != 0 || past.Total != 3 {
		t.Fatalf("offset past end: jobs=%d total=%d", len(past.Jobs), past.Total)
	}
}

func TestBrowseWithoutStudentSkipsScoring(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	jobRepo := &fakeJobRepo{listed: []*domain.Job{activeJob(id)}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})

	result, err := svc.Browse(context.Background(), nil, jobs.BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if result.Total != 1 || len(result.Jobs) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Jobs[0].MatchScore != nil || result.Jobs[0].Breakdown != nil {
		t.Fatalf("scores without student context: %+v", result.Jobs[0])
	}
}

func TestBrowseTruncatesLongDescriptions(t *testing.T) {
	t.Parallel()

	long := activeJob(uuid.New())
	long.Description = strings.Repeat("a", 450)
	short := activeJob(uuid.New())
	short.Description = "brief"
	jobRepo := &fakeJobRepo{listed: []*domain.Job{long, short}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})

	result, err := svc.Browse(context.Background(), nil, jobs.BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if got, want := result.Jobs[0].Job.Description, strings.Repeat("a", 300)+"..."; got != want {
		t.Fatalf("truncated description: got %d chars", len(got))
	}
	if got := result.Jobs[1].Job.Description; got != "brief" {
		t.Fatalf("short description changed: %q", got)
	}
	// the listed row itself must not be mutated
	if len(long.Description) != 450 {
		t.Fatalf("source job mutated: %d chars", len(long.Description))
	}
}

func TestBrowseScoresOnlyEmbeddedJobs(t *testing.T) {
	t.Parallel()

	scored := uuid.New()
	unscored := uuid.New()
	jobRepo := &fakeJobRepo{listed: []*domain.Job{activeJob(scored), activeJob(unscored)}}
	embRepo := &fakeEmbeddingRepo{
		hasStudent: true,
		sims:       map[uuid.UUID]float64{scored: 0.9},
	}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, embRepo, &fakeCourseRepo{})

	result, err := svc.Browse(context.Background(), &domain.Student{ID: uuid.New()}, jobs.BrowseFilter{})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	byID := map[uuid.UUID]ScoredJob{}
	for _, sj := range result.Jobs {
		byID[sj.Job.ID] = sj
	}
	if byID[scored].MatchScore == nil {
		t.Fatal("embedded job missing score")
	}
	if byID[unscored].MatchScore != nil {
		t.Fatal("job without embedding was scored")
	}
}

func TestDetailReturnsBreakdownAndGapCourses(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	missingSkill := uuid.New()
	heldSkill := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	skillRepo := &fakeJobSkillRepo{requirements: map[uuid.UUID][]jobs.RequirementRow{
		jobID: {
			requirement(heldSkill, "Go", true, nil),
			requirement(missingSkill, "Kubernetes", true, nil),
		},
	}}
	studentSkills := &fakeStudentSkillRepo{rows: []students.SkillRow{skillRow(heldSkill, "Go", 5, 3)}}
	embRepo := &fakeEmbeddingRepo{sims: map[uuid.UUID]float64{jobID: 0.9}}
	courses := &fakeCourseRepo{rows: []learning.GapCourseRow{{Title: "Kubernetes Fundamentals"}}}
	svc := newTestMatching(t, jobRepo, skillRepo, studentSkills, embRepo, courses)

	detail, err := svc.Detail(context.Background(), jobID, &domain.Student{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Breakdown == nil {
		t.Fatal("breakdown missing")
	}
	if detail.Breakdown.SkillScore == nil {
		t.Fatal("skill score missing")
	}
	// 0.7*(1/2) + 0.05 bonus
	if got, want := *detail.Breakdown.SkillScore, 0.4; got != want {
		t.Fatalf("skill score: got=%v want=%v", got, want)
	}
	if len(detail.MissingSkills) != 1 || detail.MissingSkills[0].SkillName != "Kubernetes" {
		t.Fatalf("missing skills: %+v", detail.MissingSkills)
	}
	if detail.SkillSummary == nil || detail.SkillSummary.MandatoryTotal != 2 {
		t.Fatalf("skill summary: %+v", detail.SkillSummary)
	}
	if len(courses.lastNames) != 1 || courses.lastNames[0] != "Kubernetes" {
		t.Fatalf("gap lookup names: %v", courses.lastNames)
	}
	if len(detail.GapCourses) != 1 {
		t.Fatalf("gap courses: %+v", detail.GapCourses)
	}
}

func TestDetailWithoutStudentEmbeddingOmitsBreakdown(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})

	detail, err := svc.Detail(context.Background(), jobID, &domain.Student{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Breakdown != nil || detail.MatchScore != nil {
		t.Fatalf("breakdown without embedding: %+v", detail.Breakdown)
	}
}

func TestScoreForApplicationWithoutEmbeddingIsNil(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, &fakeEmbeddingRepo{}, &fakeCourseRepo{})

	score, err := svc.ScoreForApplication(context.Background(), &domain.Student{ID: uuid.New()}, jobID)
	if err != nil {
		t.Fatalf("ScoreForApplication: %v", err)
	}
	if score != nil {
		t.Fatalf("score: got=%v want=nil", *score)
	}
}

func TestScoreForApplicationComputesComposite(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	jobRepo := &fakeJobRepo{jobs: map[uuid.UUID]*domain.Job{jobID: activeJob(jobID)}}
	embRepo := &fakeEmbeddingRepo{sims: map[uuid.UUID]float64{jobID: 0.5}}
	svc := newTestMatching(t, jobRepo, &fakeJobSkillRepo{}, &fakeStudentSkillRepo{}, embRepo, &fakeCourseRepo{})

	score, err := svc.ScoreForApplication(context.Background(), &domain.Student{ID: uuid.New()}, jobID)
	if err != nil {
		t.Fatalf("ScoreForApplication: %v", err)
	}
	if score == nil {
		t.Fatal("score is nil")
	}
	// 0.55*0.5 + 0.30*0.8 + 0.15*0.7
	if got, want := *score, 0.62; got != want {
		t.Fatalf("score: got=%v want=%v", got, want)
	}
}
