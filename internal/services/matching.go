package services

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge-backend/internal/data/repos/embeddings"
	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/learning"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/apierr"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// MatchBreakdown carries the composite score and the four signals behind it.
// SkillScore is nil for jobs with no declared requirements.
type MatchBreakdown struct {
	CompositeScore  float64  `json:"composite_score"`
	VectorScore     float64  `json:"vector_score"`
	SkillScore      *float64 `json:"skill_score"`
	ExperienceScore float64  `json:"experience_score"`
	PreferenceScore float64  `json:"preference_score"`
}

// ScoredJob is one posting with its match scores attached. MatchScore and
// Breakdown are nil when no student context (or no student embedding) was
// available to score against.
type ScoredJob struct {
	Job        *domain.Job     `json:"job"`
	MatchScore *float64        `json:"match_score"`
	Breakdown  *MatchBreakdown `json:"match_breakdown"`
}

type RecommendResult struct {
	Jobs      []ScoredJob `json:"jobs"`
	Threshold float64     `json:"threshold"`
	Total     int         `json:"total"`
}

type BrowseResult struct {
	Jobs  []ScoredJob `json:"jobs"`
	Total int64       `json:"total"`
}

// SkillSummary is the raw matched/total counts behind a skill score.
type SkillSummary struct {
	MandatoryMatched int `json:"mandatory_matched"`
	MandatoryTotal   int `json:"mandatory_total"`
	OptionalMatched  int `json:"optional_matched"`
	OptionalTotal    int `json:"optional_total"`
}

type JobDetail struct {
	Job           *domain.Job             `json:"job"`
	HasApplied    bool                    `json:"has_applied"`
	MatchScore    *float64                `json:"match_score"`
	Breakdown     *MatchBreakdown         `json:"match_breakdown"`
	MatchedSkills []MatchedSkill          `json:"matched_skills"`
	MissingSkills []MissingSkill          `json:"missing_skills"`
	SkillSummary  *SkillSummary           `json:"skill_summary"`
	GapCourses    []learning.GapCourseRow `json:"gap_courses"`
}

type MatchingService interface {
	// Recommend runs the full pipeline for one student: broad vector
	// retrieval, batched signal computation, then the acceptance filter and
	// ranking. Pagination happens in memory over the filtered set.
	Recommend(ctx context.Context, student *domain.Student, limit, offset int) (*RecommendResult, error)
	// Browse lists active postings for the given filter. Scores are attached
	// only when the student has a current embedding; no acceptance filter.
	Browse(ctx context.Context, student *domain.Student, filter jobs.BrowseFilter) (*BrowseResult, error)
	// Detail returns one posting with the full breakdown, skill lists and
	// gap courses for the missing skills. student may be nil.
	Detail(ctx context.Context, jobID uuid.UUID, student *domain.Student) (*JobDetail, error)
	// ScoreForApplication computes the single-pair composite used to
	// snapshot admin_match_score at apply time. Returns nil when either
	// embedding is missing.
	ScoreForApplication(ctx context.Context, student *domain.Student, jobID uuid.UUID) (*float64, error)
}

type matchingService struct {
	log           *logger.Logger
	jobRepo       jobs.JobRepo
	jobSkillRepo  jobs.JobSkillRepo
	skillRepo     students.StudentSkillRepo
	embeddingRepo embeddings.EmbeddingRepo
	courseRepo    learning.CourseRepo
}

func NewMatchingService(
	baseLog *logger.Logger,
	jobRepo jobs.JobRepo,
	jobSkillRepo jobs.JobSkillRepo,
	skillRepo students.StudentSkillRepo,
	embeddingRepo embeddings.EmbeddingRepo,
	courseRepo learning.CourseRepo,
) MatchingService {
	return &matchingService{
		log:           baseLog.With("service", "MatchingService"),
		jobRepo:       jobRepo,
		jobSkillRepo:  jobSkillRepo,
		skillRepo:     skillRepo,
		embeddingRepo: embeddingRepo,
		courseRepo:    courseRepo,
	}
}

func (s *matchingService) Recommend(ctx context.Context, student *domain.Student, limit, offset int) (*RecommendResult, error) {
	if student == nil {
		return nil, apierr.New(http.StatusBadRequest, "STUDENT_PROFILE_REQUIRED", errors.New("student profile required"))
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	result := &RecommendResult{Jobs: []ScoredJob{}, Threshold: CompositeThreshold}

	candidates, err := s.embeddingRepo.CandidatesForStudent(ctx, nil, student.ID, VectorRetrievalThreshold)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return result, nil
	}

	jobIDs := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		jobIDs = append(jobIDs, c.JobID)
	}

	scored, err := s.scoreCandidates(ctx, student, jobIDs, candidateSimilarities(candidates))
	if err != nil {
		return nil, err
	}

	accepted := scored[:0]
	for _, sj := range scored {
		if sj.Breakdown != nil && sj.Breakdown.CompositeScore >= CompositeThreshold {
			accepted = append(accepted, sj)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Breakdown.CompositeScore > accepted[j].Breakdown.CompositeScore
	})

	result.Total = len(accepted)
	if offset >= len(accepted) {
		return result, nil
	}
	end := offset + limit
	if end > len(accepted) {
		end = len(accepted)
	}
	result.Jobs = accepted[offset:end]
	return result, nil
}

func (s *matchingService) Browse(ctx context.Context, student *domain.Student, filter jobs.BrowseFilter) (*BrowseResult, error) {
	listed, err := s.jobRepo.ListActive(ctx, nil, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.jobRepo.CountActive(ctx, nil, filter)
	if err != nil {
		return nil, err
	}

	result := &BrowseResult{Jobs: make([]ScoredJob, 0, len(listed)), Total: total}

	var sims map[uuid.UUID]float64
	var requirements map[uuid.UUID][]jobs.RequirementRow
	var studentSkills []students.SkillRow
	if student != nil {
		embedding, err := s.embeddingRepo.GetStudentEmbedding(ctx, nil, student.ID)
		if err != nil {
			return nil, err
		}
		if embedding != nil {
			jobIDs := make([]uuid.UUID, 0, len(listed))
			for _, j := range listed {
				jobIDs = append(jobIDs, j.ID)
			}
			sims, err = s.embeddingRepo.SimilaritiesForJobs(ctx, nil, student.ID, jobIDs)
			if err != nil {
				return nil, err
			}
			requirements, err = s.jobSkillRepo.GetByJobIDs(ctx, nil, jobIDs)
			if err != nil {
				return nil, err
			}
			studentSkills, err = s.skillRepo.GetByStudentID(ctx, nil, student.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, job := range listed {
		sj := ScoredJob{Job: listItem(job)}
		if sims != nil {
			if vectorScore, ok := sims[job.ID]; ok {
				breakdown := buildBreakdown(student, job, vectorScore, requirements[job.ID], studentSkills)
				sj.Breakdown = &breakdown
				sj.MatchScore = &breakdown.CompositeScore
			}
		}
		result.Jobs = append(result.Jobs, sj)
	}
	return result, nil
}

const listDescriptionLimit = 300

// listItem shallow-copies a posting with its description shortened for list
// rows; the stored row stays untouched.
func listItem(job *domain.Job) *domain.Job {
	if len(job.Description) <= listDescriptionLimit {
		return job
	}
	item := *job
	item.Description = item.Description[:listDescriptionLimit] + "..."
	return &item
}

func (s *matchingService) Detail(ctx context.Context, jobID uuid.UUID, student *domain.Student) (*JobDetail, error) {
	job, err := s.jobRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.New(http.StatusNotFound, "JOB_NOT_FOUND", errors.New("job not found"))
	}

	detail := &JobDetail{
		Job:           job,
		MatchedSkills: []MatchedSkill{},
		MissingSkills: []MissingSkill{},
		GapCourses:    []learning.GapCourseRow{},
	}
	if student == nil {
		return detail, nil
	}

	requirements, err := s.jobSkillRepo.GetByJobIDs(ctx, nil, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	studentSkills, err := s.skillRepo.GetByStudentID(ctx, nil, student.ID)
	if err != nil {
		return nil, err
	}

	overlap := computeSkillOverlap(requirements[jobID], studentSkills)
	detail.MatchedSkills = overlap.Matched
	detail.MissingSkills = overlap.Missing
	detail.SkillSummary = &SkillSummary{
		MandatoryMatched: overlap.MandatoryMatched,
		MandatoryTotal:   overlap.MandatoryTotal,
		OptionalMatched:  overlap.OptionalMatched,
		OptionalTotal:    overlap.OptionalTotal,
	}

	similarity, err := s.embeddingRepo.PairSimilarity(ctx, nil, student.ID, jobID)
	if err != nil {
		return nil, err
	}
	if similarity != nil {
		breakdown := MatchBreakdown{
			VectorScore:     round4(*similarity),
			SkillScore:      overlap.Score,
			ExperienceScore: computeExperienceFit(student.ExperienceYears, job.ExperienceMinYears, job.ExperienceMaxYears),
			PreferenceScore: computePreferenceFit(student, job),
		}
		breakdown.CompositeScore = computeComposite(breakdown.VectorScore, breakdown.SkillScore, breakdown.ExperienceScore, breakdown.PreferenceScore)
		detail.Breakdown = &breakdown
		detail.MatchScore = &breakdown.CompositeScore
	}

	if len(overlap.Missing) > 0 {
		names := make([]string, 0, len(overlap.Missing))
		for _, m := range overlap.Missing {
			names = append(names, m.SkillName)
		}
		courses, err := s.courseRepo.GapCourses(ctx, nil, names, maxGapCourses)
		if err != nil {
			// gap courses are advisory; the breakdown still stands
			s.log.Warn("gap course lookup failed", "job_id", jobID, "error", err)
		} else {
			detail.GapCourses = courses
		}
	}

	return detail, nil
}

func (s *matchingService) ScoreForApplication(ctx context.Context, student *domain.Student, jobID uuid.UUID) (*float64, error) {
	if student == nil {
		return nil, nil
	}
	similarity, err := s.embeddingRepo.PairSimilarity(ctx, nil, student.ID, jobID)
	if err != nil {
		return nil, err
	}
	if similarity == nil {
		return nil, nil
	}

	job, err := s.jobRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	requirements, err := s.jobSkillRepo.GetByJobIDs(ctx, nil, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	studentSkills, err := s.skillRepo.GetByStudentID(ctx, nil, student.ID)
	if err != nil {
		return nil, err
	}

	breakdown := buildBreakdown(student, job, *similarity, requirements[jobID], studentSkills)
	return &breakdown.CompositeScore, nil
}

// scoreCandidates computes breakdowns for a retrieved candidate set. Skill
// requirements are fetched for all candidates in one batched call.
func (s *matchingService) scoreCandidates(ctx context.Context, student *domain.Student, jobIDs []uuid.UUID, sims map[uuid.UUID]float64) ([]ScoredJob, error) {
	loaded, err := s.jobRepo.GetByIDs(ctx, nil, jobIDs)
	if err != nil {
		return nil, err
	}
	requirements, err := s.jobSkillRepo.GetByJobIDs(ctx, nil, jobIDs)
	if err != nil {
		return nil, err
	}
	studentSkills, err := s.skillRepo.GetByStudentID(ctx, nil, student.ID)
	if err != nil {
		return nil, err
	}

	jobsByID := make(map[uuid.UUID]*domain.Job, len(loaded))
	for _, j := range loaded {
		jobsByID[j.ID] = j
	}

	// retrieval order keeps repeated calls deterministic before ranking
	scored := make([]ScoredJob, 0, len(jobIDs))
	for _, id := range jobIDs {
		job, ok := jobsByID[id]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		breakdown := buildBreakdown(student, job, sims[id], requirements[id], studentSkills)
		scored = append(scored, ScoredJob{
			Job:        job,
			MatchScore: &breakdown.CompositeScore,
			Breakdown:  &breakdown,
		})
	}
	return scored, nil
}

func buildBreakdown(student *domain.Student, job *domain.Job, vectorScore float64, requirements []jobs.RequirementRow, studentSkills []students.SkillRow) MatchBreakdown {
	overlap := computeSkillOverlap(requirements, studentSkills)
	breakdown := MatchBreakdown{
		VectorScore:     round4(vectorScore),
		SkillScore:      overlap.Score,
		ExperienceScore: computeExperienceFit(student.ExperienceYears, job.ExperienceMinYears, job.ExperienceMaxYears),
		PreferenceScore: computePreferenceFit(student, job),
	}
	breakdown.CompositeScore = computeComposite(breakdown.VectorScore, breakdown.SkillScore, breakdown.ExperienceScore, breakdown.PreferenceScore)
	return breakdown
}

func candidateSimilarities(candidates []embeddings.JobCandidate) map[uuid.UUID]float64 {
	sims := make(map[uuid.UUID]float64, len(candidates))
	for _, c := range candidates {
		sims[c.JobID] = c.Similarity
	}
	return sims
}
