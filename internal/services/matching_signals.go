package services

import (
	"math"
	"strings"

	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	"github.com/skillforge/skillforge-backend/internal/domain"
)

// Matching thresholds. Retrieval casts a wide net over the vector index;
// acceptance is the actual recommendation bar.
const (
	VectorRetrievalThreshold = 0.45
	CompositeThreshold       = 0.65
)

// Composite weights. When a job declares no skill requirements the skill
// signal is undefined and its weight is redistributed, never zeroed.
const (
	weightVector     = 0.35
	weightSkill      = 0.35
	weightExperience = 0.20
	weightPreference = 0.10

	fallbackWeightVector     = 0.55
	fallbackWeightExperience = 0.30
	fallbackWeightPreference = 0.15
)

const (
	proficiencyBonusLevel = 4
	neutralPreference     = 0.7
	neutralExperience     = 0.8
	maxGapCourses         = 10
)

// MatchedSkill is a job requirement the student holds.
type MatchedSkill struct {
	SkillName         string  `json:"skill_name"`
	IsMandatory       bool    `json:"is_mandatory"`
	ProficiencyLevel  int     `json:"proficiency_level"`
	YearsOfExperience float64 `json:"years_of_experience"`
}

// MissingSkill is a job requirement the student lacks.
type MissingSkill struct {
	SkillName   string `json:"skill_name"`
	IsMandatory bool   `json:"is_mandatory"`
}

// SkillOverlap is the full output of the skill signal for one job.
// Score is nil when the job declares no requirements; that case must stay
// distinguishable from a zero score downstream.
type SkillOverlap struct {
	Score            *float64       `json:"score"`
	Matched          []MatchedSkill `json:"matched"`
	Missing          []MissingSkill `json:"missing"`
	MandatoryMatched int            `json:"mandatory_matched"`
	MandatoryTotal   int            `json:"mandatory_total"`
	OptionalMatched  int            `json:"optional_matched"`
	OptionalTotal    int            `json:"optional_total"`
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// computeSkillOverlap scores one job's requirements against the student's
// skill set. Matching is by skill id. A bonus counts matched skills held at
// proficiency >= 4 with at least the requirement's minimum years.
func computeSkillOverlap(requirements []jobs.RequirementRow, studentSkills []students.SkillRow) SkillOverlap {
	result := SkillOverlap{
		Matched: []MatchedSkill{},
		Missing: []MissingSkill{},
	}
	if len(requirements) == 0 {
		return result
	}

	bySkillID := make(map[string]students.SkillRow, len(studentSkills))
	for _, s := range studentSkills {
		bySkillID[s.SkillID.String()] = s
	}

	bonusCount := 0
	for _, req := range requirements {
		if req.IsMandatory {
			result.MandatoryTotal++
		} else {
			result.OptionalTotal++
		}

		held, ok := bySkillID[req.SkillID.String()]
		if !ok {
			result.Missing = append(result.Missing, MissingSkill{
				SkillName:   req.SkillName,
				IsMandatory: req.IsMandatory,
			})
			continue
		}

		if req.IsMandatory {
			result.MandatoryMatched++
		} else {
			result.OptionalMatched++
		}
		result.Matched = append(result.Matched, MatchedSkill{
			SkillName:         req.SkillName,
			IsMandatory:       req.IsMandatory,
			ProficiencyLevel:  held.ProficiencyLevel,
			YearsOfExperience: held.YearsOfExperience,
		})

		minYears := 0
		if req.MinExperienceYears != nil {
			minYears = *req.MinExperienceYears
		}
		if held.ProficiencyLevel >= proficiencyBonusLevel && held.YearsOfExperience >= float64(minYears) {
			bonusCount++
		}
	}

	var score float64
	bonus := 0.05 * float64(bonusCount)
	if result.MandatoryTotal > 0 {
		mandatoryRatio := float64(result.MandatoryMatched) / float64(result.MandatoryTotal)
		optionalRatio := float64(result.OptionalMatched) / math.Max(float64(result.OptionalTotal), 1)
		score = 0.7*mandatoryRatio + 0.3*optionalRatio + bonus
	} else {
		matched := result.MandatoryMatched + result.OptionalMatched
		score = float64(matched)/float64(len(requirements)) + bonus
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	score = round4(score)
	result.Score = &score
	return result
}

// computeExperienceFit scores student years against the job's stated range.
// A job with no stated range is neutral, not perfect. min=0 means no lower
// bound; a missing max is treated as min+10.
func computeExperienceFit(studentYears int, jobMin int, jobMax *int) float64 {
	if jobMin == 0 && jobMax == nil {
		return neutralExperience
	}

	max := jobMin + 10
	if jobMax != nil {
		max = *jobMax
	}

	if studentYears >= jobMin && studentYears <= max {
		return 1.0
	}

	if studentYears < jobMin {
		gap := float64(jobMin - studentYears)
		divisor := math.Max(float64(jobMin), 1)
		return round4(math.Max(0, 1-gap/divisor))
	}

	gap := float64(studentYears - max)
	return round4(math.Max(0.5, 1-gap/10))
}

// computePreferenceFit averages remote-type, employment-type and location
// agreement. An unexpressed preference contributes the neutral 0.7 rather
// than counting for or against the job.
func computePreferenceFit(student *domain.Student, job *domain.Job) float64 {
	remote := neutralPreference
	if len(student.PreferredRemoteTypes) > 0 && job.RemoteType != "" {
		remote = 0.3
		for _, rt := range student.PreferredRemoteTypes {
			if strings.EqualFold(rt, job.RemoteType) {
				remote = 1.0
				break
			}
		}
	}

	employment := neutralPreference
	if len(student.PreferredEmploymentTypes) > 0 && job.EmploymentType != "" {
		employment = 0.3
		for _, et := range student.PreferredEmploymentTypes {
			if strings.EqualFold(et, job.EmploymentType) {
				employment = 1.0
				break
			}
		}
	}

	location := neutralPreference
	if len(student.PreferredLocations) > 0 && job.Location != "" {
		location = 0.5
		jobLoc := strings.ToLower(job.Location)
		for _, loc := range student.PreferredLocations {
			preferred := strings.ToLower(strings.TrimSpace(loc))
			if preferred == "" {
				continue
			}
			if strings.Contains(jobLoc, preferred) || strings.Contains(preferred, jobLoc) {
				location = 1.0
				break
			}
		}
	}

	return round4((remote + employment + location) / 3)
}

// computeComposite folds the signals into one score. A nil skill score
// redistributes its weight instead of defaulting the signal to zero.
func computeComposite(vectorScore float64, skillScore *float64, experienceScore, preferenceScore float64) float64 {
	if skillScore == nil {
		return round4(fallbackWeightVector*vectorScore +
			fallbackWeightExperience*experienceScore +
			fallbackWeightPreference*preferenceScore)
	}
	return round4(weightVector*vectorScore +
		weightSkill**skillScore +
		weightExperience*experienceScore +
		weightPreference*preferenceScore)
}
