package embeddings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillforge/skillforge-backend/internal/domain"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// JobCandidate is one active job whose embedding cleared the retrieval
// threshold against a student embedding.
type JobCandidate struct {
	JobID      uuid.UUID `json:"job_id"`
	Similarity float64   `json:"similarity"`
}

type EmbeddingRepo interface {
	// CandidatesForStudent runs the vector retrieval stage: all active jobs
	// with cosine similarity >= threshold against the student's embedding,
	// ordered most similar first. Returns an empty slice when the student
	// has no embedding.
	CandidatesForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, threshold float64) ([]JobCandidate, error)
	// PairSimilarity returns the cosine similarity between one student and
	// one job, or nil when either embedding is missing.
	PairSimilarity(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (*float64, error)
	// SimilaritiesForJobs batches PairSimilarity over many jobs in one
	// query. Jobs without an embedding are absent from the map.
	SimilaritiesForJobs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]float64, error)

	GetStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*domain.StudentEmbedding, error)
	GetJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.JobEmbedding, error)
	UpsertStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error
	UpsertJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error
}

type embeddingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmbeddingRepo(db *gorm.DB, baseLog *logger.Logger) EmbeddingRepo {
	repoLog := baseLog.With("repo", "EmbeddingRepo")
	return &embeddingRepo{db: db, log: repoLog}
}

func (r *embeddingRepo) CandidatesForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, threshold float64) ([]JobCandidate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := `
		SELECT je.job_id, 1 - (je.embedding <=> se.embedding) AS similarity
		FROM job_embedding je
		JOIN job j ON j.id = je.job_id
		CROSS JOIN student_embedding se
		WHERE se.student_id = ?
		  AND j.status = ?
		  AND 1 - (je.embedding <=> se.embedding) >= ?
		ORDER BY similarity DESC`

	var rows []JobCandidate
	err := transaction.WithContext(ctx).
		Raw(query, studentID, domain.JobStatusActive, threshold).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *embeddingRepo) PairSimilarity(ctx context.Context, tx *gorm.DB, studentID, jobID uuid.UUID) (*float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := `
		SELECT 1 - (je.embedding <=> se.embedding) AS similarity
		FROM job_embedding je, student_embedding se
		WHERE je.job_id = ? AND se.student_id = ?`

	var similarities []float64
	err := transaction.WithContext(ctx).Raw(query, jobID, studentID).Scan(&similarities).Error
	if err != nil {
		return nil, err
	}
	if len(similarities) == 0 {
		return nil, nil
	}
	return &similarities[0], nil
}

func (r *embeddingRepo) SimilaritiesForJobs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, jobIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := make(map[uuid.UUID]float64, len(jobIDs))
	if len(jobIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT je.job_id, 1 - (je.embedding <=> se.embedding) AS similarity
		FROM job_embedding je
		CROSS JOIN student_embedding se
		WHERE se.student_id = ? AND je.job_id = ANY(?::uuid[])`

	var rows []JobCandidate
	ids := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		ids = append(ids, id.String())
	}
	err := transaction.WithContext(ctx).
		Raw(query, studentID, pq.Array(ids)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.JobID] = row.Similarity
	}
	return result, nil
}

func (r *embeddingRepo) GetStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*domain.StudentEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var embedding domain.StudentEmbedding
	err := transaction.WithContext(ctx).Where("student_id = ?", studentID).First(&embedding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &embedding, nil
}

func (r *embeddingRepo) GetJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.JobEmbedding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var embedding domain.JobEmbedding
	err := transaction.WithContext(ctx).Where("job_id = ?", jobID).First(&embedding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &embedding, nil
}

func (r *embeddingRepo) UpsertStudentEmbedding(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	embedding := domain.StudentEmbedding{
		StudentID:      studentID,
		Embedding:      vec,
		EmbeddingModel: model,
		SourceTextHash: sourceHash,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "embedding_model", "source_text_hash", "updated_at"}),
		}).
		Create(&embedding).Error
}

func (r *embeddingRepo) UpsertJobEmbedding(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, vec pgvector.Vector, model, sourceHash string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	embedding := domain.JobEmbedding{
		JobID:          jobID,
		Embedding:      vec,
		EmbeddingModel: model,
		SourceTextHash: sourceHash,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "embedding_model", "source_text_hash", "updated_at"}),
		}).
		Create(&embedding).Error
}
