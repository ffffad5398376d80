package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim must match the dimensionality requested from the embedding
// provider and the vector(N) column type below.
const EmbeddingDim = 1536

// StudentEmbedding holds the single current vector for a student. Superseded
// vectors are overwritten in place, never versioned.
type StudentEmbedding struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"student_id"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`

	Embedding      pgvector.Vector `gorm:"type:vector(1536);not null" json:"-"`
	EmbeddingModel string          `gorm:"column:embedding_model;not null" json:"embedding_model"`
	SourceTextHash string          `gorm:"column:source_text_hash;size:64" json:"source_text_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudentEmbedding) TableName() string { return "student_embedding" }

type JobEmbedding struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"job_id"`
	Job   *Job      `gorm:"constraint:OnDelete:CASCADE;foreignKey:JobID;references:ID" json:"job,omitempty"`

	Embedding      pgvector.Vector `gorm:"type:vector(1536);not null" json:"-"`
	EmbeddingModel string          `gorm:"column:embedding_model;not null" json:"embedding_model"`
	SourceTextHash string          `gorm:"column:source_text_hash;size:64" json:"source_text_hash"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (JobEmbedding) TableName() string { return "job_embedding" }
