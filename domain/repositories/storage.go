package repositories

import (
	"context"

	"github.com/prepwise/server/domain/entities"
)

// InterviewRepository defines data access methods for interview records.
// All reads and deletes are keyed by the owning user.
type InterviewRepository interface {
	Create(ctx context.Context, interview *entities.Interview) error
	GetByID(ctx context.Context, id, userID string) (*entities.Interview, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Interview, error)
	Delete(ctx context.Context, id, userID string) error
}

// AnswerRepository defines data access methods for evaluated answers.
type AnswerRepository interface {
	Create(ctx context.Context, answer *entities.Answer) error
	ListByUser(ctx context.Context, userID string) ([]*entities.Answer, error)
}

// BlobStorage uploads a file and returns its public URL.
type BlobStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
