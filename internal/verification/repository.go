package verification

import (
	"context"
	"time"

	"github.com/contactfast/relay/internal/domain"
)

// Repository defines the data access contract for origin records.
type Repository interface {
	// GetByKey returns the record for an identity key, or ErrNotFound.
	GetByKey(ctx context.Context, key string) (*domain.Origin, error)

	// GetByToken returns the record holding an activation token, or
	// ErrNotFound. Unknown tokens are a normal condition, not a failure.
	GetByToken(ctx context.Context, token string) (*domain.Origin, error)

	// CreateIfAbsent inserts the record unless one already exists for its
	// identity key. The insert must be atomic (unique-constraint backed):
	// of two concurrent callers exactly one observes created=true, and
	// both receive the record that actually won.
	CreateIfAbsent(ctx context.Context, o *domain.Origin) (rec *domain.Origin, created bool, err error)

	// Update persists verified-flag and metadata mutations.
	Update(ctx context.Context, o *domain.Origin) error

	// RecordSubmission increments submission_count by exactly one and
	// advances last_submission_at, atomically at the storage layer.
	RecordSubmission(ctx context.Context, key string, at time.Time) error
}
