package analytics

import (
	"context"
	"time"

	"github.com/contactfast/relay/internal/domain"
)

// ListFilter controls filtering and pagination for origin listings.
type ListFilter struct {
	VerifiedOnly bool
	ActiveSince  time.Time // zero means no activity filter
	Limit        int
	Offset       int
}

// Repository defines the read-side data access for reporting.
type Repository interface {
	// TotalOrigins returns the number of known identities.
	TotalOrigins(ctx context.Context) (int, error)

	// TotalSubmissions returns the sum of all forwarded-submission counters.
	TotalSubmissions(ctx context.Context) (int, error)

	// VerifiedCount returns the number of verified identities.
	VerifiedCount(ctx context.Context) (int, error)

	// ActiveSince counts identities with a forwarded submission at or
	// after the given time.
	ActiveSince(ctx context.Context, t time.Time) (int, error)

	// List returns origins matching the filter, most active first.
	List(ctx context.Context, f ListFilter) ([]domain.Origin, error)

	// GetByKey returns a single origin, or verification.ErrNotFound.
	GetByKey(ctx context.Context, key string) (*domain.Origin, error)
}
