package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/contactfast/relay/internal/domain"
)

// Summary is the aggregate dashboard view.
type Summary struct {
	TotalOrigins     int             `json:"total_origins"`
	TotalSubmissions int             `json:"total_submissions"`
	VerifiedOrigins  int             `json:"verified_origins"`
	ActiveLast30Days int             `json:"active_last_30_days"`
	TopOrigins       []domain.Origin `json:"top_origins"`
}

// Activity is the estimated recent submission volume for one origin.
type Activity struct {
	IdentityKey          string     `json:"identity_key"`
	WebsiteName          string     `json:"website_name"`
	SubmissionsToday     int        `json:"submissions_today"`
	SubmissionsThisWeek  int        `json:"submissions_this_week"`
	SubmissionsThisMonth int        `json:"submissions_this_month"`
	LastSubmissionAt     *time.Time `json:"last_submission_at"`
}

// QuickStats is the lightweight metrics payload for status displays.
type QuickStats struct {
	TotalOrigins     int            `json:"total_origins"`
	TotalSubmissions int            `json:"total_submissions"`
	VerifiedOrigins  int            `json:"verified_origins"`
	ActiveLast24h    int            `json:"active_last_24h"`
	ActiveLast7d     int            `json:"active_last_7d"`
	MostActive       *domain.Origin `json:"most_active,omitempty"`
	AveragePerOrigin float64        `json:"average_submissions_per_origin"`
}

// Service computes reporting views from the repository.
type Service struct {
	repo Repository

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates an analytics service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary returns overall totals plus the top origins by volume.
func (s *Service) Summary(ctx context.Context, limit int) (*Summary, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	total, err := s.repo.TotalOrigins(ctx)
	if err != nil {
		return nil, fmt.Errorf("count origins: %w", err)
	}
	submissions, err := s.repo.TotalSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum submissions: %w", err)
	}
	verified, err := s.repo.VerifiedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count verified: %w", err)
	}
	active, err := s.repo.ActiveSince(ctx, s.now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("count active: %w", err)
	}
	top, err := s.repo.List(ctx, ListFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list top origins: %w", err)
	}

	return &Summary{
		TotalOrigins:     total,
		TotalSubmissions: submissions,
		VerifiedOrigins:  verified,
		ActiveLast30Days: active,
		TopOrigins:       top,
	}, nil
}

// Origin returns the stored record for one identity key.
func (s *Service) Origin(ctx context.Context, key string) (*domain.Origin, error) {
	return s.repo.GetByKey(ctx, key)
}

// List returns origins matching the filter, capped at 1000 rows.
func (s *Service) List(ctx context.Context, verifiedOnly, activeOnly bool, limit, offset int) ([]domain.Origin, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	f := ListFilter{VerifiedOnly: verifiedOnly, Limit: limit, Offset: offset}
	if activeOnly {
		f.ActiveSince = s.now().UTC().AddDate(0, 0, -30)
	}
	return s.repo.List(ctx, f)
}

// Activity estimates recent volume for origins active within the last
// `days` days. Per-origin numbers extrapolate the lifetime average daily
// rate into the day/week/month buckets the origin was last active in.
func (s *Service) Activity(ctx context.Context, days, limit int) ([]Activity, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	now := s.now().UTC()
	origins, err := s.repo.List(ctx, ListFilter{
		ActiveSince: now.AddDate(0, 0, -days),
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list active origins: %w", err)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	out := make([]Activity, 0, len(origins))
	for _, o := range origins {
		daysAlive := math.Max(1, now.Sub(o.CreatedAt).Hours()/24)
		avgDaily := float64(o.SubmissionCount) / daysAlive

		a := Activity{
			IdentityKey:      o.IdentityKey,
			WebsiteName:      o.WebsiteName,
			LastSubmissionAt: o.LastSubmissionAt,
		}
		if o.LastSubmissionAt != nil {
			last := *o.LastSubmissionAt
			if !last.Before(todayStart) {
				a.SubmissionsToday = int(avgDaily)
			}
			if !last.Before(weekAgo) {
				a.SubmissionsThisWeek = int(avgDaily * 7)
			}
			if !last.Before(monthAgo) {
				a.SubmissionsThisMonth = int(avgDaily * 30)
			}
		}
		out = append(out, a)
	}
	return out, nil
}

// QuickStats returns the lightweight status metrics.
func (s *Service) QuickStats(ctx context.Context) (*QuickStats, error) {
	total, err := s.repo.TotalOrigins(ctx)
	if err != nil {
		return nil, fmt.Errorf("count origins: %w", err)
	}
	submissions, err := s.repo.TotalSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum submissions: %w", err)
	}
	verified, err := s.repo.VerifiedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count verified: %w", err)
	}

	now := s.now().UTC()
	active24h, err := s.repo.ActiveSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("count active 24h: %w", err)
	}
	active7d, err := s.repo.ActiveSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("count active 7d: %w", err)
	}

	stats := &QuickStats{
		TotalOrigins:     total,
		TotalSubmissions: submissions,
		VerifiedOrigins:  verified,
		ActiveLast24h:    active24h,
		ActiveLast7d:     active7d,
	}
	if total > 0 {
		stats.AveragePerOrigin = math.Round(float64(submissions)/float64(total)*100) / 100
	}

	if top, err := s.repo.List(ctx, ListFilter{Limit: 1}); err == nil && len(top) > 0 {
		stats.MostActive = &top[0]
	}
	return stats, nil
}
