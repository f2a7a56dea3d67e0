package analytics

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/contactfast/relay/internal/domain"
	"github.com/contactfast/relay/internal/verification"
)

// mockRepo serves canned origins for reporting tests.
type mockRepo struct {
	origins []domain.Origin
}

func (m *mockRepo) TotalOrigins(_ context.Context) (int, error) {
	return len(m.origins), nil
}

func (m *mockRepo) TotalSubmissions(_ context.Context) (int, error) {
	sum := 0
	for _, o := range m.origins {
		sum += o.SubmissionCount
	}
	return sum, nil
}

func (m *mockRepo) VerifiedCount(_ context.Context) (int, error) {
	n := 0
	for _, o := range m.origins {
		if o.Verified {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) ActiveSince(_ context.Context, t time.Time) (int, error) {
	n := 0
	for _, o := range m.origins {
		if o.LastSubmissionAt != nil && !o.LastSubmissionAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter) ([]domain.Origin, error) {
	var out []domain.Origin
	for _, o := range m.origins {
		if f.VerifiedOnly && !o.Verified {
			continue
		}
		if !f.ActiveSince.IsZero() {
			if o.LastSubmissionAt == nil || o.LastSubmissionAt.Before(f.ActiveSince) {
				continue
			}
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmissionCount > out[j].SubmissionCount
	})
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = nil
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *mockRepo) GetByKey(_ context.Context, key string) (*domain.Origin, error) {
	for i := range m.origins {
		if m.origins[i].IdentityKey == key {
			return &m.origins[i], nil
		}
	}
	return nil, verification.ErrNotFound
}

func testNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func ts(t time.Time) *time.Time { return &t }

func testRepo() *mockRepo {
	now := testNow()
	return &mockRepo{origins: []domain.Origin{
		{
			IdentityKey:      "busy.com",
			WebsiteName:      "Busy",
			Verified:         true,
			CreatedAt:        now.AddDate(0, 0, -10),
			LastSubmissionAt: ts(now.Add(-2 * time.Hour)),
			SubmissionCount:  50,
		},
		{
			IdentityKey:      "quiet.com",
			WebsiteName:      "Quiet",
			Verified:         true,
			CreatedAt:        now.AddDate(0, 0, -100),
			LastSubmissionAt: ts(now.AddDate(0, 0, -60)),
			SubmissionCount:  10,
		},
		{
			IdentityKey: "pending.com",
			WebsiteName: "Pending",
			Verified:    false,
			CreatedAt:   now.AddDate(0, 0, -1),
		},
	}}
}

func newTestService() *Service {
	s := NewService(testRepo())
	s.now = testNow
	return s
}

func TestSummary(t *testing.T) {
	s := newTestService()

	sum, err := s.Summary(context.Background(), 10)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if sum.TotalOrigins != 3 {
		t.Errorf("total origins = %d, want 3", sum.TotalOrigins)
	}
	if sum.TotalSubmissions != 60 {
		t.Errorf("total submissions = %d, want 60", sum.TotalSubmissions)
	}
	if sum.VerifiedOrigins != 2 {
		t.Errorf("verified = %d, want 2", sum.VerifiedOrigins)
	}
	if sum.ActiveLast30Days != 1 {
		t.Errorf("active last 30d = %d, want 1", sum.ActiveLast30Days)
	}
	if len(sum.TopOrigins) == 0 || sum.TopOrigins[0].IdentityKey != "busy.com" {
		t.Error("top origins not ordered by submission count")
	}
}

func TestList_Filters(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	all, err := s.List(ctx, false, false, 100, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered list = %d rows, want 3", len(all))
	}

	verified, _ := s.List(ctx, true, false, 100, 0)
	if len(verified) != 2 {
		t.Errorf("verified-only list = %d rows, want 2", len(verified))
	}

	active, _ := s.List(ctx, false, true, 100, 0)
	if len(active) != 1 || active[0].IdentityKey != "busy.com" {
		t.Errorf("active-only list = %+v, want just busy.com", active)
	}
}

func TestActivity_Extrapolation(t *testing.T) {
	s := newTestService()

	acts, err := s.Activity(context.Background(), 30, 20)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(acts) != 1 {
		t.Fatalf("activity rows = %d, want 1 (only busy.com is recent)", len(acts))
	}

	a := acts[0]
	// busy.com: 50 submissions over 10 days = 5/day.
	if a.SubmissionsToday != 5 {
		t.Errorf("today = %d, want 5", a.SubmissionsToday)
	}
	if a.SubmissionsThisWeek != 35 {
		t.Errorf("week = %d, want 35", a.SubmissionsThisWeek)
	}
	if a.SubmissionsThisMonth != 150 {
		t.Errorf("month = %d, want 150", a.SubmissionsThisMonth)
	}
}

func TestQuickStats(t *testing.T) {
	s := newTestService()

	qs, err := s.QuickStats(context.Background())
	if err != nil {
		t.Fatalf("QuickStats: %v", err)
	}

	if qs.ActiveLast24h != 1 {
		t.Errorf("active 24h = %d, want 1", qs.ActiveLast24h)
	}
	if qs.ActiveLast7d != 1 {
		t.Errorf("active 7d = %d, want 1", qs.ActiveLast7d)
	}
	if qs.MostActive == nil || qs.MostActive.IdentityKey != "busy.com" {
		t.Error("most active origin wrong")
	}
	if qs.AveragePerOrigin != 20 {
		t.Errorf("average = %v, want 20", qs.AveragePerOrigin)
	}
}

func TestOrigin_NotFound(t *testing.T) {
	s := newTestService()

	if _, err := s.Origin(context.Background(), "nope.com"); err == nil {
		t.Fatal("expected error for unknown origin")
	}
}
