package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/contactfast/relay/internal/domain"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu    sync.Mutex
	store map[string]*domain.Origin // keyed by identity key
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[string]*domain.Origin)}
}

func (m *mockRepo) GetByKey(_ context.Context, key string) (*domain.Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.store[key]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByToken(_ context.Context, token string) (*domain.Origin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.store {
		if rec.ActivationToken != nil && *rec.ActivationToken == token {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) CreateIfAbsent(_ context.Context, o *domain.Origin) (*domain.Origin, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[o.IdentityKey]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *o
	m.store[o.IdentityKey] = &cp
	out := cp
	return &out, true, nil
}

func (m *mockRepo) Update(_ context.Context, o *domain.Origin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[o.IdentityKey]; !ok {
		return ErrNotFound
	}
	cp := *o
	m.store[o.IdentityKey] = &cp
	return nil
}

func (m *mockRepo) RecordSubmission(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[key]
	if !ok {
		return ErrNotFound
	}
	rec.SubmissionCount++
	rec.LastSubmissionAt = &at
	return nil
}

var testSubmission = domain.Submission{
	To:          "owner@example.com",
	WebsiteName: "Example",
	WebsiteURL:  "https://example.com",
	Name:        "Visitor",
	Email:       "visitor@mail.com",
	Subject:     "Hi",
	Message:     "Hello there",
}

func TestLoadOrCreate_AutoVerify(t *testing.T) {
	svc := NewService(newMockRepo(), true)
	ctx := context.Background()

	rec, created, err := svc.LoadOrCreate(ctx, "example.com", testSubmission)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if !created {
		t.Fatal("first contact should create the record")
	}
	if !rec.Verified {
		t.Error("auto-verify deployment should create verified records")
	}
	if rec.ActivationToken != nil {
		t.Error("auto-verified record should carry no activation token")
	}
	if rec.State() != domain.StateVerified {
		t.Errorf("state = %s, want %s", rec.State(), domain.StateVerified)
	}
}

func TestLoadOrCreate_ActivationMode(t *testing.T) {
	svc := NewService(newMockRepo(), false)
	ctx := context.Background()

	rec, created, err := svc.LoadOrCreate(ctx, "abc123", testSubmission)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if !created {
		t.Fatal("first contact should create the record")
	}
	if rec.Verified {
		t.Error("activation-gated record created verified")
	}
	if rec.ActivationToken == nil || *rec.ActivationToken == "" {
		t.Fatal("pending record must carry an activation token")
	}
	if rec.SubmissionCount != 0 {
		t.Errorf("submission_count = %d on creation, want 0", rec.SubmissionCount)
	}
	if rec.State() != domain.StatePending {
		t.Errorf("state = %s, want %s", rec.State(), domain.StatePending)
	}
}

func TestLoadOrCreate_ExistingRecord(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, true)
	ctx := context.Background()

	first, _, _ := svc.LoadOrCreate(ctx, "example.com", testSubmission)

	other := testSubmission
	other.To = "hijack@evil.com"
	second, created, err := svc.LoadOrCreate(ctx, "example.com", other)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if created {
		t.Fatal("existing identity reported as created")
	}
	// The first submitter's metadata wins; identity records are immutable.
	if second.RecipientEmail != first.RecipientEmail {
		t.Errorf("recipient = %q, want %q", second.RecipientEmail, first.RecipientEmail)
	}
}

func TestLoadOrCreate_ConcurrentFirstContact(t *testing.T) {
	svc := NewService(newMockRepo(), true)
	ctx := context.Background()

	const callers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	creators := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, created, err := svc.LoadOrCreate(ctx, "example.com", testSubmission)
			if err != nil {
				t.Errorf("LoadOrCreate: %v", err)
				return
			}
			if rec.IdentityKey != "example.com" {
				t.Errorf("identity key = %q", rec.IdentityKey)
			}
			if created {
				mu.Lock()
				creators++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if creators != 1 {
		t.Fatalf("%d callers believed they created the record, want exactly 1", creators)
	}
}

func TestActivate_UnknownToken(t *testing.T) {
	svc := NewService(newMockRepo(), false)

	res, rec, err := svc.Activate(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if res != ActivationInvalid {
		t.Errorf("result = %s, want %s", res, ActivationInvalid)
	}
	if rec != nil {
		t.Error("invalid activation returned a record")
	}
}

func TestActivate_EmptyToken(t *testing.T) {
	svc := NewService(newMockRepo(), false)

	res, _, err := svc.Activate(context.Background(), "")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if res != ActivationInvalid {
		t.Errorf("result = %s, want %s", res, ActivationInvalid)
	}
}

func TestActivate_FlipsPendingToVerified(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, false)
	ctx := context.Background()

	rec, _, err := svc.LoadOrCreate(ctx, "abc123", testSubmission)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	token := *rec.ActivationToken

	res, activated, err := svc.Activate(ctx, token)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if res != ActivationCompleted {
		t.Fatalf("result = %s, want %s", res, ActivationCompleted)
	}
	if !activated.Verified {
		t.Error("record not verified after activation")
	}

	// Second use is reported, not re-applied.
	res, _, err = svc.Activate(ctx, token)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if res != ActivationAlreadyActive {
		t.Errorf("repeat result = %s, want %s", res, ActivationAlreadyActive)
	}
}

func TestRecordSubmission_IncrementsByOne(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, true)
	ctx := context.Background()

	svc.LoadOrCreate(ctx, "example.com", testSubmission)

	for i := 1; i <= 3; i++ {
		if err := svc.RecordSubmission(ctx, "example.com"); err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
		rec, _ := repo.GetByKey(ctx, "example.com")
		if rec.SubmissionCount != i {
			t.Fatalf("submission_count = %d after %d records", rec.SubmissionCount, i)
		}
		if rec.LastSubmissionAt == nil {
			t.Fatal("last_submission_at not set")
		}
	}
}

func TestNewActivationToken_UniqueAndWellFormed(t *testing.T) {
	a, err := NewActivationToken()
	if err != nil {
		t.Fatalf("NewActivationToken: %v", err)
	}
	b, _ := NewActivationToken()
	if a == b {
		t.Fatal("two tokens collided")
	}
	if len(a) != tokenBytes*2 {
		t.Errorf("token length = %d, want %d", len(a), tokenBytes*2)
	}
}
