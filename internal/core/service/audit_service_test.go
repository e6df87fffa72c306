package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

type stubAuditRepo struct {
	events    []*domain.ActivationEvent
	insertErr error
}

func (r *stubAuditRepo) InsertEvent(_ context.Context, event *domain.ActivationEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

// stubDedup remembers marked (key, outcome, timestamp) tuples.
type stubDedup struct {
	marked   map[string]bool
	checkErr error
	markErr  error
}

func newStubDedup() *stubDedup {
	return &stubDedup{marked: make(map[string]bool)}
}

func (d *stubDedup) dedupKey(key, outcome string, ts time.Time) string {
	return fmt.Sprintf("%s:%s:%d", key, outcome, ts.Unix())
}

func (d *stubDedup) IsDuplicate(_ context.Context, key, outcome string, ts time.Time) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	return d.marked[d.dedupKey(key, outcome, ts)], nil
}

func (d *stubDedup) Mark(_ context.Context, key, outcome string, ts time.Time) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked[d.dedupKey(key, outcome, ts)] = true
	return nil
}

func sampleEvent(outcome string, ts time.Time) domain.ActivationEvent {
	return domain.ActivationEvent{
		Key:       "ABCD1234EFGH5678",
		AppID:     "app-0001",
		Outcome:   outcome,
		Source:    "api",
		ClientIP:  "10.0.0.1",
		Timestamp: ts,
	}
}

func TestAuditService_Process_Archives(t *testing.T) {
	repo := &stubAuditRepo{}
	dedup := newStubDedup()
	svc := NewAuditService(repo, dedup, discardLogger)

	if err := svc.Process(context.Background(), sampleEvent(domain.OutcomeActivated, time.Now().UTC())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 archived event, got %d", len(repo.events))
	}
	if repo.events[0].Outcome != domain.OutcomeActivated {
		t.Errorf("outcome: want %q, got %q", domain.OutcomeActivated, repo.events[0].Outcome)
	}
}

func TestAuditService_Process_SkipsDuplicates(t *testing.T) {
	repo := &stubAuditRepo{}
	dedup := newStubDedup()
	svc := NewAuditService(repo, dedup, discardLogger)

	event := sampleEvent(domain.OutcomeRejectedUsed, time.Now().UTC())
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("duplicate process must not error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Errorf("duplicate must not be archived twice, got %d events", len(repo.events))
	}
}

func TestAuditService_Process_DistinctOutcomesBothArchived(t *testing.T) {
	repo := &stubAuditRepo{}
	dedup := newStubDedup()
	svc := NewAuditService(repo, dedup, discardLogger)

	ts := time.Now().UTC()
	_ = svc.Process(context.Background(), sampleEvent(domain.OutcomeRejectedBanned, ts))
	_ = svc.Process(context.Background(), sampleEvent(domain.OutcomeActivated, ts))

	if len(repo.events) != 2 {
		t.Errorf("different outcomes are distinct events, got %d archived", len(repo.events))
	}
}

func TestAuditService_Process_DedupFailureArchivesAnyway(t *testing.T) {
	repo := &stubAuditRepo{}
	dedup := newStubDedup()
	dedup.checkErr = errors.New("redis down")
	svc := NewAuditService(repo, dedup, discardLogger)

	if err := svc.Process(context.Background(), sampleEvent(domain.OutcomeActivated, time.Now().UTC())); err != nil {
		t.Fatalf("dedup failure must not block archiving: %v", err)
	}
	if len(repo.events) != 1 {
		t.Errorf("expected 1 archived event, got %d", len(repo.events))
	}
}

func TestAuditService_Process_InsertFailureSurfaces(t *testing.T) {
	repo := &stubAuditRepo{insertErr: errors.New("mongo down")}
	dedup := newStubDedup()
	svc := NewAuditService(repo, dedup, discardLogger)

	if err := svc.Process(context.Background(), sampleEvent(domain.OutcomeActivated, time.Now().UTC())); err == nil {
		t.Fatal("expected error when the archive insert fails")
	}
}
