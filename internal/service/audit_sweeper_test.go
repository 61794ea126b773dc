package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
)

func TestSweepOnceClosesStaleRows(t *testing.T) {
	repo := newFakeAuditRepo()
	now := time.Now()

	stale := &domain.CalculationAudit{ID: "old", UserID: "u1", CreatedAt: now.Add(-10 * time.Minute)}
	recent := &domain.CalculationAudit{ID: "new", UserID: "u1", CreatedAt: now.Add(-time.Minute)}
	if err := repo.Create(context.Background(), stale); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := repo.Create(context.Background(), recent); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	sweeper := NewAuditSweeper(repo, time.Minute, 5*time.Minute)
	sweeper.SweepOnce(context.Background())

	if repo.status["old"] != domain.AuditStatusFailed {
		t.Errorf("stale row status = %q, want failed", repo.status["old"])
	}
	if repo.status["new"] != domain.AuditStatusProcessing {
		t.Errorf("recent row status = %q, want processing", repo.status["new"])
	}
}

func TestSweepSkipsTerminalRows(t *testing.T) {
	repo := newFakeAuditRepo()
	done := &domain.CalculationAudit{ID: "done", UserID: "u1", CreatedAt: time.Now().Add(-time.Hour)}
	if err := repo.Create(context.Background(), done); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := repo.MarkSuccess(context.Background(), "done", nil); err != nil {
		t.Fatalf("MarkSuccess() error: %v", err)
	}

	sweeper := NewAuditSweeper(repo, time.Minute, 5*time.Minute)
	sweeper.SweepOnce(context.Background())

	if repo.status["done"] != domain.AuditStatusSuccess {
		t.Errorf("terminal row status = %q, want success untouched", repo.status["done"])
	}
}
