package service

import (
	"context"
	"log"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
)

// AuditSweeper closes audit rows stuck in processing. A row strands
// when a calculator call dies between the balance decrement and the
// terminal transition; the sweeper fails those rows after maxAge.
type AuditSweeper struct {
	auditRepo domain.CalculationAuditRepository
	interval  time.Duration
	maxAge    time.Duration
}

func NewAuditSweeper(auditRepo domain.CalculationAuditRepository, interval, maxAge time.Duration) *AuditSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &AuditSweeper{auditRepo: auditRepo, interval: interval, maxAge: maxAge}
}

// Run sweeps on a ticker until ctx is cancelled.
func (s *AuditSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs one sweep pass and logs what it closed.
func (s *AuditSweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)
	closed, err := s.auditRepo.SweepStale(ctx, cutoff)
	if err != nil {
		log.Printf("Warning: audit sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("Audit sweep closed %d stale processing rows", closed)
	}
}
