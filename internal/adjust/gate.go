// internal/adjust/gate.go
package adjust

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Gate rejection reasons. Stable values: they label the gated-proposal
// counter.
const (
	GateDuplicateWindow = "duplicate_window"
	GateTooFewStudents  = "too_few_students"
	GateWeakEvidence    = "weak_evidence"
)

// Gate filters generated proposals before anything reaches an educator.
// A withheld proposal is never persisted.
type Gate struct {
	proposals  ProposalStore
	thresholds Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// NewGate creates a gate backed by the given proposal store.
func NewGate(proposals ProposalStore, thresholds Thresholds, logger *zap.Logger) *Gate {
	return &Gate{
		proposals:  proposals,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Admit checks one proposal against the gate rules. It returns false with a
// rejection reason when the proposal should be withheld; the error is
// non-nil only when the dedupe lookup itself fails.
func (g *Gate) Admit(ctx context.Context, p *Proposal) (bool, string, error) {
	cutoff := g.now().Add(-g.thresholds.DedupeWindow)
	exists, err := g.proposals.ExistsSince(ctx, p.AssignmentID, p.Type, cutoff)
	if err != nil {
		return false, "", fmt.Errorf("checking proposal history: %w", err)
	}
	if exists {
		g.reject(p, GateDuplicateWindow)
		return false, GateDuplicateWindow, nil
	}

	if len(p.AffectedStudents) < g.thresholds.MinAffectedStudents {
		g.reject(p, GateTooFewStudents)
		return false, GateTooFewStudents, nil
	}

	if evidenceDeviation(p.Evidence) <= g.thresholds.MinEvidenceDeviation {
		g.reject(p, GateWeakEvidence)
		return false, GateWeakEvidence, nil
	}

	return true, "", nil
}

func (g *Gate) reject(p *Proposal, reason string) {
	g.logger.Info("proposal withheld",
		zap.String("assignment_id", p.AssignmentID),
		zap.String("pattern", string(p.Pattern)),
		zap.String("type", string(p.Type)),
		zap.String("reason", reason))
}

// evidenceDeviation is the mean relative deviation of evidence values from
// their thresholds. Rows with a zero threshold are skipped; no usable rows
// means zero deviation.
func evidenceDeviation(evidence []Evidence) float64 {
	var sum float64
	var n int
	for _, e := range evidence {
		if e.Threshold == 0 {
			continue
		}
		d := (e.Value - e.Threshold) / e.Threshold
		if d < 0 {
			d = -d
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
