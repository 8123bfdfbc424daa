// internal/intelligence/service.go
package intelligence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkforge/quillgate/internal/adjust"
	"github.com/inkforge/quillgate/internal/analytics"
	"github.com/inkforge/quillgate/internal/boundary"
	"github.com/inkforge/quillgate/internal/notify"
	"github.com/inkforge/quillgate/internal/telemetry"
)

// Options carries the tunable calibration for the analysis and adjustment
// pipeline. Reconfigure swaps these at runtime.
type Options struct {
	Analytics analytics.Thresholds
	Adjust    adjust.Thresholds
	CacheTTL  time.Duration
}

// DefaultOptions returns the production calibration.
func DefaultOptions() Options {
	return Options{
		Analytics: analytics.DefaultThresholds(),
		Adjust:    adjust.DefaultThresholds(),
		CacheTTL:  analytics.DefaultSnapshotTTL,
	}
}

// pipeline is the immutable component set built from one Options value.
// Reconfigure replaces the whole pipeline; in-flight calls finish on the one
// they started with.
type pipeline struct {
	aggregator  *analytics.Aggregator
	segmenter   *analytics.Segmenter
	assessor    *analytics.Assessor
	recommender *analytics.Recommender
	detector    *adjust.Detector
	proposer    *adjust.Proposer
	gate        *adjust.Gate
	window      time.Duration
}

// Service is the boundary intelligence facade the platform calls into. It
// owns the analysis pipeline, the proposal lifecycle, and the notifications
// both sides of it emit.
type Service struct {
	reader     telemetry.Reader
	boundaries boundary.Store
	proposals  adjust.ProposalStore
	notifier   *notify.Dispatcher
	workflow   *adjust.Workflow
	logger     *zap.Logger

	mu sync.RWMutex
	p  pipeline
}

// NewService wires the full pipeline over the given collaborators.
func NewService(reader telemetry.Reader, boundaries boundary.Store, proposals adjust.ProposalStore, notifier *notify.Dispatcher, opts Options, logger *zap.Logger) *Service {
	s := &Service{
		reader:     reader,
		boundaries: boundaries,
		proposals:  proposals,
		notifier:   notifier,
		workflow:   adjust.NewWorkflow(proposals, boundaries, notifier, logger),
		logger:     logger,
	}
	s.p = s.build(opts)
	return s
}

func (s *Service) build(opts Options) pipeline {
	cache := analytics.NewSnapshotCache(opts.CacheTTL)
	return pipeline{
		aggregator:  analytics.NewAggregator(s.reader, s.boundaries, cache, opts.Analytics, s.logger),
		segmenter:   analytics.NewSegmenter(opts.Analytics),
		assessor:    analytics.NewAssessor(opts.Analytics),
		recommender: analytics.NewRecommender(opts.Analytics),
		detector:    adjust.NewDetector(opts.Adjust),
		proposer:    adjust.NewProposer(opts.Adjust),
		gate:        adjust.NewGate(s.proposals, opts.Adjust, s.logger),
		window:      opts.Analytics.AnalysisWindow,
	}
}

// Reconfigure rebuilds the pipeline with new calibration. The snapshot cache
// starts empty afterwards, so the next reads recompute under the new
// thresholds.
func (s *Service) Reconfigure(opts Options) {
	next := s.build(opts)

	s.mu.Lock()
	s.p = next
	s.mu.Unlock()

	s.logger.Info("intelligence pipeline reconfigured",
		zap.Duration("analysis_window", opts.Analytics.AnalysisWindow),
		zap.Duration("cache_ttl", opts.CacheTTL))
}

func (s *Service) pipeline() pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Analytics returns the class snapshot for an assignment.
func (s *Service) Analytics(ctx context.Context, assignmentID string) (analytics.ClassAnalytics, error) {
	p := s.pipeline()
	asg, err := s.boundaries.GetAssignment(ctx, assignmentID)
	if err != nil {
		return analytics.ClassAnalytics{}, fmt.Errorf("resolving assignment %s: %w", assignmentID, err)
	}
	return p.aggregator.Snapshot(ctx, asg.CourseID, asg.ID)
}

// Segments classifies every student on the roster.
func (s *Service) Segments(ctx context.Context, assignmentID string) ([]analytics.SegmentGroup, error) {
	p := s.pipeline()
	asg, err := s.boundaries.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("resolving assignment %s: %w", assignmentID, err)
	}
	rows, err := p.aggregator.StudentMetrics(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return nil, err
	}
	return p.segmenter.Segment(rows), nil
}

// Effectiveness scores how well the current boundary configuration serves
// the class.
func (s *Service) Effectiveness(ctx context.Context, assignmentID string) (analytics.EffectivenessReport, error) {
	p := s.pipeline()
	asg, err := s.boundaries.GetAssignment(ctx, assignmentID)
	if err != nil {
		return analytics.EffectivenessReport{}, fmt.Errorf("resolving assignment %s: %w", assignmentID, err)
	}
	snap, err := p.aggregator.Snapshot(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return analytics.EffectivenessReport{}, err
	}
	return p.assessor.Assess(snap), nil
}

// Recommendations produces the full advisory set for an assignment:
// class-wide when effectiveness is low, individual for at-risk segments, and
// always one temporal recommendation.
func (s *Service) Recommendations(ctx context.Context, assignmentID string) ([]analytics.BoundaryRecommendation, error) {
	p := s.pipeline()
	asg, err := s.boundaries.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("resolving assignment %s: %w", assignmentID, err)
	}
	snap, err := p.aggregator.Snapshot(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return nil, err
	}
	rows, err := p.aggregator.StudentMetrics(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return nil, err
	}
	groups := p.segmenter.Segment(rows)
	report := p.assessor.Assess(snap)
	return p.recommender.Recommend(asg, snap, groups, report), nil
}

// MonitorAndPropose runs detection for one assignment and persists whatever
// survives the gate. Created proposals are returned and the assignment's
// educator is notified about each one.
func (s *Service) MonitorAndPropose(ctx context.Context, assignmentID string) ([]*adjust.Proposal, error) {
	p := s.pipeline()
	asg, err := s.boundaries.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("resolving assignment %s: %w", assignmentID, err)
	}

	snap, err := p.aggregator.Snapshot(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return nil, err
	}
	rows, err := p.aggregator.StudentMetrics(ctx, asg.CourseID, asg.ID)
	if err != nil {
		return nil, err
	}

	metrics := adjust.NewPerformanceMetrics(snap, p.window)
	patterns := p.detector.Detect(metrics)
	if len(patterns) == 0 {
		return nil, nil
	}

	var created []*adjust.Proposal
	for _, proposal := range p.proposer.Propose(asg, metrics, rows, patterns) {
		ok, reason, err := p.gate.Admit(ctx, proposal)
		if err != nil {
			return created, err
		}
		if !ok {
			proposalsGated.WithLabelValues(reason).Inc()
			continue
		}

		if err := s.proposals.Create(ctx, proposal); err != nil {
			return created, fmt.Errorf("persisting proposal: %w", err)
		}
		proposalsCreated.WithLabelValues(string(proposal.Pattern)).Inc()
		created = append(created, proposal)

		s.notifyEducator(ctx, asg, proposal)
	}

	if len(created) > 0 {
		s.logger.Info("adjustment proposals created",
			zap.String("assignment_id", asg.ID),
			zap.Int("count", len(created)))
	}
	return created, nil
}

// ApproveProposal applies a pending proposal and returns its final state.
func (s *Service) ApproveProposal(ctx context.Context, proposalID, actorID, notes string) (*adjust.Proposal, error) {
	p, err := s.workflow.Approve(ctx, proposalID, actorID, notes)
	if err != nil {
		return nil, err
	}
	proposalsApproved.Inc()
	return p, nil
}

// RejectProposal records a rejection and returns the proposal's final state.
func (s *Service) RejectProposal(ctx context.Context, proposalID, actorID, reason string) (*adjust.Proposal, error) {
	p, err := s.workflow.Reject(ctx, proposalID, actorID, reason)
	if err != nil {
		return nil, err
	}
	proposalsRejected.Inc()
	return p, nil
}

// Proposals returns every proposal for an assignment, newest first.
func (s *Service) Proposals(ctx context.Context, assignmentID string) ([]*adjust.Proposal, error) {
	return s.proposals.ListByAssignment(ctx, assignmentID)
}

// PendingProposals returns the undecided proposals for an assignment.
func (s *Service) PendingProposals(ctx context.Context, assignmentID string) ([]*adjust.Proposal, error) {
	return s.proposals.ListPending(ctx, assignmentID)
}

// AdjustmentHistory returns the boundary adjustment log, newest first.
func (s *Service) AdjustmentHistory(ctx context.Context, assignmentID string) ([]*boundary.AdjustmentLog, error) {
	return s.boundaries.AdjustmentHistory(ctx, assignmentID)
}

// notifyEducator tells the assignment's educator a proposal awaits review.
// Delivery failure never blocks proposal creation.
func (s *Service) notifyEducator(ctx context.Context, asg *boundary.Assignment, p *adjust.Proposal) {
	if asg.EducatorID == "" {
		return
	}
	n := notify.Notification{
		RecipientID: asg.EducatorID,
		Type:        notify.TypeProposalCreated,
		Title:       fmt.Sprintf("Boundary adjustment proposed for %q", asg.Title),
		Message:     fmt.Sprintf("%s (%d students affected). Proposed: %s", p.Reason, len(p.AffectedStudents), p.SpecificChange),
		Priority:    notify.PriorityNormal,
		Metadata: map[string]string{
			"assignment_id": asg.ID,
			"proposal_id":   p.ID,
			"pattern":       string(p.Pattern),
		},
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("educator notification failed",
			zap.String("educator_id", asg.EducatorID),
			zap.String("proposal_id", p.ID),
			zap.Error(err))
		return
	}
	notificationsSent.WithLabelValues(notify.TypeProposalCreated).Inc()
}
