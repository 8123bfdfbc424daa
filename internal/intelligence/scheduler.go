// internal/intelligence/scheduler.go
package intelligence

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Monitor sweeps open assignments on a cron schedule and runs the detection
// pipeline for each. One misbehaving assignment never starves the rest of a
// sweep.
type Monitor struct {
	service  *Service
	schedule cron.Schedule
	logger   *zap.Logger
	now      func() time.Time
}

// NewMonitor parses a standard 5-field cron expression (minute hour
// day-of-month month day-of-week) and returns a monitor ready to run.
func NewMonitor(service *Service, spec string, logger *zap.Logger) (*Monitor, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing monitor schedule %q: %w", spec, err)
	}
	return &Monitor{
		service:  service,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run blocks until the context is cancelled, sweeping at every cron tick.
func (m *Monitor) Run(ctx context.Context) {
	for {
		now := m.now()
		next := m.schedule.Next(now)
		m.logger.Info("next monitor sweep scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("monitor stopped")
			return
		case <-timer.C:
		}

		m.Sweep(ctx)
	}
}

// Sweep runs MonitorAndPropose over every open assignment, logging and
// skipping failures.
func (m *Monitor) Sweep(ctx context.Context) {
	assignments, err := m.service.boundaries.ListOpen(ctx)
	if err != nil {
		m.logger.Error("listing open assignments", zap.Error(err))
		return
	}

	var created int
	for _, asg := range assignments {
		proposals, err := m.service.MonitorAndPropose(ctx, asg.ID)
		if err != nil {
			m.logger.Error("monitoring assignment failed",
				zap.String("assignment_id", asg.ID),
				zap.Error(err))
			continue
		}
		created += len(proposals)
	}

	monitorSweeps.Inc()
	m.logger.Info("monitor sweep complete",
		zap.Int("assignments", len(assignments)),
		zap.Int("proposals_created", created))
}
