package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stayledger/internal/service"
)

const reconcileTimeout = 2 * time.Minute

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	l    *zap.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(l *zap.Logger) *Scheduler {
	l = l.Named("jobs")
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{l}), cron.Recover(cronLogger{l}))),
		l:    l,
	}
}

// AddReconcile schedules reconciler on spec, e.g. "@every 5m".
func (s *Scheduler) AddReconcile(spec string, reconciler service.ReconcileService) error {
	_, err := s.cron.AddFunc(spec, func() {
		RunReconcile(context.Background(), reconciler, s.l)
	})
	return err
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("Scheduler started.", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.l.Info("Scheduler stopped.")
}

// RunReconcile runs one reconciliation and logs the outcome.
func RunReconcile(ctx context.Context, reconciler service.ReconcileService, l *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	report, err := reconciler.Run(ctx)
	if err != nil {
		l.Error("Reconciliation failed.", zap.Error(err))
		return
	}
	if !report.Clean() {
		l.Warn("Reconciliation found problems.",
			zap.Int("mismatched", report.MismatchedAccounts),
			zap.Int("stale_failed", report.StalePaymentsFailed),
			zap.String("details", report.Details),
		)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Infow(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}

// check interfaces
var (
	_ cron.Logger = cronLogger{}
)
