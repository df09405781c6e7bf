package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type elapsedCompleter interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// CompletionSweeper periodically flips sessions whose end time has passed
// from SCHEDULED to COMPLETED.
type CompletionSweeper struct {
	cron     *cron.Cron
	sessions elapsedCompleter
	logger   *zap.Logger
	schedule string
}

// NewCompletionSweeper instantiates CompletionSweeper. The schedule uses the
// cron spec format, e.g. "@every 10m".
func NewCompletionSweeper(sessions elapsedCompleter, schedule string, logger *zap.Logger) *CompletionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionSweeper{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sessions: sessions,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the sweep and begins the cron loop.
func (s *CompletionSweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("completion sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *CompletionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CompletionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	completed, err := s.sessions.CompleteElapsed(ctx)
	if err != nil {
		s.logger.Error("completion sweep failed", zap.Error(err))
		return
	}
	if completed > 0 {
		s.logger.Info("completion sweep finished", zap.Int64("completed", completed))
	}
}
