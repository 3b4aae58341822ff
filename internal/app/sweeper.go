package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweepable is anything that can forget entries idle for longer than ttl.
type Sweepable interface {
	SweepIdle(ttl time.Duration) int
}

// SweepFunc adapts a plain function to Sweepable.
type SweepFunc func(ttl time.Duration) int

func (f SweepFunc) SweepIdle(ttl time.Duration) int { return f(ttl) }

// NewSweeper schedules every target to be swept with ttl on schedule, a cron
// expression or descriptor such as "@every 5m". The returned scheduler is
// not started.
func NewSweeper(schedule string, ttl time.Duration, logger *zap.Logger, targets ...Sweepable) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		dropped := 0
		for _, t := range targets {
			dropped += t.SweepIdle(ttl)
		}
		logger.Debug("idle sweep finished", zap.Int("dropped", dropped))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
