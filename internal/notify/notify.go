// Package notify delivers "day newly marked" celebrations to logs, a
// RabbitMQ exchange, or the TUI.
package notify

import (
	"context"
	"errors"

	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/tracker"

	"go.uber.org/zap"
)

// Log writes one info line per celebration.
type Log struct {
	log *zap.Logger
}

// NewLog returns a Log celebrator writing to l.
func NewLog(l *zap.Logger) *Log {
	return &Log{log: logging.OrNop(l)}
}

// Celebrate implements tracker.Celebrator.
func (n *Log) Celebrate(_ context.Context, c tracker.Celebration) error {
	n.log.Info("habit marked",
		zap.String("habit_id", c.HabitID),
		zap.String("habit", c.HabitName),
		zap.String("day", c.Day),
		zap.Int("current", c.Current),
		zap.Int("best", c.Best),
	)
	return nil
}

// Chan forwards celebrations to a channel without ever blocking the
// caller. A full channel drops the celebration.
type Chan struct {
	C chan tracker.Celebration
}

// NewChan returns a Chan with the given buffer size.
func NewChan(buffer int) *Chan {
	if buffer < 1 {
		buffer = 1
	}
	return &Chan{C: make(chan tracker.Celebration, buffer)}
}

// Celebrate implements tracker.Celebrator.
func (n *Chan) Celebrate(_ context.Context, c tracker.Celebration) error {
	select {
	case n.C <- c:
	default:
	}
	return nil
}

// Multi fans a celebration out to every sink, joining their errors.
type Multi []tracker.Celebrator

// Celebrate implements tracker.Celebrator.
func (m Multi) Celebrate(ctx context.Context, c tracker.Celebration) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Celebrate(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
