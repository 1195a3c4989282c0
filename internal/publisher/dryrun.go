package publisher

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/lukman83/promobot/internal/models"
)

// LogSender prints messages instead of sending them. Used by dry runs.
type LogSender struct {
	channel models.Channel
	logger  *log.Logger
	seq     atomic.Int64
}

func NewLogSender(ch models.Channel, logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSender{channel: ch, logger: logger}
}

func (l *LogSender) Channel() models.Channel { return l.channel }

func (l *LogSender) Configured() bool { return true }

func (l *LogSender) Send(ctx context.Context, p models.Product, text string) (string, error) {
	n := l.seq.Add(1)
	l.logger.Printf("[dry-run] %s <- %s\n%s\n", l.channel, p.ID, text)
	return fmt.Sprintf("dry-%s-%d", l.channel, n), nil
}
