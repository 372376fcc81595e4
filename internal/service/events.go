package service

import (
	"context"
	"time"

	"github.com/iliyamo/csvboard/internal/queue"
	"go.uber.org/zap"
)

// publish emits ev without letting a broker problem fail the caller. It
// detaches from the request so a client disconnect does not drop the event.
func publish(ctx context.Context, p queue.Publisher, log *zap.Logger, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("activity event dropped",
			zap.String("type", ev.Type),
			zap.String("user_id", ev.UserID),
			zap.Error(err))
	}
}
