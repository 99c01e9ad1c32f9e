package notify

import (
	"context"

	"go.uber.org/zap"
)

// Console is the fallback dispatcher for when no delivery transport is
// configured: the reminder is written to the log so it is still observable.
type Console struct {
	logger *zap.Logger
}

func NewConsole(logger *zap.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) Dispatch(_ context.Context, n Notification) Outcome {
	c.logger.Info("reminder",
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("tag", n.Tag),
	)
	return OutcomeSent
}

// Echo mirrors every notification to a secondary dispatcher before the
// primary attempt, so a suppressed or failed platform delivery is still
// visible locally. The reported outcome is the primary's.
type Echo struct {
	primary Dispatcher
	mirror  Dispatcher
}

func NewEcho(primary, mirror Dispatcher) *Echo {
	return &Echo{primary: primary, mirror: mirror}
}

func (e *Echo) Dispatch(ctx context.Context, n Notification) Outcome {
	e.mirror.Dispatch(ctx, n)
	return e.primary.Dispatch(ctx, n)
}
