package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tomorrow-reminder/internal/clock"
	"tomorrow-reminder/internal/model"
	"tomorrow-reminder/internal/notify"
	"tomorrow-reminder/internal/storage"
)

const reminderTitle = "Task reminder"

// Scanner fires at-most-once reminders for tasks whose scheduled minute
// matches the wall clock.
type Scanner struct {
	store      *storage.Store
	dispatcher notify.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

func NewScanner(store *storage.Store, dispatcher notify.Dispatcher, clk clock.Clock, logger *zap.Logger) *Scanner {
	return &Scanner{store: store, dispatcher: dispatcher, clock: clk, logger: logger}
}

// Scan runs one due-check pass and returns the number of dispatched
// reminders. A task is due when it belongs to today, wants a reminder, has
// not fired, is not completed, and its time equals the current minute
// exactly. Matching is not a range: a minute that passed while the scanner
// was stopped is never fired retroactively.
//
// The reminded flag flips before dispatch, so a failed or suppressed
// delivery cannot cause a repeat on the next tick.
func (s *Scanner) Scan(ctx context.Context) int {
	now := s.clock.Now()
	today := model.Today(now)
	currentMinute := model.ClockHHMM(now)

	fired := 0
	for _, task := range s.store.GetAll() {
		if task.Date != today || !task.HasReminder || task.Reminded || task.Completed {
			continue
		}
		if task.Time != currentMinute {
			continue
		}

		reminded := true
		s.store.Update(task.ID, storage.TaskPatch{Reminded: &reminded})

		outcome := s.dispatcher.Dispatch(ctx, notify.Notification{
			Title: reminderTitle,
			Body:  fmt.Sprintf("%s - %s", task.Time, task.Content),
			Tag:   task.ID,
		})
		s.logger.Info("reminder fired",
			zap.String("task", task.ID),
			zap.String("time", task.Time),
			zap.Stringer("outcome", outcome),
		)
		fired++
	}
	return fired
}
