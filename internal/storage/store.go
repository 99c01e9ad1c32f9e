package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tomorrow-reminder/internal/clock"
	"tomorrow-reminder/internal/model"
)

// currentWindowMinutes is the highlight window around now for CurrentTasks.
const currentWindowMinutes = 30

// AddTaskInput is the caller-supplied part of a new task.
type AddTaskInput struct {
	Content     string
	Time        string
	Date        string
	HasReminder bool
}

// TaskPatch is a partial update. Nil fields keep their current value.
type TaskPatch struct {
	Content     *string
	Time        *string
	Date        *string
	HasReminder *bool
	Completed   *bool
	Reminded    *bool
}

// Store owns the persisted task collection. Every mutation rewrites the whole
// record; a persist failure is logged and the in-memory result still returned,
// so a full disk degrades the app instead of crashing it.
//
// The store is safe for concurrent use. Scheduler jobs and bot handlers run on
// separate goroutines, so the single-writer discipline is enforced with a lock.
type Store struct {
	mu      sync.Mutex
	backend Backend
	clock   clock.Clock
	logger  *zap.Logger
}

func NewStore(backend Backend, clk clock.Clock, logger *zap.Logger) *Store {
	return &Store{backend: backend, clock: clk, logger: logger}
}

// load reads the collection, degrading to empty on any fault. A missing
// record is a fresh install, not a fault.
func (s *Store) load() []model.Task {
	data, err := s.backend.Load()
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("task record unreadable, treating as empty", zap.Error(err))
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.logger.Warn("task record malformed, treating as empty", zap.Error(err))
		return nil
	}
	return tasks
}

// save persists the collection. Failures are logged, never propagated.
func (s *Store) save(tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		s.logger.Error("serialize tasks", zap.Error(err))
		return
	}
	if err := s.backend.Save(data); err != nil {
		s.logger.Error("persist tasks", zap.Error(err))
	}
}

// GetAll returns every persisted task. Order is not significant.
func (s *Store) GetAll() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add validates input, assigns an id and creation time, persists and returns
// the created task.
func (s *Store) Add(input AddTaskInput) (model.Task, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return model.Task{}, fmt.Errorf("task content is required")
	}
	if !model.ValidTime(input.Time) {
		return model.Task{}, fmt.Errorf("invalid time %q, expected HH:MM", input.Time)
	}
	if !model.ValidDate(input.Date) {
		return model.Task{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", input.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.Task{
		ID:          "task_" + uuid.NewString(),
		Content:     content,
		Time:        input.Time,
		Date:        input.Date,
		HasReminder: input.HasReminder,
		CreatedAt:   s.clock.Now(),
	}

	tasks := append(s.load(), task)
	s.save(tasks)
	return task, nil
}

// Update merges patch over the task with the given id. Unknown ids are a
// no-op; callers racing a delete should not see an error.
func (s *Store) Update(id string, patch TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.load()
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		applyPatch(&tasks[i], patch)
		s.save(tasks)
		return
	}
}

func applyPatch(task *model.Task, patch TaskPatch) {
	if patch.Content != nil {
		task.Content = *patch.Content
	}
	if patch.Time != nil {
		task.Time = *patch.Time
	}
	if patch.Date != nil {
		task.Date = *patch.Date
	}
	if patch.HasReminder != nil {
		task.HasReminder = *patch.HasReminder
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Reminded != nil {
		task.Reminded = *patch.Reminded
	}
}

// Delete removes the task with the given id if present.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.load()
	filtered := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == len(tasks) {
		return
	}
	s.save(filtered)
}

// TasksForDate returns tasks with an exact date match, ascending by time.
// Lexicographic HH:MM order is chronological within one day.
func (s *Store) TasksForDate(dateStr string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Task
	for _, t := range s.load() {
		if t.Date == dateStr {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// TodayTasks returns today's bucket.
func (s *Store) TodayTasks() []model.Task {
	return s.TasksForDate(model.Today(s.clock.Now()))
}

// TomorrowTasks returns tomorrow's bucket.
func (s *Store) TomorrowTasks() []model.Task {
	return s.TasksForDate(model.Tomorrow(s.clock.Now()))
}

// PurgeBefore deletes tasks dated strictly before cutoff and returns how many
// were removed. Fixed-width date keys make string comparison safe.
func (s *Store) PurgeBefore(cutoffDateStr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.load()
	kept := tasks[:0]
	for _, t := range tasks {
		if t.Date >= cutoffDateStr {
			kept = append(kept, t)
		}
	}
	removed := len(tasks) - len(kept)
	if removed > 0 {
		s.save(kept)
		s.logger.Info("purged stale tasks", zap.Int("removed", removed), zap.String("cutoff", cutoffDateStr))
	}
	return removed
}

// PurgeExpired removes everything older than yesterday, the retention window
// of the app: today and yesterday are kept, anything before is swept.
func (s *Store) PurgeExpired() int {
	return s.PurgeBefore(model.Yesterday(s.clock.Now()))
}

// CurrentTasks returns today's incomplete tasks within ±30 minutes of now.
// This feeds the rendering layer's highlight; the scanner never uses it.
func (s *Store) CurrentTasks() []model.Task {
	now := s.clock.Now()
	nowMinutes := now.Hour()*60 + now.Minute()

	var out []model.Task
	for _, t := range s.TasksForDate(model.Today(now)) {
		if t.Completed {
			continue
		}
		hour, minute, err := model.ParseHHMM(t.Time)
		if err != nil {
			continue
		}
		diff := hour*60 + minute - nowMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff <= currentWindowMinutes {
			out = append(out, t)
		}
	}
	return out
}
