package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tomorrow-reminder/internal/model"
)

func TestFormatTask(t *testing.T) {
	base := model.Task{ID: "task_1", Content: "Water the plants", Time: "09:00", Date: "2024-01-01"}

	tests := []struct {
		name      string
		mutate    func(task *model.Task)
		isCurrent bool
		wantIcon  string
		wantBell  string
	}{
		{
			name:     "pending task with reminder",
			mutate:   func(task *model.Task) { task.HasReminder = true },
			wantIcon: "🕐",
			wantBell: "⏰",
		},
		{
			name:      "current task is highlighted",
			mutate:    func(task *model.Task) {},
			isCurrent: true,
			wantIcon:  "🔥",
		},
		{
			name:     "completed wins over current",
			mutate:   func(task *model.Task) { task.Completed = true },
			wantIcon: "✅",
		},
		{
			name: "fired reminder shows muted bell",
			mutate: func(task *model.Task) {
				task.HasReminder = true
				task.Reminded = true
			},
			wantIcon: "🕐",
			wantBell: "🔕",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := base
			tt.mutate(&task)

			line := formatTask(task, tt.isCurrent)

			assert.Contains(t, line, tt.wantIcon)
			assert.Contains(t, line, "09:00")
			assert.Contains(t, line, "Water the plants")
			if tt.wantBell != "" {
				assert.Contains(t, line, tt.wantBell)
			}
		})
	}
}

func TestFormatTaskEscapesHTML(t *testing.T) {
	task := model.Task{Content: "<b>sneaky</b>", Time: "09:00"}

	line := formatTask(task, false)

	assert.NotContains(t, line, "<b>sneaky</b>")
	assert.Contains(t, line, "&lt;b&gt;sneaky&lt;/b&gt;")
}

func TestShortContent(t *testing.T) {
	assert.Equal(t, "short", shortContent("short", 20))
	assert.Equal(t, "exactly-ten", shortContent("exactly-ten", 11))
	got := shortContent("a very long task description that keeps going", 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.Equal(t, "…", string([]rune(got)[9]))
}

func TestBucketLabel(t *testing.T) {
	now := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local)

	assert.Equal(t, "Today", bucketLabel("2024-01-01", now))
	assert.Equal(t, "Tomorrow", bucketLabel("2024-01-02", now))
	assert.Equal(t, "2024-01-05", bucketLabel("2024-01-05", now))
}
