package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Task represents a single reminder item. JSON tags match the persisted
// record layout, so an exported task record stays readable across versions.
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Time        string    `json:"time"` // HH:MM, 24h
	Date        string    `json:"date"` // YYYY-MM-DD
	HasReminder bool      `json:"hasReminder"`
	Completed   bool      `json:"completed"`
	Reminded    bool      `json:"reminded"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ParseHHMM validates a zero-padded 24h "HH:MM" string and returns its parts.
func ParseHHMM(timeStr string) (hour, minute int, err error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", timeStr)
	}
	return hour, minute, nil
}

// ValidTime reports whether timeStr is a valid zero-padded "HH:MM".
func ValidTime(timeStr string) bool {
	_, _, err := ParseHHMM(timeStr)
	return err == nil
}

// ValidDate reports whether dateStr is a real, zero-padded "YYYY-MM-DD" date.
// Re-formatting catches inputs time.Parse would normalize, like "2024-02-30".
func ValidDate(dateStr string) bool {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return false
	}
	return t.Format(dateLayout) == dateStr
}
