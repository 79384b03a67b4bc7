package aggregate

import (
	"strconv"
	"time"

	"github.com/rezkam/careshift/internal/domain"
)

// KeyFunc picks the group a task is counted under.
type KeyFunc func(domain.Task) string

// ByCategory groups by ADL category id.
func ByCategory(t domain.Task) string {
	return strconv.Itoa(t.CategoryID)
}

// ByWeekday groups by the weekday of the due date.
func ByWeekday(t domain.Task) string {
	return t.DueDate.Weekday().String()
}

// ByShift groups by shift id.
func ByShift(t domain.Task) string {
	return strconv.Itoa(t.ShiftID)
}

// Counts is a verdict histogram for one group.
type Counts map[domain.StatusVerdict]int

// CountsBy groups tasks with key and counts verdicts within each group.
// Verdicts come from the classifier; this adds no status logic of its own.
func CountsBy(tasks []domain.Task, c Classifier, now time.Time, key KeyFunc) map[string]Counts {
	groups := make(map[string]Counts)
	for _, task := range tasks {
		verdict, err := c.Classify(task, now)
		if err != nil {
			verdict = domain.StatusUnresolved
		}

		k := key(task)
		if groups[k] == nil {
			groups[k] = make(Counts)
		}
		groups[k][verdict]++
	}
	return groups
}
