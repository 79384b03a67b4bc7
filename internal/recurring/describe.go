package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/careshift/internal/domain"
)

// DescriptionDateLayout is the date format used in rule descriptions.
const DescriptionDateLayout = "01/02/2006"

var ordinals = []string{"", "first", "second", "third", "fourth", "last"}

// Describe renders a human-readable summary of rule, for example
// "Occurs every 2 weeks on Mon, Wed from 01/01/2024 until 03/01/2024".
func Describe(rule domain.RecurrenceRule) string {
	if rule.IsZero() {
		return ""
	}
	matcher := GetMatcher(rule.Kind())
	if matcher == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Occurs every ")

	singular, plural := matcher.Unit()
	if n := rule.CycleLength(); n == 1 {
		b.WriteString(singular)
	} else {
		fmt.Fprintf(&b, "%d %s", n, plural)
	}

	start := rule.StartDate()
	switch rule.Kind() {
	case domain.RecurrenceDaily, domain.RecurrenceWeekly:
		if days := rule.Weekdays().Days(); len(days) > 0 {
			names := make([]string, len(days))
			for i, d := range days {
				names[i] = weekdayAbbrev[d]
			}
			b.WriteString(" on " + strings.Join(names, ", "))
		}
	case domain.RecurrenceYearly:
		if rule.ByWeekday() {
			fmt.Fprintf(&b, " on the %s of %s", weekdayPhrase(start), start.Month)
		} else {
			fmt.Fprintf(&b, " on %s %d", start.Month, start.Day)
		}
	default:
		if rule.ByWeekday() {
			fmt.Fprintf(&b, " on the %s", weekdayPhrase(start))
		} else {
			fmt.Fprintf(&b, " on day %d", start.Day)
		}
	}

	if shifts := rule.Shifts(); len(shifts) > 0 {
		names := make([]string, len(shifts))
		for i, s := range shifts {
			names[i] = string(s)
		}
		b.WriteString(" during " + strings.Join(names, ", "))
	}

	b.WriteString(" from " + formatDate(start))
	if end, ok := rule.EndDate(); ok {
		b.WriteString(" until " + formatDate(end))
	}

	return b.String()
}

func weekdayPhrase(d domain.Date) string {
	n, _ := weekOrdinal(d)
	return ordinals[n] + " " + d.Weekday().String()
}

func formatDate(d domain.Date) string {
	return d.StartOfDay(time.UTC).Format(DescriptionDateLayout)
}
