package archive

import (
	"fmt"
	"time"
)

// weekStartEnd returns the first and last second of the week containing
// day, where weeks begin on startOfWeek (0 = Sunday ... 6 = Saturday)
func weekStartEnd(day time.Time, startOfWeek int) (time.Time, time.Time) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(day.Weekday())
	if weekday < startOfWeek {
		weekday += 7
	}

	start := day.AddDate(0, 0, -(weekday - startOfWeek))
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end
}

// weekExpr numbers the week of posts.post_date for the given week start.
// %U counts Sunday-based weeks, %W Monday-based; later starts shift the date
// back so a Monday-based count lands on the right boundary.
func weekExpr(startOfWeek int) string {
	switch {
	case startOfWeek == 1:
		return "CAST(COALESCE(strftime('%W', posts.post_date), 0) AS INTEGER)"
	case startOfWeek >= 2 && startOfWeek <= 6:
		return fmt.Sprintf("CAST(COALESCE(strftime('%%W', posts.post_date, '-%d days'), 0) AS INTEGER)", startOfWeek-1)
	default:
		return "CAST(COALESCE(strftime('%U', posts.post_date), 0) AS INTEGER)"
	}
}

func clampStartOfWeek(n int) int {
	if n < 0 || n > 6 {
		return 0
	}
	return n
}
