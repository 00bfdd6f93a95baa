package locale

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultDateFormat is the site date format used when none is configured
const DefaultDateFormat = "F j, Y"

// FormatDate renders t using a PHP date() style layout with translated month
// and weekday names. A backslash emits the following character literally;
// unknown letters are copied through.
func (l *Locale) FormatDate(layout string, t time.Time) string {
	var b strings.Builder

	for i := 0; i < len(layout); i++ {
		c := layout[i]

		if c == '\\' {
			if i+1 < len(layout) {
				i++
				b.WriteByte(layout[i])
			}
			continue
		}

		switch c {
		// day
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'D':
			b.WriteString(l.WeekdayShort(t.Weekday()))
		case 'j':
			b.WriteString(strconv.Itoa(t.Day()))
		case 'l':
			b.WriteString(l.Weekday(t.Weekday()))
		case 'N':
			b.WriteString(strconv.Itoa(isoWeekday(t)))
		case 'S':
			b.WriteString(l.ordinalSuffix(t.Day()))
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'z':
			b.WriteString(strconv.Itoa(t.YearDay() - 1))

		// week
		case 'W':
			_, week := t.ISOWeek()
			fmt.Fprintf(&b, "%02d", week)

		// month
		case 'F':
			b.WriteString(l.MonthName(int(t.Month())))
		case 'M':
			b.WriteString(l.MonthNameShort(int(t.Month())))
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'n':
			b.WriteString(strconv.Itoa(int(t.Month())))
		case 't':
			b.WriteString(strconv.Itoa(daysIn(t)))

		// year
		case 'L':
			if daysInYear(t.Year()) == 366 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		case 'Y':
			b.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)

		// time
		case 'a':
			b.WriteString(t.Format("pm"))
		case 'A':
			b.WriteString(t.Format("PM"))
		case 'g':
			b.WriteString(t.Format("3"))
		case 'G':
			b.WriteString(strconv.Itoa(t.Hour()))
		case 'h':
			b.WriteString(t.Format("03"))
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'i':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 's':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'U':
			b.WriteString(strconv.FormatInt(t.Unix(), 10))

		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// ordinalSuffix is English only; other languages do not suffix day numbers
func (l *Locale) ordinalSuffix(day int) string {
	if l.tag != language.English {
		return ""
	}
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
