package archive

import (
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/archive-comb/app/database"
)

// queryParts are the pieces every archive query is assembled from
type queryParts struct {
	where string
	join  string
	order string
	limit string
	week  string
}

// rowMapper turns one store row into an entry; false skips the row
type rowMapper func(row database.ArchiveRow) (Entry, bool)

type strategy struct {
	kind   database.RowKind
	query  func(p queryParts) string
	mapper func(a *Aggregator, r *Request) rowMapper
}

var strategies = map[Type]strategy{
	TypeMonthly: {
		kind: database.RowKindMonthly,
		query: func(p queryParts) string {
			return build(
				"SELECT CAST(substr(posts.post_date, 1, 4) AS INTEGER) AS year, CAST(substr(posts.post_date, 6, 2) AS INTEGER) AS month, count(posts.id) AS post_count",
				"FROM posts", p.join, p.where,
				"GROUP BY year, month ORDER BY posts.post_date "+p.order+p.limit,
			)
		},
		mapper: monthlyMapper,
	},
	TypeYearly: {
		kind: database.RowKindYearly,
		query: func(p queryParts) string {
			return build(
				"SELECT CAST(substr(posts.post_date, 1, 4) AS INTEGER) AS year, count(posts.id) AS post_count",
				"FROM posts", p.join, p.where,
				"GROUP BY year ORDER BY posts.post_date "+p.order+p.limit,
			)
		},
		mapper: yearlyMapper,
	},
	TypeDaily: {
		kind: database.RowKindDaily,
		query: func(p queryParts) string {
			return build(
				"SELECT CAST(substr(posts.post_date, 1, 4) AS INTEGER) AS year, CAST(substr(posts.post_date, 6, 2) AS INTEGER) AS month, CAST(substr(posts.post_date, 9, 2) AS INTEGER) AS dayofmonth, count(posts.id) AS post_count",
				"FROM posts", p.join, p.where,
				"GROUP BY year, month, dayofmonth ORDER BY posts.post_date "+p.order+p.limit,
			)
		},
		mapper: dailyMapper,
	},
	TypeWeekly: {
		kind: database.RowKindWeekly,
		query: func(p queryParts) string {
			return build(
				"SELECT DISTINCT "+p.week+" AS week, CAST(substr(posts.post_date, 1, 4) AS INTEGER) AS yr, substr(posts.post_date, 1, 10) AS yyyymmdd, count(posts.id) AS post_count",
				"FROM posts", p.join, p.where,
				"GROUP BY week, yr ORDER BY posts.post_date "+p.order+p.limit,
			)
		},
		mapper: weeklyMapper,
	},
	TypePostByPost: {
		kind: database.RowKindPost,
		query: func(p queryParts) string {
			return postsQuery(p, "posts.post_date DESC")
		},
		mapper: postMapper,
	},
	TypeAlpha: {
		kind: database.RowKindPost,
		query: func(p queryParts) string {
			return postsQuery(p, "posts.post_title ASC")
		},
		mapper: postMapper,
	},
}

func postsQuery(p queryParts, orderBy string) string {
	return build(
		"SELECT posts.id, posts.guid, posts.post_title, posts.post_name, posts.post_date, posts.post_type, posts.post_status, posts.post_content",
		"FROM posts", p.join, p.where,
		"ORDER BY "+orderBy+p.limit,
	)
}

// build joins the non-empty clauses with single spaces
func build(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func monthlyMapper(a *Aggregator, r *Request) rowMapper {
	return func(row database.ArchiveRow) (Entry, bool) {
		label := html.EscapeString(a.locale.MonthYear(row.Month, row.Year))
		return Entry{
			URL:       a.links.Month(row.Year, row.Month),
			Label:     label,
			Image:     renderImage(r.Image, fmt.Sprintf("%d%02d", row.Year, row.Month), label),
			PostCount: row.Posts,
			Counted:   true,
		}, true
	}
}

func yearlyMapper(a *Aggregator, r *Request) rowMapper {
	return func(row database.ArchiveRow) (Entry, bool) {
		year := strconv.Itoa(row.Year)
		return Entry{
			URL:       a.links.Year(row.Year),
			Label:     year,
			Image:     renderImage(r.Image, year, year),
			PostCount: row.Posts,
			Counted:   true,
		}, true
	}
}

func dailyMapper(a *Aggregator, r *Request) rowMapper {
	return func(row database.ArchiveRow) (Entry, bool) {
		date := time.Date(row.Year, time.Month(row.Month), row.DayOfMonth, 0, 0, 0, 0, time.UTC)
		label := html.EscapeString(a.locale.FormatDate(a.dateFormat, date))
		return Entry{
			URL:       a.links.Day(row.Year, row.Month, row.DayOfMonth),
			Label:     label,
			Image:     renderImage(r.Image, fmt.Sprintf("%d%02d%02d", row.Year, row.Month, row.DayOfMonth), label),
			PostCount: row.Posts,
			Counted:   true,
		}, true
	}
}

// weeklyMapper skips a row whose (year, week) bucket matches the row before it
func weeklyMapper(a *Aggregator, r *Request) rowMapper {
	var lastYear, lastWeek int
	seen := false

	return func(row database.ArchiveRow) (Entry, bool) {
		if seen && row.Year == lastYear && row.Week == lastWeek {
			return Entry{}, false
		}
		seen = true
		lastYear, lastWeek = row.Year, row.Week

		day, err := time.Parse("2006-01-02", row.YYYYMMDD)
		if err != nil {
			slog.Debug("Skipping weekly archive row with unparseable date", "yyyymmdd", row.YYYYMMDD, "error", err)
			return Entry{}, false
		}

		start, end := weekStartEnd(day, a.startOfWeek)
		label := html.EscapeString(a.locale.FormatDate(a.dateFormat, start)) +
			WeekSeparator +
			html.EscapeString(a.locale.FormatDate(a.dateFormat, end))

		return Entry{
			URL:       a.links.Week(row.Year, row.Week),
			Label:     label,
			Image:     renderImage(r.Image, fmt.Sprintf("%d%d", start.Unix(), end.Unix()), label),
			PostCount: row.Posts,
			Counted:   true,
		}, true
	}
}

// postMapper skips posts carrying the nil date
func postMapper(a *Aggregator, r *Request) rowMapper {
	return func(row database.ArchiveRow) (Entry, bool) {
		post := row.Post
		if post == nil || post.Date == database.NilDate {
			return Entry{}, false
		}

		label := a.postLabel(post, r)
		return Entry{
			URL:   a.links.Post(*post),
			Label: label,
			Image: renderImage(r.Image, html.EscapeString(post.Name), label),
		}, true
	}
}
