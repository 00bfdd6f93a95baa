package archive

import (
	"context"
	"time"

	"github.com/lysyi3m/archive-comb/app/database"
)

// Store executes archive queries against the post store
type Store interface {
	ArchiveRows(ctx context.Context, kind database.RowKind, query string) ([]database.ArchiveRow, error)
}

// Cache is a grouped read-through object cache
type Cache interface {
	Get(key, group string) (any, bool)
	Set(key string, value any, group string)
}

// ChangeTokens exposes a token that changes whenever content changes
type ChangeTokens interface {
	LastChanged() string
}

// Links builds absolute archive URLs
type Links interface {
	Year(year int) string
	Month(year, month int) string
	Day(year, month, day int) string
	Week(year, week int) string
	Post(post database.Post) string
}

// Localizer renders month names and dates in the site language
type Localizer interface {
	MonthYear(month, year int) string
	FormatDate(layout string, t time.Time) string
}
