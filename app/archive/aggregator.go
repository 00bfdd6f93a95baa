package archive

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lysyi3m/archive-comb/app/database"
	"github.com/lysyi3m/archive-comb/app/locale"
)

const (
	// CacheGroup holds cached archive rows next to the change token
	CacheGroup = "posts"

	cacheKeyPrefix = "get_archives"
)

var (
	ErrNoStore  = errors.New("archive store is not configured")
	ErrNoLinks  = errors.New("archive link builder is not configured")
	ErrNoLocale = errors.New("archive localizer is not configured")
)

// Options wires an Aggregator to its collaborators. Filters is optional and
// Sink defaults to os.Stdout. Cache is only consulted together with Tokens,
// since the change token is what invalidates cached rows.
type Options struct {
	Store       Store
	Cache       Cache
	Tokens      ChangeTokens
	Links       Links
	Locale      Localizer
	Filters     *Filters
	DateFormat  string
	StartOfWeek int
	Sink        io.Writer
}

type Aggregator struct {
	store       Store
	cache       Cache
	tokens      ChangeTokens
	links       Links
	locale      Localizer
	filters     *Filters
	formatter   *Formatter
	dateFormat  string
	startOfWeek int
	sink        io.Writer
}

func NewAggregator(opts Options) *Aggregator {
	sink := opts.Sink
	if sink == nil {
		sink = os.Stdout
	}

	dateFormat := opts.DateFormat
	if dateFormat == "" {
		dateFormat = locale.DefaultDateFormat
	}

	return &Aggregator{
		store:       opts.Store,
		cache:       opts.Cache,
		tokens:      opts.Tokens,
		links:       opts.Links,
		locale:      opts.Locale,
		filters:     opts.Filters,
		formatter:   NewFormatter(opts.Filters),
		dateFormat:  dateFormat,
		startOfWeek: clampStartOfWeek(opts.StartOfWeek),
		sink:        sink,
	}
}

// Run renders the archive described by req. With req.Echo set the markup is
// written to the sink and the empty string returned; otherwise it is returned.
func (a *Aggregator) Run(ctx context.Context, req Request) (string, error) {
	if err := a.validate(); err != nil {
		return "", err
	}

	r := req.Normalize()

	s, ok := strategies[r.Type]
	if !ok {
		slog.Debug("Unknown archive type", "type", r.Type, "request", r.Name)
		return a.emit(r, "")
	}

	fc := FilterContext{Request: &r}
	parts := queryParts{
		where: a.filters.Run(HookWhere, DefaultWhere, fc),
		join:  a.filters.Run(HookJoin, "", fc),
		order: r.Order,
		limit: r.limitClause(),
		week:  weekExpr(a.startOfWeek),
	}
	query := s.query(parts)

	rows, err := a.rows(ctx, s.kind, query)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return a.emit(r, "")
	}

	mapRow := s.mapper(a, &r)

	var out strings.Builder
	for _, row := range rows {
		entry, ok := mapRow(row)
		if !ok {
			continue
		}

		after := r.After
		if r.ShowPostCount && entry.Counted {
			after = "&nbsp;(" + strconv.Itoa(entry.PostCount) + ")" + after
		}

		out.WriteString(a.formatter.Run(entry.URL, entry.Image, string(r.Format), r.Before, after))
	}

	slog.Debug("Rendered archive", "type", r.Type, "rows", len(rows), "request", r.Name)

	return a.emit(r, out.String())
}

func (a *Aggregator) validate() error {
	switch {
	case a.store == nil:
		return ErrNoStore
	case a.links == nil:
		return ErrNoLinks
	case a.locale == nil:
		return ErrNoLocale
	}
	return nil
}

// rows reads the query result through the cache. A cached empty result is a
// hit like any other.
func (a *Aggregator) rows(ctx context.Context, kind database.RowKind, query string) ([]database.ArchiveRow, error) {
	key := a.cacheKey(query)
	cached := a.cache != nil && a.tokens != nil

	if cached {
		if hit, ok := a.cache.Get(key, CacheGroup); ok {
			if rows, ok := hit.([]database.ArchiveRow); ok {
				slog.Debug("Archive cache hit", "key", key)
				return rows, nil
			}
		}
	}

	rows, err := a.store.ArchiveRows(ctx, kind, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s archive: %w", kind, err)
	}
	if rows == nil {
		rows = []database.ArchiveRow{}
	}

	if cached {
		a.cache.Set(key, rows, CacheGroup)
	}

	return rows, nil
}

func (a *Aggregator) cacheKey(query string) string {
	lastChanged := ""
	if a.tokens != nil {
		lastChanged = a.tokens.LastChanged()
	}
	return fmt.Sprintf("%s:%x:%s", cacheKeyPrefix, md5.Sum([]byte(query)), lastChanged)
}

func (a *Aggregator) emit(r Request, output string) (string, error) {
	if !r.Echo {
		return output, nil
	}
	if output == "" {
		return "", nil
	}
	if _, err := io.WriteString(a.sink, output); err != nil {
		return "", fmt.Errorf("failed to write archive output: %w", err)
	}
	return "", nil
}
