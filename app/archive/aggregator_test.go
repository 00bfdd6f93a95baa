package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/archive-comb/app/cache"
	"github.com/lysyi3m/archive-comb/app/database"
	"github.com/lysyi3m/archive-comb/app/locale"
	"github.com/lysyi3m/archive-comb/app/permalink"
)

type fakeStore struct {
	rows    []database.ArchiveRow
	err     error
	calls   int
	kinds   []database.RowKind
	queries []string
}

func (s *fakeStore) ArchiveRows(ctx context.Context, kind database.RowKind, query string) ([]database.ArchiveRow, error) {
	s.calls++
	s.kinds = append(s.kinds, kind)
	s.queries = append(s.queries, query)
	return s.rows, s.err
}

func (s *fakeStore) lastQuery() string {
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}

func newTestAggregator(t *testing.T, store Store, mutate func(*Options)) *Aggregator {
	t.Helper()

	l, err := locale.New("en")
	require.NoError(t, err)

	opts := Options{
		Store:  store,
		Links:  permalink.NewBuilder("https://example.com", ""),
		Locale: l,
		Sink:   &bytes.Buffer{},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewAggregator(opts)
}

func returned(r Request) Request {
	r.Echo = false
	return r
}

func TestAggregatorEmptyRowsYieldEmptyOutput(t *testing.T) {
	for _, typ := range []Type{TypeDaily, TypeWeekly, TypeMonthly, TypeYearly, TypePostByPost, TypeAlpha} {
		t.Run(string(typ), func(t *testing.T) {
			store := &fakeStore{}
			a := newTestAggregator(t, store, nil)

			out, err := a.Run(context.Background(), returned(Request{Type: typ, ShowPostCount: true}))

			require.NoError(t, err)
			assert.Empty(t, out)
			assert.Equal(t, 1, store.calls)
		})
	}
}

func TestAggregatorMonthlyWithCounts(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{
		{Year: 2024, Month: 3, Posts: 2},
		{Year: 2024, Month: 1, Posts: 1},
	}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeMonthly, ShowPostCount: true, After: "!"}))

	require.NoError(t, err)
	assert.Equal(t,
		"\t<li><a href='https://example.com/?m=202403'><img src=\"202403\" alt=\"March 2024\"></a>&nbsp;(2)!</li>\n"+
			"\t<li><a href='https://example.com/?m=202401'><img src=\"202401\" alt=\"January 2024\"></a>&nbsp;(1)!</li>\n",
		out)
	assert.Equal(t, database.RowKindMonthly, store.kinds[0])
}

func TestAggregatorSequentialImageTemplate(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Month: 3, Posts: 2}}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeMonthly, Image: `<img src="/i/%s.png" alt="%s">`}))

	require.NoError(t, err)
	assert.Equal(t, "\t<li><a href='https://example.com/?m=202403'><img src=\"/i/202403.png\" alt=\"March 2024\"></a></li>\n", out)
}

func TestAggregatorCountSuffixIsPerRow(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{
		{Year: 2023, Posts: 4},
		{Year: 2022, Posts: 9},
	}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeYearly, ShowPostCount: true, Format: FormatCustom}))

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "\t<a href='https://example.com/?m=2023'><img src=\"2023\" alt=\"2023\"></a>&nbsp;(4)", lines[0])
	assert.Equal(t, "\t<a href='https://example.com/?m=2022'><img src=\"2022\" alt=\"2022\"></a>&nbsp;(9)", lines[1])
}

func TestAggregatorWithoutCounts(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2023, Posts: 4}}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeYearly}))

	require.NoError(t, err)
	assert.NotContains(t, out, "&nbsp;")
}

func TestAggregatorDaily(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Month: 3, DayOfMonth: 5, Posts: 1}}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeDaily}))

	require.NoError(t, err)
	assert.Equal(t, "\t<li><a href='https://example.com/?m=20240305'><img src=\"20240305\" alt=\"March 5, 2024\"></a></li>\n", out)
}

func TestAggregatorDailyUsesDateFormat(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Month: 3, DayOfMonth: 5, Posts: 1}}}
	a := newTestAggregator(t, store, func(o *Options) { o.DateFormat = "Y-m-d" })

	out, err := a.Run(context.Background(), returned(Request{Type: TypeDaily, Image: "%2$s"}))

	require.NoError(t, err)
	assert.Contains(t, out, ">2024-03-05</a>")
}

func TestAggregatorWeeklyDeduplicatesConsecutiveWeeks(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{
		{Week: 9, Year: 2024, YYYYMMDD: "2024-03-06", Posts: 2},
		{Week: 9, Year: 2024, YYYYMMDD: "2024-03-05", Posts: 2},
		{Week: 8, Year: 2024, YYYYMMDD: "2024-02-27", Posts: 1},
		{Week: 8, Year: 2023, YYYYMMDD: "2023-02-21", Posts: 3},
	}}
	a := newTestAggregator(t, store, func(o *Options) { o.StartOfWeek = 1 })

	out, err := a.Run(context.Background(), returned(Request{Type: TypeWeekly, ShowPostCount: true}))

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	key := fmt.Sprintf("%d%d", start.Unix(), end.Unix())

	assert.Equal(t,
		"\t<li><a href='https://example.com/?m=2024&amp;w=9'><img src=\""+key+"\" alt=\"March 4, 2024&#8211;March 10, 2024\"></a>&nbsp;(2)</li>",
		lines[0])
	assert.Contains(t, lines[1], "?m=2024&amp;w=8")
	assert.Contains(t, lines[2], "?m=2023&amp;w=8")
	assert.Contains(t, store.lastQuery(), "'%W'")
}

func TestAggregatorPostByPost(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{
		{Post: &database.Post{ID: 7, Title: "Hello <b>World</b>", Name: "hello-world", Date: "2024-03-01 10:00:00"}},
		{Post: &database.Post{ID: 8, Title: "", Name: "untitled", Date: "2024-02-01 09:00:00"}},
		{Post: &database.Post{ID: 9, Title: "Draft", Name: "draft", Date: database.NilDate}},
		{},
	}}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypePostByPost, ShowPostCount: true}))

	require.NoError(t, err)
	assert.Equal(t,
		"\t<li><a href='https://example.com/?p=7'><img src=\"hello-world\" alt=\"Hello World\"></a></li>\n"+
			"\t<li><a href='https://example.com/?p=8'><img src=\"untitled\" alt=\"8\"></a></li>\n",
		out)
	assert.Equal(t, database.RowKindPost, store.kinds[0])
}

func TestAggregatorPostTitleFilters(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{
		{Post: &database.Post{ID: 7, Title: "Tom &amp; Jerry", Name: "tom-jerry", Date: "2024-03-01 10:00:00"}},
	}}
	filters := NewFilters().Add(HookTitle, func(value string, fc FilterContext) string {
		return value + " #" + strconv.FormatInt(fc.PostID, 10)
	})
	a := newTestAggregator(t, store, func(o *Options) { o.Filters = filters })

	out, err := a.Run(context.Background(), returned(Request{Type: TypeAlpha, Image: "%2$s"}))

	require.NoError(t, err)
	assert.Equal(t, "\t<li><a href='https://example.com/?p=7'>Tom &amp; Jerry #7</a></li>\n", out)
}

func TestAggregatorQueryOrdering(t *testing.T) {
	tests := []struct {
		name     string
		request  Request
		contains string
	}{
		{"monthly asc", Request{Type: TypeMonthly, Order: "asc"}, "ORDER BY posts.post_date ASC"},
		{"monthly default", Request{Type: TypeMonthly}, "ORDER BY posts.post_date DESC"},
		{"yearly bogus order", Request{Type: TypeYearly, Order: "up"}, "ORDER BY posts.post_date DESC"},
		{"alpha ignores order", Request{Type: TypeAlpha, Order: "DESC"}, "ORDER BY posts.post_title ASC"},
		{"postbypost ignores order", Request{Type: TypePostByPost, Order: "ASC"}, "ORDER BY posts.post_date DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			a := newTestAggregator(t, store, nil)

			_, err := a.Run(context.Background(), returned(tt.request))

			require.NoError(t, err)
			assert.Contains(t, store.lastQuery(), tt.contains)
		})
	}
}

func TestAggregatorLimit(t *testing.T) {
	store := &fakeStore{}
	a := newTestAggregator(t, store, nil)

	_, err := a.Run(context.Background(), returned(Request{Type: TypeMonthly, Limit: -5}))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(store.lastQuery(), " LIMIT 5"))

	_, err = a.Run(context.Background(), returned(Request{Type: TypeMonthly, Limit: ParseLimit("many")}))
	require.NoError(t, err)
	assert.NotContains(t, store.lastQuery(), "LIMIT")
}

func TestAggregatorWhereAndJoinFilters(t *testing.T) {
	var seenType Type
	filters := NewFilters().
		Add(HookWhere, func(value string, fc FilterContext) string {
			seenType = fc.Request.Type
			return value + " AND posts.id > 0"
		}).
		Add(HookJoin, func(value string, fc FilterContext) string {
			return "INNER JOIN post_tags ON post_tags.post_id = posts.id"
		})
	store := &fakeStore{}
	a := newTestAggregator(t, store, func(o *Options) { o.Filters = filters })

	_, err := a.Run(context.Background(), returned(Request{Type: TypeYearly}))

	require.NoError(t, err)
	assert.Equal(t, TypeYearly, seenType)
	assert.Contains(t, store.lastQuery(), "FROM posts INNER JOIN post_tags ON post_tags.post_id = posts.id "+DefaultWhere+" AND posts.id > 0 GROUP BY")
}

func TestAggregatorUnknownType(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Posts: 1}}}
	sink := &bytes.Buffer{}
	a := newTestAggregator(t, store, func(o *Options) { o.Sink = sink })

	out, err := a.Run(context.Background(), Request{Type: "fortnightly", Echo: true})

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, sink.Len())
	assert.Zero(t, store.calls)
}

func TestAggregatorEchoWritesToSink(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Posts: 1}}}
	sink := &bytes.Buffer{}
	a := newTestAggregator(t, store, func(o *Options) { o.Sink = sink })

	req := DefaultRequest()
	req.Type = TypeYearly
	out, err := a.Run(context.Background(), req)

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "\t<li><a href='https://example.com/?m=2024'><img src=\"2024\" alt=\"2024\"></a></li>\n", sink.String())
}

func TestAggregatorEchoSinkError(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Posts: 1}}}
	a := newTestAggregator(t, store, func(o *Options) { o.Sink = errWriter{} })

	_, err := a.Run(context.Background(), Request{Type: TypeYearly, Echo: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink closed")
}

func TestAggregatorStoreErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	store := &fakeStore{err: boom}
	a := newTestAggregator(t, store, nil)

	out, err := a.Run(context.Background(), returned(Request{Type: TypeMonthly}))

	require.ErrorIs(t, err, boom)
	assert.Empty(t, out)
}

func TestAggregatorMissingCollaborators(t *testing.T) {
	_, err := NewAggregator(Options{}).Run(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNoStore)

	_, err = NewAggregator(Options{Store: &fakeStore{}}).Run(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNoLinks)

	_, err = NewAggregator(Options{Store: &fakeStore{}, Links: permalink.NewBuilder("", "")}).Run(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNoLocale)
}

func TestAggregatorReadsThroughCache(t *testing.T) {
	lru, err := cache.NewLRU(16)
	require.NoError(t, err)
	tokens := cache.NewTokens(lru)

	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Month: 3, Posts: 1}}}
	a := newTestAggregator(t, store, func(o *Options) {
		o.Cache = lru
		o.Tokens = tokens
	})
	req := returned(Request{Type: TypeMonthly})

	first, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := a.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls)

	tokens.Bump()
	_, err = a.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestAggregatorCachesEmptyResults(t *testing.T) {
	lru, err := cache.NewLRU(16)
	require.NoError(t, err)

	store := &fakeStore{}
	a := newTestAggregator(t, store, func(o *Options) {
		o.Cache = lru
		o.Tokens = cache.NewTokens(lru)
	})

	for range 3 {
		out, err := a.Run(context.Background(), returned(Request{Type: TypeDaily}))
		require.NoError(t, err)
		assert.Empty(t, out)
	}
	assert.Equal(t, 1, store.calls)
}

func TestAggregatorDoesNotCacheErrors(t *testing.T) {
	lru, err := cache.NewLRU(16)
	require.NoError(t, err)

	store := &fakeStore{err: errors.New("locked")}
	a := newTestAggregator(t, store, func(o *Options) { o.Cache = lru })

	_, err = a.Run(context.Background(), returned(Request{Type: TypeYearly}))
	require.Error(t, err)

	store.err = nil
	store.rows = []database.ArchiveRow{{Year: 2024, Posts: 1}}
	out, err := a.Run(context.Background(), returned(Request{Type: TypeYearly}))
	require.NoError(t, err)
	assert.Contains(t, out, "?m=2024")
	assert.Equal(t, 2, store.calls)
}

func TestAggregatorCacheWithoutTokensIsBypassed(t *testing.T) {
	lru, err := cache.NewLRU(16)
	require.NoError(t, err)

	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Posts: 1}}}
	a := newTestAggregator(t, store, func(o *Options) { o.Cache = lru })
	req := returned(Request{Type: TypeYearly})

	first, err := a.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, first, "?m=2024")

	store.rows = []database.ArchiveRow{{Year: 2024, Posts: 1}, {Year: 2023, Posts: 1}}
	second, err := a.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, second, "?m=2023")
	assert.Equal(t, 2, store.calls)
	assert.Zero(t, lru.Len())
}

func TestAggregatorCacheKeyDependsOnQuery(t *testing.T) {
	a := newTestAggregator(t, &fakeStore{}, nil)

	k1 := a.cacheKey("SELECT 1")
	k2 := a.cacheKey("SELECT 2")

	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "get_archives:"))
	assert.Len(t, strings.Split(k1, ":")[1], 32)
}

func TestAggregatorReturnModeDoesNotWriteSink(t *testing.T) {
	store := &fakeStore{rows: []database.ArchiveRow{{Year: 2024, Posts: 1}}}
	sink := &bytes.Buffer{}
	a := newTestAggregator(t, store, func(o *Options) { o.Sink = sink })

	out, err := a.Run(context.Background(), Request{Type: TypeYearly, Echo: false})

	require.NoError(t, err)
	assert.Contains(t, out, "?m=2024")
	assert.Zero(t, sink.Len())
}

func TestAggregatorHTMLWrapsEveryEntry(t *testing.T) {
	rows := []database.ArchiveRow{{Year: 2024, Posts: 1}, {Year: 2023, Posts: 2}}

	for _, format := range []Format{FormatHTML, FormatLink, FormatOption, FormatCustom} {
		t.Run(string(format), func(t *testing.T) {
			a := newTestAggregator(t, &fakeStore{rows: rows}, nil)

			out, err := a.Run(context.Background(), returned(Request{Type: TypeYearly, Format: format}))

			require.NoError(t, err)
			if format == FormatHTML {
				assert.Equal(t, 2, strings.Count(out, "<li>"))
			} else {
				assert.NotContains(t, out, "<li>")
			}
		})
	}
}
