package database

// RowKind selects the column layout an archive query returns
type RowKind int

const (
	RowKindMonthly RowKind = iota // year, month, posts
	RowKindYearly                 // year, posts
	RowKindDaily                  // year, month, dayofmonth, posts
	RowKindWeekly                 // week, yr, yyyymmdd, posts
	RowKindPost                   // full post record
)

const (
	// DateLayout is the storage layout of post_date
	DateLayout = "2006-01-02 15:04:05"

	// NilDate marks a post whose date was never set
	NilDate = "0000-00-00 00:00:00"

	PostTypePost      = "post"
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

func (k RowKind) String() string {
	switch k {
	case RowKindMonthly:
		return "monthly"
	case RowKindYearly:
		return "yearly"
	case RowKindDaily:
		return "daily"
	case RowKindWeekly:
		return "weekly"
	case RowKindPost:
		return "post"
	default:
		return "unknown"
	}
}
