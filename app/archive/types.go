// Package archive renders grouped archive navigation links (by day, week,
// month, year or per post) as image-backed anchors.
package archive

// Type selects how posts are grouped
type Type string

const (
	TypeDaily      Type = "daily"
	TypeWeekly     Type = "weekly"
	TypeMonthly    Type = "monthly"
	TypeYearly     Type = "yearly"
	TypePostByPost Type = "postbypost"
	TypeAlpha      Type = "alpha"
)

// Format selects the shape of each link. Only FormatHTML is structurally
// distinct; every other value renders the unwrapped custom shape.
type Format string

const (
	FormatLink   Format = "link"
	FormatOption Format = "option"
	FormatHTML   Format = "html"
	FormatCustom Format = "custom"
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

const (
	// DefaultImage is the image template; %1$s is the machine key, %2$s the label
	DefaultImage = `<img src="%1$s" alt="%2$s">`

	// DefaultWhere restricts archives to published posts
	DefaultWhere = "WHERE post_type = 'post' AND post_status = 'publish'"

	// WeekSeparator joins the first and last day of a weekly label
	WeekSeparator = "&#8211;"
)

// Entry is one rendered archive link before formatting
type Entry struct {
	URL       string
	Label     string // HTML-escaped
	Image     string
	PostCount int
	Counted   bool // PostCount is meaningful for this grouping
}

// KnownType reports whether t names a grouping strategy
func KnownType(t Type) bool {
	_, ok := strategies[t]
	return ok
}
