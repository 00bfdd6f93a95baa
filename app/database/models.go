package database

// Post represents a post record in the database
type Post struct {
	ID      int64
	GUID    string
	Title   string
	Name    string // URL slug
	Date    string // "YYYY-MM-DD HH:MM:SS", NilDate when unknown
	Type    string
	Status  string
	Content string
}

// ArchiveRow is one bucket returned by an archive query. Which fields are
// populated depends on the RowKind the query was executed with.
type ArchiveRow struct {
	Year       int
	Month      int
	DayOfMonth int
	Week       int
	YYYYMMDD   string // first day seen in a weekly bucket
	Posts      int
	Post       *Post // RowKindPost only
}
