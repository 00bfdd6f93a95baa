package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time // nil when the feed carries no usable date
	Authors     []string   // "email (name)" or "name"
	Categories  []string

	IsFiltered   bool
	FilterReason string
}

// Import rule types

// Rule keeps or drops items by a case-insensitive substring match on one field
type Rule struct {
	Field    string
	Includes []string
	Excludes []string
}

// Result summarises one import run
type Result struct {
	Imported int
	Filtered int
	Failed   int
}
