package archive

import (
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/archive-comb/app/database"
)

// postLabel returns the escaped label of a post: its filtered title with
// markup removed, or its ID when the title is empty
func (a *Aggregator) postLabel(post *database.Post, r *Request) string {
	if post.Title == "" {
		return strconv.FormatInt(post.ID, 10)
	}

	title := a.filters.Run(HookTitle, post.Title, FilterContext{Request: r, PostID: post.ID})
	return html.EscapeString(stripTags(title))
}

// stripTags returns the text content of an HTML fragment
func stripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}
