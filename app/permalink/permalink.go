// Package permalink builds absolute archive and post URLs for a site.
package permalink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/archive-comb/app/database"
)

// Builder constructs links relative to the site home. With an empty
// structure it produces plain query-string links (?m=, ?p=); otherwise date
// archives use /YYYY/MM/DD/ paths and posts expand the structure tags.
type Builder struct {
	home      string
	structure string
}

func NewBuilder(home, structure string) *Builder {
	return &Builder{
		home:      strings.TrimRight(home, "/"),
		structure: structure,
	}
}

// Pretty reports whether path-style permalinks are enabled
func (b *Builder) Pretty() bool {
	return b.structure != ""
}

func (b *Builder) Year(year int) string {
	if !b.Pretty() {
		return fmt.Sprintf("%s/?m=%d", b.home, year)
	}
	return fmt.Sprintf("%s/%d/", b.home, year)
}

func (b *Builder) Month(year, month int) string {
	if !b.Pretty() {
		return fmt.Sprintf("%s/?m=%d%02d", b.home, year, month)
	}
	return fmt.Sprintf("%s/%d/%02d/", b.home, year, month)
}

func (b *Builder) Day(year, month, day int) string {
	if !b.Pretty() {
		return fmt.Sprintf("%s/?m=%d%02d%02d", b.home, year, month, day)
	}
	return fmt.Sprintf("%s/%d/%02d/%02d/", b.home, year, month, day)
}

// Week has no path form; weekly archives are always addressed by query string
func (b *Builder) Week(year, week int) string {
	return fmt.Sprintf("%s/?m=%d&w=%d", b.home, year, week)
}

// Post returns the permanent link of a post. Posts without a usable date or
// slug fall back to the plain ?p= form.
func (b *Builder) Post(post database.Post) string {
	if !b.Pretty() || post.Name == "" {
		return fmt.Sprintf("%s/?p=%d", b.home, post.ID)
	}

	date, err := time.Parse(database.DateLayout, post.Date)
	if err != nil && strings.Contains(b.structure, "%year%") {
		return fmt.Sprintf("%s/?p=%d", b.home, post.ID)
	}

	r := strings.NewReplacer(
		"%year%", strconv.Itoa(date.Year()),
		"%monthnum%", fmt.Sprintf("%02d", int(date.Month())),
		"%day%", fmt.Sprintf("%02d", date.Day()),
		"%hour%", fmt.Sprintf("%02d", date.Hour()),
		"%minute%", fmt.Sprintf("%02d", date.Minute()),
		"%second%", fmt.Sprintf("%02d", date.Second()),
		"%postname%", post.Name,
		"%post_id%", strconv.FormatInt(post.ID, 10),
	)

	path := r.Replace(b.structure)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.home + path
}
