package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       strings.TrimSpace(item.Title),
		Link:        p.normalizeURL(item.Link),
		Description: item.Description,
		Content:     item.Content,
		Authors:     p.extractAuthors(item),
		Categories:  item.Categories,
	}

	// Atom entries may only carry <updated>
	switch {
	case item.PublishedParsed != nil:
		normalized.PublishedAt = item.PublishedParsed
	case item.UpdatedParsed != nil:
		normalized.PublishedAt = item.UpdatedParsed
	}

	return normalized
}

var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"ref":    true,
	"mc_cid": true,
	"mc_eid": true,
}

// normalizeURL drops tracking parameters so the same post linked from
// different campaigns maps to one slug
func (p *Parser) normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}

	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, _, _ := strings.Cut(pair, "=")
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			continue
		}
		kept = append(kept, pair)
	}

	u.RawQuery = strings.Join(kept, "&")
	return u.String()
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				authorStr := p.formatAuthor(author.Name, author.Email)
				if authorStr != "" {
					authors = append(authors, authorStr)
				}
			}
		}
	} else if item.Author != nil {
		authorStr := p.formatAuthor(item.Author.Name, item.Author.Email)
		if authorStr != "" {
			authors = append(authors, authorStr)
		}
	}

	return authors
}

func (p *Parser) formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return ""
}
