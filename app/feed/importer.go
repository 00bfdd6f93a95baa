package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lysyi3m/archive-comb/app/database"
)

// maxSlugAttempts bounds the -2, -3, ... suffixes tried for a taken slug
const maxSlugAttempts = 100

// Importer stores the items of an RSS or Atom document as published posts
type Importer struct {
	parser   *Parser
	filterer *Filterer
	posts    database.PostRepository
	location *time.Location
	rules    []Rule
}

// NewImporter creates an importer writing to posts. Dates are stored in
// location; nil means UTC.
func NewImporter(posts database.PostRepository, location *time.Location, rules []Rule) *Importer {
	if location == nil {
		location = time.UTC
	}
	return &Importer{
		parser:   NewParser(),
		filterer: NewFilterer(),
		posts:    posts,
		location: location,
		rules:    rules,
	}
}

func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read feed file: %w", err)
	}
	return im.Run(ctx, data)
}

func (im *Importer) Run(ctx context.Context, data []byte) (Result, error) {
	var result Result

	metadata, items, err := im.parser.Run(data)
	if err != nil {
		return result, err
	}

	items = im.filterer.Run(items, im.rules)

	for _, item := range items {
		if item.IsFiltered {
			slog.Debug("Item filtered", "guid", item.GUID, "reason", item.FilterReason)
			result.Filtered++
			continue
		}

		post, err := im.toPost(ctx, item)
		if err != nil {
			return result, err
		}
		if post.Name == "" {
			slog.Warn("Skipping item without title, link or guid", "feed", metadata.Title)
			result.Failed++
			continue
		}

		if _, err := im.posts.SavePost(ctx, post); err != nil {
			return result, fmt.Errorf("failed to import item %s: %w", item.GUID, err)
		}
		result.Imported++
	}

	slog.Info("Feed imported", "feed", metadata.Title, "imported", result.Imported, "filtered", result.Filtered, "failed", result.Failed)

	return result, nil
}

func (im *Importer) toPost(ctx context.Context, item Item) (database.Post, error) {
	post := database.Post{
		GUID:    item.GUID,
		Title:   item.Title,
		Date:    database.NilDate,
		Type:    database.PostTypePost,
		Status:  database.PostStatusPublish,
		Content: item.Content,
	}
	if post.Content == "" {
		post.Content = item.Description
	}

	if item.PublishedAt != nil {
		post.Date = item.PublishedAt.In(im.location).Format(database.DateLayout)
	}

	name, err := im.uniqueSlug(ctx, item)
	if err != nil {
		return post, err
	}
	post.Name = name

	return post, nil
}

// uniqueSlug picks a slug from the link, title or guid, suffixing it when the
// slug already belongs to a different item
func (im *Importer) uniqueSlug(ctx context.Context, item Item) (string, error) {
	base := linkSlug(item.Link)
	if base == "" {
		base = Slugify(item.Title)
	}
	if base == "" {
		base = Slugify(item.GUID)
	}
	if base == "" {
		return "", nil
	}

	candidate := base
	for n := 2; n < maxSlugAttempts; n++ {
		existing, err := im.posts.GetPostByName(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %s: %w", candidate, err)
		}
		if existing == nil || existing.GUID == item.GUID {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}

	return "", fmt.Errorf("no free slug for %s", base)
}
