package database

import "context"

// ChangeNotifier is told about every content mutation so cached archive
// results keyed on the previous change token stop matching.
type ChangeNotifier interface {
	Bump()
}

type PostRepository interface {
	GetPost(ctx context.Context, id int64) (*Post, error)
	GetPostByName(ctx context.Context, name string) (*Post, error)
	GetPostCount(ctx context.Context) (int, error)

	SavePost(ctx context.Context, post Post) (int64, error)
	DeletePost(ctx context.Context, id int64) error
}

type ArchiveRepository interface {
	ArchiveRows(ctx context.Context, kind RowKind, query string) ([]ArchiveRow, error)
}
