package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// compile-time check that *DB implements repository.BlogRepository
var _ repository.BlogRepository = (*DB)(nil)

var blogColumns = []string{"id", "title", "author", "url", "likes", "owner_id"}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// checkID rejects identifiers that are not xids before they reach SQL.
// This is what separates "malformatted id" (400) from "not found" (404).
func checkID(resource, id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.InvalidID(resource, id)
	}
	return nil
}

// Create inserts a new blog and assigns its ID.
//
// The caller is expected to have validated the record; the CHECK constraints
// on the table are a second line that turns into a ValidationError.
func (db *DB) Create(ctx context.Context, blog *model.Blog) error {
	blog.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		nullable(blog.OwnerID),
	)
	if err != nil {
		blog.ID = ""
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_CHECK {
			return apperror.ValidationFailed("blog", "blog validation failed: title, url and non-negative likes are required")
		}
		return fmt.Errorf("sqlite: creating blog: %w", err)
	}

	return nil
}

// GetByID retrieves a blog by ID.
// Returns apperror.ErrInvalidID for a malformed id and apperror.ErrNotFound
// when no blog has that id.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	if err := checkID("blog", id); err != nil {
		return nil, err
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, author, url, likes, owner_id
		 FROM blogs
		 WHERE id = ?`,
		id,
	)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blog", id)
		}
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}

	return blog, nil
}

// List returns every blog in insertion order, each with a projection of its
// owner when the owner row exists.
func (db *DB) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT b.id, b.title, b.author, b.url, b.likes, b.owner_id,
		        u.id, u.username, u.name
		 FROM blogs b
		 LEFT JOIN users u ON u.id = b.owner_id
		 ORDER BY b.rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]model.Blog, 0)

	for rows.Next() {
		var (
			b                     model.Blog
			ownerID               sql.NullString
			userID, uname, ufname sql.NullString
		)
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &ownerID,
			&userID, &uname, &ufname,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		if ownerID.Valid {
			b.OwnerID = &ownerID.String
		}
		if userID.Valid {
			b.Owner = &model.OwnerSummary{
				ID:       userID.String,
				Username: uname.String,
				Name:     ufname.String,
			}
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blogs: %w", err)
	}

	return blogs, nil
}

// Update applies patch to the blog matching id and scope and returns the
// resulting record.
//
// Only the fields set in patch appear in the SET clause. The match condition
// includes owner_id whenever scope.Enforce is set (see ownerMatch), so a
// blog owned by someone else is indistinguishable from a missing one here:
// both return apperror.ErrNotFound and the caller decides which it was.
//
// An empty patch runs the same scoped match as a SELECT, so callers get
// identical NotFound semantics without issuing an UPDATE with no SET clause.
func (db *DB) Update(ctx context.Context, id string, patch model.BlogPatch, scope repository.OwnerScope) (*model.Blog, error) {
	if err := checkID("blog", id); err != nil {
		return nil, err
	}

	var where sq.Sqlizer = sq.Eq{"id": id}
	if scope.Enforce {
		where = sq.And{sq.Eq{"id": id}, ownerMatch(scope.OwnerID)}
	}

	var (
		query string
		args  []any
		err   error
	)
	if patch.Empty() {
		query, args, err = db.sb.Select(blogColumns...).From("blogs").Where(where).ToSql()
	} else {
		query, args, err = db.sb.Update("blogs").
			SetMap(patchColumns(patch)).
			Where(where).
			Suffix("RETURNING id, title, author, url, likes, owner_id").
			ToSql()
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: building blog update: %w", err)
	}

	blog, err := scanBlog(db.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperror.NotFound("blog", id)
		case constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_CHECK:
			return nil, apperror.ValidationFailed("blog", "blog validation failed: title, url and non-negative likes are required")
		default:
			return nil, fmt.Errorf("sqlite: updating blog %s: %w", id, err)
		}
	}

	return blog, nil
}

// Delete removes a blog. Deleting a well-formed id that does not exist is
// not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	if err := checkID("blog", id); err != nil {
		return err
	}

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}

	return nil
}

// ownerMatch is the owner_id condition of a scoped update. Ownerless blogs
// match every scope; owned blogs match only their owner.
func ownerMatch(ownerID string) sq.Sqlizer {
	unowned := sq.Eq{"owner_id": nil} // renders as owner_id IS NULL
	if ownerID == "" {
		return unowned
	}
	return sq.Or{sq.Eq{"owner_id": ownerID}, unowned}
}

func patchColumns(p model.BlogPatch) map[string]any {
	set := make(map[string]any, 4)
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Author != nil {
		set["author"] = *p.Author
	}
	if p.URL != nil {
		set["url"] = *p.URL
	}
	if p.Likes != nil {
		set["likes"] = *p.Likes
	}
	return set
}

func scanBlog(row rowScanner) (*model.Blog, error) {
	var (
		b       model.Blog
		ownerID sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &ownerID); err != nil {
		return nil, err
	}
	if ownerID.Valid {
		b.OwnerID = &ownerID.String
	}
	return &b, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
