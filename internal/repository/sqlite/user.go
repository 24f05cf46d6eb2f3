package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores users and their ordered blogIds list (the user_blogs table).
type UserDB struct {
	conn *sql.DB
}

// Create inserts a new user and assigns its ID.
// A username collision surfaces as apperror.ErrDuplicate.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, name)
		 VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Name,
	)
	if err != nil {
		user.ID = ""
		switch constraintCode(err) {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return apperror.Duplicate("username", user.Username)
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return apperror.ValidationFailed("username", "username must be at least 3 characters long")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	if user.BlogIDs == nil {
		user.BlogIDs = []string{}
	}
	return nil
}

// GetUserByID retrieves a user by their ID, including the blogIds list.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := checkID("user", id); err != nil {
		return nil, err
	}

	row := u.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, name FROM users WHERE id = ?`,
		id,
	)
	return u.scanWithBlogs(ctx, row, "id", id)
}

// GetByUsername retrieves a user by username.
// Returns apperror.ErrNotFound if no user has that username.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, name FROM users WHERE username = ?`,
		username,
	)
	return u.scanWithBlogs(ctx, row, "username", username)
}

// List returns all users in insertion order with their blogIds.
func (u *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := u.conn.QueryContext(ctx,
		`SELECT id, username, password_hash, name FROM users ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}

	users := make([]model.User, 0)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	// The pool holds a single connection; release it before the next query.
	rows.Close()

	for i := range users {
		ids, err := u.blogIDs(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].BlogIDs = ids
	}

	return users, nil
}

// AppendBlog adds blogID to the end of the user's blogIds list.
func (u *UserDB) AppendBlog(ctx context.Context, userID, blogID string) error {
	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO user_blogs (user_id, blog_id) VALUES (?, ?)`,
		userID, blogID,
	)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return apperror.NotFound("user", userID)
		}
		return fmt.Errorf("sqlite: appending blog %s to user %s: %w", blogID, userID, err)
	}
	return nil
}

// RemoveBlog drops blogID from the user's blogIds list. Removing an id that
// is not in the list is a no-op.
func (u *UserDB) RemoveBlog(ctx context.Context, userID, blogID string) error {
	_, err := u.conn.ExecContext(ctx,
		`DELETE FROM user_blogs WHERE user_id = ? AND blog_id = ?`,
		userID, blogID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing blog %s from user %s: %w", blogID, userID, err)
	}
	return nil
}

func (u *UserDB) scanWithBlogs(ctx context.Context, row *sql.Row, key, value string) (*model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user not found with %s %s", key, value),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user by %s %q: %w", key, value, err)
	}

	ids, err := u.blogIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.BlogIDs = ids

	return &user, nil
}

func (u *UserDB) blogIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := u.conn.QueryContext(ctx,
		`SELECT blog_id FROM user_blogs WHERE user_id = ? ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading blog ids of user %s: %w", userID, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blog ids: %w", err)
	}
	return ids, nil
}
