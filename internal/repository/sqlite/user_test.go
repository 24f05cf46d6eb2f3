package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
)

// newTestUserDB creates an in-memory database and returns both the main DB
// and the UserDB. The main DB is needed when a test also touches blogs.
func newTestUserDB(t *testing.T) (*DB, *UserDB) {
	t.Helper()
	db := newTestDB(t)
	return db, db.Users()
}

// createTestUser creates a user with the given username.
func createTestUser(t *testing.T, u *UserDB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$hash",
		Name:         "Test " + username,
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	_, u := newTestUserDB(t)

	user := createTestUser(t, u, "mluukkai")

	if user.ID == "" {
		t.Fatal("Create() did not set user.ID")
	}
	if user.BlogIDs == nil || len(user.BlogIDs) != 0 {
		t.Errorf("BlogIDs = %v, want empty non-nil slice", user.BlogIDs)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	_, u := newTestUserDB(t)
	createTestUser(t, u, "root")

	dup := &model.User{Username: "root", PasswordHash: "other"}
	err := u.Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Fatalf("Create() error = %v, want ErrDuplicate", err)
	}
	if dup.ID != "" {
		t.Errorf("ID = %q after a failed create, want empty", dup.ID)
	}

	users, _ := u.List(context.Background())
	if len(users) != 1 {
		t.Errorf("List() returned %d users, want 1", len(users))
	}
}

func TestUserCreate_ShortUsername(t *testing.T) {
	_, u := newTestUserDB(t)

	err := u.Create(context.Background(), &model.User{Username: "ab", PasswordHash: "hash"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestUserGetByID(t *testing.T) {
	_, u := newTestUserDB(t)
	created := createTestUser(t, u, "hellas")

	found, err := u.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}

	if found.Username != "hellas" {
		t.Errorf("Username = %q, want %q", found.Username, "hellas")
	}
	if found.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, created.PasswordHash)
	}
	if found.Name != "Test hellas" {
		t.Errorf("Name = %q, want %q", found.Name, "Test hellas")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	_, u := newTestUserDB(t)

	_, err := u.GetUserByID(context.Background(), xid.New().String())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_MalformedID(t *testing.T) {
	_, u := newTestUserDB(t)

	_, err := u.GetUserByID(context.Background(), "not-an-id")
	if !errors.Is(err, apperror.ErrInvalidID) {
		t.Errorf("GetUserByID() error = %v, want ErrInvalidID", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	_, u := newTestUserDB(t)
	created := createTestUser(t, u, "root")

	found, err := u.GetByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = u.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestUserAppendAndRemoveBlog(t *testing.T) {
	_, u := newTestUserDB(t)
	ctx := context.Background()
	user := createTestUser(t, u, "root")

	ids := []string{xid.New().String(), xid.New().String(), xid.New().String()}
	for _, id := range ids {
		if err := u.AppendBlog(ctx, user.ID, id); err != nil {
			t.Fatalf("AppendBlog(%s) error = %v", id, err)
		}
	}

	found, err := u.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if len(found.BlogIDs) != 3 {
		t.Fatalf("BlogIDs = %v, want 3 entries", found.BlogIDs)
	}
	for i, id := range ids {
		if found.BlogIDs[i] != id {
			t.Errorf("BlogIDs[%d] = %q, want %q", i, found.BlogIDs[i], id)
		}
	}

	if err := u.RemoveBlog(ctx, user.ID, ids[1]); err != nil {
		t.Fatalf("RemoveBlog() error = %v", err)
	}
	// removing again is a no-op
	if err := u.RemoveBlog(ctx, user.ID, ids[1]); err != nil {
		t.Fatalf("RemoveBlog() second call error = %v", err)
	}

	found, _ = u.GetUserByID(ctx, user.ID)
	want := []string{ids[0], ids[2]}
	if len(found.BlogIDs) != len(want) || found.BlogIDs[0] != want[0] || found.BlogIDs[1] != want[1] {
		t.Errorf("BlogIDs = %v, want %v", found.BlogIDs, want)
	}
}

func TestUserAppendBlog_UnknownUser(t *testing.T) {
	_, u := newTestUserDB(t)

	err := u.AppendBlog(context.Background(), xid.New().String(), xid.New().String())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AppendBlog() error = %v, want ErrNotFound", err)
	}
}

func TestUserList(t *testing.T) {
	db, u := newTestUserDB(t)
	ctx := context.Background()

	first := createTestUser(t, u, "first")
	createTestUser(t, u, "second")
	blog := createTestBlog(t, db, "owned", 0, &first.ID)
	if err := u.AppendBlog(ctx, first.ID, blog.ID); err != nil {
		t.Fatalf("AppendBlog() error = %v", err)
	}

	users, err := u.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("List() returned %d users, want 2", len(users))
	}

	if users[0].Username != "first" || users[1].Username != "second" {
		t.Errorf("List() order = [%s %s], want [first second]", users[0].Username, users[1].Username)
	}
	if len(users[0].BlogIDs) != 1 || users[0].BlogIDs[0] != blog.ID {
		t.Errorf("users[0].BlogIDs = %v, want [%s]", users[0].BlogIDs, blog.ID)
	}
	if users[1].BlogIDs == nil || len(users[1].BlogIDs) != 0 {
		t.Errorf("users[1].BlogIDs = %v, want empty non-nil slice", users[1].BlogIDs)
	}
}
