package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces. Ids
// are "<prefix>-<n>"; anything not starting with the prefix counts as
// malformed so the service paths for ErrInvalidID are reachable.

var errStoreDown = errors.New("store down")

type fakeBlogRepo struct {
	blogs []model.Blog

	nextID    int
	createErr error
	deleteErr error
	listErr   error
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{}
}

func (f *fakeBlogRepo) checkID(id string) error {
	var n int
	if _, err := fmt.Sscanf(id, "blog-%d", &n); err != nil {
		return apperror.InvalidID("blog", id)
	}
	return nil
}

func (f *fakeBlogRepo) index(id string) int {
	return slices.IndexFunc(f.blogs, func(b model.Blog) bool { return b.ID == id })
}

func (f *fakeBlogRepo) Create(_ context.Context, blog *model.Blog) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	blog.ID = fmt.Sprintf("blog-%d", f.nextID)
	f.blogs = append(f.blogs, *blog)
	return nil
}

func (f *fakeBlogRepo) GetByID(_ context.Context, id string) (*model.Blog, error) {
	if err := f.checkID(id); err != nil {
		return nil, err
	}
	i := f.index(id)
	if i < 0 {
		return nil, apperror.NotFound("blog", id)
	}
	b := f.blogs[i]
	return &b, nil
}

func (f *fakeBlogRepo) List(context.Context) ([]model.Blog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.blogs), nil
}

func (f *fakeBlogRepo) Update(_ context.Context, id string, patch model.BlogPatch, scope repository.OwnerScope) (*model.Blog, error) {
	if err := f.checkID(id); err != nil {
		return nil, err
	}
	i := f.index(id)
	if i < 0 {
		return nil, apperror.NotFound("blog", id)
	}
	b := &f.blogs[i]
	if scope.Enforce && b.OwnerID != nil && !b.IsOwnedBy(scope.OwnerID) {
		return nil, apperror.NotFound("blog", id)
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.URL != nil {
		b.URL = *patch.URL
	}
	if patch.Likes != nil {
		b.Likes = *patch.Likes
	}
	out := *b
	return &out, nil
}

func (f *fakeBlogRepo) Delete(_ context.Context, id string) error {
	if err := f.checkID(id); err != nil {
		return err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if i := f.index(id); i >= 0 {
		f.blogs = slices.Delete(f.blogs, i, i+1)
	}
	return nil
}

type fakeUserRepo struct {
	users []model.User

	nextID    int
	appendErr error
	removeErr error
	lookupErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) find(pred func(model.User) bool) *model.User {
	i := slices.IndexFunc(f.users, pred)
	if i < 0 {
		return nil
	}
	return &f.users[i]
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.find(func(u model.User) bool { return u.Username == user.Username }) != nil {
		return apperror.Duplicate("username", user.Username)
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	if user.BlogIDs == nil {
		user.BlogIDs = []string{}
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	var n int
	if _, err := fmt.Sscanf(id, "user-%d", &n); err != nil {
		return nil, apperror.InvalidID("user", id)
	}
	u := f.find(func(u model.User) bool { return u.ID == id })
	if u == nil {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	out.BlogIDs = slices.Clone(u.BlogIDs)
	return &out, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u := f.find(func(u model.User) bool { return u.Username == username })
	if u == nil {
		return nil, apperror.NotFound("user", username)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) List(context.Context) ([]model.User, error) {
	return slices.Clone(f.users), nil
}

func (f *fakeUserRepo) AppendBlog(_ context.Context, userID, blogID string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	u := f.find(func(u model.User) bool { return u.ID == userID })
	if u == nil {
		return apperror.NotFound("user", userID)
	}
	u.BlogIDs = append(u.BlogIDs, blogID)
	return nil
}

func (f *fakeUserRepo) RemoveBlog(_ context.Context, userID, blogID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	u := f.find(func(u model.User) bool { return u.ID == userID })
	if u == nil {
		return nil
	}
	u.BlogIDs = slices.DeleteFunc(u.BlogIDs, func(id string) bool { return id == blogID })
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBlogService(t *testing.T) (*BlogService, *fakeBlogRepo, *fakeUserRepo) {
	t.Helper()
	blogs := newFakeBlogRepo()
	users := newFakeUserRepo()
	return NewBlogService(blogs, users, discardLogger()), blogs, users
}

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo, *fakeBlogRepo, *auth.TokenService) {
	t.Helper()
	users := newFakeUserRepo()
	blogs := newFakeBlogRepo()
	tokens, err := auth.NewTokenService("service-test-secret-0123456789", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc := NewUserService(users, blogs, tokens, auth.NewPasswordServiceForTest(), discardLogger())
	return svc, users, blogs, tokens
}

// seedUser stores a user directly in the fake and returns it.
func seedUser(t *testing.T, users *fakeUserRepo, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Name: "Test " + username, PasswordHash: "x"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}

func ptr[T any](v T) *T { return &v }
