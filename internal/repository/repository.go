// Package repository declares the storage contracts used by the service layer.
// Implementations live in subpackages (repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/bloglist/internal/model"
)

// OwnerScope narrows an update to blogs with a given owner.
//
// With Enforce set, blogs with no owner always match; an owned blog matches
// only when OwnerID is its owner, so an empty OwnerID matches ownerless blogs
// alone. A mismatch shows up as "no row matched" (NotFound) rather than as a
// separate comparison.
type OwnerScope struct {
	Enforce bool
	OwnerID string
}

// BlogRepository is the typed store for blog records. It knows nothing about
// who is calling; authorization is layered on top by the service.
type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	List(ctx context.Context) ([]model.Blog, error)
	Update(ctx context.Context, id string, patch model.BlogPatch, scope OwnerScope) (*model.Blog, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository is the typed store for user records and their blogIds list.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	AppendBlog(ctx context.Context, userID, blogID string) error
	RemoveBlog(ctx context.Context, userID, blogID string) error
}
