package auth

import (
	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// AuthorizeDelete allows only the blog's creator to delete it. A blog without
// an owner cannot be deleted by anyone.
func AuthorizeDelete(id Identity, blog *model.Blog) error {
	if id.SubjectID == "" || !blog.IsOwnedBy(id.SubjectID) {
		return apperror.Forbidden("only the creator can delete a blog")
	}
	return nil
}

// AuthorizeUpdate reports whether the caller may modify blog. A blog with no
// owner is open to every caller, signed in or not; an owned blog only to its
// owner.
func AuthorizeUpdate(id *Identity, blog *model.Blog) error {
	switch {
	case blog.OwnerID == nil:
		return nil
	case id != nil && blog.IsOwnedBy(id.SubjectID):
		return nil
	}
	return apperror.Forbidden("only the creator can update a blog")
}

// UpdateScope is the store-level form of AuthorizeUpdate: the owner filter
// the update statement must match.
func UpdateScope(id *Identity) repository.OwnerScope {
	if id == nil {
		return repository.OwnerScope{Enforce: true}
	}
	return repository.OwnerScope{Enforce: true, OwnerID: id.SubjectID}
}
