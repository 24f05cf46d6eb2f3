// Package model defines the data structures used throughout the application.
package model

// Blog is a single blog-post record.
//
// OwnerID is a pointer because a blog may have no owner (records created
// before authentication existed, or seeded directly into the store). The JSON
// form always carries the key, as null when there is no owner.
//
// Owner is a read-side projection filled in only by List; it is never stored.
type Blog struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Author  string        `json:"author"`
	URL     string        `json:"url"`
	Likes   int           `json:"likes"`
	OwnerID *string       `json:"ownerId"`
	Owner   *OwnerSummary `json:"owner,omitempty"`
}

// OwnerSummary is the shallow projection of a blog's owner shown in listings.
type OwnerSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BlogInput carries the client-supplied fields of a new blog.
// Likes is a pointer so "absent" and "zero" can both default to 0.
type BlogInput struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

// BlogPatch is a partial update: nil fields are left unchanged.
type BlogPatch struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

// Empty reports whether the patch changes nothing.
func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.URL == nil && p.Likes == nil
}

// IsOwnedBy reports whether userID owns the blog. A blog without an owner is
// owned by nobody.
func (b *Blog) IsOwnedBy(userID string) bool {
	return b.OwnerID != nil && userID != "" && *b.OwnerID == userID
}
